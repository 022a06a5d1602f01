package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/clinica-api/pkg/errors"
)

func newErrorTestServer(fail error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/fail", func(c *gin.Context) {
		c.Error(fail)
	})
	return engine
}

func errorGet(engine *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerAppError(t *testing.T) {
	engine := newErrorTestServer(apperrors.NotFound("study", nil))

	w := errorGet(engine)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "study not found")
}

func TestErrorHandlerWrappedAppError(t *testing.T) {
	engine := newErrorTestServer(fmt.Errorf("listing studies: %w", apperrors.Conflict("study report has already been uploaded")))

	w := errorGet(engine)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestErrorHandlerUnknownError(t *testing.T) {
	engine := newErrorTestServer(errors.New("disk full"))

	w := errorGet(engine)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
