package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinica-api/internal/handler"
	"github.com/jwalitptl/clinica-api/internal/middleware"
	"github.com/jwalitptl/clinica-api/internal/model"
	dashboardService "github.com/jwalitptl/clinica-api/internal/service/dashboard"
)

type Handler struct {
	service *dashboardService.Service
}

func NewHandler(service *dashboardService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/dashboard/stats", auth.RequireRoles(model.RoleAdmin), h.Stats)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
