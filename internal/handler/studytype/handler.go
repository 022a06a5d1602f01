package studytype

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/handler"
	"github.com/jwalitptl/clinica-api/internal/middleware"
	"github.com/jwalitptl/clinica-api/internal/model"
	studytypeService "github.com/jwalitptl/clinica-api/internal/service/studytype"
)

type Handler struct {
	service *studytypeService.Service
}

func NewHandler(service *studytypeService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	studyTypes := r.Group("/study-types")
	{
		studyTypes.POST("", auth.RequireRoles(model.RoleAdmin), h.CreateStudyType)
		studyTypes.GET("", h.ListStudyTypes)
		studyTypes.GET("/similar", auth.RequireRoles(model.RoleAdmin), h.FindSimilar)
		studyTypes.PUT("/:id", auth.RequireRoles(model.RoleAdmin), h.UpdateStudyType)
		studyTypes.DELETE("/:id", auth.RequireRoles(model.RoleAdmin), h.DeleteStudyType)
	}
}

func (h *Handler) CreateStudyType(c *gin.Context) {
	var req model.CreateStudyTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	studyType, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(studyType))
}

func (h *Handler) ListStudyTypes(c *gin.Context) {
	studyTypes, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(studyTypes))
}

func (h *Handler) FindSimilar(c *gin.Context) {
	studyTypes, err := h.service.FindSimilar(c.Request.Context(), c.Query("name"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(studyTypes))
}

func (h *Handler) UpdateStudyType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid study type ID"))
		return
	}

	var req model.UpdateStudyTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	studyType, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(studyType))
}

func (h *Handler) DeleteStudyType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid study type ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "study type deleted successfully"}))
}
