package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/handler"
	"github.com/jwalitptl/clinica-api/internal/middleware"
	"github.com/jwalitptl/clinica-api/internal/model"
	patientService "github.com/jwalitptl/clinica-api/internal/service/patient"
)

type Handler struct {
	service *patientService.Service
}

func NewHandler(service *patientService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	patients := r.Group("/patients")
	{
		patients.POST("", auth.RequireRoles(model.RoleAdmin), h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", auth.RequireRoles(model.RoleAdmin, model.RoleDoctor), h.GetPatient)
		patients.PUT("/:id", auth.RequireRoles(model.RoleAdmin), h.UpdatePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient))
}

// ListPatients is open to every authenticated role; the service scopes
// the result to what the caller may see, down to nothing.
func (h *Handler) ListPatients(c *gin.Context) {
	caller := patientService.Caller{
		UserID: middleware.UserID(c),
		Role:   middleware.UserRole(c),
	}

	patients, err := h.service.List(c.Request.Context(), caller, c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}
