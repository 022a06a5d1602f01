package study

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinica-api/internal/handler"
	"github.com/jwalitptl/clinica-api/internal/middleware"
	"github.com/jwalitptl/clinica-api/internal/model"
	"github.com/jwalitptl/clinica-api/internal/repository"
	studyService "github.com/jwalitptl/clinica-api/internal/service/study"
)

type Handler struct {
	service *studyService.Service
	doctors repository.DoctorRepository
}

func NewHandler(service *studyService.Service, doctors repository.DoctorRepository) *Handler {
	return &Handler{
		service: service,
		doctors: doctors,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	studies := r.Group("/studies")
	{
		studies.POST("/upload-url", auth.RequireRoles(model.RoleAdmin), h.GenerateUploadURL)
		studies.POST("/:id/report-upload-url", auth.RequireRoles(model.RoleAdmin), h.GenerateReportUploadURL)
		studies.GET("/:id/download-url", h.GenerateDownloadURL)
		studies.GET("/mine", auth.RequireRoles(model.RolePatient), h.ListOwnStudies)
	}

	r.GET("/patients/:id/studies", auth.RequireRoles(model.RoleAdmin, model.RoleDoctor), h.ListPatientStudies)
}

func (h *Handler) GenerateUploadURL(c *gin.Context) {
	var req model.GenerateUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	resp, err := h.service.RequestUpload(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(resp))
}

func (h *Handler) GenerateReportUploadURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid study ID"))
		return
	}

	var req model.ReportUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	resp, err := h.service.RequestReportUpload(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

// GenerateDownloadURL brokers a download for staff directly and for
// patients only against their own studies.
func (h *Handler) GenerateDownloadURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid study ID"))
		return
	}

	fileKind := c.DefaultQuery("file", model.FileKindStudy)
	disposition := c.Query("disposition")

	var resp *model.DownloadURLResponse
	if middleware.UserRole(c) == model.RolePatient {
		resp, err = h.service.RequestDownloadForOwner(c.Request.Context(), middleware.UserID(c), id, fileKind, disposition)
	} else {
		resp, err = h.service.RequestDownload(c.Request.Context(), id, fileKind, disposition)
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

// ListPatientStudies narrows a doctor's view to the studies they
// requested; admins see everything.
func (h *Handler) ListPatientStudies(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var doctorID *uuid.UUID
	if middleware.UserRole(c) == model.RoleDoctor {
		doctor, err := h.doctors.GetByUserID(c.Request.Context(), middleware.UserID(c))
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			c.Error(err)
			return
		}
		if doctor == nil {
			c.JSON(http.StatusOK, handler.NewSuccessResponse([]*model.StudyDetail{}))
			return
		}
		doctorID = &doctor.ID
	}

	studies, err := h.service.ListForPatient(c.Request.Context(), patientID, doctorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(studies))
}

func (h *Handler) ListOwnStudies(c *gin.Context) {
	studies, err := h.service.ListForOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(studies))
}
