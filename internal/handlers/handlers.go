package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
	"github.com/wildcare/compliance-engine/internal/service"
)

// ComplianceHandler handles compliance-related HTTP requests
type ComplianceHandler struct {
	service  *service.Service
	registry jurisdiction.Registry
	tenant   gin.HandlerFunc
	logger   *zap.Logger
}

// NewComplianceHandler creates a new compliance handler. tenant resolves the
// calling organisation for tenant-scoped routes.
func NewComplianceHandler(svc *service.Service, tenant gin.HandlerFunc, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		service:  svc,
		registry: svc.Registry(),
		tenant:   tenant,
		logger:   logger,
	}
}

// RegisterRoutes registers all compliance-related routes
func (h *ComplianceHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")

	// Jurisdiction catalogue
	api.GET("/jurisdictions", h.ListJurisdictions)
	api.GET("/jurisdictions/:code", h.GetJurisdiction)
	api.GET("/jurisdictions/:code/forms", h.GetRequiredForms)

	// Stateless evaluation
	api.POST("/evaluate/hygiene", h.EvaluateHygiene)
	api.POST("/evaluate/release-distance", h.EvaluateReleaseDistance)
	api.POST("/evaluate/licence-expiry", h.EvaluateLicenceExpiry)
	api.POST("/evaluate/release-checklist", h.EvaluateReleaseChecklist)

	api.POST("/organizations", h.CreateOrganization)

	tenant := api.Group("", h.tenant)

	tenant.GET("/organization", h.GetOrganization)
	tenant.PUT("/organization/jurisdiction", h.SetJurisdiction)

	tenant.GET("/readiness", h.GetReadiness)
	tenant.POST("/readiness/refresh", h.RefreshReadiness)

	tenant.GET("/animals", h.ListAnimals)
	tenant.POST("/animals", h.CreateAnimal)
	tenant.GET("/animals/:id", h.GetAnimal)
	tenant.PATCH("/animals/:id/status", h.TransitionAnimal)

	tenant.GET("/carers", h.ListCarers)
	tenant.POST("/carers", h.CreateCarer)
	tenant.GET("/carers/:id/licence", h.GetCarerLicence)

	tenant.GET("/hygiene-logs", h.ListHygieneLogs)
	tenant.POST("/hygiene-logs", h.RecordHygieneLog)

	tenant.GET("/incidents", h.ListIncidents)
	tenant.POST("/incidents", h.LogIncident)
	tenant.PATCH("/incidents/:id/report", h.MarkIncidentReported)

	tenant.GET("/release-checklists", h.ListReleaseChecklists)
	tenant.POST("/release-checklists", h.StartReleaseChecklist)
	tenant.GET("/release-checklists/:id", h.GetReleaseChecklist)
	tenant.PUT("/release-checklists/:id", h.UpdateReleaseChecklist)
	tenant.POST("/release-checklists/:id/submit", h.SubmitReleaseChecklist)
	tenant.GET("/release-checklists/:id/verdict", h.GetReleaseChecklistVerdict)
}

// respondError maps service errors onto HTTP statuses
func (h *ComplianceHandler) respondError(c *gin.Context, err error, action string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnknownJurisdiction):
		status = http.StatusBadRequest
	case errors.Is(err, compliance.ErrInvalidTransition),
		errors.Is(err, compliance.ErrChecklistLocked),
		errors.Is(err, compliance.ErrAnimalNotEligible):
		status = http.StatusConflict
	case errors.Is(err, service.ErrChecklistIncomplete):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Failed to "+action,
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
