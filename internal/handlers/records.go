package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/middleware"
)

// CreateOrganization registers a new organisation
func (h *ComplianceHandler) CreateOrganization(c *gin.Context) {
	var request struct {
		Name         string `json:"name" binding:"required"`
		Jurisdiction string `json:"jurisdiction"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	org, err := h.service.CreateOrganization(c.Request.Context(), request.Name, request.Jurisdiction)
	if err != nil {
		h.respondError(c, err, "create organization")
		return
	}
	c.JSON(http.StatusCreated, org)
}

// GetOrganization returns the calling organisation and its effective jurisdiction
func (h *ComplianceHandler) GetOrganization(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := middleware.OrganizationID(c)

	org, err := h.service.GetOrganization(ctx, orgID)
	if err != nil {
		h.respondError(c, err, "get organization")
		return
	}
	cfg, err := h.service.JurisdictionConfig(ctx, orgID)
	if err != nil {
		h.respondError(c, err, "get organization")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization":           org,
		"effective_jurisdiction": newJurisdictionResponse(cfg),
	})
}

// SetJurisdiction changes the calling organisation's jurisdiction
func (h *ComplianceHandler) SetJurisdiction(c *gin.Context) {
	var request struct {
		Jurisdiction string `json:"jurisdiction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	cfg, err := h.service.SetJurisdiction(c.Request.Context(), middleware.OrganizationID(c), request.Jurisdiction)
	if err != nil {
		h.respondError(c, err, "set jurisdiction")
		return
	}
	c.JSON(http.StatusOK, newJurisdictionResponse(cfg))
}

type animalResponse struct {
	compliance.Animal
	DaysInCare int `json:"days_in_care"`
}

func (h *ComplianceHandler) newAnimalResponse(a compliance.Animal) animalResponse {
	return animalResponse{Animal: a, DaysInCare: compliance.DaysInCareFor(a, h.service.Now())}
}

// ListAnimals returns the organisation's animals
func (h *ComplianceHandler) ListAnimals(c *gin.Context) {
	animals, err := h.service.ListAnimals(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.respondError(c, err, "list animals")
		return
	}

	out := make([]animalResponse, 0, len(animals))
	for _, a := range animals {
		out = append(out, h.newAnimalResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"animals": out, "count": len(out)})
}

// CreateAnimal admits a rescued animal
func (h *ComplianceHandler) CreateAnimal(c *gin.Context) {
	var animal compliance.Animal
	if err := c.ShouldBindJSON(&animal); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.service.CreateAnimal(c.Request.Context(), middleware.OrganizationID(c), animal)
	if err != nil {
		h.respondError(c, err, "create animal")
		return
	}
	c.JSON(http.StatusCreated, h.newAnimalResponse(created))
}

// GetAnimal returns one animal
func (h *ComplianceHandler) GetAnimal(c *gin.Context) {
	animal, err := h.service.GetAnimal(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "get animal")
		return
	}
	c.JSON(http.StatusOK, h.newAnimalResponse(animal))
}

// TransitionAnimal changes an animal's care status
func (h *ComplianceHandler) TransitionAnimal(c *gin.Context) {
	var request struct {
		Status compliance.AnimalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	animal, err := h.service.TransitionAnimal(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"), request.Status)
	if err != nil {
		h.respondError(c, err, "update animal status")
		return
	}
	c.JSON(http.StatusOK, h.newAnimalResponse(animal))
}

type carerResponse struct {
	compliance.CarerLicenceRecord
	Licence compliance.LicenceStatus `json:"licence"`
}

// ListCarers returns the organisation's carers with their licence status
func (h *ComplianceHandler) ListCarers(c *gin.Context) {
	carers, err := h.service.ListCarers(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.respondError(c, err, "list carers")
		return
	}

	now := h.service.Now()
	out := make([]carerResponse, 0, len(carers))
	for _, carer := range carers {
		out = append(out, carerResponse{CarerLicenceRecord: carer, Licence: compliance.CarerLicenceStatus(carer, now)})
	}
	c.JSON(http.StatusOK, gin.H{"carers": out, "count": len(out)})
}

// CreateCarer records a carer
func (h *ComplianceHandler) CreateCarer(c *gin.Context) {
	var carer compliance.CarerLicenceRecord
	if err := c.ShouldBindJSON(&carer); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.service.CreateCarer(c.Request.Context(), middleware.OrganizationID(c), carer)
	if err != nil {
		h.respondError(c, err, "create carer")
		return
	}
	c.JSON(http.StatusCreated, carerResponse{
		CarerLicenceRecord: created,
		Licence:            compliance.CarerLicenceStatus(created, h.service.Now()),
	})
}

// GetCarerLicence returns the licence status of a carer
func (h *ComplianceHandler) GetCarerLicence(c *gin.Context) {
	status, err := h.service.CarerLicenceStatus(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "get carer licence")
		return
	}
	c.JSON(http.StatusOK, status)
}

type hygieneLogResponse struct {
	compliance.HygieneChecklistResult
	Result compliance.HygieneScore `json:"result"`
}

// ListHygieneLogs returns the organisation's hygiene logs with their scores
func (h *ComplianceHandler) ListHygieneLogs(c *gin.Context) {
	logs, err := h.service.ListHygieneLogs(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.respondError(c, err, "list hygiene logs")
		return
	}

	out := make([]hygieneLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, hygieneLogResponse{HygieneChecklistResult: log, Result: compliance.ScoreHygieneLog(log)})
	}
	c.JSON(http.StatusOK, gin.H{"hygiene_logs": out, "count": len(out)})
}

// RecordHygieneLog stores a hygiene checklist and returns its score
func (h *ComplianceHandler) RecordHygieneLog(c *gin.Context) {
	var log compliance.HygieneChecklistResult
	if err := c.ShouldBindJSON(&log); err != nil {
		badRequest(c, err)
		return
	}

	score, err := h.service.RecordHygieneLog(c.Request.Context(), middleware.OrganizationID(c), log)
	if err != nil {
		h.respondError(c, err, "record hygiene log")
		return
	}
	c.JSON(http.StatusCreated, score)
}

// ListIncidents returns the organisation's incident reports
func (h *ComplianceHandler) ListIncidents(c *gin.Context) {
	incidents, err := h.service.ListIncidents(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.respondError(c, err, "list incidents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"incidents": incidents, "count": len(incidents)})
}

// LogIncident records an incident report
func (h *ComplianceHandler) LogIncident(c *gin.Context) {
	var incident compliance.IncidentReport
	if err := c.ShouldBindJSON(&incident); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.service.LogIncident(c.Request.Context(), middleware.OrganizationID(c), incident)
	if err != nil {
		h.respondError(c, err, "log incident")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// MarkIncidentReported records the authority an incident was reported to
func (h *ComplianceHandler) MarkIncidentReported(c *gin.Context) {
	var request struct {
		ReportedTo string `json:"reported_to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.MarkIncidentReported(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"), request.ReportedTo); err != nil {
		h.respondError(c, err, "mark incident reported")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "reported_to": request.ReportedTo})
}
