package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/middleware"
	"github.com/wildcare/compliance-engine/internal/service"
)

// GetReadiness returns the organisation's readiness report
func (h *ComplianceHandler) GetReadiness(c *gin.Context) {
	report, err := h.service.GetReadiness(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.respondError(c, err, "get readiness report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// RefreshReadiness recomputes the readiness report, bypassing the cache
func (h *ComplianceHandler) RefreshReadiness(c *gin.Context) {
	report, err := h.service.RefreshReadiness(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.respondError(c, err, "refresh readiness report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListReleaseChecklists returns the organisation's release checklists
func (h *ComplianceHandler) ListReleaseChecklists(c *gin.Context) {
	checklists, err := h.service.ListReleaseChecklists(c.Request.Context(), middleware.OrganizationID(c))
	if err != nil {
		h.respondError(c, err, "list release checklists")
		return
	}
	c.JSON(http.StatusOK, gin.H{"release_checklists": checklists, "count": len(checklists)})
}

// StartReleaseChecklist opens a draft release checklist
func (h *ComplianceHandler) StartReleaseChecklist(c *gin.Context) {
	var checklist compliance.ReleaseChecklist
	if err := c.ShouldBindJSON(&checklist); err != nil {
		badRequest(c, err)
		return
	}

	created, err := h.service.StartReleaseChecklist(c.Request.Context(), middleware.OrganizationID(c), checklist)
	if err != nil {
		h.respondError(c, err, "create release checklist")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetReleaseChecklist returns one release checklist
func (h *ComplianceHandler) GetReleaseChecklist(c *gin.Context) {
	checklist, err := h.service.GetReleaseChecklist(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "get release checklist")
		return
	}
	c.JSON(http.StatusOK, checklist)
}

// UpdateReleaseChecklist edits a draft release checklist
func (h *ComplianceHandler) UpdateReleaseChecklist(c *gin.Context) {
	var update compliance.ReleaseChecklist
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.service.UpdateReleaseChecklist(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err, "update release checklist")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SubmitReleaseChecklist finalises a release checklist. An incomplete
// checklist is rejected with its verdict.
func (h *ComplianceHandler) SubmitReleaseChecklist(c *gin.Context) {
	verdict, err := h.service.SubmitReleaseChecklist(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"))
	if errors.Is(err, service.ErrChecklistIncomplete) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "verdict": verdict})
		return
	}
	if err != nil {
		h.respondError(c, err, "submit release checklist")
		return
	}
	c.JSON(http.StatusOK, verdict)
}

// GetReleaseChecklistVerdict evaluates a stored release checklist
func (h *ComplianceHandler) GetReleaseChecklistVerdict(c *gin.Context) {
	verdict, err := h.service.ReleaseChecklistVerdict(c.Request.Context(), middleware.OrganizationID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "evaluate release checklist")
		return
	}
	c.JSON(http.StatusOK, verdict)
}
