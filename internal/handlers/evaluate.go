package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

type jurisdictionResponse struct {
	jurisdiction.Config
	EnabledForms []jurisdiction.FormID `json:"enabled_forms"`
}

func newJurisdictionResponse(cfg jurisdiction.Config) jurisdictionResponse {
	return jurisdictionResponse{Config: cfg, EnabledForms: cfg.EnabledForms.Slice()}
}

// ListJurisdictions returns every supported jurisdiction
func (h *ComplianceHandler) ListJurisdictions(c *gin.Context) {
	codes := h.registry.Codes()
	out := make([]jurisdictionResponse, 0, len(codes))
	for _, code := range codes {
		out = append(out, newJurisdictionResponse(h.registry.Get(code.String())))
	}
	c.JSON(http.StatusOK, gin.H{
		"jurisdictions": out,
		"default":       h.registry.Default(),
	})
}

// GetJurisdiction returns one jurisdiction. Unlike evaluation, the catalogue
// does not substitute the default for unknown codes.
func (h *ComplianceHandler) GetJurisdiction(c *gin.Context) {
	code, ok := jurisdiction.ParseCode(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown jurisdiction " + c.Param("code")})
		return
	}
	c.JSON(http.StatusOK, newJurisdictionResponse(h.registry.Get(code.String())))
}

// GetRequiredForms returns the forms a jurisdiction mandates
func (h *ComplianceHandler) GetRequiredForms(c *gin.Context) {
	code, ok := jurisdiction.ParseCode(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown jurisdiction " + c.Param("code")})
		return
	}
	cfg := h.registry.Get(code.String())
	c.JSON(http.StatusOK, gin.H{
		"jurisdiction": cfg.Code,
		"forms":        compliance.RequiredFormsFor(cfg).Slice(),
	})
}

// EvaluateHygiene scores a hygiene checklist without storing it
func (h *ComplianceHandler) EvaluateHygiene(c *gin.Context) {
	var log compliance.HygieneChecklistResult
	if err := c.ShouldBindJSON(&log); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, compliance.ScoreHygieneLog(log))
}

// EvaluateReleaseDistance checks a rescue/release pair against a jurisdiction.
// Unknown or empty jurisdiction codes are evaluated as the default.
func (h *ComplianceHandler) EvaluateReleaseDistance(c *gin.Context) {
	var request struct {
		Jurisdiction string                 `json:"jurisdiction"`
		Rescue       *compliance.Coordinate `json:"rescue" binding:"required"`
		Release      *compliance.Coordinate `json:"release" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	cfg := h.registry.Get(request.Jurisdiction)
	c.JSON(http.StatusOK, gin.H{
		"jurisdiction": cfg.Code,
		"result":       compliance.CheckReleaseDistance(*request.Rescue, *request.Release, cfg),
	})
}

// EvaluateLicenceExpiry classifies a licence expiry date
func (h *ComplianceHandler) EvaluateLicenceExpiry(c *gin.Context) {
	var request struct {
		LicenseExpiry *time.Time `json:"license_expiry"`
		AsOf          *time.Time `json:"as_of"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	now := h.service.Now()
	if request.AsOf != nil {
		now = *request.AsOf
	}
	c.JSON(http.StatusOK, compliance.CarerLicenceStatus(compliance.CarerLicenceRecord{LicenseExpiry: request.LicenseExpiry}, now))
}

// EvaluateReleaseChecklist runs the release rules over an unsaved checklist
func (h *ComplianceHandler) EvaluateReleaseChecklist(c *gin.Context) {
	var request struct {
		Jurisdiction string                      `json:"jurisdiction"`
		Checklist    compliance.ReleaseChecklist `json:"checklist"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	cfg := h.registry.Get(request.Jurisdiction)
	c.JSON(http.StatusOK, compliance.EvaluateReleaseChecklist(request.Checklist, cfg))
}
