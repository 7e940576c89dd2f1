package readiness

import (
	"github.com/wildcare/compliance-engine/internal/compliance"
)

// Onboarding step identifiers
const (
	StepJurisdictionConfigured = "jurisdiction_configured"
	StepActiveCarer            = "active_carer"
	StepCarersLicensed         = "carers_licensed"
	StepHygieneLogRecorded     = "hygiene_log_recorded"
	StepIncidentsReported      = "incidents_reported"
)

// OnboardingStep is a single item of the setup checklist
type OnboardingStep struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Complete bool   `json:"complete"`
}

// Onboarding tracks how far an organisation is through compliance setup
type Onboarding struct {
	Steps             []OnboardingStep `json:"steps"`
	CompletionPercent int              `json:"completion_percent"`
}

func buildOnboarding(in Input, report Report) Onboarding {
	activeCarers, licensed := 0, 0
	for _, carer := range in.Carers {
		if !carer.Active {
			continue
		}
		activeCarers++
		switch compliance.ExpiryStatusAt(carer.LicenseExpiry, in.Now) {
		case compliance.ExpiryValid, compliance.ExpiryExpiringSoon:
			licensed++
		}
	}

	steps := []OnboardingStep{
		{StepJurisdictionConfigured, "Jurisdiction configured", in.JurisdictionSet},
		{StepActiveCarer, "At least one active carer on file", activeCarers > 0},
		{StepCarersLicensed, "All active carers hold a current licence", activeCarers > 0 && licensed == activeCarers},
		{StepHygieneLogRecorded, "Hygiene log recorded", len(in.HygieneLogs) > 0},
		{StepIncidentsReported, "No unreported incidents", report.UnreportedIncidents == 0},
	}

	done := 0
	for _, s := range steps {
		if s.Complete {
			done++
		}
	}

	return Onboarding{
		Steps:             steps,
		CompletionPercent: done * 100 / len(steps),
	}
}
