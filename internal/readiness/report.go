package readiness

import (
	"time"

	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

const (
	expiringLicencePenalty = 5
	recentIncidentPenalty  = 10
	recentIncidentWindow   = 30 * 24 * time.Hour
)

// Input is a snapshot of one organisation's records
type Input struct {
	Carers            []compliance.CarerLicenceRecord
	HygieneLogs       []compliance.HygieneChecklistResult
	Incidents         []compliance.IncidentReport
	ReleaseChecklists []compliance.ReleaseChecklist
	Config            jurisdiction.Config
	Now               time.Time

	// JurisdictionSet is false when Config came from the default fallback
	JurisdictionSet bool
}

// Report is the organisation-wide compliance readiness summary
type Report struct {
	Jurisdiction                jurisdiction.Code           `json:"jurisdiction"`
	GeneratedAt                 time.Time                   `json:"generated_at"`
	ExpiringLicences            int                         `json:"expiring_licences"`
	ExpiringSoonLicences        int                         `json:"expiring_soon_licences"`
	ExpiredLicences             int                         `json:"expired_licences"`
	NonCompliantHygieneLogs     int                         `json:"non_compliant_hygiene_logs"`
	UnreportedIncidents         int                         `json:"unreported_incidents"`
	UnreportedBySeverity        map[compliance.Severity]int `json:"unreported_by_severity"`
	IncompleteReleaseChecklists int                         `json:"incomplete_release_checklists"`
	RecentIncidents             int                         `json:"recent_incidents"`
	OverallScore                int                         `json:"overall_score"`
	RequiredForms               []jurisdiction.FormID       `json:"required_forms"`
	Onboarding                  Onboarding                  `json:"onboarding"`
}

// BuildReport summarises an organisation's records against its jurisdiction.
// Every call recomputes from the given snapshot.
func BuildReport(in Input) Report {
	report := Report{
		Jurisdiction:         in.Config.Code,
		GeneratedAt:          in.Now,
		UnreportedBySeverity: make(map[compliance.Severity]int, len(compliance.Severities())),
		RequiredForms:        compliance.RequiredFormsFor(in.Config).Slice(),
	}
	for _, s := range compliance.Severities() {
		report.UnreportedBySeverity[s] = 0
	}

	for _, carer := range in.Carers {
		switch compliance.ExpiryStatusAt(carer.LicenseExpiry, in.Now) {
		case compliance.ExpiryExpiringSoon:
			report.ExpiringSoonLicences++
		case compliance.ExpiryExpired:
			report.ExpiredLicences++
		}
	}
	report.ExpiringLicences = report.ExpiringSoonLicences + report.ExpiredLicences

	for _, log := range in.HygieneLogs {
		if compliance.ScoreHygieneLog(log).Score < 100 {
			report.NonCompliantHygieneLogs++
		}
	}

	windowStart := in.Now.Add(-recentIncidentWindow)
	for _, incident := range in.Incidents {
		if !incident.IsReported() {
			report.UnreportedIncidents++
			report.UnreportedBySeverity[incident.Severity]++
		}
		if !incident.OccurredAt.Before(windowStart) && !incident.OccurredAt.After(in.Now) {
			report.RecentIncidents++
		}
	}

	for _, checklist := range in.ReleaseChecklists {
		if compliance.IsReleaseChecklistIncomplete(checklist, in.Config) {
			report.IncompleteReleaseChecklists++
		}
	}

	report.OverallScore = OverallScore(report.ExpiringSoonLicences, report.RecentIncidents)
	report.Onboarding = buildOnboarding(in, report)

	return report
}

// OverallScore is a coarse display heuristic: 100 less 5 per expiring-soon
// licence and 10 per recent incident, clamped to [0, 100].
func OverallScore(expiringSoon, recentIncidents int) int {
	score := 100 - expiringLicencePenalty*expiringSoon - recentIncidentPenalty*recentIncidents
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
