package compliance

import (
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

// RequiredFormsFor returns the forms a jurisdiction mandates
func RequiredFormsFor(cfg jurisdiction.Config) jurisdiction.FormSet {
	return cfg.EnabledForms.Clone()
}

// Rule identifiers reported in a checklist verdict
const (
	RuleFitnessIndicators = "fitness_indicators"
	RuleVetSignOff        = "vet_sign_off"
	RuleReleaseDistance   = "release_distance"
)

// RuleResult is the pass/fail outcome of a single rule
type RuleResult struct {
	Rule       string `json:"rule"`
	Applicable bool   `json:"applicable"`
	Passed     bool   `json:"passed"`
	Message    string `json:"message"`
}

// ChecklistVerdict is the evaluation of a release checklist against a jurisdiction
type ChecklistVerdict struct {
	Rules     []RuleResult  `json:"rules"`
	Score     int           `json:"score"`
	Complete  bool          `json:"complete"`
	Compliant bool          `json:"compliant"`
	Distance  DistanceCheck `json:"distance"`
}

// IsReleaseChecklistIncomplete reports whether a checklist lacks a required
// vet sign-off or has no fitness indicators selected.
func IsReleaseChecklistIncomplete(checklist ReleaseChecklist, cfg jurisdiction.Config) bool {
	if len(checklist.FitnessIndicators) == 0 {
		return true
	}
	return cfg.VetSignOffRequired && !checklist.HasVetSignOff()
}

// EvaluateReleaseChecklist runs every release rule for the checklist. The
// score is the percentage of applicable rules that passed.
func EvaluateReleaseChecklist(checklist ReleaseChecklist, cfg jurisdiction.Config) ChecklistVerdict {
	distance := CheckReleaseSites(checklist.RescueLocation, checklist.ReleaseLocation, cfg)

	rules := []RuleResult{
		{
			Rule:       RuleFitnessIndicators,
			Applicable: true,
			Passed:     len(checklist.FitnessIndicators) > 0,
			Message:    "at least one fitness indicator must be selected",
		},
		{
			Rule:       RuleVetSignOff,
			Applicable: cfg.VetSignOffRequired,
			Passed:     !cfg.VetSignOffRequired || checklist.HasVetSignOff(),
			Message:    "veterinary sign-off is required in " + cfg.Code.String(),
		},
		{
			Rule:       RuleReleaseDistance,
			Applicable: true,
			Passed:     distance.Compliant,
			Message:    distanceMessage(distance),
		},
	}

	applicable, passed := 0, 0
	for _, r := range rules {
		if !r.Applicable {
			continue
		}
		applicable++
		if r.Passed {
			passed++
		}
	}

	return ChecklistVerdict{
		Rules:     rules,
		Score:     passed * 100 / applicable,
		Complete:  !IsReleaseChecklistIncomplete(checklist, cfg),
		Compliant: passed == applicable,
		Distance:  distance,
	}
}

func distanceMessage(d DistanceCheck) string {
	switch {
	case !d.Computable:
		return "release distance could not be computed: rescue and release sites must both be recorded with valid coordinates"
	case !d.Enforced:
		return "no minimum release distance applies"
	default:
		return "release site must be at least the jurisdiction minimum distance from the rescue site"
	}
}
