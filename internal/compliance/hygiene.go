package compliance

// HygieneStatus summarises a hygiene checklist score
type HygieneStatus string

const (
	HygieneCompliant       HygieneStatus = "compliant"
	HygieneMostlyCompliant HygieneStatus = "mostly-compliant"
	HygieneNonCompliant    HygieneStatus = "non-compliant"
)

const hygieneCheckCount = 5

// HygieneScore is the scored result of a hygiene checklist
type HygieneScore struct {
	Passed int           `json:"passed"`
	Total  int           `json:"total"`
	Score  int           `json:"score"`
	Status HygieneStatus `json:"status"`
}

// Checks returns the five hygiene checks in a fixed order
func (h HygieneChecklistResult) Checks() [hygieneCheckCount]bool {
	return [hygieneCheckCount]bool{
		h.EnclosureCleaned,
		h.PPEUsed,
		h.HandwashAvailable,
		h.FeedingBowlsDisinfected,
		h.QuarantineSignage,
	}
}

// ScoreHygieneLog scores a hygiene checklist as the percentage of checks passed
func ScoreHygieneLog(log HygieneChecklistResult) HygieneScore {
	passed := 0
	for _, ok := range log.Checks() {
		if ok {
			passed++
		}
	}

	score := passed * 100 / hygieneCheckCount
	return HygieneScore{
		Passed: passed,
		Total:  hygieneCheckCount,
		Score:  score,
		Status: hygieneStatus(score),
	}
}

func hygieneStatus(score int) HygieneStatus {
	switch {
	case score == 100:
		return HygieneCompliant
	case score >= 80:
		return HygieneMostlyCompliant
	default:
		return HygieneNonCompliant
	}
}
