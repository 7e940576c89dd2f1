package compliance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

var canberra = Coordinate{Lat: -35.2809, Lng: 149.1300}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScoreHygieneLog(t *testing.T) {
	t.Run("All Combinations Score In Steps Of Twenty", func(t *testing.T) {
		for mask := 0; mask < 32; mask++ {
			log := HygieneChecklistResult{
				EnclosureCleaned:        mask&1 != 0,
				PPEUsed:                 mask&2 != 0,
				HandwashAvailable:       mask&4 != 0,
				FeedingBowlsDisinfected: mask&8 != 0,
				QuarantineSignage:       mask&16 != 0,
			}

			trueCount := 0
			for bit := 0; bit < 5; bit++ {
				if mask&(1<<bit) != 0 {
					trueCount++
				}
			}

			result := ScoreHygieneLog(log)
			assert.Equal(t, int(math.Round(float64(trueCount)/5*100)), result.Score)
			assert.Contains(t, []int{0, 20, 40, 60, 80, 100}, result.Score)
			assert.Equal(t, trueCount, result.Passed)
			assert.Equal(t, 5, result.Total)
		}
	})

	t.Run("Status Thresholds", func(t *testing.T) {
		all := HygieneChecklistResult{
			EnclosureCleaned: true, PPEUsed: true, HandwashAvailable: true,
			FeedingBowlsDisinfected: true, QuarantineSignage: true,
		}
		assert.Equal(t, HygieneCompliant, ScoreHygieneLog(all).Status)

		four := all
		four.QuarantineSignage = false
		assert.Equal(t, HygieneMostlyCompliant, ScoreHygieneLog(four).Status)

		three := four
		three.PPEUsed = false
		assert.Equal(t, HygieneNonCompliant, ScoreHygieneLog(three).Status)

		assert.Equal(t, HygieneNonCompliant, ScoreHygieneLog(HygieneChecklistResult{}).Status)
	})
}

func TestHaversineKm(t *testing.T) {
	points := []Coordinate{
		canberra,
		{Lat: -35.35, Lng: 149.2},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: -12.4634, Lng: 130.8456},
		{Lat: 0, Lng: 0},
		{Lat: 89.9, Lng: -179.9},
	}

	t.Run("Symmetric", func(t *testing.T) {
		for _, a := range points {
			for _, b := range points {
				assert.Equal(t, HaversineKm(a, b), HaversineKm(b, a), "%v <-> %v", a, b)
			}
		}
	})

	t.Run("Identity", func(t *testing.T) {
		for _, a := range points {
			assert.Equal(t, 0.0, HaversineKm(a, a))
		}
	})

	t.Run("Canberra To Sydney", func(t *testing.T) {
		assert.InDelta(t, 247, HaversineKm(canberra, points[2]), 3)
	})

	t.Run("Invalid Coordinates", func(t *testing.T) {
		assert.True(t, math.IsNaN(HaversineKm(canberra, Coordinate{Lat: math.NaN(), Lng: 149})))
		assert.True(t, math.IsNaN(HaversineKm(Coordinate{Lat: 95, Lng: 149}, canberra)))
		assert.True(t, math.IsNaN(HaversineKm(canberra, Coordinate{Lat: -35, Lng: math.Inf(1)})))
	})
}

func TestCheckReleaseDistance(t *testing.T) {
	registry := jurisdiction.NewStaticRegistry()
	act := registry.Get("ACT")

	t.Run("Canberra Release Under Ten Kilometres", func(t *testing.T) {
		check := CheckReleaseDistance(canberra, Coordinate{Lat: -35.35, Lng: 149.2}, act)

		assert.InDelta(t, 9.97, check.DistanceKm, 0.05)
		assert.True(t, check.Computable)
		assert.True(t, check.Enforced)
		assert.False(t, check.Compliant)
	})

	t.Run("Canberra Release Beyond Ten Kilometres", func(t *testing.T) {
		check := CheckReleaseDistance(canberra, Coordinate{Lat: -35.45, Lng: 149.3}, act)

		assert.InDelta(t, 24.3, check.DistanceKm, 0.1)
		assert.True(t, check.Compliant)
	})

	t.Run("Not Enforced Is Always Compliant", func(t *testing.T) {
		nsw := registry.Get("NSW")
		check := CheckReleaseDistance(canberra, canberra, nsw)

		assert.False(t, check.Enforced)
		assert.True(t, check.Compliant)
	})

	t.Run("Exactly At Minimum Is Compliant", func(t *testing.T) {
		cfg := act
		cfg.Distance.MinimumKm = HaversineKm(canberra, Coordinate{Lat: -35.35, Lng: 149.2})

		assert.True(t, CheckReleaseDistance(canberra, Coordinate{Lat: -35.35, Lng: 149.2}, cfg).Compliant)
	})

	t.Run("NaN Coordinates Never Comply", func(t *testing.T) {
		bad := Coordinate{Lat: math.NaN(), Lng: math.NaN()}

		for _, cfg := range []jurisdiction.Config{act, registry.Get("NSW")} {
			check := CheckReleaseDistance(canberra, bad, cfg)
			assert.False(t, check.Computable)
			assert.False(t, check.Compliant)
			assert.Equal(t, 0.0, check.DistanceKm)
		}
	})

	t.Run("Swapping Sites Gives Same Distance", func(t *testing.T) {
		release := Coordinate{Lat: -35.45, Lng: 149.3}
		assert.Equal(t,
			CheckReleaseDistance(canberra, release, act).DistanceKm,
			CheckReleaseDistance(release, canberra, act).DistanceKm,
		)
	})

	t.Run("Unrecorded Sites Never Comply", func(t *testing.T) {
		release := &Coordinate{Lat: -35.45, Lng: 149.3}

		for _, cfg := range []jurisdiction.Config{act, registry.Get("NSW")} {
			for _, check := range []DistanceCheck{
				CheckReleaseSites(ptr(canberra), nil, cfg),
				CheckReleaseSites(nil, release, cfg),
				CheckReleaseSites(nil, nil, cfg),
			} {
				assert.False(t, check.Computable)
				assert.False(t, check.Compliant)
				assert.Equal(t, cfg.Distance.Enforced, check.Enforced)
			}
		}

		assert.True(t, CheckReleaseSites(ptr(canberra), release, act).Compliant)
	})
}

func TestExpiryStatus(t *testing.T) {
	now := date(2024, time.June, 1)

	tests := []struct {
		name   string
		expiry *time.Time
		want   ExpiryStatus
	}{
		{"No Licence", nil, ExpiryNoLicense},
		{"Expires Today", ptr(date(2024, time.June, 1)), ExpiryExpiringSoon},
		{"Expired Yesterday", ptr(date(2024, time.May, 31)), ExpiryExpired},
		{"Thirty Days Out", ptr(date(2024, time.July, 1)), ExpiryExpiringSoon},
		{"Thirty One Days Out", ptr(date(2024, time.July, 2)), ExpiryValid},
		{"Later Today", ptr(now.Add(6 * time.Hour)), ExpiryExpiringSoon},
		{"Earlier Today", ptr(now.Add(-6 * time.Hour)), ExpiryExpiringSoon},
		{"Next Year", ptr(date(2025, time.June, 1)), ExpiryValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpiryStatusAt(tt.expiry, now))
		})
	}
}

func TestCarerLicenceStatus(t *testing.T) {
	now := date(2024, time.June, 1)

	status := CarerLicenceStatus(CarerLicenceRecord{LicenseExpiry: ptr(date(2024, time.June, 11))}, now)
	assert.Equal(t, ExpiryExpiringSoon, status.Status)
	if assert.NotNil(t, status.DaysUntil) {
		assert.Equal(t, 10, *status.DaysUntil)
	}

	status = CarerLicenceStatus(CarerLicenceRecord{}, now)
	assert.Equal(t, ExpiryNoLicense, status.Status)
	assert.Nil(t, status.DaysUntil)
}

func TestRequiredFormsFor(t *testing.T) {
	registry := jurisdiction.NewStaticRegistry()

	forms := RequiredFormsFor(registry.Get("ACT"))
	assert.ElementsMatch(t, jurisdiction.AllForms(), forms.Slice())

	forms = RequiredFormsFor(registry.Get("NT"))
	assert.True(t, forms.Has(jurisdiction.FormReleaseChecklist))
	assert.False(t, forms.Has(jurisdiction.FormHygieneLog))
}

func TestEvaluateReleaseChecklist(t *testing.T) {
	registry := jurisdiction.NewStaticRegistry()
	act := registry.Get("ACT")

	base := ReleaseChecklist{
		AnimalID:          "animal-1",
		ReleaseDate:       date(2024, time.June, 1),
		RescueLocation:    ptr(canberra),
		ReleaseLocation:   &Coordinate{Lat: -35.45, Lng: 149.3},
		ReleaseType:       ReleaseSoft,
		FitnessIndicators: []string{"Eating independently", "Normal weight"},
		VetSignOff:        &VetSignOff{Name: "Dr. Lee", Signature: "sig", Date: date(2024, time.May, 30)},
		Status:            ChecklistDraft,
	}

	t.Run("Fully Compliant", func(t *testing.T) {
		verdict := EvaluateReleaseChecklist(base, act)

		assert.Equal(t, 100, verdict.Score)
		assert.True(t, verdict.Complete)
		assert.True(t, verdict.Compliant)
		assert.Len(t, verdict.Rules, 3)
	})

	t.Run("Missing Vet Sign Off In ACT", func(t *testing.T) {
		c := base
		c.VetSignOff = nil
		verdict := EvaluateReleaseChecklist(c, act)

		assert.False(t, verdict.Complete)
		assert.False(t, verdict.Compliant)
		assert.Equal(t, 66, verdict.Score)
	})

	t.Run("Vet Sign Off Not Applicable In VIC", func(t *testing.T) {
		c := base
		c.VetSignOff = nil
		verdict := EvaluateReleaseChecklist(c, registry.Get("VIC"))

		assert.True(t, verdict.Complete)
		assert.True(t, verdict.Compliant)
		assert.Equal(t, 100, verdict.Score)
		assert.False(t, verdict.Rules[1].Applicable)
	})

	t.Run("Too Close And No Fitness Indicators", func(t *testing.T) {
		c := base
		c.FitnessIndicators = nil
		c.ReleaseLocation = &Coordinate{Lat: -35.35, Lng: 149.2}
		verdict := EvaluateReleaseChecklist(c, act)

		assert.False(t, verdict.Complete)
		assert.False(t, verdict.Distance.Compliant)
		assert.Equal(t, 33, verdict.Score)
	})

	t.Run("Missing Release Site Fails Distance", func(t *testing.T) {
		c := base
		c.ReleaseLocation = nil
		verdict := EvaluateReleaseChecklist(c, act)

		assert.False(t, verdict.Distance.Computable)
		assert.False(t, verdict.Distance.Compliant)
		assert.Zero(t, verdict.Distance.DistanceKm)
		assert.False(t, verdict.Compliant)
		assert.Equal(t, 66, verdict.Score)
	})

	t.Run("Missing Rescue Site Fails Distance", func(t *testing.T) {
		c := base
		c.RescueLocation = nil
		verdict := EvaluateReleaseChecklist(c, registry.Get("NSW"))

		assert.False(t, verdict.Distance.Computable)
		assert.False(t, verdict.Distance.Compliant)
		assert.False(t, verdict.Compliant)
	})

	t.Run("Incomplete Definition", func(t *testing.T) {
		assert.False(t, IsReleaseChecklistIncomplete(base, act))

		noIndicators := base
		noIndicators.FitnessIndicators = []string{}
		assert.True(t, IsReleaseChecklistIncomplete(noIndicators, act))

		unsigned := base
		unsigned.VetSignOff = &VetSignOff{Name: "Dr. Lee"}
		assert.True(t, IsReleaseChecklistIncomplete(unsigned, act))
		assert.False(t, IsReleaseChecklistIncomplete(unsigned, registry.Get("QLD")))
	})
}

func ptr[T any](v T) *T {
	return &v
}
