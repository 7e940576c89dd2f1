package compliance

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// DistanceCheck is the verdict of a release distance check
type DistanceCheck struct {
	DistanceKm float64 `json:"distance_km"`
	MinimumKm  float64 `json:"minimum_km"`
	Enforced   bool    `json:"enforced"`
	Computable bool    `json:"computable"`
	Compliant  bool    `json:"compliant"`
}

func (c Coordinate) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lng)
}

// Valid reports whether both components are finite and within range
func (c Coordinate) Valid() bool {
	return c.latLng().IsValid()
}

// HaversineKm returns the great-circle distance between two coordinates in
// kilometres. The result is NaN when either coordinate is invalid.
func HaversineKm(a, b Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		return math.NaN()
	}

	p1, p2 := a.latLng(), b.latLng()
	lat1, lat2 := p1.Lat.Radians(), p2.Lat.Radians()
	dLat := lat2 - lat1
	dLng := p2.Lng.Radians() - p1.Lng.Radians()

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// CheckReleaseDistance decides whether a release site is far enough from the
// rescue site. A distance that cannot be computed is never compliant.
func CheckReleaseDistance(rescue, release Coordinate, cfg jurisdiction.Config) DistanceCheck {
	check := DistanceCheck{
		MinimumKm: cfg.Distance.MinimumKm,
		Enforced:  cfg.Distance.Enforced,
	}

	d := HaversineKm(rescue, release)
	if math.IsNaN(d) {
		return check
	}

	check.DistanceKm = d
	check.Computable = true
	check.Compliant = !cfg.Distance.Enforced || d >= cfg.Distance.MinimumKm
	return check
}

// CheckReleaseSites is CheckReleaseDistance for sites that may not have been
// recorded. A missing site makes the distance uncomputable.
func CheckReleaseSites(rescue, release *Coordinate, cfg jurisdiction.Config) DistanceCheck {
	if rescue == nil || release == nil {
		return DistanceCheck{
			MinimumKm: cfg.Distance.MinimumKm,
			Enforced:  cfg.Distance.Enforced,
		}
	}
	return CheckReleaseDistance(*rescue, *release, cfg)
}
