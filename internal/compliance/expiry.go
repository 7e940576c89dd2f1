package compliance

import (
	"math"
	"time"
)

// ExpiryStatus is the derived state of a licence or training record
type ExpiryStatus string

const (
	ExpiryExpired      ExpiryStatus = "expired"
	ExpiryExpiringSoon ExpiryStatus = "expiring-soon"
	ExpiryValid        ExpiryStatus = "valid"
	ExpiryNoLicense    ExpiryStatus = "no-license"
)

// ExpiringSoonWindowDays is how many days ahead an expiry counts as imminent
const ExpiringSoonWindowDays = 30

// DaysUntil returns the number of days from now until expiry, rounded up
func DaysUntil(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// ExpiryStatusAt classifies an expiry date relative to now. An expiry due
// today is expiring-soon, not expired.
func ExpiryStatusAt(expiry *time.Time, now time.Time) ExpiryStatus {
	if expiry == nil {
		return ExpiryNoLicense
	}

	days := DaysUntil(*expiry, now)
	switch {
	case days < 0:
		return ExpiryExpired
	case days <= ExpiringSoonWindowDays:
		return ExpiryExpiringSoon
	default:
		return ExpiryValid
	}
}

// LicenceStatus is the expiry state of a carer's licence
type LicenceStatus struct {
	Status    ExpiryStatus `json:"status"`
	DaysUntil *int         `json:"days_until,omitempty"`
}

// CarerLicenceStatus derives the licence status of a carer
func CarerLicenceStatus(carer CarerLicenceRecord, now time.Time) LicenceStatus {
	status := LicenceStatus{Status: ExpiryStatusAt(carer.LicenseExpiry, now)}
	if carer.LicenseExpiry != nil {
		days := DaysUntil(*carer.LicenseExpiry, now)
		status.DaysUntil = &days
	}
	return status
}
