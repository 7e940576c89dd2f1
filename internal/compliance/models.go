package compliance

import (
	"time"

	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

// Coordinate is a latitude/longitude pair in decimal degrees
type Coordinate struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// HygieneChecklistResult records the five daily hygiene checks for an enclosure
type HygieneChecklistResult struct {
	ID                      string    `json:"id"`
	CarerID                 string    `json:"carer_id"`
	Date                    time.Time `json:"date"`
	EnclosureCleaned        bool      `json:"enclosure_cleaned"`
	PPEUsed                 bool      `json:"ppe_used"`
	HandwashAvailable       bool      `json:"handwash_available"`
	FeedingBowlsDisinfected bool      `json:"feeding_bowls_disinfected"`
	QuarantineSignage       bool      `json:"quarantine_signage"`
	Notes                   string    `json:"notes,omitempty"`
}

// ReleaseType classifies how an animal is returned to the wild
type ReleaseType string

const (
	ReleaseHard    ReleaseType = "Hard"
	ReleaseSoft    ReleaseType = "Soft"
	ReleasePassive ReleaseType = "Passive"
)

// IsValid reports whether the release type is known
func (r ReleaseType) IsValid() bool {
	switch r {
	case ReleaseHard, ReleaseSoft, ReleasePassive:
		return true
	}
	return false
}

func (r ReleaseType) String() string {
	return string(r)
}

// ChecklistStatus tracks a release checklist from draft to submission
type ChecklistStatus string

const (
	ChecklistDraft     ChecklistStatus = "draft"
	ChecklistSubmitted ChecklistStatus = "submitted"
)

// IsValid reports whether the checklist status is known
func (s ChecklistStatus) IsValid() bool {
	return s == ChecklistDraft || s == ChecklistSubmitted
}

// VetSignOff is a veterinary attestation attached to a release checklist
type VetSignOff struct {
	Name      string    `json:"name" validate:"required"`
	Signature string    `json:"signature" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
}

// ReleaseChecklist is the pre-release assessment of an animal
type ReleaseChecklist struct {
	ID                     string          `json:"id"`
	AnimalID               string          `json:"animal_id" validate:"required"`
	ReleaseDate            time.Time       `json:"release_date" validate:"required"`
	ReleaseLocation        *Coordinate     `json:"release_location,omitempty"`
	RescueLocation         *Coordinate     `json:"rescue_location,omitempty"`
	ReleaseType            ReleaseType     `json:"release_type" validate:"required,oneof=Hard Soft Passive"`
	FitnessIndicators      []string        `json:"fitness_indicators" validate:"dive,required"`
	VetSignOff             *VetSignOff     `json:"vet_sign_off,omitempty" validate:"omitempty"`
	WithinRequiredDistance bool            `json:"within_required_distance"`
	Notes                  string          `json:"notes,omitempty"`
	Status                 ChecklistStatus `json:"status" validate:"required,oneof=draft submitted"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// HasVetSignOff reports whether a complete vet attestation is attached
func (r ReleaseChecklist) HasVetSignOff() bool {
	return r.VetSignOff != nil && r.VetSignOff.Name != "" && r.VetSignOff.Signature != ""
}

// CarerLicenceRecord is the licensing state of a single carer
type CarerLicenceRecord struct {
	ID            string            `json:"id"`
	Name          string            `json:"name" validate:"required"`
	LicenseNumber string            `json:"license_number"`
	LicenseExpiry *time.Time        `json:"license_expiry,omitempty"`
	Jurisdiction  jurisdiction.Code `json:"jurisdiction" validate:"omitempty,jurisdiction"`
	Specialties   []string          `json:"specialties"`
	Active        bool              `json:"active"`
}

// IncidentType categorises an incident report
type IncidentType string

const (
	IncidentEscape           IncidentType = "Escape"
	IncidentInjury           IncidentType = "Injury"
	IncidentDiseaseOutbreak  IncidentType = "Disease Outbreak"
	IncidentDeath            IncidentType = "Death"
	IncidentEquipmentFailure IncidentType = "Equipment Failure"
	IncidentMedicationError  IncidentType = "Medication Error"
	IncidentPublicContact    IncidentType = "Public Contact"
	IncidentStaffInjury      IncidentType = "Staff Injury"
	IncidentOther            IncidentType = "Other"
)

// IsValid reports whether the incident type is known
func (t IncidentType) IsValid() bool {
	switch t {
	case IncidentEscape, IncidentInjury, IncidentDiseaseOutbreak, IncidentDeath,
		IncidentEquipmentFailure, IncidentMedicationError, IncidentPublicContact,
		IncidentStaffInjury, IncidentOther:
		return true
	}
	return false
}

// Severity is the urgency of an incident
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities returns all severities from least to most urgent
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Rank orders severities by urgency; unknown severities rank lowest
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// IsValid reports whether the severity is known
func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

// IncidentReport records an incident involving an animal, carer or the public
type IncidentReport struct {
	ID          string       `json:"id"`
	Type        IncidentType `json:"type" validate:"required,incident_type"`
	Severity    Severity     `json:"severity" validate:"required,severity"`
	AnimalID    string       `json:"animal_id,omitempty"`
	Description string       `json:"description"`
	ReportedTo  string       `json:"reported_to,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at" validate:"required"`
}

// IsReported reports whether the incident has been reported to an authority
func (i IncidentReport) IsReported() bool {
	return i.ReportedTo != ""
}

// AnimalStatus is the care status of a rescued animal
type AnimalStatus string

const (
	AnimalInCare          AnimalStatus = "IN_CARE"
	AnimalReadyForRelease AnimalStatus = "READY_FOR_RELEASE"
	AnimalReleased        AnimalStatus = "RELEASED"
	AnimalDeceased        AnimalStatus = "DECEASED"
	AnimalTransferred     AnimalStatus = "TRANSFERRED"
)

// IsValid reports whether the status is known
func (s AnimalStatus) IsValid() bool {
	switch s {
	case AnimalInCare, AnimalReadyForRelease, AnimalReleased, AnimalDeceased, AnimalTransferred:
		return true
	}
	return false
}

// IsTerminal reports whether the animal has left care
func (s AnimalStatus) IsTerminal() bool {
	return s == AnimalReleased || s == AnimalDeceased || s == AnimalTransferred
}

// Animal is a rescued animal tracked through care
type Animal struct {
	ID             string       `json:"id"`
	Species        string       `json:"species" validate:"required"`
	Name           string       `json:"name"`
	Status         AnimalStatus `json:"status" validate:"required,animal_status"`
	RescueLocation *Coordinate  `json:"rescue_location" validate:"required"`
	RescuedAt      time.Time    `json:"rescued_at" validate:"required"`
	OutcomeAt      *time.Time   `json:"outcome_at,omitempty"`
	CarerID        string       `json:"carer_id,omitempty"`
}
