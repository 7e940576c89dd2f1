package database

import (
	"time"

	"github.com/lib/pq"

	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

// Organization is a tenant; every other record belongs to exactly one
type Organization struct {
	ID           string    `json:"id" gorm:"primarykey"`
	Name         string    `json:"name" gorm:"not null"`
	Jurisdiction string    `json:"jurisdiction"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Animal is the stored form of compliance.Animal
type Animal struct {
	ID             string     `json:"id" gorm:"primarykey"`
	OrganizationID string     `json:"organization_id" gorm:"not null;index"`
	Species        string     `json:"species" gorm:"not null"`
	Name           string     `json:"name"`
	Status         string     `json:"status" gorm:"not null;index"`
	RescueLat      *float64   `json:"rescue_lat"`
	RescueLng      *float64   `json:"rescue_lng"`
	RescuedAt      time.Time  `json:"rescued_at" gorm:"not null"`
	OutcomeAt      *time.Time `json:"outcome_at"`
	CarerID        string     `json:"carer_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Carer is the stored form of compliance.CarerLicenceRecord
type Carer struct {
	ID             string         `json:"id" gorm:"primarykey"`
	OrganizationID string         `json:"organization_id" gorm:"not null;index"`
	Name           string         `json:"name" gorm:"not null"`
	LicenseNumber  string         `json:"license_number"`
	LicenseExpiry  *time.Time     `json:"license_expiry"`
	Jurisdiction   string         `json:"jurisdiction"`
	Specialties    pq.StringArray `json:"specialties" gorm:"type:text[]"`
	Active         bool           `json:"active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HygieneLog is the stored form of compliance.HygieneChecklistResult
type HygieneLog struct {
	ID                      string    `json:"id" gorm:"primarykey"`
	OrganizationID          string    `json:"organization_id" gorm:"not null;index"`
	CarerID                 string    `json:"carer_id"`
	Date                    time.Time `json:"date" gorm:"not null"`
	EnclosureCleaned        bool      `json:"enclosure_cleaned"`
	PPEUsed                 bool      `json:"ppe_used" gorm:"column:ppe_used"`
	HandwashAvailable       bool      `json:"handwash_available"`
	FeedingBowlsDisinfected bool      `json:"feeding_bowls_disinfected"`
	QuarantineSignage       bool      `json:"quarantine_signage"`
	Notes                   string    `json:"notes"`
	CreatedAt               time.Time `json:"created_at"`
}

// Incident is the stored form of compliance.IncidentReport
type Incident struct {
	ID             string    `json:"id" gorm:"primarykey"`
	OrganizationID string    `json:"organization_id" gorm:"not null;index"`
	Type           string    `json:"type" gorm:"not null"`
	Severity       string    `json:"severity" gorm:"not null"`
	AnimalID       string    `json:"animal_id"`
	Description    string    `json:"description"`
	ReportedTo     string    `json:"reported_to"`
	OccurredAt     time.Time `json:"occurred_at" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ReleaseChecklist is the stored form of compliance.ReleaseChecklist. The
// rescue coordinate is read from the referenced animal.
type ReleaseChecklist struct {
	ID                     string         `json:"id" gorm:"primarykey"`
	OrganizationID         string         `json:"organization_id" gorm:"not null;index"`
	AnimalID               string         `json:"animal_id" gorm:"not null;index"`
	ReleaseDate            time.Time      `json:"release_date" gorm:"not null"`
	ReleaseLat             *float64       `json:"release_lat"`
	ReleaseLng             *float64       `json:"release_lng"`
	ReleaseType            string         `json:"release_type" gorm:"not null"`
	FitnessIndicators      pq.StringArray `json:"fitness_indicators" gorm:"type:text[]"`
	VetName                string         `json:"vet_name"`
	VetSignature           string         `json:"vet_signature"`
	VetSignedAt            *time.Time     `json:"vet_signed_at"`
	WithinRequiredDistance bool           `json:"within_required_distance"`
	Notes                  string         `json:"notes"`
	Status                 string         `json:"status" gorm:"not null"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// AuditRecord is a persisted audit trail entry
type AuditRecord struct {
	ID             string    `json:"id" gorm:"primarykey"`
	OrganizationID string    `json:"organization_id" gorm:"index"`
	EventType      string    `json:"event_type" gorm:"not null"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	Action         string    `json:"action"`
	ActorID        string    `json:"actor_id"`
	Details        string    `json:"details" gorm:"type:jsonb"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// siteFromColumns rebuilds a coordinate stored as a nullable lat/lng pair
func siteFromColumns(lat, lng *float64) *compliance.Coordinate {
	if lat == nil || lng == nil {
		return nil
	}
	return &compliance.Coordinate{Lat: *lat, Lng: *lng}
}

func siteColumns(c *compliance.Coordinate) (lat, lng *float64) {
	if c == nil {
		return nil, nil
	}
	la, ln := c.Lat, c.Lng
	return &la, &ln
}

func (a Animal) ToDomain() compliance.Animal {
	return compliance.Animal{
		ID:             a.ID,
		Species:        a.Species,
		Name:           a.Name,
		Status:         compliance.AnimalStatus(a.Status),
		RescueLocation: siteFromColumns(a.RescueLat, a.RescueLng),
		RescuedAt:      a.RescuedAt,
		OutcomeAt:      a.OutcomeAt,
		CarerID:        a.CarerID,
	}
}

func AnimalFromDomain(orgID string, a compliance.Animal) Animal {
	lat, lng := siteColumns(a.RescueLocation)
	return Animal{
		ID:             a.ID,
		OrganizationID: orgID,
		Species:        a.Species,
		Name:           a.Name,
		Status:         string(a.Status),
		RescueLat:      lat,
		RescueLng:      lng,
		RescuedAt:      a.RescuedAt,
		OutcomeAt:      a.OutcomeAt,
		CarerID:        a.CarerID,
	}
}

func (c Carer) ToDomain() compliance.CarerLicenceRecord {
	return compliance.CarerLicenceRecord{
		ID:            c.ID,
		Name:          c.Name,
		LicenseNumber: c.LicenseNumber,
		LicenseExpiry: c.LicenseExpiry,
		Jurisdiction:  jurisdiction.Code(c.Jurisdiction),
		Specialties:   []string(c.Specialties),
		Active:        c.Active,
	}
}

func CarerFromDomain(orgID string, c compliance.CarerLicenceRecord) Carer {
	return Carer{
		ID:             c.ID,
		OrganizationID: orgID,
		Name:           c.Name,
		LicenseNumber:  c.LicenseNumber,
		LicenseExpiry:  c.LicenseExpiry,
		Jurisdiction:   string(c.Jurisdiction),
		Specialties:    pq.StringArray(c.Specialties),
		Active:         c.Active,
	}
}

func (h HygieneLog) ToDomain() compliance.HygieneChecklistResult {
	return compliance.HygieneChecklistResult{
		ID:                      h.ID,
		CarerID:                 h.CarerID,
		Date:                    h.Date,
		EnclosureCleaned:        h.EnclosureCleaned,
		PPEUsed:                 h.PPEUsed,
		HandwashAvailable:       h.HandwashAvailable,
		FeedingBowlsDisinfected: h.FeedingBowlsDisinfected,
		QuarantineSignage:       h.QuarantineSignage,
		Notes:                   h.Notes,
	}
}

func HygieneLogFromDomain(orgID string, h compliance.HygieneChecklistResult) HygieneLog {
	return HygieneLog{
		ID:                      h.ID,
		OrganizationID:          orgID,
		CarerID:                 h.CarerID,
		Date:                    h.Date,
		EnclosureCleaned:        h.EnclosureCleaned,
		PPEUsed:                 h.PPEUsed,
		HandwashAvailable:       h.HandwashAvailable,
		FeedingBowlsDisinfected: h.FeedingBowlsDisinfected,
		QuarantineSignage:       h.QuarantineSignage,
		Notes:                   h.Notes,
	}
}

func (i Incident) ToDomain() compliance.IncidentReport {
	return compliance.IncidentReport{
		ID:          i.ID,
		Type:        compliance.IncidentType(i.Type),
		Severity:    compliance.Severity(i.Severity),
		AnimalID:    i.AnimalID,
		Description: i.Description,
		ReportedTo:  i.ReportedTo,
		OccurredAt:  i.OccurredAt,
	}
}

func IncidentFromDomain(orgID string, i compliance.IncidentReport) Incident {
	return Incident{
		ID:             i.ID,
		OrganizationID: orgID,
		Type:           string(i.Type),
		Severity:       string(i.Severity),
		AnimalID:       i.AnimalID,
		Description:    i.Description,
		ReportedTo:     i.ReportedTo,
		OccurredAt:     i.OccurredAt,
	}
}

func (r ReleaseChecklist) ToDomain() compliance.ReleaseChecklist {
	out := compliance.ReleaseChecklist{
		ID:                     r.ID,
		AnimalID:               r.AnimalID,
		ReleaseDate:            r.ReleaseDate,
		ReleaseLocation:        siteFromColumns(r.ReleaseLat, r.ReleaseLng),
		ReleaseType:            compliance.ReleaseType(r.ReleaseType),
		FitnessIndicators:      []string(r.FitnessIndicators),
		WithinRequiredDistance: r.WithinRequiredDistance,
		Notes:                  r.Notes,
		Status:                 compliance.ChecklistStatus(r.Status),
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
	if r.VetName != "" || r.VetSignature != "" {
		signOff := &compliance.VetSignOff{Name: r.VetName, Signature: r.VetSignature}
		if r.VetSignedAt != nil {
			signOff.Date = *r.VetSignedAt
		}
		out.VetSignOff = signOff
	}
	return out
}

func ReleaseChecklistFromDomain(orgID string, r compliance.ReleaseChecklist) ReleaseChecklist {
	lat, lng := siteColumns(r.ReleaseLocation)
	out := ReleaseChecklist{
		ID:                     r.ID,
		OrganizationID:         orgID,
		AnimalID:               r.AnimalID,
		ReleaseDate:            r.ReleaseDate,
		ReleaseLat:             lat,
		ReleaseLng:             lng,
		ReleaseType:            string(r.ReleaseType),
		FitnessIndicators:      pq.StringArray(r.FitnessIndicators),
		WithinRequiredDistance: r.WithinRequiredDistance,
		Notes:                  r.Notes,
		Status:                 string(r.Status),
	}
	if r.VetSignOff != nil {
		out.VetName = r.VetSignOff.Name
		out.VetSignature = r.VetSignOff.Signature
		if !r.VetSignOff.Date.IsZero() {
			signed := r.VetSignOff.Date
			out.VetSignedAt = &signed
		}
	}
	return out
}
