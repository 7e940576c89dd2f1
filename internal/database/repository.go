package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wildcare/compliance-engine/internal/compliance"
)

// Repository persists tenant-scoped compliance records. Every query is
// filtered by organisation.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// CreateOrganization stores a new organisation
func (r *Repository) CreateOrganization(ctx context.Context, org *Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetOrganization loads an organisation by ID
func (r *Repository) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, notFound(err, "organization", id)
	}
	return &org, nil
}

// ListOrganizationIDs returns the IDs of every organisation
func (r *Repository) ListOrganizationIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&Organization{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return ids, nil
}

// UpdateOrganizationJurisdiction sets the jurisdiction code of an organisation
func (r *Repository) UpdateOrganizationJurisdiction(ctx context.Context, id, code string) error {
	result := r.db.WithContext(ctx).Model(&Organization{}).
		Where("id = ?", id).
		Update("jurisdiction", code)
	if result.Error != nil {
		return fmt.Errorf("failed to update organization jurisdiction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("organization %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateAnimal stores a new animal
func (r *Repository) CreateAnimal(ctx context.Context, orgID string, a compliance.Animal) error {
	row := AnimalFromDomain(orgID, a)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create animal: %w", err)
	}
	return nil
}

// GetAnimal loads an animal within an organisation
func (r *Repository) GetAnimal(ctx context.Context, orgID, id string) (compliance.Animal, error) {
	var row Animal
	if err := r.db.WithContext(ctx).Where("organization_id = ? AND id = ?", orgID, id).First(&row).Error; err != nil {
		return compliance.Animal{}, notFound(err, "animal", id)
	}
	return row.ToDomain(), nil
}

// ListAnimals returns an organisation's animals, most recently rescued first
func (r *Repository) ListAnimals(ctx context.Context, orgID string) ([]compliance.Animal, error) {
	var rows []Animal
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).Order("rescued_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list animals: %w", err)
	}
	out := make([]compliance.Animal, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

// UpdateAnimalStatus records a status transition. The write only applies while
// the animal is still in status from, so concurrent transitions cannot both win.
func (r *Repository) UpdateAnimalStatus(ctx context.Context, orgID, id string, from, to compliance.AnimalStatus, outcomeAt *time.Time) error {
	result := r.db.WithContext(ctx).Model(&Animal{}).
		Where("organization_id = ? AND id = ? AND status = ?", orgID, id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"outcome_at": outcomeAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update animal status: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&Animal{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check animal: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("animal %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("%w: animal %s is no longer %s", compliance.ErrInvalidTransition, id, from)
}

// CreateCarer stores a new carer
func (r *Repository) CreateCarer(ctx context.Context, orgID string, c compliance.CarerLicenceRecord) error {
	row := CarerFromDomain(orgID, c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create carer: %w", err)
	}
	return nil
}

// GetCarer loads a carer within an organisation
func (r *Repository) GetCarer(ctx context.Context, orgID, id string) (compliance.CarerLicenceRecord, error) {
	var row Carer
	if err := r.db.WithContext(ctx).Where("organization_id = ? AND id = ?", orgID, id).First(&row).Error; err != nil {
		return compliance.CarerLicenceRecord{}, notFound(err, "carer", id)
	}
	return row.ToDomain(), nil
}

// ListCarers returns an organisation's carers ordered by name
func (r *Repository) ListCarers(ctx context.Context, orgID string) ([]compliance.CarerLicenceRecord, error) {
	var rows []Carer
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list carers: %w", err)
	}
	out := make([]compliance.CarerLicenceRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

// CreateHygieneLog stores a hygiene checklist result
func (r *Repository) CreateHygieneLog(ctx context.Context, orgID string, h compliance.HygieneChecklistResult) error {
	row := HygieneLogFromDomain(orgID, h)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create hygiene log: %w", err)
	}
	return nil
}

// ListHygieneLogs returns an organisation's hygiene logs, newest first
func (r *Repository) ListHygieneLogs(ctx context.Context, orgID string) ([]compliance.HygieneChecklistResult, error) {
	var rows []HygieneLog
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list hygiene logs: %w", err)
	}
	out := make([]compliance.HygieneChecklistResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

// CreateIncident stores an incident report
func (r *Repository) CreateIncident(ctx context.Context, orgID string, i compliance.IncidentReport) error {
	row := IncidentFromDomain(orgID, i)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// ListIncidents returns an organisation's incidents, newest first
func (r *Repository) ListIncidents(ctx context.Context, orgID string) ([]compliance.IncidentReport, error) {
	var rows []Incident
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).Order("occurred_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	out := make([]compliance.IncidentReport, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

// MarkIncidentReported records the authority an incident was reported to
func (r *Repository) MarkIncidentReported(ctx context.Context, orgID, id, reportedTo string) error {
	result := r.db.WithContext(ctx).Model(&Incident{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Update("reported_to", reportedTo)
	if result.Error != nil {
		return fmt.Errorf("failed to mark incident reported: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("incident %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateReleaseChecklist stores a new release checklist
func (r *Repository) CreateReleaseChecklist(ctx context.Context, orgID string, c compliance.ReleaseChecklist) error {
	row := ReleaseChecklistFromDomain(orgID, c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create release checklist: %w", err)
	}
	return nil
}

// GetReleaseChecklist loads a release checklist within an organisation
func (r *Repository) GetReleaseChecklist(ctx context.Context, orgID, id string) (compliance.ReleaseChecklist, error) {
	var row ReleaseChecklist
	if err := r.db.WithContext(ctx).Where("organization_id = ? AND id = ?", orgID, id).First(&row).Error; err != nil {
		return compliance.ReleaseChecklist{}, notFound(err, "release checklist", id)
	}
	return row.ToDomain(), nil
}

// ListReleaseChecklists returns an organisation's release checklists, newest first
func (r *Repository) ListReleaseChecklists(ctx context.Context, orgID string) ([]compliance.ReleaseChecklist, error) {
	var rows []ReleaseChecklist
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).Order("release_date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list release checklists: %w", err)
	}
	out := make([]compliance.ReleaseChecklist, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

// UpdateReleaseChecklist overwrites the editable fields of a release checklist
func (r *Repository) UpdateReleaseChecklist(ctx context.Context, orgID string, c compliance.ReleaseChecklist) error {
	row := ReleaseChecklistFromDomain(orgID, c)
	result := r.db.WithContext(ctx).Model(&ReleaseChecklist{}).
		Where("organization_id = ? AND id = ?", orgID, c.ID).
		Updates(map[string]interface{}{
			"release_date":             row.ReleaseDate,
			"release_lat":              row.ReleaseLat,
			"release_lng":              row.ReleaseLng,
			"release_type":             row.ReleaseType,
			"fitness_indicators":       row.FitnessIndicators,
			"vet_name":                 row.VetName,
			"vet_signature":            row.VetSignature,
			"vet_signed_at":            row.VetSignedAt,
			"within_required_distance": row.WithinRequiredDistance,
			"notes":                    row.Notes,
			"status":                   row.Status,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update release checklist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("release checklist %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// CreateAuditRecords stores a batch of audit entries
func (r *Repository) CreateAuditRecords(ctx context.Context, records []AuditRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(records, 100).Error; err != nil {
		return fmt.Errorf("failed to store audit records: %w", err)
	}
	return nil
}
