package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/cache"
	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/database"
	"github.com/wildcare/compliance-engine/internal/events"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
	"github.com/wildcare/compliance-engine/internal/metrics"
	"github.com/wildcare/compliance-engine/internal/readiness"
)

var (
	ErrNotFound            = database.ErrNotFound
	ErrInvalidInput        = compliance.ErrInvalidRecord
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	ErrChecklistIncomplete = errors.New("release checklist is incomplete")
)

// Store is the persistence the service needs
type Store interface {
	CreateOrganization(ctx context.Context, org *database.Organization) error
	GetOrganization(ctx context.Context, id string) (*database.Organization, error)
	ListOrganizationIDs(ctx context.Context) ([]string, error)
	UpdateOrganizationJurisdiction(ctx context.Context, id, code string) error

	CreateAnimal(ctx context.Context, orgID string, a compliance.Animal) error
	GetAnimal(ctx context.Context, orgID, id string) (compliance.Animal, error)
	ListAnimals(ctx context.Context, orgID string) ([]compliance.Animal, error)
	UpdateAnimalStatus(ctx context.Context, orgID, id string, from, to compliance.AnimalStatus, outcomeAt *time.Time) error

	CreateCarer(ctx context.Context, orgID string, c compliance.CarerLicenceRecord) error
	GetCarer(ctx context.Context, orgID, id string) (compliance.CarerLicenceRecord, error)
	ListCarers(ctx context.Context, orgID string) ([]compliance.CarerLicenceRecord, error)

	CreateHygieneLog(ctx context.Context, orgID string, h compliance.HygieneChecklistResult) error
	ListHygieneLogs(ctx context.Context, orgID string) ([]compliance.HygieneChecklistResult, error)

	CreateIncident(ctx context.Context, orgID string, i compliance.IncidentReport) error
	ListIncidents(ctx context.Context, orgID string) ([]compliance.IncidentReport, error)
	MarkIncidentReported(ctx context.Context, orgID, id, reportedTo string) error

	CreateReleaseChecklist(ctx context.Context, orgID string, c compliance.ReleaseChecklist) error
	GetReleaseChecklist(ctx context.Context, orgID, id string) (compliance.ReleaseChecklist, error)
	ListReleaseChecklists(ctx context.Context, orgID string) ([]compliance.ReleaseChecklist, error)
	UpdateReleaseChecklist(ctx context.Context, orgID string, c compliance.ReleaseChecklist) error
}

// AuditSink receives audit entries for record mutations
type AuditSink interface {
	LogEvent(ctx context.Context, entry audit.Entry) error
}

// Service runs the compliance engine against one organisation's stored records
type Service struct {
	store     Store
	registry  jurisdiction.Registry
	cache     cache.ReportCache
	publisher events.Publisher
	audit     AuditSink
	metrics   *metrics.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// Option customises a Service
type Option func(*Service)

// WithClock replaces the wall clock, for deterministic evaluation
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a compliance service
func New(
	store Store,
	registry jurisdiction.Registry,
	reportCache cache.ReportCache,
	publisher events.Publisher,
	auditSink AuditSink,
	collector *metrics.Collector,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:     store,
		registry:  registry,
		cache:     reportCache,
		publisher: publisher,
		audit:     auditSink,
		metrics:   collector,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time
func (s *Service) Now() time.Time {
	return s.now()
}

// Registry returns the jurisdiction registry the service evaluates against
func (s *Service) Registry() jurisdiction.Registry {
	return s.registry
}

func newID() string {
	return uuid.New().String()
}

// jurisdictionFor resolves an organisation's config. The flag is false when
// the code is missing or unknown and the default applied.
func (s *Service) jurisdictionFor(org *database.Organization) (jurisdiction.Config, bool) {
	_, ok := jurisdiction.ParseCode(org.Jurisdiction)
	return s.registry.Get(org.Jurisdiction), ok
}

// JurisdictionConfig returns the config an organisation is evaluated against
func (s *Service) JurisdictionConfig(ctx context.Context, orgID string) (jurisdiction.Config, error) {
	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return jurisdiction.Config{}, err
	}
	cfg, _ := s.jurisdictionFor(org)
	return cfg, nil
}

// CreateOrganization registers a new organisation. An empty code leaves the
// jurisdiction unset.
func (s *Service) CreateOrganization(ctx context.Context, name, code string) (*database.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}

	org := &database.Organization{ID: newID(), Name: name}
	if strings.TrimSpace(code) != "" {
		parsed, ok := jurisdiction.ParseCode(code)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, code)
		}
		org.Jurisdiction = parsed.String()
	}

	if err := s.store.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Entry{
		OrganizationID: org.ID,
		EventType:      "organization.created",
		EntityType:     "organization",
		EntityID:       org.ID,
		Action:         "create",
		Details:        map[string]interface{}{"jurisdiction": org.Jurisdiction},
	})
	return org, nil
}

// GetOrganization loads an organisation
func (s *Service) GetOrganization(ctx context.Context, orgID string) (*database.Organization, error) {
	return s.store.GetOrganization(ctx, orgID)
}

// SetJurisdiction changes the jurisdiction an organisation is evaluated against
func (s *Service) SetJurisdiction(ctx context.Context, orgID, code string) (jurisdiction.Config, error) {
	parsed, ok := jurisdiction.ParseCode(code)
	if !ok {
		return jurisdiction.Config{}, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, code)
	}

	if err := s.store.UpdateOrganizationJurisdiction(ctx, orgID, parsed.String()); err != nil {
		return jurisdiction.Config{}, err
	}

	s.invalidate(ctx, orgID)
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      "organization.jurisdiction_changed",
		EntityType:     "organization",
		EntityID:       orgID,
		Action:         "update",
		Details:        map[string]interface{}{"jurisdiction": parsed.String()},
	})

	s.logger.Info("Organization jurisdiction changed",
		zap.String("organization_id", orgID),
		zap.String("jurisdiction", parsed.String()))

	return s.registry.Get(parsed.String()), nil
}

// GetReadiness returns the organisation's readiness report, served from cache when fresh
func (s *Service) GetReadiness(ctx context.Context, orgID string) (*readiness.Report, error) {
	report, err := s.cache.GetReport(ctx, orgID)
	switch {
	case err == nil:
		s.metrics.RecordCacheLookup(true)
		return report, nil
	case !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("Readiness cache unavailable",
			zap.String("organization_id", orgID),
			zap.Error(err))
	}
	s.metrics.RecordCacheLookup(false)

	return s.RefreshReadiness(ctx, orgID)
}

// RefreshReadiness recomputes the readiness report from stored records
func (s *Service) RefreshReadiness(ctx context.Context, orgID string) (*readiness.Report, error) {
	start := time.Now()

	org, err := s.store.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	cfg, configured := s.jurisdictionFor(org)

	carers, err := s.store.ListCarers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	hygieneLogs, err := s.store.ListHygieneLogs(ctx, orgID)
	if err != nil {
		return nil, err
	}
	incidents, err := s.store.ListIncidents(ctx, orgID)
	if err != nil {
		return nil, err
	}
	checklists, err := s.store.ListReleaseChecklists(ctx, orgID)
	if err != nil {
		return nil, err
	}

	report := readiness.BuildReport(readiness.Input{
		Carers:            carers,
		HygieneLogs:       hygieneLogs,
		Incidents:         incidents,
		ReleaseChecklists: checklists,
		Config:            cfg,
		Now:               s.now(),
		JurisdictionSet:   configured,
	})

	s.metrics.RecordReadiness(orgID, cfg.Code.String(), report.OverallScore, time.Since(start))

	if err := s.cache.SetReport(ctx, orgID, &report); err != nil {
		s.logger.Warn("Failed to cache readiness report",
			zap.String("organization_id", orgID),
			zap.Error(err))
	}

	s.publish(ctx, events.NewEvent(events.ReadinessComputed, orgID, map[string]interface{}{
		"jurisdiction":  cfg.Code,
		"overall_score": report.OverallScore,
		"onboarding":    report.Onboarding.CompletionPercent,
	}))

	return &report, nil
}

// SweepAll refreshes readiness for every organisation. Failures for one
// organisation do not stop the sweep.
func (s *Service) SweepAll(ctx context.Context) (succeeded, failed int, err error) {
	start := time.Now()

	ids, err := s.store.ListOrganizationIDs(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			failed += len(ids) - succeeded - failed
			break
		}
		if _, err := s.RefreshReadiness(ctx, id); err != nil {
			failed++
			s.logger.Error("Readiness sweep failed for organization",
				zap.String("organization_id", id),
				zap.Error(err))
			continue
		}
		succeeded++
	}

	s.metrics.RecordSweep(succeeded, failed, time.Since(start))
	s.logger.Info("Readiness sweep completed",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))

	return succeeded, failed, nil
}

func (s *Service) invalidate(ctx context.Context, orgID string) {
	if err := s.cache.Invalidate(ctx, orgID); err != nil {
		s.logger.Warn("Failed to invalidate readiness cache",
			zap.String("organization_id", orgID),
			zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	err := s.publisher.Publish(ctx, event)
	s.metrics.RecordEventPublished(event.Type, err)
	if err != nil {
		s.logger.Warn("Failed to publish compliance event",
			zap.String("event_type", event.Type),
			zap.String("organization_id", event.OrganizationID),
			zap.Error(err))
	}
}

func (s *Service) logAudit(ctx context.Context, entry audit.Entry) {
	if err := s.audit.LogEvent(ctx, entry); err != nil {
		s.logger.Warn("Failed to record audit entry",
			zap.String("event_type", entry.EventType),
			zap.Error(err))
	}
}
