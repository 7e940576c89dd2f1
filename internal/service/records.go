package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/events"
)

// CreateAnimal admits a rescued animal into care
func (s *Service) CreateAnimal(ctx context.Context, orgID string, a compliance.Animal) (compliance.Animal, error) {
	a.ID = newID()
	a.OutcomeAt = nil
	if a.RescuedAt.IsZero() {
		a.RescuedAt = s.now()
	}

	a, err := compliance.NewAnimal(a)
	if err != nil {
		return compliance.Animal{}, err
	}
	if a.Status.IsTerminal() {
		return compliance.Animal{}, fmt.Errorf("%w: new animals cannot start as %s", ErrInvalidInput, a.Status)
	}

	if err := s.store.CreateAnimal(ctx, orgID, a); err != nil {
		return compliance.Animal{}, err
	}

	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      "animal.created",
		EntityType:     "animal",
		EntityID:       a.ID,
		Action:         "create",
		Details:        map[string]interface{}{"species": a.Species, "status": a.Status},
	})
	return a, nil
}

// GetAnimal loads one animal
func (s *Service) GetAnimal(ctx context.Context, orgID, id string) (compliance.Animal, error) {
	return s.store.GetAnimal(ctx, orgID, id)
}

// ListAnimals returns an organisation's animals
func (s *Service) ListAnimals(ctx context.Context, orgID string) ([]compliance.Animal, error) {
	return s.store.ListAnimals(ctx, orgID)
}

// TransitionAnimal moves an animal to a new care status
func (s *Service) TransitionAnimal(ctx context.Context, orgID, id string, to compliance.AnimalStatus) (compliance.Animal, error) {
	if !to.IsValid() {
		return compliance.Animal{}, fmt.Errorf("%w: unknown animal status %q", ErrInvalidInput, to)
	}

	current, err := s.store.GetAnimal(ctx, orgID, id)
	if err != nil {
		return compliance.Animal{}, err
	}

	next, err := compliance.Transition(current, to, s.now())
	if err != nil {
		return compliance.Animal{}, err
	}

	if err := s.store.UpdateAnimalStatus(ctx, orgID, id, current.Status, next.Status, next.OutcomeAt); err != nil {
		return compliance.Animal{}, err
	}

	payload := map[string]interface{}{
		"animal_id": id,
		"from":      current.Status,
		"to":        next.Status,
	}
	s.publish(ctx, events.NewEvent(events.AnimalStatusChanged, orgID, payload))
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      events.AnimalStatusChanged,
		EntityType:     "animal",
		EntityID:       id,
		Action:         "update",
		Details:        payload,
	})

	s.logger.Info("Animal status changed",
		zap.String("organization_id", orgID),
		zap.String("animal_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)))

	return next, nil
}

// CreateCarer records a carer and their licence
func (s *Service) CreateCarer(ctx context.Context, orgID string, c compliance.CarerLicenceRecord) (compliance.CarerLicenceRecord, error) {
	c.ID = newID()
	c, err := compliance.NewCarerLicenceRecord(c)
	if err != nil {
		return compliance.CarerLicenceRecord{}, err
	}

	if err := s.store.CreateCarer(ctx, orgID, c); err != nil {
		return compliance.CarerLicenceRecord{}, err
	}

	s.invalidate(ctx, orgID)
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      "carer.created",
		EntityType:     "carer",
		EntityID:       c.ID,
		Action:         "create",
	})
	return c, nil
}

// ListCarers returns an organisation's carers
func (s *Service) ListCarers(ctx context.Context, orgID string) ([]compliance.CarerLicenceRecord, error) {
	return s.store.ListCarers(ctx, orgID)
}

// CarerLicenceStatus derives the current licence status of a carer
func (s *Service) CarerLicenceStatus(ctx context.Context, orgID, id string) (compliance.LicenceStatus, error) {
	carer, err := s.store.GetCarer(ctx, orgID, id)
	if err != nil {
		return compliance.LicenceStatus{}, err
	}

	status := compliance.CarerLicenceStatus(carer, s.now())
	s.metrics.RecordEvaluation("licence_expiry", status.Status == compliance.ExpiryValid)
	return status, nil
}

// RecordHygieneLog stores a hygiene checklist and returns its score
func (s *Service) RecordHygieneLog(ctx context.Context, orgID string, h compliance.HygieneChecklistResult) (compliance.HygieneScore, error) {
	h.ID = newID()
	if h.Date.IsZero() {
		h.Date = s.now()
	}

	if err := s.store.CreateHygieneLog(ctx, orgID, h); err != nil {
		return compliance.HygieneScore{}, err
	}

	score := compliance.ScoreHygieneLog(h)
	s.metrics.RecordEvaluation("hygiene", score.Status == compliance.HygieneCompliant)

	s.invalidate(ctx, orgID)
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      "hygiene_log.recorded",
		EntityType:     "hygiene_log",
		EntityID:       h.ID,
		Action:         "create",
		Details:        map[string]interface{}{"score": score.Score, "status": score.Status},
	})
	return score, nil
}

// ListHygieneLogs returns an organisation's hygiene logs
func (s *Service) ListHygieneLogs(ctx context.Context, orgID string) ([]compliance.HygieneChecklistResult, error) {
	return s.store.ListHygieneLogs(ctx, orgID)
}

// LogIncident records an incident report
func (s *Service) LogIncident(ctx context.Context, orgID string, i compliance.IncidentReport) (compliance.IncidentReport, error) {
	i.ID = newID()
	if i.OccurredAt.IsZero() {
		i.OccurredAt = s.now()
	}

	i, err := compliance.NewIncidentReport(i)
	if err != nil {
		return compliance.IncidentReport{}, err
	}

	if err := s.store.CreateIncident(ctx, orgID, i); err != nil {
		return compliance.IncidentReport{}, err
	}

	s.invalidate(ctx, orgID)
	s.publish(ctx, events.NewEvent(events.IncidentLogged, orgID, map[string]interface{}{
		"incident_id": i.ID,
		"type":        i.Type,
		"severity":    i.Severity,
		"reported":    i.IsReported(),
	}))
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      events.IncidentLogged,
		EntityType:     "incident",
		EntityID:       i.ID,
		Action:         "create",
		Details:        map[string]interface{}{"severity": i.Severity},
	})

	if i.Severity == compliance.SeverityCritical && !i.IsReported() {
		s.logger.Warn("Critical incident logged without authority report",
			zap.String("organization_id", orgID),
			zap.String("incident_id", i.ID))
	}
	return i, nil
}

// ListIncidents returns an organisation's incident reports
func (s *Service) ListIncidents(ctx context.Context, orgID string) ([]compliance.IncidentReport, error) {
	return s.store.ListIncidents(ctx, orgID)
}

// MarkIncidentReported records the authority an incident was reported to
func (s *Service) MarkIncidentReported(ctx context.Context, orgID, id, reportedTo string) error {
	reportedTo = strings.TrimSpace(reportedTo)
	if reportedTo == "" {
		return fmt.Errorf("%w: reported_to is required", ErrInvalidInput)
	}

	if err := s.store.MarkIncidentReported(ctx, orgID, id, reportedTo); err != nil {
		return err
	}

	s.invalidate(ctx, orgID)
	s.publish(ctx, events.NewEvent(events.IncidentReported, orgID, map[string]interface{}{
		"incident_id": id,
		"reported_to": reportedTo,
	}))
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      events.IncidentReported,
		EntityType:     "incident",
		EntityID:       id,
		Action:         "update",
		Details:        map[string]interface{}{"reported_to": reportedTo},
	})
	return nil
}
