package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/events"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

// StartReleaseChecklist opens a draft release assessment for an animal still in care.
// The rescue location is taken from the animal record.
func (s *Service) StartReleaseChecklist(ctx context.Context, orgID string, c compliance.ReleaseChecklist) (compliance.ReleaseChecklist, error) {
	animal, err := s.store.GetAnimal(ctx, orgID, c.AnimalID)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}
	if !compliance.CanStartReleaseAssessment(animal.Status) {
		return compliance.ReleaseChecklist{}, fmt.Errorf("%w: animal %s is %s", compliance.ErrAnimalNotEligible, animal.ID, animal.Status)
	}

	cfg, err := s.JurisdictionConfig(ctx, orgID)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}

	now := s.now()
	c.ID = newID()
	c.Status = compliance.ChecklistDraft
	c.RescueLocation = animal.RescueLocation
	c.CreatedAt = now
	c.UpdatedAt = now

	c, err = compliance.NewReleaseChecklist(c)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}
	c.WithinRequiredDistance = s.checkDistance(c, cfg).Compliant

	if err := s.store.CreateReleaseChecklist(ctx, orgID, c); err != nil {
		return compliance.ReleaseChecklist{}, err
	}

	s.invalidate(ctx, orgID)
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      "release_checklist.created",
		EntityType:     "release_checklist",
		EntityID:       c.ID,
		Action:         "create",
		Details:        map[string]interface{}{"animal_id": c.AnimalID},
	})
	return c, nil
}

// GetReleaseChecklist loads a checklist with its rescue location filled from the animal
func (s *Service) GetReleaseChecklist(ctx context.Context, orgID, id string) (compliance.ReleaseChecklist, error) {
	c, err := s.store.GetReleaseChecklist(ctx, orgID, id)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}
	animal, err := s.store.GetAnimal(ctx, orgID, c.AnimalID)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}
	c.RescueLocation = animal.RescueLocation
	return c, nil
}

// ListReleaseChecklists returns an organisation's release checklists with
// rescue locations filled from their animals
func (s *Service) ListReleaseChecklists(ctx context.Context, orgID string) ([]compliance.ReleaseChecklist, error) {
	checklists, err := s.store.ListReleaseChecklists(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(checklists) == 0 {
		return checklists, nil
	}

	animals, err := s.store.ListAnimals(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sites := make(map[string]*compliance.Coordinate, len(animals))
	for _, a := range animals {
		sites[a.ID] = a.RescueLocation
	}
	for i := range checklists {
		checklists[i].RescueLocation = sites[checklists[i].AnimalID]
	}
	return checklists, nil
}

// UpdateReleaseChecklist replaces the editable fields of a draft checklist
func (s *Service) UpdateReleaseChecklist(ctx context.Context, orgID, id string, update compliance.ReleaseChecklist) (compliance.ReleaseChecklist, error) {
	existing, animal, err := s.editableChecklist(ctx, orgID, id)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}

	cfg, err := s.JurisdictionConfig(ctx, orgID)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}

	existing.ReleaseDate = update.ReleaseDate
	existing.ReleaseLocation = update.ReleaseLocation
	existing.ReleaseType = update.ReleaseType
	existing.FitnessIndicators = update.FitnessIndicators
	existing.VetSignOff = update.VetSignOff
	existing.Notes = update.Notes
	existing.RescueLocation = animal.RescueLocation
	existing.UpdatedAt = s.now()

	existing, err = compliance.NewReleaseChecklist(existing)
	if err != nil {
		return compliance.ReleaseChecklist{}, err
	}
	existing.WithinRequiredDistance = s.checkDistance(existing, cfg).Compliant

	if err := s.store.UpdateReleaseChecklist(ctx, orgID, existing); err != nil {
		return compliance.ReleaseChecklist{}, err
	}

	s.invalidate(ctx, orgID)
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      "release_checklist.updated",
		EntityType:     "release_checklist",
		EntityID:       id,
		Action:         "update",
	})
	return existing, nil
}

// SubmitReleaseChecklist finalises a complete draft checklist. Both sites must be
// recorded; a distance under the minimum is reported in the verdict but does
// not block submission.
func (s *Service) SubmitReleaseChecklist(ctx context.Context, orgID, id string) (compliance.ChecklistVerdict, error) {
	existing, _, err := s.editableChecklist(ctx, orgID, id)
	if err != nil {
		return compliance.ChecklistVerdict{}, err
	}

	cfg, err := s.JurisdictionConfig(ctx, orgID)
	if err != nil {
		return compliance.ChecklistVerdict{}, err
	}

	verdict := s.evaluate(existing, cfg)
	if !verdict.Complete {
		return verdict, fmt.Errorf("%w: checklist %s", ErrChecklistIncomplete, id)
	}
	if existing.ReleaseLocation == nil {
		return verdict, fmt.Errorf("%w: checklist %s has no release location", ErrChecklistIncomplete, id)
	}
	if existing.RescueLocation == nil {
		return verdict, fmt.Errorf("%w: animal %s has no rescue location", ErrChecklistIncomplete, existing.AnimalID)
	}

	existing.Status = compliance.ChecklistSubmitted
	existing.WithinRequiredDistance = verdict.Distance.Compliant
	existing.UpdatedAt = s.now()
	if err := s.store.UpdateReleaseChecklist(ctx, orgID, existing); err != nil {
		return compliance.ChecklistVerdict{}, err
	}

	payload := map[string]interface{}{
		"checklist_id": id,
		"animal_id":    existing.AnimalID,
		"score":        verdict.Score,
		"compliant":    verdict.Compliant,
	}
	s.invalidate(ctx, orgID)
	s.publish(ctx, events.NewEvent(events.ReleaseChecklistSubmitted, orgID, payload))
	s.logAudit(ctx, audit.Entry{
		OrganizationID: orgID,
		EventType:      events.ReleaseChecklistSubmitted,
		EntityType:     "release_checklist",
		EntityID:       id,
		Action:         "submit",
		Details:        payload,
	})

	s.logger.Info("Release checklist submitted",
		zap.String("organization_id", orgID),
		zap.String("checklist_id", id),
		zap.Int("score", verdict.Score),
		zap.Bool("compliant", verdict.Compliant))

	return verdict, nil
}

// ReleaseChecklistVerdict evaluates a stored checklist against the organisation's jurisdiction
func (s *Service) ReleaseChecklistVerdict(ctx context.Context, orgID, id string) (compliance.ChecklistVerdict, error) {
	c, err := s.GetReleaseChecklist(ctx, orgID, id)
	if err != nil {
		return compliance.ChecklistVerdict{}, err
	}
	cfg, err := s.JurisdictionConfig(ctx, orgID)
	if err != nil {
		return compliance.ChecklistVerdict{}, err
	}
	return s.evaluate(c, cfg), nil
}

// editableChecklist loads a draft checklist whose animal has not been released
func (s *Service) editableChecklist(ctx context.Context, orgID, id string) (compliance.ReleaseChecklist, compliance.Animal, error) {
	c, err := s.store.GetReleaseChecklist(ctx, orgID, id)
	if err != nil {
		return compliance.ReleaseChecklist{}, compliance.Animal{}, err
	}
	animal, err := s.store.GetAnimal(ctx, orgID, c.AnimalID)
	if err != nil {
		return compliance.ReleaseChecklist{}, compliance.Animal{}, err
	}
	if err := compliance.CheckReleaseChecklistEditable(animal); err != nil {
		return compliance.ReleaseChecklist{}, compliance.Animal{}, err
	}
	if c.Status == compliance.ChecklistSubmitted {
		return compliance.ReleaseChecklist{}, compliance.Animal{}, fmt.Errorf("%w: checklist %s has been submitted", compliance.ErrChecklistLocked, id)
	}
	c.RescueLocation = animal.RescueLocation
	return c, animal, nil
}

func (s *Service) checkDistance(c compliance.ReleaseChecklist, cfg jurisdiction.Config) compliance.DistanceCheck {
	check := compliance.CheckReleaseSites(c.RescueLocation, c.ReleaseLocation, cfg)
	s.metrics.RecordEvaluation(compliance.RuleReleaseDistance, check.Compliant)
	return check
}

func (s *Service) evaluate(c compliance.ReleaseChecklist, cfg jurisdiction.Config) compliance.ChecklistVerdict {
	verdict := compliance.EvaluateReleaseChecklist(c, cfg)
	for _, rule := range verdict.Rules {
		if rule.Applicable {
			s.metrics.RecordEvaluation(rule.Rule, rule.Passed)
		}
	}
	return verdict
}
