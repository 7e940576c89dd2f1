// Package servicetest provides in-memory stand-ins for the compliance service's dependencies.
package servicetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/database"
)

// MemoryStore is an in-memory store for tests. Release checklists are stored
// without their rescue location, as in the database.
type MemoryStore struct {
	mu         sync.Mutex
	orgs       map[string]*database.Organization
	animals    map[string]map[string]compliance.Animal
	carers     map[string]map[string]compliance.CarerLicenceRecord
	hygiene    map[string][]compliance.HygieneChecklistResult
	incidents  map[string]map[string]compliance.IncidentReport
	checklists map[string]map[string]compliance.ReleaseChecklist
	failOrg    string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgs:       map[string]*database.Organization{},
		animals:    map[string]map[string]compliance.Animal{},
		carers:     map[string]map[string]compliance.CarerLicenceRecord{},
		hygiene:    map[string][]compliance.HygieneChecklistResult{},
		incidents:  map[string]map[string]compliance.IncidentReport{},
		checklists: map[string]map[string]compliance.ReleaseChecklist{},
	}
}

func copySite(c *compliance.Coordinate) *compliance.Coordinate {
	if c == nil {
		return nil
	}
	site := *c
	return &site
}

func missing(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, database.ErrNotFound)
}

func (m *MemoryStore) CreateOrganization(_ context.Context, org *database.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *org
	m.orgs[org.ID] = &copied
	return nil
}

func (m *MemoryStore) GetOrganization(_ context.Context, id string) (*database.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return nil, missing("organization", id)
	}
	copied := *org
	return &copied, nil
}

func (m *MemoryStore) ListOrganizationIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.orgs))
	for id := range m.orgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) UpdateOrganizationJurisdiction(_ context.Context, id, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return missing("organization", id)
	}
	org.Jurisdiction = code
	return nil
}

func (m *MemoryStore) CreateAnimal(_ context.Context, orgID string, a compliance.Animal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.animals[orgID] == nil {
		m.animals[orgID] = map[string]compliance.Animal{}
	}
	a.RescueLocation = copySite(a.RescueLocation)
	m.animals[orgID][a.ID] = a
	return nil
}

func (m *MemoryStore) GetAnimal(_ context.Context, orgID, id string) (compliance.Animal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.animals[orgID][id]
	if !ok {
		return compliance.Animal{}, missing("animal", id)
	}
	return a, nil
}

func (m *MemoryStore) ListAnimals(_ context.Context, orgID string) ([]compliance.Animal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []compliance.Animal{}
	for _, a := range m.animals[orgID] {
		out = append(out, a)
	}
	return out, nil
}

// UpdateAnimalStatus applies the transition only while the animal is still in status from
func (m *MemoryStore) UpdateAnimalStatus(_ context.Context, orgID, id string, from, to compliance.AnimalStatus, outcomeAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.animals[orgID][id]
	if !ok {
		return missing("animal", id)
	}
	if a.Status != from {
		return fmt.Errorf("%w: animal %s is no longer %s", compliance.ErrInvalidTransition, id, from)
	}
	a.Status = to
	a.OutcomeAt = outcomeAt
	m.animals[orgID][id] = a
	return nil
}

func (m *MemoryStore) CreateCarer(_ context.Context, orgID string, c compliance.CarerLicenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.carers[orgID] == nil {
		m.carers[orgID] = map[string]compliance.CarerLicenceRecord{}
	}
	m.carers[orgID][c.ID] = c
	return nil
}

func (m *MemoryStore) GetCarer(_ context.Context, orgID, id string) (compliance.CarerLicenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carers[orgID][id]
	if !ok {
		return compliance.CarerLicenceRecord{}, missing("carer", id)
	}
	return c, nil
}

func (m *MemoryStore) ListCarers(_ context.Context, orgID string) ([]compliance.CarerLicenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if orgID == m.failOrg {
		return nil, errors.New("connection reset")
	}
	out := []compliance.CarerLicenceRecord{}
	for _, c := range m.carers[orgID] {
		out = append(out, c)
	}
	return out, nil
}

func (m *MemoryStore) CreateHygieneLog(_ context.Context, orgID string, h compliance.HygieneChecklistResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hygiene[orgID] = append(m.hygiene[orgID], h)
	return nil
}

func (m *MemoryStore) ListHygieneLogs(_ context.Context, orgID string) ([]compliance.HygieneChecklistResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]compliance.HygieneChecklistResult{}, m.hygiene[orgID]...), nil
}

func (m *MemoryStore) CreateIncident(_ context.Context, orgID string, i compliance.IncidentReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incidents[orgID] == nil {
		m.incidents[orgID] = map[string]compliance.IncidentReport{}
	}
	m.incidents[orgID][i.ID] = i
	return nil
}

func (m *MemoryStore) ListIncidents(_ context.Context, orgID string) ([]compliance.IncidentReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []compliance.IncidentReport{}
	for _, i := range m.incidents[orgID] {
		out = append(out, i)
	}
	return out, nil
}

func (m *MemoryStore) MarkIncidentReported(_ context.Context, orgID, id, reportedTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.incidents[orgID][id]
	if !ok {
		return missing("incident", id)
	}
	i.ReportedTo = reportedTo
	m.incidents[orgID][id] = i
	return nil
}

// CreateReleaseChecklist drops the rescue location, which is not persisted
func (m *MemoryStore) CreateReleaseChecklist(_ context.Context, orgID string, c compliance.ReleaseChecklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checklists[orgID] == nil {
		m.checklists[orgID] = map[string]compliance.ReleaseChecklist{}
	}
	c.RescueLocation = nil
	c.ReleaseLocation = copySite(c.ReleaseLocation)
	m.checklists[orgID][c.ID] = c
	return nil
}

func (m *MemoryStore) GetReleaseChecklist(_ context.Context, orgID, id string) (compliance.ReleaseChecklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checklists[orgID][id]
	if !ok {
		return compliance.ReleaseChecklist{}, missing("release checklist", id)
	}
	return c, nil
}

func (m *MemoryStore) ListReleaseChecklists(_ context.Context, orgID string) ([]compliance.ReleaseChecklist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []compliance.ReleaseChecklist{}
	for _, c := range m.checklists[orgID] {
		out = append(out, c)
	}
	return out, nil
}

func (m *MemoryStore) UpdateReleaseChecklist(_ context.Context, orgID string, c compliance.ReleaseChecklist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checklists[orgID][c.ID]; !ok {
		return missing("release checklist", c.ID)
	}
	c.RescueLocation = nil
	c.ReleaseLocation = copySite(c.ReleaseLocation)
	m.checklists[orgID][c.ID] = c
	return nil
}

// AddOrganization seeds an organisation
func (m *MemoryStore) AddOrganization(id, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[id] = &database.Organization{ID: id, Name: id, Jurisdiction: code}
}

// FailReadsFor makes record listing fail for one organisation
func (m *MemoryStore) FailReadsFor(orgID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOrg = orgID
}

// ClearCarers removes every carer of an organisation
func (m *MemoryStore) ClearCarers(orgID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carers, orgID)
}

// DiscardAudit accepts and drops audit entries
type DiscardAudit struct{}

func (DiscardAudit) LogEvent(context.Context, audit.Entry) error { return nil }
