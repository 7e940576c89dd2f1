package service

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/audit"
	"github.com/wildcare/compliance-engine/internal/cache"
	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/events"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
	"github.com/wildcare/compliance-engine/internal/metrics"
	"github.com/wildcare/compliance-engine/internal/readiness"
	"github.com/wildcare/compliance-engine/internal/service/servicetest"
)

type memCache struct {
	mu          sync.Mutex
	reports     map[string]*readiness.Report
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{reports: map[string]*readiness.Report{}}
}

func (c *memCache) GetReport(_ context.Context, orgID string) (*readiness.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reports[orgID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return r, nil
}

func (c *memCache) SetReport(_ context.Context, orgID string, report *readiness.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[orgID] = report
	return nil
}

func (c *memCache) Invalidate(_ context.Context, orgID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, orgID)
	c.invalidated = append(c.invalidated, orgID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) LogEvent(_ context.Context, e audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

type fixture struct {
	svc       *Service
	store     *servicetest.MemoryStore
	cache     *memCache
	publisher *recordingPublisher
	audit     *recordingAudit
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store:     servicetest.NewMemoryStore(),
		cache:     newMemCache(),
		publisher: &recordingPublisher{},
		audit:     &recordingAudit{},
		now:       time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = f.withStore(f.store)
	return f
}

// withStore builds a service sharing the fixture's fakes over another store
func (f *fixture) withStore(store Store) *Service {
	return New(
		store,
		jurisdiction.NewStaticRegistry(),
		f.cache,
		f.publisher,
		f.audit,
		metrics.NewCollector(prometheus.NewRegistry()),
		zap.NewNop(),
		WithClock(func() time.Time { return f.now }),
	)
}

// racingStore runs interleave once, after an animal is read and before the
// service writes its new status
type racingStore struct {
	*servicetest.MemoryStore
	interleave func()
}

func (s *racingStore) GetAnimal(ctx context.Context, orgID, id string) (compliance.Animal, error) {
	a, err := s.MemoryStore.GetAnimal(ctx, orgID, id)
	if s.interleave != nil {
		next := s.interleave
		s.interleave = nil
		next()
	}
	return a, err
}

func (f *fixture) org(id, code string) {
	f.store.AddOrganization(id, code)
}
