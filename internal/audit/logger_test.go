package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/config"
	"github.com/wildcare/compliance-engine/internal/database"
)

type fakeStore struct {
	mu      sync.Mutex
	batches [][]database.AuditRecord
	err     error
}

func (s *fakeStore) CreateAuditRecords(_ context.Context, records []database.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	copied := make([]database.AuditRecord, len(records))
	copy(copied, records)
	s.batches = append(s.batches, copied)
	return nil
}

func (s *fakeStore) records() []database.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []database.AuditRecord
	for _, b := range s.batches {
		all = append(all, b...)
	}
	return all
}

func testConfig() config.AuditConfig {
	return config.AuditConfig{BufferSize: 10, BatchSize: 2, FlushInterval: time.Hour}
}

func TestAuditLogger(t *testing.T) {
	t.Run("Flushes On Batch Size", func(t *testing.T) {
		store := &fakeStore{}
		al := NewAuditLogger(testConfig(), store, zap.NewNop())
		require.NoError(t, al.Start(context.Background()))
		defer al.Stop(context.Background())

		ctx := WithActor(context.Background(), "user-1")
		require.NoError(t, al.LogEvent(ctx, Entry{OrganizationID: "org-1", EventType: "incident.logged", EntityID: "i-1"}))
		require.NoError(t, al.LogEvent(ctx, Entry{OrganizationID: "org-1", EventType: "incident.logged", EntityID: "i-2"}))

		require.Eventually(t, func() bool { return len(store.records()) == 2 }, time.Second, 10*time.Millisecond)

		rec := store.records()[0]
		assert.Equal(t, "user-1", rec.ActorID)
		assert.Equal(t, "{}", rec.Details)
		assert.NotEmpty(t, rec.ID)
	})

	t.Run("Stop Flushes Pending Entries", func(t *testing.T) {
		store := &fakeStore{}
		al := NewAuditLogger(testConfig(), store, zap.NewNop())
		require.NoError(t, al.Start(context.Background()))

		err := al.LogEvent(context.Background(), Entry{
			OrganizationID: "org-1",
			EventType:      "animal.status_changed",
			Details:        map[string]interface{}{"to": "RELEASED"},
		})
		require.NoError(t, err)
		require.NoError(t, al.Stop(context.Background()))

		records := store.records()
		require.Len(t, records, 1)
		var details map[string]string
		require.NoError(t, json.Unmarshal([]byte(records[0].Details), &details))
		assert.Equal(t, "RELEASED", details["to"])
	})

	t.Run("Rejects Events When Stopped", func(t *testing.T) {
		al := NewAuditLogger(testConfig(), &fakeStore{}, zap.NewNop())
		assert.Error(t, al.LogEvent(context.Background(), Entry{EventType: "x"}))
	})

	t.Run("Double Start", func(t *testing.T) {
		al := NewAuditLogger(testConfig(), &fakeStore{}, zap.NewNop())
		require.NoError(t, al.Start(context.Background()))
		defer al.Stop(context.Background())
		assert.Error(t, al.Start(context.Background()))
	})

	t.Run("Store Errors Are Logged Not Returned", func(t *testing.T) {
		store := &fakeStore{err: errors.New("db down")}
		al := NewAuditLogger(config.AuditConfig{BufferSize: 4, BatchSize: 1, FlushInterval: time.Hour}, store, zap.NewNop())
		require.NoError(t, al.Start(context.Background()))
		assert.NoError(t, al.LogEvent(context.Background(), Entry{EventType: "x"}))
		assert.NoError(t, al.Stop(context.Background()))
	})
}

func TestActorFromContext(t *testing.T) {
	assert.Empty(t, ActorFromContext(context.Background()))
	assert.Equal(t, "u", ActorFromContext(WithActor(context.Background(), "u")))
}
