package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/config"
	"github.com/wildcare/compliance-engine/internal/database"
)

// Entry is a single audit event
type Entry struct {
	OrganizationID string
	EventType      string
	EntityType     string
	EntityID       string
	Action         string
	Details        map[string]interface{}
}

// Store persists batches of audit records
type Store interface {
	CreateAuditRecords(ctx context.Context, records []database.AuditRecord) error
}

type actorKey struct{}

// WithActor attaches the acting user to ctx
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the acting user, if any
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// AuditLogger buffers audit entries and writes them to the store in batches
type AuditLogger struct {
	config     config.AuditConfig
	logger     *zap.Logger
	store      Store
	mu         sync.RWMutex
	running    bool
	stopChan   chan struct{}
	logChannel chan database.AuditRecord
	wg         sync.WaitGroup
}

// NewAuditLogger creates a new audit logger instance
func NewAuditLogger(cfg config.AuditConfig, store Store, logger *zap.Logger) *AuditLogger {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	return &AuditLogger{
		config:     cfg,
		logger:     logger,
		store:      store,
		stopChan:   make(chan struct{}),
		logChannel: make(chan database.AuditRecord, bufferSize),
	}
}

// Start starts the audit logger
func (al *AuditLogger) Start(ctx context.Context) error {
	al.mu.Lock()
	defer al.mu.Unlock()

	if al.running {
		return fmt.Errorf("audit logger is already running")
	}

	al.logger.Info("Starting audit logger")

	al.wg.Add(1)
	go al.logProcessingLoop(ctx)

	al.running = true
	return nil
}

// Stop stops the audit logger, flushing any buffered entries
func (al *AuditLogger) Stop(ctx context.Context) error {
	al.mu.Lock()
	if !al.running {
		al.mu.Unlock()
		return nil
	}
	al.running = false
	close(al.stopChan)
	al.mu.Unlock()

	done := make(chan struct{})
	go func() {
		al.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		al.logger.Info("Audit logger stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit logger did not stop: %w", ctx.Err())
	}
}

// LogEvent queues an audit entry. It never blocks; entries are dropped when the buffer is full.
func (al *AuditLogger) LogEvent(ctx context.Context, entry Entry) error {
	al.mu.RLock()
	defer al.mu.RUnlock()

	if !al.running {
		return fmt.Errorf("audit logger is not running")
	}

	details := entry.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	record := database.AuditRecord{
		ID:             uuid.New().String(),
		OrganizationID: entry.OrganizationID,
		EventType:      entry.EventType,
		EntityType:     entry.EntityType,
		EntityID:       entry.EntityID,
		Action:         entry.Action,
		ActorID:        ActorFromContext(ctx),
		Details:        string(encoded),
		CreatedAt:      time.Now().UTC(),
	}

	select {
	case al.logChannel <- record:
		return nil
	default:
		al.logger.Warn("Audit log channel full, dropping log",
			zap.String("event_type", entry.EventType),
			zap.String("entity_id", entry.EntityID))
		return fmt.Errorf("audit log channel full")
	}
}

func (al *AuditLogger) logProcessingLoop(ctx context.Context) {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]database.AuditRecord, 0, al.config.BatchSize)

	for {
		select {
		case record := <-al.logChannel:
			batch = append(batch, record)
			if len(batch) >= al.config.BatchSize {
				batch = al.flushBatch(batch)
			}
		case <-ticker.C:
			batch = al.flushBatch(batch)
		case <-al.stopChan:
			al.drain(batch)
			return
		case <-ctx.Done():
			al.drain(batch)
			return
		}
	}
}

func (al *AuditLogger) drain(batch []database.AuditRecord) {
	for {
		select {
		case record := <-al.logChannel:
			batch = append(batch, record)
		default:
			al.flushBatch(batch)
			return
		}
	}
}

func (al *AuditLogger) flushBatch(batch []database.AuditRecord) []database.AuditRecord {
	if len(batch) == 0 {
		return batch
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := al.store.CreateAuditRecords(ctx, batch); err != nil {
		al.logger.Error("Failed to flush audit logs",
			zap.Int("count", len(batch)),
			zap.Error(err))
	} else {
		al.logger.Debug("Flushed audit logs", zap.Int("count", len(batch)))
	}

	return batch[:0]
}
