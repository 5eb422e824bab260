package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/google/uuid"

	"github.com/pmos-ai/pmosd/pkg/backend"
	"github.com/pmos-ai/pmosd/pkg/config"
	"github.com/pmos-ai/pmosd/pkg/health"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Forwarder is the slice of the backend client the task uses.
type Forwarder interface {
	ParseSMS(ctx context.Context, payload backend.SMSPayload) (bool, string, error)
	SyncSteps(ctx context.Context, payload backend.StepsPayload) error
}

// Credentials reconstructs the session for background delivery.
type Credentials interface {
	Token() (string, bool)
	Wait(ctx context.Context) (string, error)
}

// Task is the host-level background job: it runs for the process
// lifetime, independent of any foreground surface. Two schedules share
// the task without blocking each other: the SMS poll loop and the
// periodic step-telemetry flush.
type Task struct {
	cfg     config.IngestionConfig
	source  Source
	client  Forwarder
	creds   Credentials
	tracker *health.Tracker

	lastID int64
	primed bool
}

func NewTask(cfg config.IngestionConfig, source Source, client Forwarder, creds Credentials, tracker *health.Tracker) *Task {
	return &Task{
		cfg:     cfg,
		source:  source,
		client:  client,
		creds:   creds,
		tracker: tracker,
	}
}

// Run blocks until ctx is cancelled.
func (t *Task) Run(ctx context.Context) {
	logger.InfoC("ingest", "Background ingestion task started")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		t.smsLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		t.stepsLoop(ctx)
	}()
	wg.Wait()

	logger.InfoC("ingest", "Background ingestion task stopped")
}

func (t *Task) smsLoop(ctx context.Context) {
	interval := time.Duration(t.cfg.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.pollOnce(ctx)
		}
	}
}

func (t *Task) pollOnce(ctx context.Context) {
	messages, err := t.source.Poll(ctx, t.lastID)
	if err != nil {
		logger.WarnCF("ingest", "SMS poll failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if !t.primed {
		// First poll only establishes the high-water mark; the backlog
		// predates this process and is not ours to forward.
		for _, m := range messages {
			if m.ID > t.lastID {
				t.lastID = m.ID
			}
		}
		t.primed = true
		return
	}

	for _, m := range messages {
		if m.ID > t.lastID {
			t.lastID = m.ID
		}
		t.handleMessage(ctx, m)
	}
}

// handleMessage forwards one message at most once. Any failure past the
// pre-filter drops the message with a log line; there is no queue and no
// retry, and no user-facing channel to surface the drop to.
func (t *Task) handleMessage(ctx context.Context, m Message) {
	correlationID := uuid.NewString()

	if !PreFilterSMS(m.Body) {
		logger.DebugCF("ingest", "SMS rejected by pre-filter", map[string]interface{}{
			"correlation_id": correlationID,
		})
		return
	}

	logger.InfoCF("ingest", "SMS passed pre-filter, forwarding", map[string]interface{}{
		"correlation_id": correlationID,
		"sender":         m.Sender,
	})

	// Block until the session is reconstructed. Deliberately unbounded:
	// if no session ever restores, ctx cancellation is the only way out
	// and the message is dropped.
	if _, err := t.creds.Wait(ctx); err != nil {
		logger.WarnCF("ingest", "No session in background, dropping message", map[string]interface{}{
			"correlation_id": correlationID,
		})
		return
	}

	saved, message, err := t.client.ParseSMS(ctx, backend.SMSPayload{
		Sender:    m.Sender,
		Body:      m.Body,
		Timestamp: m.Timestamp,
	})
	if err != nil {
		logger.WarnCF("ingest", "Failed to forward SMS, dropping", map[string]interface{}{
			"correlation_id": correlationID,
			"error":          err.Error(),
		})
		return
	}
	if saved {
		logger.InfoCF("ingest", "SMS transaction saved", map[string]interface{}{
			"correlation_id": correlationID,
			"message":        message,
		})
	} else {
		logger.InfoCF("ingest", "SMS not a transaction", map[string]interface{}{
			"correlation_id": correlationID,
			"message":        message,
		})
	}
}

func (t *Task) stepsLoop(ctx context.Context) {
	if t.tracker == nil {
		return
	}

	cron := t.cfg.StepsCron
	if cron == "" {
		cron = "*/15 * * * *"
	}
	checker := gronx.New()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due, err := checker.IsDue(cron, time.Now())
			if err != nil {
				logger.ErrorCF("ingest", "Invalid steps cron expression", map[string]interface{}{
					"cron":  cron,
					"error": err.Error(),
				})
				return
			}
			if due {
				t.flushSteps(ctx)
			}
		}
	}
}

// flushSteps never waits for credentials: unlike a transaction SMS, a
// missed telemetry tick has no value later.
func (t *Task) flushSteps(ctx context.Context) {
	if _, live := t.creds.Token(); !live {
		logger.DebugC("ingest", "Skipping steps flush, no live session")
		return
	}

	snapshot, err := t.tracker.Record(ctx)
	if err != nil {
		logger.WarnCF("ingest", "Failed to read step counter", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	err = t.client.SyncSteps(ctx, backend.StepsPayload{
		Date:       snapshot.Date,
		Steps:      snapshot.Steps,
		HourlyData: snapshot.Hourly,
	})
	if err != nil {
		logger.WarnCF("ingest", "Steps flush failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	logger.InfoCF("ingest", "Synced steps to backend", map[string]interface{}{
		"steps": snapshot.Steps,
	})
}
