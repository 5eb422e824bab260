package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Message is one inbound SMS. Transient: it exists for the duration of
// one task iteration and is never queued or retried.
type Message struct {
	ID        int64
	Sender    string
	Body      string
	Timestamp string
}

// Source yields inbound messages newer than sinceID in arrival order.
type Source interface {
	Poll(ctx context.Context, sinceID int64) ([]Message, error)
}

// commandRunner is the slice of host.Runner this package needs.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// TermuxSMSSource polls the inbox through termux-sms-list. The daemon
// has no broadcast receiver, so polling is the subscription mechanism.
type TermuxSMSSource struct {
	runner commandRunner
	limit  int
}

func NewTermuxSMSSource(runner commandRunner) *TermuxSMSSource {
	return &TermuxSMSSource{runner: runner, limit: 25}
}

func (s *TermuxSMSSource) Poll(ctx context.Context, sinceID int64) ([]Message, error) {
	out, err := s.runner.Run(ctx, "termux-sms-list",
		"-t", "inbox",
		"-l", strconv.Itoa(s.limit),
	)
	if err != nil {
		return nil, fmt.Errorf("termux-sms-list failed: %w", err)
	}

	var entries []struct {
		ID       int64  `json:"_id"`
		Number   string `json:"number"`
		Body     string `json:"body"`
		Received string `json:"received"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, fmt.Errorf("unexpected sms list output: %w", err)
	}

	var fresh []Message
	for _, e := range entries {
		if e.ID <= sinceID {
			continue
		}
		fresh = append(fresh, Message{
			ID:        e.ID,
			Sender:    e.Number,
			Body:      e.Body,
			Timestamp: e.Received,
		})
	}
	return fresh, nil
}
