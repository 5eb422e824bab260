// Package bridge delegates utterances the classifier could not resolve
// to the remote reasoning backend, consuming its server-sent event
// stream and executing any device action the backend requests.
package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmos-ai/pmosd/pkg/backend"
	"github.com/pmos-ai/pmosd/pkg/config"
	"github.com/pmos-ai/pmosd/pkg/intent"
	"github.com/pmos-ai/pmosd/pkg/logger"
)

// streamState tracks the consumer through its lifecycle:
// IDLE -> STREAMING -> {ACTION_RECEIVED | RESPONSE_RECEIVED | ERRORED} -> CLOSED.
type streamState int

const (
	stateIdle streamState = iota
	stateStreaming
	stateActionReceived
	stateResponseReceived
	stateErrored
	stateClosed
)

type queryRequest struct {
	Query     string `json:"query"`
	Timestamp string `json:"timestamp"`
}

// Bridge opens one event stream per delegated utterance. Closing the
// stream is the sole cancellation primitive and is safe from every
// terminal branch; a resolved guard keeps the resolution count at
// exactly one even if events race the socket teardown.
type Bridge struct {
	url        string
	httpClient *http.Client
	creds      backend.TokenProvider
	dispatcher *Dispatcher
}

func New(cfg config.BackendConfig, creds backend.TokenProvider, dispatcher *Dispatcher) *Bridge {
	return &Bridge{
		url: strings.TrimRight(cfg.BaseURL, "/") + cfg.QueryPath,
		httpClient: &http.Client{
			// No overall timeout: the stream stays open until a terminal
			// event. ctx bounds the whole exchange instead.
		},
		creds:      creds,
		dispatcher: dispatcher,
	}
}

// stream is the per-request consumer state.
type stream struct {
	mu       sync.Mutex
	state    streamState
	resolved bool
	close    func()
	once     sync.Once
}

// resolve flips the resolved guard. Only the first caller gets true;
// everything after the terminal event is unreachable by contract.
func (s *stream) resolve(next streamState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolved {
		return false
	}
	s.resolved = true
	s.state = next
	return true
}

// shutdown closes the transport exactly once; extra calls are no-ops.
func (s *stream) shutdown() {
	s.once.Do(func() {
		if s.close != nil {
			s.close()
		}
	})
	s.mu.Lock()
	s.state = stateClosed
	s.mu.Unlock()
}

// Stream sends the utterance to the backend and blocks until the first
// terminal event, returning exactly one result.
func (b *Bridge) Stream(ctx context.Context, query string) intent.Result {
	correlationID := uuid.NewString()
	logger.InfoCF("bridge", "Delegating utterance to backend", map[string]interface{}{
		"correlation_id": correlationID,
	})

	s := &stream{state: stateIdle}

	body, err := json.Marshal(queryRequest{
		Query:     query,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return connectionFailed("Unable to reach server.")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return connectionFailed("Unable to reach server.")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Request-ID", correlationID)
	// An empty bearer is permitted: the backend treats the request as
	// unauthenticated.
	token, _ := b.creds.Token()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		logger.ErrorCF("bridge", "Failed to open event stream", map[string]interface{}{
			"correlation_id": correlationID,
			"error":          err.Error(),
		})
		s.resolve(stateErrored)
		return connectionFailed("Unable to reach server.")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		logger.ErrorCF("bridge", "Event stream rejected", map[string]interface{}{
			"correlation_id": correlationID,
			"status":         resp.StatusCode,
		})
		s.resolve(stateErrored)
		return connectionFailed("Unable to reach server.")
	}

	s.mu.Lock()
	s.state = stateStreaming
	s.close = func() { resp.Body.Close() }
	s.mu.Unlock()
	defer s.shutdown()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var eventData bytes.Buffer

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			data := strings.TrimSpace(eventData.String())
			eventData.Reset()
			if data == "" {
				continue
			}
			if result, terminal := b.handleEvent(ctx, s, data); terminal {
				return result
			}
			continue
		}
		if strings.HasPrefix(line, "data:") {
			eventData.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			eventData.WriteByte('\n')
		}
		// event:/id:/retry: lines and comments carry nothing for this
		// protocol; the discriminator lives in the JSON payload.
	}

	// Flush a final event the server sent without a trailing blank line.
	if data := strings.TrimSpace(eventData.String()); data != "" {
		if result, terminal := b.handleEvent(ctx, s, data); terminal {
			return result
		}
	}

	if err := scanner.Err(); err != nil {
		logger.ErrorCF("bridge", "Event stream failed mid-flight", map[string]interface{}{
			"correlation_id": correlationID,
			"error":          err.Error(),
		})
	} else {
		logger.WarnCF("bridge", "Event stream ended without terminal event", map[string]interface{}{
			"correlation_id": correlationID,
		})
	}
	s.resolve(stateErrored)
	return connectionFailed("Connection failed.")
}

// handleEvent decodes one event and, for a terminal one, wins the
// resolved guard before acting on it.
func (b *Bridge) handleEvent(ctx context.Context, s *stream, data string) (intent.Result, bool) {
	var event streamEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		logger.WarnCF("bridge", "Skipping undecodable stream event", map[string]interface{}{
			"error": err.Error(),
		})
		return intent.Result{}, false
	}

	switch event.Type {
	case eventStatus, eventTool:
		// Progress chatter; nothing for this consumer.
		return intent.Result{}, false

	case eventClientAction:
		if !s.resolve(stateActionReceived) {
			return intent.Result{}, false
		}
		s.shutdown()
		return b.dispatcher.Handle(ctx, ParseClientAction(event.Action), event.Data), true

	case eventResponse:
		if !s.resolve(stateResponseReceived) {
			return intent.Result{}, false
		}
		s.shutdown()
		return intent.Result{
			Success:       true,
			Message:       event.Response,
			ShouldDismiss: false,
			Type:          intent.ActionAI,
		}, true
	}

	return intent.Result{}, false
}

func connectionFailed(message string) intent.Result {
	return intent.Result{
		Success:       false,
		Message:       message,
		ShouldDismiss: false,
		Type:          intent.ActionAI,
	}
}
