// Package auth caches the backend session credential. The foreground
// login flow writes the token file; background consumers reconstruct the
// credential from that file with no live UI involved.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Store holds the current session token and lets background contexts
// wait for one to appear. The token file is the process-boundary
// contract: a write from the foreground becomes visible here without any
// explicit signal, via periodic re-reads.
type Store struct {
	path string

	mu      sync.RWMutex
	token   *oauth2.Token
	waiters []chan string
}

func NewStore(path string) *Store {
	s := &Store{path: path}
	s.reload()
	return s
}

// Token returns the cached bearer token, if a live session exists.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()

	if tok.Valid() {
		return tok.AccessToken, true
	}
	// The session may have been restored by another process since the
	// last read.
	s.reload()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token.Valid() {
		return s.token.AccessToken, true
	}
	return "", false
}

// Set installs a restored session and wakes every waiter.
func (s *Store) Set(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("refusing to store empty session token")
	}

	if s.path != "" {
		data, err := json.MarshalIndent(token, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return err
		}
		if err := os.WriteFile(s.path, data, 0600); err != nil {
			return fmt.Errorf("failed to persist session token: %w", err)
		}
	}

	s.mu.Lock()
	s.token = token
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- token.AccessToken
	}
	return nil
}

// Clear drops the cached session.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
	if s.path != "" {
		os.Remove(s.path)
	}
}

// Wait blocks until a session is available or ctx is cancelled. There is
// deliberately no timeout of its own: whether a stuck wait should give up
// is the caller's policy.
func (s *Store) Wait(ctx context.Context) (string, error) {
	if tok, live := s.Token(); live {
		return tok, nil
	}

	ch := make(chan string, 1)
	s.mu.Lock()
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case tok := <-ch:
			return tok, nil
		case <-ticker.C:
			// Poll the file for restores done by the foreground process.
			if tok, live := s.Token(); live {
				s.dropWaiter(ch)
				return tok, nil
			}
		case <-ctx.Done():
			s.dropWaiter(ch)
			return "", ctx.Err()
		}
	}
}

func (s *Store) dropWaiter(ch chan string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.waiters {
		if w == ch {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return
		}
	}
}

// TokenSource adapts the store to oauth2.TokenSource for clients that
// speak that interface.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeSource{store: s}
}

type storeSource struct {
	store *Store
}

func (ss storeSource) Token() (*oauth2.Token, error) {
	ss.store.mu.RLock()
	tok := ss.store.token
	ss.store.mu.RUnlock()
	if !tok.Valid() {
		return nil, fmt.Errorf("no live session")
	}
	return tok, nil
}

func (s *Store) reload() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return
	}
	if tok.AccessToken == "" {
		return
	}

	s.mu.Lock()
	s.token = &tok
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- tok.AccessToken
	}
}
