package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func tokenPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestTokenEmptyWithoutSession(t *testing.T) {
	s := NewStore(tokenPath(t))
	if tok, live := s.Token(); live {
		t.Fatalf("expected no session, got %q", tok)
	}
}

func TestSetPersistsAndReturnsToken(t *testing.T) {
	path := tokenPath(t)
	s := NewStore(path)

	err := s.Set(&oauth2.Token{AccessToken: "abc123"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if tok, live := s.Token(); !live || tok != "abc123" {
		t.Fatalf("expected live abc123, got %q live=%v", tok, live)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("token file should be 0600, got %v", info.Mode().Perm())
	}
}

func TestSetRejectsEmptyToken(t *testing.T) {
	s := NewStore(tokenPath(t))
	if err := s.Set(&oauth2.Token{}); err == nil {
		t.Fatalf("empty token must be rejected")
	}
	if err := s.Set(nil); err == nil {
		t.Fatalf("nil token must be rejected")
	}
}

func TestNewStoreReloadsFromDisk(t *testing.T) {
	path := tokenPath(t)
	first := NewStore(path)
	if err := first.Set(&oauth2.Token{AccessToken: "persisted"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewStore(path)
	if tok, live := second.Token(); !live || tok != "persisted" {
		t.Fatalf("expected session reconstructed from disk, got %q live=%v", tok, live)
	}
}

func TestClearDropsSessionAndFile(t *testing.T) {
	path := tokenPath(t)
	s := NewStore(path)
	if err := s.Set(&oauth2.Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	s.Clear()
	if _, live := s.Token(); live {
		t.Fatalf("expected session cleared")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected token file removed, stat err=%v", err)
	}
}

func TestWaitReturnsImmediatelyWhenLive(t *testing.T) {
	s := NewStore(tokenPath(t))
	if err := s.Set(&oauth2.Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	tok, err := s.Wait(ctx)
	if err != nil || tok != "abc" {
		t.Fatalf("expected immediate token, got %q err=%v", tok, err)
	}
}

func TestWaitWakesOnSet(t *testing.T) {
	s := NewStore(tokenPath(t))

	done := make(chan string, 1)
	go func() {
		tok, err := s.Wait(context.Background())
		if err != nil {
			done <- "error: " + err.Error()
			return
		}
		done <- tok
	}()

	// Give the waiter time to register before restoring the session.
	time.Sleep(50 * time.Millisecond)
	if err := s.Set(&oauth2.Token{AccessToken: "late"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case tok := <-done:
		if tok != "late" {
			t.Fatalf("expected late token, got %q", tok)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("waiter never woke after Set")
	}
}

func TestWaitHonoursCancellation(t *testing.T) {
	s := NewStore(tokenPath(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Wait(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Wait did not return after cancellation")
	}
}

func TestTokenSourceRequiresLiveSession(t *testing.T) {
	s := NewStore(tokenPath(t))
	if _, err := s.TokenSource().Token(); err == nil {
		t.Fatalf("expected error without session")
	}

	if err := s.Set(&oauth2.Token{AccessToken: "abc"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	tok, err := s.TokenSource().Token()
	if err != nil || tok.AccessToken != "abc" {
		t.Fatalf("expected live token, got %+v err=%v", tok, err)
	}
}
