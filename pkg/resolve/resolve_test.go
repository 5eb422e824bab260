package resolve

import (
	"context"
	"errors"
	"testing"
)

type fakeContactSource struct {
	contacts []Contact
	err      error
	loads    int
}

func (f *fakeContactSource) Contacts(ctx context.Context) ([]Contact, error) {
	f.loads++
	return f.contacts, f.err
}

type fakeAppSource struct {
	apps []App
	err  error
}

func (f *fakeAppSource) Apps(ctx context.Context) ([]App, error) {
	return f.apps, f.err
}

func newTestContacts(t *testing.T) (*ContactResolver, *fakeContactSource) {
	t.Helper()
	src := &fakeContactSource{contacts: []Contact{
		{Name: "Alice", PhoneNumbers: []string{"(987) 654-3210"}},
		{Name: "Bob", PhoneNumbers: []string{"1234567890"}},
		{Name: "Salim", PhoneNumbers: []string{"5551234567"}},
		{Name: "Mom", PhoneNumbers: []string{"999 888 7777", "111 222 3333"}},
	}}
	return NewContactResolver(src), src
}

func TestContactResolveExactBeatsPrefix(t *testing.T) {
	r, _ := newTestContacts(t)
	match, ok := r.Resolve(context.Background(), "Bob")
	if !ok || match.Name != "Bob" {
		t.Fatalf("expected Bob, got %+v ok=%v", match, ok)
	}
}

func TestContactResolvePrefixBeatsContains(t *testing.T) {
	r, _ := newTestContacts(t)
	// "ali" is a prefix of Alice and a substring of Salim; prefix wins.
	match, ok := r.Resolve(context.Background(), "ali")
	if !ok || match.Name != "Alice" {
		t.Fatalf("expected Alice for query %q, got %+v ok=%v", "ali", match, ok)
	}
}

func TestContactResolveShortQuerySkipsContains(t *testing.T) {
	r, _ := newTestContacts(t)
	// "im" appears inside Salim, but two-character queries never match
	// by containment.
	if match, ok := r.Resolve(context.Background(), "im"); ok {
		t.Fatalf("expected no match for %q, got %+v", "im", match)
	}
}

func TestContactResolveSanitizesNumber(t *testing.T) {
	r, _ := newTestContacts(t)
	match, ok := r.Resolve(context.Background(), "alice")
	if !ok {
		t.Fatalf("expected match for alice")
	}
	if match.Phone != "9876543210" {
		t.Fatalf("expected sanitized number, got %q", match.Phone)
	}
}

func TestContactResolveFirstNumberWins(t *testing.T) {
	r, _ := newTestContacts(t)
	match, ok := r.Resolve(context.Background(), "mom")
	if !ok {
		t.Fatalf("expected match for mom")
	}
	if match.Phone != "9998887777" {
		t.Fatalf("expected first listed number, got %q", match.Phone)
	}
}

func TestContactResolveLazyPreloadOnce(t *testing.T) {
	r, src := newTestContacts(t)
	r.Resolve(context.Background(), "bob")
	r.Resolve(context.Background(), "alice")
	if src.loads != 1 {
		t.Fatalf("expected a single lazy preload, got %d", src.loads)
	}
}

func TestContactResolveInvalidateReloads(t *testing.T) {
	r, src := newTestContacts(t)
	r.Resolve(context.Background(), "bob")
	r.Invalidate()
	r.Resolve(context.Background(), "bob")
	if src.loads != 2 {
		t.Fatalf("expected reload after Invalidate, got %d loads", src.loads)
	}
}

func TestContactResolveSourceFailure(t *testing.T) {
	r := NewContactResolver(&fakeContactSource{err: errors.New("no termux-api")})
	if match, ok := r.Resolve(context.Background(), "bob"); ok {
		t.Fatalf("expected no match on source failure, got %+v", match)
	}
}

func TestContactPreloadDropsInvalidEntries(t *testing.T) {
	src := &fakeContactSource{contacts: []Contact{
		{Name: "", PhoneNumbers: []string{"123"}},
		{Name: "NoNumber"},
		{Name: "Valid", PhoneNumbers: []string{"456"}},
	}}
	r := NewContactResolver(src)
	if err := r.Preload(context.Background()); err != nil {
		t.Fatalf("preload: %v", err)
	}
	if _, ok := r.Resolve(context.Background(), "nonumber"); ok {
		t.Fatalf("entry without a number should be dropped")
	}
	if _, ok := r.Resolve(context.Background(), "valid"); !ok {
		t.Fatalf("valid entry should survive preload")
	}
}

func TestAppResolveStripsPunctuation(t *testing.T) {
	r := NewAppResolver(&fakeAppSource{apps: []App{
		{Label: "Spotify", Package: "com.spotify.music"},
		{Label: "Phone", Package: "com.android.dialer"},
	}})
	match, ok := r.Resolve(context.Background(), "Spotify.")
	if !ok || match.Package != "com.spotify.music" {
		t.Fatalf("expected spotify despite trailing period, got %+v ok=%v", match, ok)
	}
}

func TestAppResolveNotFound(t *testing.T) {
	r := NewAppResolver(&fakeAppSource{apps: []App{
		{Label: "Spotify", Package: "com.spotify.music"},
	}})
	if match, ok := r.Resolve(context.Background(), "netflix"); ok {
		t.Fatalf("expected no match, got %+v", match)
	}
}
