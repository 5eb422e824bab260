// Package resolve provides fuzzy name lookup over preloaded device
// snapshots: the address book and the installed-app list.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pmos-ai/pmosd/pkg/logger"
)

// Contact is one address-book entry. PhoneNumbers preserves the order
// the device reports; the first number is the one dialed.
type Contact struct {
	Name         string   `json:"name"`
	PhoneNumbers []string `json:"phone_numbers"`
}

// ContactSource loads the address-book snapshot. Production uses
// termux-contact-list; tests inject fixtures.
type ContactSource interface {
	Contacts(ctx context.Context) ([]Contact, error)
}

// ContactMatch is a successful resolution.
type ContactMatch struct {
	Name  string
	Phone string
}

// ContactResolver caches a wholesale address-book snapshot and resolves
// spoken names against it. The cache is rebuilt in full on Preload, never
// partially mutated, so concurrent readers at worst see the previous
// snapshot.
type ContactResolver struct {
	source ContactSource
	mu     sync.RWMutex
	cache  []Contact
	loaded bool
}

func NewContactResolver(source ContactSource) *ContactResolver {
	return &ContactResolver{source: source}
}

// Preload rebuilds the cache from the source.
func (r *ContactResolver) Preload(ctx context.Context) error {
	contacts, err := r.source.Contacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	// Keep only entries with a name and at least one number.
	valid := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Name != "" && len(c.PhoneNumbers) > 0 {
			valid = append(valid, c)
		}
	}

	r.mu.Lock()
	r.cache = valid
	r.loaded = true
	r.mu.Unlock()

	logger.InfoCF("contacts", "Preloaded contacts", map[string]interface{}{
		"count": len(valid),
	})
	return nil
}

// Invalidate drops the cache; the next Resolve reloads it.
func (r *ContactResolver) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.loaded = false
	r.mu.Unlock()
}

// Resolve finds the contact best matching query. Priority is exact,
// then starts-with, then contains; contains is skipped for queries of
// two characters or fewer. Among multiple contains matches the first in
// snapshot order wins, a known non-determinism.
func (r *ContactResolver) Resolve(ctx context.Context, query string) (ContactMatch, bool) {
	cleanQuery := strings.ToLower(strings.TrimSpace(query))
	if cleanQuery == "" {
		return ContactMatch{}, false
	}

	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if !loaded {
		if err := r.Preload(ctx); err != nil {
			logger.WarnCF("contacts", "Lazy preload failed", map[string]interface{}{
				"error": err.Error(),
			})
			return ContactMatch{}, false
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	match := findByLabel(len(r.cache), cleanQuery, func(i int) string {
		return r.cache[i].Name
	})
	if match < 0 {
		return ContactMatch{}, false
	}

	c := r.cache[match]
	return ContactMatch{Name: c.Name, Phone: sanitizeNumber(c.PhoneNumbers[0])}, true
}

// findByLabel runs the shared three-tier match over n labels and returns
// the winning index, or -1.
func findByLabel(n int, cleanQuery string, label func(int) string) int {
	for i := 0; i < n; i++ {
		if strings.ToLower(label(i)) == cleanQuery {
			return i
		}
	}
	for i := 0; i < n; i++ {
		if strings.HasPrefix(strings.ToLower(label(i)), cleanQuery) {
			return i
		}
	}
	if len(cleanQuery) > 2 {
		for i := 0; i < n; i++ {
			if strings.Contains(strings.ToLower(label(i)), cleanQuery) {
				return i
			}
		}
	}
	return -1
}

// sanitizeNumber strips formatting so the number is safe to hand to the
// dialer.
func sanitizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, number)
}
