package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pmos-ai/pmosd/pkg/logger"
)

// App is one launchable application.
type App struct {
	Label   string `json:"label"`
	Package string `json:"package"`
}

// AppSource loads the installed-app snapshot.
type AppSource interface {
	Apps(ctx context.Context) ([]App, error)
}

// AppMatch is a successful resolution.
type AppMatch struct {
	Label   string
	Package string
}

// AppResolver mirrors ContactResolver for installed applications, with
// the same matching priority and cache discipline.
type AppResolver struct {
	source AppSource
	mu     sync.RWMutex
	cache  []App
	loaded bool
}

func NewAppResolver(source AppSource) *AppResolver {
	return &AppResolver{source: source}
}

func (r *AppResolver) Preload(ctx context.Context) error {
	apps, err := r.source.Apps(ctx)
	if err != nil {
		return fmt.Errorf("failed to load installed apps: %w", err)
	}

	valid := make([]App, 0, len(apps))
	for _, a := range apps {
		if a.Label != "" && a.Package != "" {
			valid = append(valid, a)
		}
	}

	r.mu.Lock()
	r.cache = valid
	r.loaded = true
	r.mu.Unlock()

	logger.InfoCF("apps", "Preloaded installed apps", map[string]interface{}{
		"count": len(valid),
	})
	return nil
}

func (r *AppResolver) Invalidate() {
	r.mu.Lock()
	r.cache = nil
	r.loaded = false
	r.mu.Unlock()
}

// Resolve finds the app best matching query. Trailing punctuation from
// voice transcription is stripped before matching.
func (r *AppResolver) Resolve(ctx context.Context, query string) (AppMatch, bool) {
	cleanQuery := strings.ToLower(strings.TrimSpace(query))
	cleanQuery = strings.TrimSpace(strings.Map(func(c rune) rune {
		switch c {
		case '.', ',', '!', '?', ';', ':':
			return -1
		}
		return c
	}, cleanQuery))
	if cleanQuery == "" {
		return AppMatch{}, false
	}

	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if !loaded {
		if err := r.Preload(ctx); err != nil {
			logger.WarnCF("apps", "Lazy preload failed", map[string]interface{}{
				"error": err.Error(),
			})
			return AppMatch{}, false
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	match := findByLabel(len(r.cache), cleanQuery, func(i int) string {
		return r.cache[i].Label
	})
	if match < 0 {
		return AppMatch{}, false
	}

	a := r.cache[match]
	return AppMatch{Label: a.Label, Package: a.Package}, true
}
