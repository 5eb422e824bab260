package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pmos-ai/pmosd/pkg/host"
)

// TermuxContactSource reads the address book via termux-contact-list,
// which prints a JSON array of {"name","number"} entries. Entries sharing
// a name are folded into one contact with an ordered number list.
type TermuxContactSource struct {
	runner host.Runner
}

func NewTermuxContactSource(runner host.Runner) *TermuxContactSource {
	return &TermuxContactSource{runner: runner}
}

func (s *TermuxContactSource) Contacts(ctx context.Context) ([]Contact, error) {
	out, err := s.runner.Run(ctx, "termux-contact-list")
	if err != nil {
		return nil, fmt.Errorf("termux-contact-list failed: %w", err)
	}

	var entries []struct {
		Name   string `json:"name"`
		Number string `json:"number"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, fmt.Errorf("unexpected contact list output: %w", err)
	}

	byName := make(map[string]int)
	contacts := make([]Contact, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		number := strings.TrimSpace(e.Number)
		if name == "" || number == "" {
			continue
		}
		if idx, ok := byName[name]; ok {
			contacts[idx].PhoneNumbers = append(contacts[idx].PhoneNumbers, number)
			continue
		}
		byName[name] = len(contacts)
		contacts = append(contacts, Contact{Name: name, PhoneNumbers: []string{number}})
	}
	return contacts, nil
}

// PMAppSource lists launchable packages via the Android package manager.
// pm only reports package identifiers, so labels are derived from the
// identifier; the fuzzy matcher works on those derived labels.
type PMAppSource struct {
	runner host.Runner
}

func NewPMAppSource(runner host.Runner) *PMAppSource {
	return &PMAppSource{runner: runner}
}

func (s *PMAppSource) Apps(ctx context.Context) ([]App, error) {
	out, err := s.runner.Run(ctx, "pm", "list", "packages")
	if err != nil {
		return nil, fmt.Errorf("pm list packages failed: %w", err)
	}

	var apps []App
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "package:") {
			continue
		}
		pkg := strings.TrimPrefix(line, "package:")
		if pkg == "" {
			continue
		}
		apps = append(apps, App{Label: labelFromPackage(pkg), Package: pkg})
	}
	return apps, nil
}

// labelFromPackage guesses a human label from a package identifier:
// "com.instagram.android" becomes "instagram".
func labelFromPackage(pkg string) string {
	parts := strings.Split(pkg, ".")
	if len(parts) == 0 {
		return pkg
	}
	last := parts[len(parts)-1]
	// Vendor suffixes like ".android" or ".app" carry no signal.
	if (last == "android" || last == "app" || last == "mobile") && len(parts) > 1 {
		return parts[len(parts)-2]
	}
	return last
}
