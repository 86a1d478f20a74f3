package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"orgrepos/internal/api"
	"orgrepos/internal/config"
	"orgrepos/internal/notifier"
)

// ClientFactory builds a fresh organization client. Clients cache what they
// fetch, so the watch task asks for a new one on every run.
type ClientFactory func(org string) api.OrgClient

// LicenseWatchTask lists an organization's public repositories (optionally
// restricted to one license) and reports repositories that appear or disappear
// between runs. The first run only records a baseline.
type LicenseWatchTask struct {
	org       string
	license   string
	newClient ClientFactory
	notifier  notifier.Notifier

	known       map[string]struct{}
	initialized bool
}

func NewLicenseWatchTask(watched config.WatchedOrg, newClient ClientFactory, n notifier.Notifier) *LicenseWatchTask {
	return &LicenseWatchTask{
		org:       watched.Org,
		license:   watched.License,
		newClient: newClient,
		notifier:  n,
		known:     make(map[string]struct{}),
	}
}

func (t *LicenseWatchTask) Name() string {
	if t.license == "" {
		return "watch:" + t.org
	}
	return "watch:" + t.org + ":" + t.license
}

func (t *LicenseWatchTask) Run(ctx context.Context) error {
	names, err := t.newClient(t.org).PublicRepos(ctx, t.license)
	if err != nil {
		return fmt.Errorf("failed to list repos for %s: %w", t.org, err)
	}
	log.Info().Str("org", t.org).Str("license", t.license).Int("repos", len(names)).Msg("Listed public repositories")

	current := make(map[string]struct{}, len(names))
	for _, name := range names {
		current[name] = struct{}{}
	}

	if !t.initialized {
		t.known = current
		t.initialized = true
		return nil
	}

	var added, removed []string
	for _, name := range names {
		if _, ok := t.known[name]; !ok {
			added = append(added, name)
		}
	}
	for name := range t.known {
		if _, ok := current[name]; !ok {
			removed = append(removed, name)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	// Keep the previous snapshot on failure so the change is reported again next run.
	if err := t.notifier.SendNotification(ctx, t.subject(), formatChanges(added, removed)); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	t.known = current
	return nil
}

func (t *LicenseWatchTask) subject() string {
	if t.license == "" {
		return fmt.Sprintf("Repository changes in %s", t.org)
	}
	return fmt.Sprintf("%s repository changes in %s", t.license, t.org)
}

// formatChanges renders the added and removed names, each list sorted.
func formatChanges(added, removed []string) string {
	var b strings.Builder
	if len(added) > 0 {
		slices.Sort(added)
		fmt.Fprintf(&b, "Added (%d): %s", len(added), strings.Join(added, ", "))
	}
	if len(removed) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		slices.Sort(removed)
		fmt.Fprintf(&b, "Removed (%d): %s", len(removed), strings.Join(removed, ", "))
	}
	return b.String()
}
