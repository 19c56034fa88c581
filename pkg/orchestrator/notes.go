package orchestrator

import (
	"context"
	"strings"
)

// ReleaseNote is a computed, read-only view over a Release: its own
// description plus a chronological summary of what happened to it,
// assembled from the journal rather than stored anywhere itself (spec
// §6's GET /release-notes, SUPPLEMENTED FEATURE #1).
type ReleaseNote struct {
	ReleaseID   string   `json:"release_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Summary     []string `json:"summary"`
}

// ReleaseNotes builds a ReleaseNote for releaseID by reading the release
// and its journaled events; it persists nothing of its own.
func (s *Service) ReleaseNotes(ctx context.Context, releaseID string) (*ReleaseNote, error) {
	release, err := s.store.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListEventsByRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	summary := make([]string, 0, len(events))
	for _, ev := range events {
		line := ev.Message
		if line == "" {
			line = string(ev.Type)
		}
		summary = append(summary, strings.TrimSpace(line))
	}

	return &ReleaseNote{
		ReleaseID:   release.ID,
		Name:        release.Name,
		Description: release.Description,
		Tags:        release.Tags,
		Summary:     summary,
	}, nil
}
