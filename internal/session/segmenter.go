package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/devflow/chronicle-go/internal/models"
)

// Session is a maximal run of commits with no internal time gap exceeding
// the segmentation threshold. Commits are ordered ascending by timestamp.
type Session struct {
	Commits []models.Commit
}

// Start returns the timestamp of the first commit in the session.
func (s *Session) Start() time.Time {
	if len(s.Commits) == 0 {
		return time.Time{}
	}
	return s.Commits[0].Timestamp
}

// End returns the timestamp of the last commit in the session.
func (s *Session) End() time.Time {
	if len(s.Commits) == 0 {
		return time.Time{}
	}
	return s.Commits[len(s.Commits)-1].Timestamp
}

// Duration returns the span from first to last commit.
func (s *Session) Duration() time.Duration {
	return s.End().Sub(s.Start())
}

// Segment partitions commits into work sessions. Commits are stably sorted
// ascending by timestamp, then split wherever the gap between adjacent
// commits exceeds the threshold. A gap exactly equal to the threshold stays
// in the same session. Sessions are returned most-recent-first; commits
// within each session stay in ascending time order.
func Segment(commits []models.Commit, gap time.Duration) []Session {
	if len(commits) == 0 {
		return nil
	}

	sorted := make([]models.Commit, len(commits))
	copy(sorted, commits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sessions []Session
	current := Session{Commits: []models.Commit{sorted[0]}}

	for _, c := range sorted[1:] {
		prev := current.Commits[len(current.Commits)-1]
		if c.Timestamp.Sub(prev.Timestamp) > gap {
			sessions = append(sessions, current)
			current = Session{Commits: []models.Commit{c}}
		} else {
			current.Commits = append(current.Commits, c)
		}
	}
	sessions = append(sessions, current)

	// Most recent session first.
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}

	return sessions
}

// Summarize computes aggregate statistics for one session.
func Summarize(s Session) models.SessionSummary {
	if len(s.Commits) == 0 {
		return models.SessionSummary{}
	}

	fileSet := make(map[string]struct{})
	authorSet := make(map[string]struct{})
	var insertions, deletions int

	for _, c := range s.Commits {
		for _, f := range c.Files {
			fileSet[f] = struct{}{}
		}
		authorSet[c.Author] = struct{}{}
		insertions += c.Insertions
		deletions += c.Deletions
	}

	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(files)

	authors := make([]string, 0, len(authorSet))
	for a := range authorSet {
		authors = append(authors, a)
	}
	sort.Strings(authors)

	return models.SessionSummary{
		StartTime:       s.Start(),
		EndTime:         s.End(),
		Duration:        s.Duration(),
		CommitCount:     len(s.Commits),
		UniqueFiles:     files,
		TotalInsertions: insertions,
		TotalDeletions:  deletions,
		Authors:         authors,
		Commits:         s.Commits,
	}
}

// FormatDuration renders a duration as a human-readable string like
// "2 hours 15 minutes".
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hour%s", hours, plural(hours)))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minute%s", minutes, plural(minutes)))
	}
	if len(parts) == 0 {
		return "Less than a minute"
	}
	return strings.Join(parts, " ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
