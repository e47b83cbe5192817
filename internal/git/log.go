package git

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devflow/chronicle-go/internal/models"
)

// logFormat opens each commit with a record separator, then the metadata
// fields, then the full message body fenced by field separators. %B keeps
// multi-line messages intact; the separators keep them from being confused
// with numstat lines.
const logFormat = "%x1e%h|%H|%an|%ae|%aI%x1f%B%x1f"

const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// Source reads commit history from a local git repository via the git CLI.
type Source struct {
	path   string
	logger *logrus.Logger
}

// NewSource creates a history source for the repository at path.
func NewSource(path string, logger *logrus.Logger) (*Source, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}
	return &Source{path: path, logger: logger}, nil
}

// Path returns the repository path the source reads from.
func (s *Source) Path() string {
	return s.path
}

// RecentCommits returns up to limit commits from the given branch, most
// recent first. An empty branch means the current HEAD. Branch membership
// is resolved per commit and is best effort.
func (s *Source) RecentCommits(ctx context.Context, limit int, branch string) ([]models.Commit, error) {
	args := []string{"-C", s.path, "log",
		"-n", strconv.Itoa(limit),
		"--numstat",
		"--pretty=format:" + logFormat}
	if branch != "" {
		args = append(args, branch)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git log failed: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}

	commits := parseLog(string(output))

	for i := range commits {
		branches, err := s.branchesContaining(ctx, commits[i].FullHash)
		if err != nil {
			s.logger.WithError(err).WithField("commit", commits[i].Hash).
				Debug("Could not resolve branch membership")
			continue
		}
		commits[i].Branches = branches
	}

	return commits, nil
}

// parseLog turns `git log --numstat` output into commit records. Each
// record starts at a record separator and carries the metadata header, the
// full message between field separators, and the numstat lines after it.
// Records that do not match the expected shape are skipped.
func parseLog(output string) []models.Commit {
	var commits []models.Commit

	for _, record := range strings.Split(output, recordSep) {
		if record == "" {
			continue
		}

		segments := strings.SplitN(record, fieldSep, 3)
		if len(segments) != 3 {
			continue
		}

		header := strings.Split(segments[0], "|")
		if len(header) != 5 {
			continue
		}
		ts, err := time.Parse(time.RFC3339, header[4])
		if err != nil {
			continue
		}

		commit := models.Commit{
			Hash:        header[0],
			FullHash:    header[1],
			Author:      header[2],
			AuthorEmail: header[3],
			Timestamp:   ts,
			Message:     strings.TrimSpace(segments[1]),
		}

		for _, line := range strings.Split(segments[2], "\n") {
			if line == "" {
				continue
			}
			// numstat line: insertions<TAB>deletions<TAB>path
			fields := strings.SplitN(line, "\t", 3)
			if len(fields) != 3 {
				continue
			}
			// binary files report "-" for both counts
			if fields[0] == "-" || fields[1] == "-" {
				continue
			}
			insertions, _ := strconv.Atoi(fields[0])
			deletions, _ := strconv.Atoi(fields[1])

			commit.Insertions += insertions
			commit.Deletions += deletions
			commit.Files = append(commit.Files, fields[2])
		}

		commit.FilesChanged = len(commit.Files)
		commits = append(commits, commit)
	}

	return commits
}

func (s *Source) branchesContaining(ctx context.Context, hash string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", s.path, "branch",
		"--contains", hash, "--format=%(refname:short)")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var branches []string
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}
