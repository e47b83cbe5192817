package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/devflow/chronicle-go/internal/cherr"
)

// Validate checks that path exists and is inside a git working tree.
func Validate(path string) error {
	if _, err := os.Stat(path); err != nil {
		return cherr.Input("repository path does not exist: %s", path)
	}

	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	if err := cmd.Run(); err != nil {
		return cherr.Input("not a git repository: %s", path)
	}
	return nil
}

// CurrentBranch returns the checked-out branch name for the repository.
func CurrentBranch(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "rev-parse", "--abbrev-ref", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// RemoteURL returns the origin remote URL, if configured.
func RemoteURL(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", path, "config", "--get", "remote.origin.url")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving remote url: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

var (
	httpsURLRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/]+)`)
	sshURLRe   = regexp.MustCompile(`git@[^:]+:([^/]+)/([^/]+)`)
)

// ParseRepoURL extracts owner and repo name from an HTTPS or SSH remote URL.
func ParseRepoURL(remoteURL string) (owner, repo string, err error) {
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	if m := httpsURLRe.FindStringSubmatch(remoteURL); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshURLRe.FindStringSubmatch(remoteURL); len(m) == 3 {
		return m[1], m[2], nil
	}

	return "", "", fmt.Errorf("unrecognized git URL format: %s", remoteURL)
}
