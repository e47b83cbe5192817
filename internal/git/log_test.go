package git

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = "\x1eabc1234|abc1234def5678abc1234def5678abc1234def5|Alice|alice@example.com|2025-03-10T09:15:00+01:00\x1fAdd session segmentation\n\x1f\n" +
	"10\t2\tinternal/session/segmenter.go\n" +
	"3\t0\tinternal/session/segmenter_test.go\n" +
	"\n" +
	"\x1edef5678|def5678abc1234def5678abc1234def5678abc12|Bob|bob@example.com|2025-03-09T22:40:11Z\x1ffix\n\x1f\n" +
	"-\t-\tdocs/diagram.png\n" +
	"1\t1\tREADME.md\n"

func TestParseLog(t *testing.T) {
	commits := parseLog(sampleLog)
	require.Len(t, commits, 2)

	first := commits[0]
	assert.Equal(t, "abc1234", first.Hash)
	assert.Equal(t, "abc1234def5678abc1234def5678abc1234def5", first.FullHash)
	assert.Equal(t, "Alice", first.Author)
	assert.Equal(t, "alice@example.com", first.AuthorEmail)
	assert.Equal(t, "Add session segmentation", first.Message)
	assert.Equal(t, 13, first.Insertions)
	assert.Equal(t, 2, first.Deletions)
	assert.Equal(t, 2, first.FilesChanged)
	assert.Equal(t, []string{
		"internal/session/segmenter.go",
		"internal/session/segmenter_test.go",
	}, first.Files)

	expected := time.Date(2025, time.March, 10, 9, 15, 0, 0, time.FixedZone("", 3600))
	assert.True(t, first.Timestamp.Equal(expected))
}

func TestParseLog_MultiLineMessage(t *testing.T) {
	log := "\x1eaaa1111|aaa1111bbb2222aaa1111bbb2222aaa1111bbb2|Alice|a@example.com|2025-03-10T09:00:00Z\x1f" +
		"Refactor cache layer\n\nSplit the store from the fingerprinting logic\nso each can be tested on its own.\n\x1f\n" +
		"8\t3\tinternal/cache/store.go\n"

	commits := parseLog(log)
	require.Len(t, commits, 1)
	assert.Equal(t, "Refactor cache layer\n\nSplit the store from the fingerprinting logic\nso each can be tested on its own.",
		commits[0].Message)
	assert.Equal(t, []string{"internal/cache/store.go"}, commits[0].Files)
	assert.Equal(t, 8, commits[0].Insertions)
	assert.Equal(t, 3, commits[0].Deletions)
}

func TestParseLog_BinaryFilesSkipped(t *testing.T) {
	commits := parseLog(sampleLog)
	require.Len(t, commits, 2)

	second := commits[1]
	assert.Equal(t, []string{"README.md"}, second.Files)
	assert.Equal(t, 1, second.FilesChanged)
	assert.Equal(t, 1, second.Insertions)
	assert.Equal(t, 1, second.Deletions)
}

func TestParseLog_MessageWithPipes(t *testing.T) {
	log := "\x1eaaa1111|aaa1111bbb2222aaa1111bbb2222aaa1111bbb2|Alice|a@example.com|2025-03-10T09:00:00Z\x1fSupport a|b|c syntax\n\x1f\n" +
		"1\t0\tmain.go\n"

	commits := parseLog(log)
	require.Len(t, commits, 1)
	assert.Equal(t, "Support a|b|c syntax", commits[0].Message)
}

func TestParseLog_PathWithSpaces(t *testing.T) {
	log := "\x1eaaa1111|aaa1111bbb2222aaa1111bbb2222aaa1111bbb2|Alice|a@example.com|2025-03-10T09:00:00Z\x1fAdd docs\n\x1f\n" +
		"4\t0\tdocs/getting started.md\n"

	commits := parseLog(log)
	require.Len(t, commits, 1)
	assert.Equal(t, []string{"docs/getting started.md"}, commits[0].Files)
}

func TestParseLog_Empty(t *testing.T) {
	assert.Empty(t, parseLog(""))
}

func TestParseLog_MalformedRecordSkipped(t *testing.T) {
	log := "\x1enot a header at all\x1fstray message\x1f\n" +
		"\x1eaaa1111|aaa1111bbb2222aaa1111bbb2222aaa1111bbb2|Alice|a@example.com|2025-03-10T09:00:00Z\x1fAdd feature\n\x1f\n" +
		"1\t0\tmain.go\n"

	commits := parseLog(log)
	require.Len(t, commits, 1)
	assert.Equal(t, "Add feature", commits[0].Message)
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		url   string
		owner string
		repo  string
	}{
		{"https://github.com/devflow/chronicle.git", "devflow", "chronicle"},
		{"https://github.com/devflow/chronicle", "devflow", "chronicle"},
		{"git@github.com:devflow/chronicle.git", "devflow", "chronicle"},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepoURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.owner, owner)
		assert.Equal(t, tt.repo, repo)
	}

	_, _, err := ParseRepoURL("ftp://example.com/whatever")
	assert.Error(t, err)
}
