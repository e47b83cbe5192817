package models

import (
	"fmt"
	"time"
)

// Commit is an immutable record of a single commit as delivered by a
// history source. It is constructed once at the source boundary and never
// mutated afterwards; derived analysis attaches to ScoredCommit instead.
type Commit struct {
	Hash         string    `json:"hash"`      // short id (7 chars)
	FullHash     string    `json:"full_hash"` // full SHA
	Message      string    `json:"message"`
	Author       string    `json:"author"`
	AuthorEmail  string    `json:"author_email"`
	Timestamp    time.Time `json:"timestamp"`
	FilesChanged int       `json:"files_changed"`
	Insertions   int       `json:"insertions"`
	Deletions    int       `json:"deletions"`
	Files        []string  `json:"files"`
	Branches     []string  `json:"branches,omitempty"`
}

// Validate checks the invariants a history source must guarantee.
// Called at the source boundary so downstream analysis can trust the record.
func (c *Commit) Validate() error {
	if c.Hash == "" {
		return fmt.Errorf("commit missing hash")
	}
	if c.Author == "" {
		return fmt.Errorf("commit %s missing author", c.Hash)
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("commit %s missing timestamp", c.Hash)
	}
	if c.Insertions < 0 || c.Deletions < 0 || c.FilesChanged < 0 {
		return fmt.Errorf("commit %s has negative change counts", c.Hash)
	}
	return nil
}

// TotalChanges returns insertions plus deletions.
func (c *Commit) TotalChanges() int {
	return c.Insertions + c.Deletions
}

// ShortMessage returns the first line of the commit message.
func (c *Commit) ShortMessage() string {
	for i, r := range c.Message {
		if r == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// ScoredCommit extends a Commit with derived analysis fields. The embedded
// Commit stays untouched; categorization and scoring write here.
type ScoredCommit struct {
	Commit

	Category       string        `json:"category,omitempty"`
	Confidence     float64       `json:"confidence,omitempty"`
	CategoryReason string        `json:"category_reason,omitempty"`
	Quality        *QualityScore `json:"quality_score,omitempty"`
}

// QualityScore holds the three-factor heuristic score for one commit.
// All sub-scores and Overall are clamped to [0,1].
type QualityScore struct {
	MessageQuality      float64  `json:"message_quality"`
	SizeAppropriateness float64  `json:"size_appropriateness"`
	Focus               float64  `json:"focus"`
	Overall             float64  `json:"overall"`
	Grade               string   `json:"grade"` // "A", "B", or "C"
	Suggestions         []string `json:"suggestions,omitempty"`
}

// QualitySummary aggregates quality scores over a commit set.
type QualitySummary struct {
	Total            int     `json:"total_commits"`
	AverageScore     float64 `json:"average_score"`
	HighQuality      int     `json:"high_quality"`
	MediumQuality    int     `json:"medium_quality"`
	LowQuality       int     `json:"low_quality"`
	NeedsImprovement int     `json:"needs_improvement"`
}

// SessionSummary describes one work session in aggregate.
type SessionSummary struct {
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Duration        time.Duration `json:"duration"`
	CommitCount     int           `json:"commit_count"`
	UniqueFiles     []string      `json:"unique_files"`
	TotalInsertions int           `json:"total_insertions"`
	TotalDeletions  int           `json:"total_deletions"`
	Authors         []string      `json:"authors"`
	Commits         []Commit      `json:"commits"`
}

// TotalFilesChanged returns the number of distinct files touched in the session.
func (s *SessionSummary) TotalFilesChanged() int {
	return len(s.UniqueFiles)
}

// TemporalProfile aggregates when commits happen.
type TemporalProfile struct {
	ByHour  [24]int        `json:"by_hour"`
	ByDay   map[string]int `json:"by_day"`   // weekday name -> count
	ByMonth map[string]int `json:"by_month"` // "January 2006" -> count

	PeakHour int    `json:"peak_hour"`
	PeakDay  string `json:"peak_day"`

	MorningCommits   int `json:"morning_commits"`   // [06:00, 12:00)
	AfternoonCommits int `json:"afternoon_commits"` // [12:00, 18:00)
	EveningCommits   int `json:"evening_commits"`   // [18:00, 24:00)
	NightCommits     int `json:"night_commits"`     // [00:00, 06:00)

	ActiveDays       int     `json:"active_days"`
	ProductivityRate float64 `json:"productivity_rate"` // commits per active day
	TotalCommits     int     `json:"total_commits"`
}

// FileCount pairs a path (file or directory) with a change count.
type FileCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// FilePatterns describes which files and directories churn the most.
type FilePatterns struct {
	TopFiles         []FileCount `json:"top_files"`
	TopDirectories   []FileCount `json:"top_directories"`
	TotalUniqueFiles int         `json:"total_unique_files"`
	TotalDirectories int         `json:"total_directories"`
}

// AuthorStat summarizes one author's contribution.
type AuthorStat struct {
	Author       string `json:"author"`
	Commits      int    `json:"commits"`
	FilesChanged int    `json:"files_changed"`
	Insertions   int    `json:"insertions"`
	Deletions    int    `json:"deletions"`
}

// Bundle is the full analytics result handed to report rendering:
// the active session, the temporal profile over the whole commit set,
// and the scored commits of the active session.
type Bundle struct {
	RunID       string          `json:"run_id"`
	RepoPath    string          `json:"repo_path"`
	GeneratedAt time.Time       `json:"generated_at"`
	Session     SessionSummary  `json:"session"`
	Temporal    TemporalProfile `json:"temporal"`
	Patterns    FilePatterns    `json:"file_patterns"`
	Authors     []AuthorStat    `json:"authors,omitempty"`
	Scored      []ScoredCommit  `json:"scored_commits"`
	Quality     QualitySummary  `json:"quality"`
	Analysis    *Insights       `json:"analysis,omitempty"`
	Style       *StyleProfile   `json:"style,omitempty"`

	// LLM-generated prose, absent when analysis is disabled or failed.
	Narratives    map[string]string `json:"narratives,omitempty"` // format -> text
	TemporalNotes string            `json:"temporal_notes,omitempty"`
	QualityNotes  string            `json:"quality_notes,omitempty"`
}

// Insights is the structured result of LLM commit analysis.
type Insights struct {
	WorkTypes         []string `json:"work_types"`
	FocusAreas        []string `json:"focus_areas"`
	Patterns          []string `json:"patterns"`
	TechnicalInsights []string `json:"technical_insights"`
	Summary           string   `json:"summary"`
	ComplexityLevel   string   `json:"complexity_level"`
	Recommendations   []string `json:"recommendations"`
}

// RepoAnalysis is one repository's contribution to a multi-repo run.
type RepoAnalysis struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Commits  int       `json:"commits"`
	Analysis *Insights `json:"analysis,omitempty"`
}

// Comparison is the cross-repository synthesis of a multi-repo run.
type Comparison struct {
	MainFocusProject string         `json:"main_focus_project"`
	CommonThemes     []string       `json:"common_themes"`
	WorkBalance      string         `json:"work_balance"`
	Recommendations  []string       `json:"recommendations"`
	Repositories     []RepoAnalysis `json:"repositories"`
}

// StyleProfile captures a developer's commit-message writing style.
type StyleProfile struct {
	Tone                string   `json:"tone"`
	CommonPhrases       []string `json:"common_phrases"`
	StructurePreference string   `json:"structure_preference"`
	UsesEmojis          bool     `json:"uses_emojis"`
	FormalityLevel      int      `json:"formality_level"`
	UniqueTraits        []string `json:"unique_traits"`
	TypicalLength       string   `json:"typical_length"`
	DetailLevel         string   `json:"detail_level"`
}
