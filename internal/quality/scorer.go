package quality

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/devflow/chronicle-go/internal/models"
)

// Thresholds configures grading cutoffs and size tiers for the scorer.
type Thresholds struct {
	High float64 // overall >= High -> grade A
	Low  float64 // overall >= Low  -> grade B, else C

	SizeSmall  int // changed lines below this score 1.0
	SizeMedium int
	SizeLarge  int
}

// DefaultThresholds returns the standard scoring configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		High:       0.8,
		Low:        0.6,
		SizeSmall:  50,
		SizeMedium: 200,
		SizeLarge:  500,
	}
}

// Scorer computes heuristic quality scores for commits.
type Scorer struct {
	thresholds      Thresholds
	imperativeVerbs map[string]struct{}
	genericPhrases  []string
}

// imperative verbs recognized as a good message opening, first word only.
var imperativeVerbs = []string{
	"add", "fix", "update", "remove", "refactor", "implement",
	"create", "delete", "modify", "improve", "optimize",
	"enhance", "resolve", "correct", "adjust", "integrate",
}

// generic low-information phrases penalized on substring match.
var genericPhrases = []string{
	"update", "fix stuff", "changes", "wip", "work in progress",
	"misc", "various", "stuff", "things", "quick fix", "fix",
}

// NewScorer creates a scorer with the given thresholds.
func NewScorer(thresholds Thresholds) *Scorer {
	verbs := make(map[string]struct{}, len(imperativeVerbs))
	for _, v := range imperativeVerbs {
		verbs[v] = struct{}{}
	}
	return &Scorer{
		thresholds:      thresholds,
		imperativeVerbs: verbs,
		genericPhrases:  genericPhrases,
	}
}

// Score computes the three-factor quality score for one commit.
func (s *Scorer) Score(c models.Commit) models.QualityScore {
	msgScore := s.scoreMessage(c.Message)
	sizeScore := s.scoreSize(c)
	focusScore := s.scoreFocus(c.Files)

	overall := (msgScore + sizeScore + focusScore) / 3

	grade := "C"
	switch {
	case overall >= s.thresholds.High:
		grade = "A"
	case overall >= s.thresholds.Low:
		grade = "B"
	}

	return models.QualityScore{
		MessageQuality:      msgScore,
		SizeAppropriateness: sizeScore,
		Focus:               focusScore,
		Overall:             overall,
		Grade:               grade,
		Suggestions:         s.suggestions(c, msgScore, sizeScore, focusScore),
	}
}

// ScoreAll scores every commit, attaching results to ScoredCommit extensions
// so the input records stay untouched.
func (s *Scorer) ScoreAll(commits []models.Commit) []models.ScoredCommit {
	scored := make([]models.ScoredCommit, len(commits))
	for i, c := range commits {
		score := s.Score(c)
		scored[i] = models.ScoredCommit{Commit: c, Quality: &score}
	}
	return scored
}

// scoreMessage rates the commit message: length band, imperative opening,
// generic phrasing, capitalization, and trailing punctuation.
func (s *Scorer) scoreMessage(message string) float64 {
	score := 0.5

	switch length := len(message); {
	case length > 10 && length < 100:
		score += 0.15
	case length < 10:
		score -= 0.2
	case length > 150:
		score -= 0.1
	}

	if s.startsImperative(message) {
		score += 0.2
	}

	if s.isGeneric(message) {
		score -= 0.15
	} else {
		score += 0.15
	}

	if message != "" && unicode.IsUpper([]rune(message)[0]) {
		score += 0.05
	}
	if !strings.HasSuffix(message, ".") {
		score += 0.05
	}

	return clamp(score)
}

// scoreSize rates total change volume against the size tiers, with a
// multiplier penalty when the file count is excessive. When both file-count
// tiers apply only the stricter multiplier is used.
func (s *Scorer) scoreSize(c models.Commit) float64 {
	total := c.TotalChanges()

	var score float64
	switch {
	case total < s.thresholds.SizeSmall:
		score = 1.0
	case total < s.thresholds.SizeMedium:
		score = 0.85
	case total < s.thresholds.SizeLarge:
		score = 0.65
	default:
		score = 0.35
	}

	switch {
	case c.FilesChanged > 20:
		score *= 0.6
	case c.FilesChanged > 10:
		score *= 0.8
	}

	return clamp(score)
}

// scoreFocus rates how many distinct top-level directories a commit touches.
// A commit with no file list gets a neutral 0.5: focus is undefined, not bad.
func (s *Scorer) scoreFocus(files []string) float64 {
	if len(files) == 0 {
		return 0.5
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		if idx := strings.Index(f, "/"); idx >= 0 {
			dirs[f[:idx]] = struct{}{}
		} else {
			dirs[""] = struct{}{}
		}
	}

	switch n := len(dirs); {
	case n == 1:
		return 1.0
	case n <= 3:
		return 0.75
	case n <= 5:
		return 0.5
	default:
		return 0.3
	}
}

// suggestions produces improvement hints only for sub-scores below the low
// threshold, each tied to the specific failing criterion.
func (s *Scorer) suggestions(c models.Commit, msgScore, sizeScore, focusScore float64) []string {
	var out []string

	if msgScore < s.thresholds.Low {
		if len(c.Message) < 10 {
			out = append(out, "Add more detail to commit message")
		}
		if !s.startsImperative(c.Message) {
			out = append(out, "Start with imperative verb (add, fix, update, etc.)")
		}
		if s.isGeneric(c.Message) {
			out = append(out, "Be more specific - avoid generic terms")
		}
	}

	if sizeScore < s.thresholds.Low {
		if total := c.TotalChanges(); total > s.thresholds.SizeLarge {
			out = append(out, fmt.Sprintf("Split into smaller commits (current: %d lines)", total))
		}
	}

	if focusScore < s.thresholds.Low {
		if c.FilesChanged > 10 {
			out = append(out, fmt.Sprintf("Commit touches many files (%d) - consider splitting", c.FilesChanged))
		}
	}

	return out
}

func (s *Scorer) startsImperative(message string) bool {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return false
	}
	_, ok := s.imperativeVerbs[strings.ToLower(fields[0])]
	return ok
}

func (s *Scorer) isGeneric(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range s.genericPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Aggregate summarizes scored commits with the scorer's own thresholds.
func (s *Scorer) Aggregate(scored []models.ScoredCommit) models.QualitySummary {
	summary := models.QualitySummary{Total: len(scored)}
	if len(scored) == 0 {
		return summary
	}

	var sum float64
	for _, c := range scored {
		if c.Quality == nil {
			continue
		}
		sum += c.Quality.Overall
		switch {
		case c.Quality.Overall >= s.thresholds.High:
			summary.HighQuality++
		case c.Quality.Overall >= s.thresholds.Low:
			summary.MediumQuality++
		default:
			summary.LowQuality++
		}
		if len(c.Quality.Suggestions) > 0 {
			summary.NeedsImprovement++
		}
	}
	summary.AverageScore = sum / float64(len(scored))

	return summary
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
