package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devflow/chronicle-go/internal/cherr"
	"github.com/devflow/chronicle-go/internal/models"
	"github.com/devflow/chronicle-go/internal/session"
)

// NarrativeFormats lists the supported narrative output formats.
var NarrativeFormats = []string{"standup", "technical", "weekly", "insights"}

const (
	analysisCommitCap = 25
	styleSampleCap    = 30
	narrativeCap      = 10
)

// Analyzer turns commit data into structured insights and prose using the
// LLM client. Every method degrades to an error the pipeline can skip on,
// never a panic.
type Analyzer struct {
	client *Client
	logger *logrus.Logger
}

// NewAnalyzer creates an analyzer on top of an LLM client.
func NewAnalyzer(client *Client, logger *logrus.Logger) *Analyzer {
	return &Analyzer{client: client, logger: logger}
}

// AnalyzeCommits asks for a structured reading of the commit set: work
// types, focus areas, patterns, and recommendations.
func (a *Analyzer) AnalyzeCommits(ctx context.Context, commits []models.Commit) (*models.Insights, error) {
	prompt := fmt.Sprintf(`Analyze these git commits and provide comprehensive insights:

%s

Provide analysis as JSON with these keys:
- work_types: array of work types (feature, bugfix, refactor, docs, test, chore)
- focus_areas: array of main topics/components worked on
- patterns: array of observed patterns in commits or timing
- technical_insights: array of technical observations
- summary: brief overall summary (2-3 sentences)
- complexity_level: low/medium/high based on changes
- recommendations: array of suggestions for next steps

Respond ONLY with valid JSON.
`, formatCommits(commits))

	response, err := a.client.Complete(ctx, prompt, 2000)
	if err != nil {
		return nil, err
	}

	var insights models.Insights
	if err := extractJSON(response, &insights); err != nil {
		return nil, cherr.External(err, "unparseable analysis response")
	}
	return &insights, nil
}

// AnalyzeWritingStyle learns the author's commit-message voice from a
// sample of recent messages.
func (a *Analyzer) AnalyzeWritingStyle(ctx context.Context, commits []models.Commit) (*models.StyleProfile, error) {
	var sb strings.Builder
	for i, c := range commits {
		if i == styleSampleCap {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c.ShortMessage())
	}

	prompt := fmt.Sprintf(`Analyze the writing style in these commit messages:

%s
Identify the author's personal style and return JSON:
{
    "tone": "casual/professional/technical",
    "common_phrases": ["phrase1", "phrase2", "phrase3"],
    "structure_preference": "imperative/descriptive/mixed",
    "uses_emojis": true/false,
    "formality_level": 1-10,
    "unique_traits": ["trait1", "trait2"],
    "typical_length": "short/medium/long",
    "detail_level": "minimal/moderate/verbose"
}

Respond ONLY with valid JSON.
`, sb.String())

	response, err := a.client.Complete(ctx, prompt, 1000)
	if err != nil {
		return nil, err
	}

	var profile models.StyleProfile
	if err := extractJSON(response, &profile); err != nil {
		return nil, cherr.External(err, "unparseable style response")
	}
	return &profile, nil
}

// categorization is one element of the batch categorization response.
type categorization struct {
	Index      int     `json:"index"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Categorize assigns each commit a primary type in a single batch request.
// Results are applied by 1-based index; entries that point outside the
// slice are ignored.
func (a *Analyzer) Categorize(ctx context.Context, scored []models.ScoredCommit) error {
	if len(scored) == 0 {
		return nil
	}

	var sb strings.Builder
	for i, c := range scored {
		msg := c.ShortMessage()
		if len(msg) > 100 {
			msg = msg[:100]
		}
		fmt.Fprintf(&sb, "%d. [%s] %s (files: %d, +%d/-%d)\n",
			i+1, c.Hash, msg, c.FilesChanged, c.Insertions, c.Deletions)
	}

	prompt := fmt.Sprintf(`Categorize each commit into ONE primary type:
- feature: New functionality
- bugfix: Fixing errors/bugs
- refactor: Code improvement without behavior change
- docs: Documentation changes
- test: Test additions/modifications
- chore: Build, config, dependencies, tooling
- style: Formatting, whitespace, linting

Commits:
%s
Return JSON array:
[
    {"index": 1, "category": "feature", "confidence": 0.95, "reason": "adds new feature"},
    ...
]

Respond ONLY with valid JSON array.
`, sb.String())

	response, err := a.client.Complete(ctx, prompt, 2500)
	if err != nil {
		return err
	}

	var cats []categorization
	if err := extractJSON(response, &cats); err != nil {
		return cherr.External(err, "unparseable categorization response")
	}

	applyCategories(scored, cats)
	return nil
}

func applyCategories(scored []models.ScoredCommit, cats []categorization) {
	for _, cat := range cats {
		idx := cat.Index - 1
		if idx < 0 || idx >= len(scored) {
			continue
		}
		category := cat.Category
		if category == "" {
			category = "unknown"
		}
		scored[idx].Category = category
		scored[idx].Confidence = cat.Confidence
		scored[idx].CategoryReason = cat.Reason
	}
}

var formatPrompts = map[string]string{
	"standup": `Generate a standup update in this format:

**Yesterday:**
[Specific accomplishments - be concrete]

**Today:**
[Planned work based on momentum]

**Blockers:**
[Any challenges or none]

Keep it concise, clear, and actionable.`,

	"technical": `Generate a detailed technical log:
- Document what was built/fixed/refactored with technical detail
- Include rationale for key decisions
- Note interesting challenges or solutions
- Use appropriate technical terminology
- Organize by theme or component

Make it thorough but well-structured.`,

	"weekly": `Generate a weekly digest:
- Executive summary of accomplishments
- Key metrics (commits, files, lines changed)
- Major themes and focus areas
- Notable achievements and learnings
- Brief forward look

Professional tone, suitable for team sharing.`,

	"insights": `Generate productivity and pattern insights:
- Work pattern analysis (when, how, what)
- Effectiveness observations
- Technical growth areas
- Actionable improvement suggestions
- Balance and sustainability notes

Be constructive, specific, and growth-oriented.`,
}

// GenerateNarrative writes prose about a session in the requested format,
// optionally matching the author's learned writing style. Unknown formats
// fall back to standup.
func (a *Analyzer) GenerateNarrative(ctx context.Context, sess models.SessionSummary, analysis *models.Insights, format string, style *models.StyleProfile) (string, error) {
	formatPrompt, ok := formatPrompts[format]
	if !ok {
		a.logger.WithField("format", format).Warn("Unknown narrative format, using standup")
		formatPrompt = formatPrompts["standup"]
	}

	var styleInstructions string
	if style != nil {
		phrases := style.CommonPhrases
		if len(phrases) > 3 {
			phrases = phrases[:3]
		}
		styleInstructions = fmt.Sprintf(`
CRITICAL - Match the author's personal writing style:
- Tone: %s
- Formality: %d/10
- Structure: %s
- Detail level: %s
- Common phrases to use naturally: %s

Write as if THEY wrote it, not a generic AI. Match their voice.
`, style.Tone, style.FormalityLevel, style.StructurePreference, style.DetailLevel,
			strings.Join(phrases, ", "))
	}

	analysisJSON := "{}"
	if analysis != nil {
		if data, err := json.MarshalIndent(analysis, "", "  "); err == nil {
			analysisJSON = string(data)
		}
	}

	var recent strings.Builder
	for i, c := range sess.Commits {
		if i == narrativeCap {
			break
		}
		fmt.Fprintf(&recent, "- %s\n", c.ShortMessage())
	}

	prompt := fmt.Sprintf(`%s

Based on this development session:

**Session Duration:** %s
**Commits:** %d
**Files Changed:** %d
**Lines:** +%d -%d

**AI Analysis:**
%s

**Recent Commits:**
%s
%s
`, styleInstructions, session.FormatDuration(sess.Duration), sess.CommitCount,
		sess.TotalFilesChanged(), sess.TotalInsertions, sess.TotalDeletions,
		analysisJSON, recent.String(), formatPrompt)

	return a.client.Complete(ctx, prompt, 1500)
}

// TemporalInsights interprets the productivity profile in natural language.
func (a *Analyzer) TemporalInsights(ctx context.Context, profile models.TemporalProfile) (string, error) {
	prompt := fmt.Sprintf(`Analyze these work timing patterns:

**Peak Productivity:**
- Best day: %s
- Best hour: %d:00
- Active days: %d
- Commits per day: %.2f

**Time Distribution:**
- Morning (6am-12pm): %d commits
- Afternoon (12pm-6pm): %d commits
- Evening (6pm-12am): %d commits
- Night (12am-6am): %d commits

Provide insights on:
1. Energy and focus patterns
2. Work-life balance observations
3. Optimization opportunities
4. Schedule recommendations

Be specific, actionable, and respectful of different work styles.
`, profile.PeakDay, profile.PeakHour, profile.ActiveDays, profile.ProductivityRate,
		profile.MorningCommits, profile.AfternoonCommits, profile.EveningCommits, profile.NightCommits)

	return a.client.Complete(ctx, prompt, 1000)
}

// QualityInsights turns the quality summary into coaching prose.
func (a *Analyzer) QualityInsights(ctx context.Context, summary models.QualitySummary) (string, error) {
	prompt := fmt.Sprintf(`Based on commit quality analysis:

**Overall Stats:**
- Total commits: %d
- Average score: %.2f/1.00
- High quality: %d commits
- Need improvement: %d commits

Provide:
1. Overall quality assessment
2. Specific strengths in commit practices
3. Top 2-3 areas for improvement
4. Practical tips for better commits

Be encouraging but honest. Focus on growth.
`, summary.Total, summary.AverageScore, summary.HighQuality, summary.LowQuality)

	return a.client.Complete(ctx, prompt, 1000)
}

// Compare synthesizes a cross-repository view from per-repo analyses.
func (a *Analyzer) Compare(ctx context.Context, repos []models.RepoAnalysis) (*models.Comparison, error) {
	var sb strings.Builder
	for _, r := range repos {
		fmt.Fprintf(&sb, "**%s** (%d commits)\n", r.Name, r.Commits)
		if r.Analysis != nil {
			fmt.Fprintf(&sb, "- Summary: %s\n", r.Analysis.Summary)
			fmt.Fprintf(&sb, "- Focus areas: %s\n", strings.Join(r.Analysis.FocusAreas, ", "))
		}
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Compare development activity across these repositories:

%s
Respond with JSON:
{
  "main_focus_project": "which repo got the most substantive work",
  "common_themes": ["themes appearing across repos"],
  "work_balance": "one sentence on how effort is distributed",
  "recommendations": ["suggestions for managing work across projects"]
}
`, sb.String())

	raw, err := a.client.Complete(ctx, prompt, 1000)
	if err != nil {
		return nil, err
	}

	var cmp models.Comparison
	if err := extractJSON(raw, &cmp); err != nil {
		return nil, cherr.External(err, "unparseable comparison response")
	}
	cmp.Repositories = repos
	return &cmp, nil
}

func formatCommits(commits []models.Commit) string {
	var sb strings.Builder
	for i, c := range commits {
		if i == analysisCommitCap {
			break
		}
		fmt.Fprintf(&sb, "%d. [%s] %s: %s\n   Files: %d, +%d/-%d\n",
			i+1, c.Timestamp.Format("2006-01-02 15:04"), c.Hash, c.ShortMessage(),
			c.FilesChanged, c.Insertions, c.Deletions)
	}
	return sb.String()
}
