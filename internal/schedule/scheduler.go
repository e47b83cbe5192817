// Package schedule runs recurring analyses on a cron spec and optionally
// posts the standup narrative to Slack.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/devflow/chronicle-go/internal/cherr"
	"github.com/devflow/chronicle-go/internal/config"
	"github.com/devflow/chronicle-go/internal/git"
	"github.com/devflow/chronicle-go/internal/models"
	"github.com/devflow/chronicle-go/internal/pipeline"
)

// runTimeout bounds one scheduled analysis run.
const runTimeout = 15 * time.Minute

// Notifier posts a run's narrative somewhere people will see it.
type Notifier interface {
	Notify(bundle *models.Bundle) error
}

// SlackNotifier posts the standup narrative to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	logger  *logrus.Logger
}

// NewSlackNotifier creates a notifier for the given token and channel.
func NewSlackNotifier(token, channel string, logger *logrus.Logger) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
		logger:  logger,
	}
}

// Notify posts the standup message to the configured channel.
func (n *SlackNotifier) Notify(bundle *models.Bundle) error {
	_, _, err := n.client.PostMessage(n.channel,
		slack.MsgOptionText(standupText(bundle), false),
	)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", n.channel, err)
	}
	n.logger.WithField("channel", n.channel).Info("Posted standup to Slack")
	return nil
}

// standupText builds the Slack message, falling back to raw stats when no
// narrative was generated.
func standupText(bundle *models.Bundle) string {
	text := bundle.Narratives["standup"]
	if text == "" {
		text = fmt.Sprintf("Analyzed %d commits (+%d/-%d lines) across %d files.",
			bundle.Session.CommitCount, bundle.Session.TotalInsertions,
			bundle.Session.TotalDeletions, bundle.Session.TotalFilesChanged())
	}
	return fmt.Sprintf(":memo: *Daily Standup*\n\n%s", text)
}

// Scheduler triggers recurring analysis runs.
type Scheduler struct {
	cron        *cron.Cron
	coordinator *pipeline.Coordinator
	cfg         *config.Config
	notifier    Notifier
	logger      *logrus.Logger
	repoPath    string
}

// New creates a scheduler. The notifier may be nil.
func New(coordinator *pipeline.Coordinator, cfg *config.Config, repoPath string, notifier Notifier, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		coordinator: coordinator,
		cfg:         cfg,
		notifier:    notifier,
		logger:      logger,
		repoPath:    repoPath,
	}
}

// Start registers the configured cron spec and begins scheduling. It
// returns an error for an unparseable spec.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule.Spec, s.runOnce)
	if err != nil {
		return fmt.Errorf("invalid schedule spec %q: %w", s.cfg.Schedule.Spec, err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"spec": s.cfg.Schedule.Spec,
		"repo": s.repoPath,
	}).Info("Scheduler started")
	return nil
}

// Stop halts scheduling and waits for any in-flight run.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	src, err := git.NewSource(s.repoPath, s.logger)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled run: repository unavailable")
		return
	}

	bundle, err := s.coordinator.Run(ctx, pipeline.SourceFunc(
		func(ctx context.Context, limit int) ([]models.Commit, error) {
			return src.RecentCommits(ctx, limit, "")
		}), s.repoPath, s.cfg.Schedule.Formats)
	if err != nil {
		if errors.Is(err, cherr.ErrNoCommits) {
			s.logger.Info("Scheduled run: no recent commits, nothing to report")
			return
		}
		s.logger.WithError(err).Error("Scheduled run failed")
		return
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(bundle); err != nil {
			s.logger.WithError(err).Warn("Notification failed")
		}
	}
}

// ValidateSpec checks a cron expression without scheduling anything.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}
