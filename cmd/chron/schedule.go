package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devflow/chronicle-go/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [path]",
	Short: "Run recurring analyses on a cron schedule",
	Long: `Keeps running and triggers an analysis of the given repository
(default: current directory) on the configured cron spec. When a Slack
token is configured, posts the standup narrative to the configured
channel after each run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("cron", "", "cron spec (overrides config, e.g. \"0 9 * * 1-5\")")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return err
	}

	if spec, _ := cmd.Flags().GetString("cron"); spec != "" {
		cfg.Schedule.Spec = spec
	}
	if err := schedule.ValidateSpec(cfg.Schedule.Spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", cfg.Schedule.Spec, err)
	}

	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	var notifier schedule.Notifier
	if cfg.Slack.Token != "" {
		notifier = schedule.NewSlackNotifier(cfg.Slack.Token, cfg.Slack.Channel, logger)
		fmt.Printf("📣 Slack notifications to %s\n", cfg.Slack.Channel)
	}

	sched := schedule.New(a.coordinator, cfg, absPath, notifier, logger)
	if err := sched.Start(); err != nil {
		return err
	}

	fmt.Printf("⏰ Scheduled analysis of %s (%s). Ctrl-C to stop.\n", absPath, cfg.Schedule.Spec)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sched.Stop()
	return nil
}
