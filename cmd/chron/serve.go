package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devflow/chronicle-go/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server for push-triggered analysis",
	Long: `Starts an HTTP server exposing:

  POST /webhook/analyze  {"repo_path": "...", "formats": [...]}
  GET  /health

Analyses run asynchronously; the webhook responds as soon as the job
is accepted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Webhook.Port = port
	}

	a, err := buildApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Printf("🌐 Webhook server on port %d\n", cfg.Webhook.Port)
	return server.New(a.coordinator, logger).Run(cfg.Webhook.Port)
}
