package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devflow/chronicle-go/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive setup with OS keychain credential storage",
	Long: `Walks through Chronicle configuration:

1. LLM API key (stored in the OS keychain when available)
2. Model selection
3. GitHub token for remote repository analysis (optional)
4. Slack token for scheduled standup posts (optional)`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 DevFlow Chronicle Configuration")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	km := config.NewKeyringManager()
	keychainAvailable := km.IsAvailable()
	if !keychainAvailable {
		fmt.Println("⚠️  OS keychain not available, credentials go to the config file.")
		fmt.Println()
	}

	// Step 1: API key
	fmt.Println("Step 1/4: LLM API Key")
	if existing, _ := km.GetAPIKey(); existing != "" {
		fmt.Printf("Current: %s\n", config.MaskAPIKey(existing))
	}
	apiKey, err := promptSecret("Enter API key (blank to keep current): ")
	if err != nil {
		return err
	}
	if apiKey != "" {
		if keychainAvailable {
			if err := km.SaveAPIKey(apiKey); err != nil {
				fmt.Printf("⚠️  Keychain save failed: %v\n", err)
				cfg.API.Key = apiKey
			} else {
				fmt.Println("✅ API key saved to OS keychain")
				cfg.API.UseKeychain = true
				cfg.API.Key = ""
			}
		} else {
			cfg.API.Key = apiKey
		}
	}
	fmt.Println()

	// Step 2: model
	fmt.Println("Step 2/4: Model")
	fmt.Printf("Model [%s]: ", cfg.API.Model)
	if model := readLine(reader); model != "" {
		cfg.API.Model = model
	}
	fmt.Println()

	// Step 3: GitHub token
	fmt.Println("Step 3/4: GitHub Token (optional, for chron analyze of remote repos)")
	ghToken, err := promptSecret("GitHub token (blank to skip): ")
	if err != nil {
		return err
	}
	if ghToken != "" {
		if keychainAvailable {
			if err := km.SetGitHubToken(ghToken); err != nil {
				fmt.Printf("⚠️  Keychain save failed: %v\n", err)
				cfg.GitHub.Token = ghToken
			} else {
				fmt.Println("✅ GitHub token saved to OS keychain")
			}
		} else {
			cfg.GitHub.Token = ghToken
		}
	}
	fmt.Println()

	// Step 4: Slack token
	fmt.Println("Step 4/4: Slack Token (optional, for chron schedule)")
	slackToken, err := promptSecret("Slack bot token (blank to skip): ")
	if err != nil {
		return err
	}
	if slackToken != "" {
		if keychainAvailable {
			if err := km.SetSlackToken(slackToken); err != nil {
				fmt.Printf("⚠️  Keychain save failed: %v\n", err)
				cfg.Slack.Token = slackToken
			} else {
				fmt.Println("✅ Slack token saved to OS keychain")
			}
		} else {
			cfg.Slack.Token = slackToken
		}
		fmt.Printf("Slack channel [%s]: ", cfg.Slack.Channel)
		if channel := readLine(reader); channel != "" {
			cfg.Slack.Channel = channel
		}
	}
	fmt.Println()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	configPath := filepath.Join(homeDir, ".chronicle", "config.yaml")
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	fmt.Printf("✅ Configuration saved to %s\n", configPath)
	fmt.Println("Run: chron analyze")
	return nil
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}
