package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, project discovery and the chat model.

Settings are stored in ~/.adam/config.toml unless --config is given.
ANTHROPIC_API_KEY overrides the stored API key.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the chat model",
	Long:  `Set the Anthropic model and API key used by 'adam chat'.`,
	RunE:  runSettingsLLM,
}

var settingsWatcherCmd = &cobra.Command{
	Use:   "watcher",
	Short: "Configure project discovery",
	Long: `Enable or disable background project discovery, and set the scan
interval and the folders that are watched.`,
	RunE: runSettingsWatcher,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsWatcherCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsService() (driving.SettingsService, error) {
	svc, err := loadServices()
	if err != nil {
		return nil, err
	}
	if svc.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return svc.Settings, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	service, err := settingsService()
	if err != nil {
		return err
	}

	settings, err := service.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Processors: %s\n", strings.Join(settings.Pipeline.Processors, ", "))
	if cfg := settings.Pipeline.GetProcessorConfig("chunker"); cfg != nil {
		cmd.Printf("  Chunk size: %v characters\n", cfg["chunk_size"])
	}
	cmd.Println()

	cmd.Println("[Watcher]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Watcher.Enabled))
	cmd.Printf("  Interval: %s\n", settings.Watcher.Interval)
	cmd.Printf("  Notifications: %s\n", yesNo(settings.Watcher.Notify))
	cmd.Printf("  Roots: %s\n", listOrNone(settings.Watcher.Roots))
	cmd.Printf("  Markers: %s\n", listOrNone(settings.Watcher.Markers))
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Recursive: %s\n", yesNo(settings.Ingest.Recursive))
	if settings.Ingest.FileTimeout > 0 {
		cmd.Printf("  File timeout: %s\n", settings.Ingest.FileTimeout)
	} else {
		cmd.Println("  File timeout: none")
	}
	cmd.Println()

	cmd.Println("[Extractors]")
	cmd.Printf("  OCR command: %s\n", settings.Extractors.OCRCommand)
	cmd.Printf("  PDF command: %s\n", settings.Extractors.PDFCommand)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Max tool rounds: %d\n", settings.LLM.MaxToolRounds)
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	if err := service.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Edit the config file or run 'adam settings' subcommands to fix it.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	service, err := settingsService()
	if err != nil {
		return err
	}
	settings, err := service.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Printf("Enter model name [%s]: ", settings.LLM.Model)
	if model := readLine(reader); model != "" {
		settings.LLM.Model = model
	}

	prompt := "Enter API key: "
	if settings.LLM.APIKey != "" {
		prompt = fmt.Sprintf("Enter API key [%s]: ", maskAPIKey(settings.LLM.APIKey))
	}
	cmd.Print(prompt)
	apiKey := readPassword(cmd, reader)
	cmd.Println()
	if apiKey != "" {
		settings.LLM.APIKey = apiKey
	}
	if settings.LLM.APIKey == "" {
		return errors.New("API key is required")
	}

	cmd.Printf("Max tool rounds per message [%d]: ", settings.LLM.MaxToolRounds)
	settings.LLM.MaxToolRounds = parseChoice(readLine(reader), 100, settings.LLM.MaxToolRounds)

	if err := service.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Chat model configured: %s\n", settings.LLM.Model)
	return nil
}

func runSettingsWatcher(cmd *cobra.Command, _ []string) error {
	service, err := settingsService()
	if err != nil {
		return err
	}
	settings, err := service.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Project discovery")
	cmd.Println("  1. Enabled")
	cmd.Println("  2. Disabled")
	current := 1
	if !settings.Watcher.Enabled {
		current = 2
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Watcher.Enabled = parseChoice(readLine(reader), 2, current) == 1

	if settings.Watcher.Enabled {
		cmd.Printf("Scan interval [%s]: ", settings.Watcher.Interval)
		if input := readLine(reader); input != "" {
			interval, err := time.ParseDuration(input)
			if err != nil {
				return fmt.Errorf("invalid interval %q: %w", input, err)
			}
			settings.Watcher.Interval = interval
		}

		cmd.Printf("Folders to watch, comma separated [%s]: ", strings.Join(settings.Watcher.Roots, ","))
		if input := readLine(reader); input != "" {
			settings.Watcher.Roots = splitRoots(input)
		}
	}

	if err := service.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := service.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	if settings.Watcher.Enabled {
		cmd.Printf("Project discovery enabled, scanning every %s.\n", settings.Watcher.Interval)
	} else {
		cmd.Println("Project discovery disabled.")
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// splitRoots parses a comma separated folder list, expanding a leading ~.
func splitRoots(input string) []string {
	home, _ := os.UserHomeDir() //nolint:errcheck // unexpanded paths are kept as typed
	var roots []string
	for _, part := range strings.Split(input, ",") {
		root := strings.TrimSpace(part)
		if root == "" {
			continue
		}
		if home != "" && (root == "~" || strings.HasPrefix(root, "~/")) {
			root = filepath.Join(home, strings.TrimPrefix(root, "~"))
		}
		roots = append(roots, root)
	}
	return roots
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
