// Package cli provides the command-line interface for Adam.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adam/internal/adapters/driving/chat"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
	"github.com/custodia-labs/adam/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Global flags.
var (
	verbose    bool
	configPath string
)

// Services holds the core services the commands use.
type Services struct {
	Documents driving.DocumentService
	Tools     driving.ToolDispatcher
	Settings  driving.SettingsService

	// Workspace answers file questions for MCP clients. Optional.
	Workspace driving.WorkspaceService

	// Watcher discovers projects in the background. Optional.
	Watcher driving.FolderWatcher

	// Relay forwards watcher discoveries to the chat session. Optional.
	Relay *chat.Relay

	// Model answers chat messages. Optional.
	Model driven.ChatModel

	// Prompts supplies chat prompts. Optional.
	Prompts driven.PromptStore

	// MaxToolRounds bounds model tool use per chat message.
	MaxToolRounds int
}

// Options carries the global flags to the Builder.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Builder creates the services once global flags are parsed.
type Builder func(opts Options) (*Services, error)

var (
	servicesMu sync.Mutex
	loaded     *Services
	builder    Builder
)

// SetBuilder registers the function that wires the core services.
func SetBuilder(b Builder) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	builder = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "adam",
	Short: "Chat with your local documents",
	Long: `Adam is a document assistant for the terminal.

Load text, PDF, DOCX and image files, then ask questions about them in a
chat session. Mention a loaded document with @id to attach its text to a
message; the model can search, read chunks and load more files through
the same tools exposed by 'adam mcp serve'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.adam/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadServices builds the services on first use.
func loadServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	if loaded != nil {
		return loaded, nil
	}
	if builder == nil {
		return nil, errors.New("services not configured")
	}
	s, err := builder(Options{ConfigPath: configPath, Verbose: verbose})
	if err != nil {
		return nil, err
	}
	loaded = s
	return loaded, nil
}
