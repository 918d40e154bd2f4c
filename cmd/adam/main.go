// Command adam is a terminal assistant for chatting with local documents.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/adam/internal/adapters/driven/ai"
	"github.com/custodia-labs/adam/internal/adapters/driven/config/file"
	"github.com/custodia-labs/adam/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/adam/internal/adapters/driving/chat"
	"github.com/custodia-labs/adam/internal/adapters/driving/cli"
	"github.com/custodia-labs/adam/internal/classifier"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
	"github.com/custodia-labs/adam/internal/core/services"
	"github.com/custodia-labs/adam/internal/extractors"
	"github.com/custodia-labs/adam/internal/logger"
	"github.com/custodia-labs/adam/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBuilder(buildServices)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildServices wires the adapters into the core services.
func buildServices(opts cli.Options) (*cli.Services, error) {
	logger.Section("startup")

	configStore, err := openConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("config: %s", configStore.Path())

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("settings: %v", err)
	}

	cls := classifier.New()
	runner := extractors.ExecRunner{}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, settings.Pipeline)
	if err != nil {
		return nil, err
	}

	documents := services.NewDocumentService(
		memory.NewDocumentStore(),
		cls,
		extractors.NewDefaultRegistry(runner, settings.Extractors),
		pipeline,
	)

	workDir := settings.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	workspace := services.NewWorkspace(cls, workDir)

	relay := &chat.Relay{}
	var watcher driving.FolderWatcher
	if settings.Watcher.Enabled {
		watcher = services.NewFolderWatcher(
			settings.Watcher,
			documents,
			memory.NewCandidateStore(),
			cls,
			services.WithOnDiscovered(relay.Notify),
			services.WithIngestOptions(driving.IngestOptions{
				Recursive:   settings.Ingest.Recursive,
				FileTimeout: settings.Ingest.FileTimeout,
			}),
		)
	}

	tools := services.NewToolDispatcher(services.NewToolRegistry(services.ToolDeps{
		Documents:    documents,
		Watcher:      watcher,
		Finder:       services.NewProjectFinder(cls, workDir),
		Capabilities: services.Capabilities(cls, runner, settings.Extractors),
		WorkDir:      workDir,
		Workspace:    workspace,
		FileTimeout:  settings.Ingest.FileTimeout,
	}))

	prompts, err := file.NewPromptStore(promptDir(opts.ConfigPath))
	if err != nil {
		return nil, err
	}
	llm := ai.Init(&settings.LLM, prompts)
	for _, w := range llm.Warnings {
		logger.Debug("chat model: %s", w)
	}

	return &cli.Services{
		Documents:     documents,
		Tools:         tools,
		Settings:      settingsService,
		Workspace:     workspace,
		Watcher:       watcher,
		Relay:         relay,
		Model:         llm.ChatModel,
		Prompts:       llm.PromptStore,
		MaxToolRounds: settings.LLM.MaxToolRounds,
	}, nil
}

func openConfig(path string) (*file.ConfigStore, error) {
	if path != "" {
		return file.OpenConfigFile(path)
	}
	return file.NewConfigStore("")
}

// promptDir keeps prompts next to an explicit config file.
// Empty selects the default directory.
func promptDir(configPath string) string {
	if configPath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(configPath), "prompts")
}
