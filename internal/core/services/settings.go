package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize         = "chunk.size"
	keyPipelineProcs     = "pipeline.processors"
	keyWatcherEnabled    = "watcher.enabled"
	keyWatcherInterval   = "watcher.interval"
	keyWatcherRoots      = "watcher.roots"
	keyWatcherMarkers    = "watcher.markers"
	keyWatcherNotify     = "watcher.fsnotify"
	keyIngestRecursive   = "ingest.recursive"
	keyIngestFileTimeout = "ingest.file_timeout"
	keyOCRCommand        = "ocr.command"
	keyPDFCommand        = "pdf.command"
	keyLLMModel          = "llm.model"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMMaxRounds      = "llm.max_tool_rounds"
	keyLLMRequestsPerMin = "llm.requests_per_minute"
	keyWorkDir           = "workdir"
)

// EnvAPIKey overrides llm.api_key when set.
//
//nolint:gosec // G101: environment variable name, not a credential.
const EnvAPIKey = "ANTHROPIC_API_KEY"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
	homeDir     func() (string, error)
	getwd       func() (string, error)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
		homeDir:     os.UserHomeDir,
		getwd:       os.Getwd,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	apiKey := s.configStore.GetString(keyLLMAPIKey)
	if env := s.getenv(EnvAPIKey); env != "" {
		apiKey = env
	}

	settings := &domain.AppSettings{
		Pipeline: s.GetPipelineConfig(),
		Watcher: domain.WatcherSettings{
			Enabled:  s.getBool(keyWatcherEnabled, defaults.Watcher.Enabled),
			Interval: s.getDuration(keyWatcherInterval, defaults.Watcher.Interval),
			Roots:    s.getStringSlice(keyWatcherRoots, s.defaultRoots()),
			Markers:  s.getStringSlice(keyWatcherMarkers, defaults.Watcher.Markers),
			Notify:   s.getBool(keyWatcherNotify, defaults.Watcher.Notify),
		},
		Ingest: domain.IngestSettings{
			Recursive:   s.getBool(keyIngestRecursive, defaults.Ingest.Recursive),
			FileTimeout: s.getDuration(keyIngestFileTimeout, defaults.Ingest.FileTimeout),
		},
		Extractors: domain.ExtractorSettings{
			OCRCommand: s.getString(keyOCRCommand, defaults.Extractors.OCRCommand),
			PDFCommand: s.getString(keyPDFCommand, defaults.Extractors.PDFCommand),
		},
		LLM: domain.LLMSettings{
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			APIKey:            apiKey,
			MaxToolRounds:     s.getInt(keyLLMMaxRounds, defaults.LLM.MaxToolRounds),
			RequestsPerMinute: s.getInt(keyLLMRequestsPerMin, defaults.LLM.RequestsPerMinute),
		},
		WorkDir: s.configStore.GetString(keyWorkDir),
	}

	return settings, nil
}

type setting struct {
	key   string
	value any
}

// Save persists application settings. The API key is only written when it
// did not come from the environment.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keyPipelineProcs, settings.Pipeline.Processors},
		{keyWatcherEnabled, settings.Watcher.Enabled},
		{keyWatcherInterval, settings.Watcher.Interval.String()},
		{keyWatcherRoots, settings.Watcher.Roots},
		{keyWatcherMarkers, settings.Watcher.Markers},
		{keyWatcherNotify, settings.Watcher.Notify},
		{keyIngestRecursive, settings.Ingest.Recursive},
		{keyIngestFileTimeout, settings.Ingest.FileTimeout.String()},
		{keyOCRCommand, settings.Extractors.OCRCommand},
		{keyPDFCommand, settings.Extractors.PDFCommand},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMMaxRounds, settings.LLM.MaxToolRounds},
		{keyLLMRequestsPerMin, settings.LLM.RequestsPerMinute},
		{keyWorkDir, settings.WorkDir},
	}
	if size := getIntFromMap(settings.Pipeline.GetProcessorConfig("chunker"), "chunk_size"); size > 0 {
		values = append(values, setting{keyChunkSize, size})
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.getenv(EnvAPIKey) {
		values = append(values, setting{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if size := getIntFromMap(settings.Pipeline.GetProcessorConfig("chunker"), "chunk_size"); size <= 0 {
		return fmt.Errorf("%s must be positive, got %d: %w", keyChunkSize, size, domain.ErrInvalidInput)
	}
	if settings.Watcher.Interval < time.Second {
		return fmt.Errorf("%s must be at least 1s, got %s: %w",
			keyWatcherInterval, settings.Watcher.Interval, domain.ErrInvalidInput)
	}
	if len(settings.Watcher.Markers) == 0 {
		return fmt.Errorf("%s must not be empty: %w", keyWatcherMarkers, domain.ErrInvalidInput)
	}
	if settings.LLM.MaxToolRounds <= 0 {
		return fmt.Errorf("%s must be positive: %w", keyLLMMaxRounds, domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	defaults.Watcher.Roots = s.defaultRoots()
	return defaults
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// chunk.size overrides the chunker's chunk_size.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcs); len(processors) > 0 {
		cfg.Processors = processors
	}
	if size := s.configStore.GetInt(keyChunkSize); size > 0 {
		cfg.ProcessorConfigs["chunker"] = map[string]any{"chunk_size": size}
	}
	return cfg
}

// defaultRoots resolves the default watch roots against the home
// directory and appends the working directory.
func (s *SettingsService) defaultRoots() []string {
	var roots []string
	if home, err := s.homeDir(); err == nil {
		for _, rel := range domain.DefaultWatchRoots() {
			roots = append(roots, filepath.Join(home, rel))
		}
	}
	if wd, err := s.getwd(); err == nil {
		roots = append(roots, wd)
	}
	return roots
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

// getDuration reads a duration string such as "15s" or "2m".
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	str := s.configStore.GetString(key)
	if str == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}

func getIntFromMap(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
