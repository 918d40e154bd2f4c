package domain

import "time"

// Configuration defaults.
const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 2000

	// DefaultScanInterval is how often the folder watcher scans its roots.
	DefaultScanInterval = 15 * time.Second

	// DefaultLLMModel is the chat model used when none is configured.
	DefaultLLMModel = "claude-sonnet-4-5"

	// DefaultMaxToolRounds bounds model tool-use iterations per user message.
	DefaultMaxToolRounds = 8
)

// DefaultMarkers returns the file names that mark a folder as a project root.
func DefaultMarkers() []string {
	return []string{
		"go.mod",
		"package.json",
		"pyproject.toml",
		"requirements.txt",
		"Cargo.toml",
		"pom.xml",
		"build.gradle",
		".git",
	}
}

// DefaultWatchRoots returns the folders watched when none are configured,
// relative to the user's home directory.
func DefaultWatchRoots() []string {
	return []string{"Documents", "Desktop", "Projects", "Code", "Development"}
}

// WatcherSettings configures project auto-discovery.
type WatcherSettings struct {
	// Enabled is the master switch for background scanning.
	Enabled bool

	// Interval is the time between scans.
	Interval time.Duration

	// Roots are absolute folders whose immediate subfolders are scanned.
	Roots []string

	// Markers are file names that identify a project folder.
	Markers []string

	// Notify enables filesystem notifications as an early scan trigger.
	Notify bool
}

// IngestSettings configures directory ingestion.
type IngestSettings struct {
	// Recursive descends into subdirectories when true.
	Recursive bool

	// FileTimeout abandons one file after this long. Zero disables it.
	FileTimeout time.Duration
}

// ExtractorSettings names the external binaries extractors call.
type ExtractorSettings struct {
	// OCRCommand is the OCR engine binary.
	OCRCommand string

	// PDFCommand is the optional PDF text extraction binary.
	PDFCommand string
}

// LLMSettings holds chat model configuration.
type LLMSettings struct {
	Model  string
	APIKey string

	// MaxToolRounds bounds tool-use iterations per user message.
	MaxToolRounds int

	// RequestsPerMinute throttles model requests. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the chat model can be used.
func (l LLMSettings) IsConfigured() bool {
	return l.APIKey != "" && l.Model != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	Pipeline   PipelineConfig
	Watcher    WatcherSettings
	Ingest     IngestSettings
	Extractors ExtractorSettings
	LLM        LLMSettings

	// WorkDir resolves relative tool paths. Empty means the process directory.
	WorkDir string
}

// DefaultAppSettings returns settings with sensible defaults.
// Watch roots are resolved by the settings service against the home directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Pipeline: DefaultPipelineConfig(),
		Watcher: WatcherSettings{
			Enabled:  true,
			Interval: DefaultScanInterval,
			Markers:  DefaultMarkers(),
			Notify:   true,
		},
		Extractors: ExtractorSettings{
			OCRCommand: "tesseract",
			PDFCommand: "pdftotext",
		},
		LLM: LLMSettings{
			Model:             DefaultLLMModel,
			MaxToolRounds:     DefaultMaxToolRounds,
			RequestsPerMinute: 50,
		},
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": DefaultChunkSize,
			},
		},
	}
}
