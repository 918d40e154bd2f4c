package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, DefaultScanInterval, s.Watcher.Interval)
	assert.True(t, s.Watcher.Enabled)
	assert.Contains(t, s.Watcher.Markers, "package.json")
	assert.Equal(t, "tesseract", s.Extractors.OCRCommand)
	assert.Equal(t, []string{"chunker"}, s.Pipeline.Processors)
	assert.Equal(t, DefaultChunkSize, s.Pipeline.GetProcessorConfig("chunker")["chunk_size"])
	assert.False(t, s.LLM.IsConfigured())
}

func TestPipelineConfig_GetProcessorConfig_Nil(t *testing.T) {
	var c PipelineConfig
	assert.Nil(t, c.GetProcessorConfig("chunker"))
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Model: "m", APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Model: "m"}.IsConfigured())
}
