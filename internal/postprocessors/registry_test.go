package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/postprocessors/chunker"
)

func passthrough(name string) BuilderFunc {
	return func(map[string]any) (driven.PostProcessor, error) {
		return &mockProcessor{name: name}, nil
	}
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())
	assert.False(t, r.Has("splitter"))

	r.Register("splitter", passthrough("splitter"))

	require.True(t, r.Has("splitter"))
	proc, err := r.Build("splitter", nil)
	require.NoError(t, err)
	assert.Equal(t, "splitter", proc.Name())
}

func TestRegistry_BuildUnknown(t *testing.T) {
	_, err := NewRegistry().Build("stemmer", nil)
	assert.EqualError(t, err, "unknown processor: stemmer")
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("trim", passthrough("trim"))
	r.Register("chunker", passthrough("chunker"))
	r.Register("lower", passthrough("lower"))

	assert.Equal(t, []string{"chunker", "lower", "trim"}, r.Names())
}

func TestRegisterDefaults_Chunker(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
		want int
	}{
		{"nil config", nil, chunker.DefaultChunkSize},
		{"toml integer", map[string]any{"chunk_size": int64(500)}, 500},
		{"json number", map[string]any{"chunk_size": float64(750)}, 750},
		{"zero keeps default", map[string]any{"chunk_size": 0}, chunker.DefaultChunkSize},
		{"wrong type keeps default", map[string]any{"chunk_size": "big"}, chunker.DefaultChunkSize},
	}

	r := NewRegistry()
	RegisterDefaults(r)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := r.Build("chunker", tt.cfg)
			require.NoError(t, err)

			c, ok := proc.(*chunker.Processor)
			require.True(t, ok, "got %T", proc)
			assert.Equal(t, tt.want, c.ChunkSize())
		})
	}
}

func TestRegisterDefaults_DefaultPipelineIsChunkOnly(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	cfg := domain.DefaultPipelineConfig()
	for _, name := range cfg.Processors {
		assert.True(t, r.Has(name), "default pipeline names unregistered processor %s", name)
	}
	assert.Equal(t, []string{"chunker"}, r.Names())
}

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{"a": 1, "b": int64(2), "c": float64(3), "d": "4"}

	assert.Equal(t, 1, getIntFromConfig(cfg, "a"))
	assert.Equal(t, 2, getIntFromConfig(cfg, "b"))
	assert.Equal(t, 3, getIntFromConfig(cfg, "c"))
	assert.Zero(t, getIntFromConfig(cfg, "d"))
	assert.Zero(t, getIntFromConfig(cfg, "missing"))
	assert.Zero(t, getIntFromConfig(nil, "a"))
}
