package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adam/internal/adapters/driving/cli"
	"github.com/custodia-labs/adam/internal/core/domain"
)

func TestBuildServices(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")

	svc, err := buildServices(cli.Options{ConfigPath: configPath})
	require.NoError(t, err)

	assert.NotNil(t, svc.Documents)
	assert.NotNil(t, svc.Settings)
	assert.NotNil(t, svc.Workspace)
	assert.NotNil(t, svc.Watcher, "discovery is enabled by default")
	assert.NotNil(t, svc.Relay)
	assert.Nil(t, svc.Model)
	assert.NotNil(t, svc.Prompts)
	assert.Equal(t, domain.DefaultMaxToolRounds, svc.MaxToolRounds)
	assert.Len(t, svc.Tools.Specs(), len(domain.AllTools()))
}

func TestBuildServices_WithKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-key")
	t.Setenv("HOME", t.TempDir())

	svc, err := buildServices(cli.Options{ConfigPath: filepath.Join(t.TempDir(), "config.toml")})
	require.NoError(t, err)

	require.NotNil(t, svc.Model)
	assert.Equal(t, domain.DefaultLLMModel, svc.Model.ModelName())
}

func TestPromptDir(t *testing.T) {
	assert.Equal(t, "", promptDir(""))
	assert.Equal(t, filepath.Join("/etc/adam", "prompts"), promptDir("/etc/adam/config.toml"))
}
