package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

func TestConfigStore_ImplementsInterface(t *testing.T) {
	var _ driven.ConfigStore = (*ConfigStore)(nil)
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".adam", "config.toml"), store.Path())
	info, err := os.Stat(filepath.Join(home, ".adam"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenConfigFile_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "adam.toml")

	store, err := OpenConfigFile(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Set("llm.model", "claude-sonnet-4-5"))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config.toml")
	assert.Nil(t, store)
}

func TestConfigStore_NestedTablesFlatten(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
workdir = "/srv/docs"

[chunk]
size = 1500

[watcher]
enabled = false
interval = "30s"
roots = ["/home/me/Code", "/home/me/Projects"]

[llm]
model = "claude-opus-4-1"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docs", store.GetString("workdir"))
	assert.Equal(t, 1500, store.GetInt("chunk.size"))
	assert.False(t, store.GetBool("watcher.enabled"))
	_, present := store.Get("watcher.enabled")
	assert.True(t, present)
	assert.Equal(t, "30s", store.GetString("watcher.interval"))
	assert.Equal(t, []string{"/home/me/Code", "/home/me/Projects"}, store.GetStringSlice("watcher.roots"))
	assert.Equal(t, "claude-opus-4-1", store.GetString("llm.model"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("chunk.size", 2000))
	require.NoError(t, store.Set("chunk.size64", int64(4000)))
	require.NoError(t, store.Set("chunk.text", "1200"))
	require.NoError(t, store.Set("ingest.recursive", true))
	require.NoError(t, store.Set("watcher.markers", []string{"go.mod", ".git"}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int", store.GetInt("chunk.size"), 2000},
		{"int64", store.GetInt("chunk.size64"), 4000},
		{"numeric string", store.GetInt("chunk.text"), 1200},
		{"bool", store.GetBool("ingest.recursive"), true},
		{"slice", store.GetStringSlice("watcher.markers"), []string{"go.mod", ".git"}},
		{"wrong type string", store.GetString("chunk.size"), ""},
		{"wrong type bool", store.GetBool("chunk.size"), false},
		{"wrong type slice", store.GetStringSlice("chunk.size"), []string(nil)},
		{"missing int", store.GetInt("missing"), 0},
		{"missing string", store.GetString("missing"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "claude-sonnet-4-5"))
	require.NoError(t, store.Set("chunk.size", 1000))
	require.NoError(t, store.Set("watcher.fsnotify", false))
	require.NoError(t, store.Set("watcher.roots", []string{"/a", "/b"}))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", reloaded.GetString("llm.model"))
	assert.Equal(t, 1000, reloaded.GetInt("chunk.size"))
	assert.False(t, reloaded.GetBool("watcher.fsnotify"))
	_, ok := reloaded.Get("watcher.fsnotify")
	assert.True(t, ok)
	assert.Equal(t, []string{"/a", "/b"}, reloaded.GetStringSlice("watcher.roots"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_EmptyTOMLData(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Reload_PicksUpExternalEdits(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("ocr.command", "tesseract"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[ocr]\ncommand = \"/opt/bin/tesseract\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "/opt/bin/tesseract", store.GetString("ocr.command"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("chunk.size", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("chunk.size")
		}()
	}
	wg.Wait()

	_, ok := store.Get("chunk.size")
	assert.True(t, ok)
}

func TestConfigStore_SaveWritesTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("workdir", "/srv/docs"))
	require.NoError(t, store.Set("watcher.interval", "30s"))
	require.NoError(t, store.Set("llm.model", "claude-sonnet-4-5"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[watcher]")
	assert.Contains(t, content, "[llm]")
	assert.NotContains(t, content, `"watcher.interval"`)
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{
		"workdir":        "/w",
		"watcher.roots":  []string{"/a"},
		"watcher.notify": true,
		"a.b.c":          1,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"workdir": "/w",
		"watcher": map[string]any{"roots": []string{"/a"}, "notify": true},
		"a":       map[string]any{"b": map[string]any{"c": 1}},
	}, nested)
	assert.Equal(t, map[string]any{
		"workdir":        "/w",
		"watcher.roots":  []string{"/a"},
		"watcher.notify": true,
		"a.b.c":          1,
	}, flattenMap(nested, ""))
}

func TestNestMap_Conflict(t *testing.T) {
	_, err := nestMap(map[string]any{"llm": "x", "llm.model": "y"})
	assert.Error(t, err)

	_, err = nestMap(map[string]any{"a.b": 1, "a.b.c": 2})
	assert.Error(t, err)
}
