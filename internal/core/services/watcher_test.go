package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/adam/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/adam/internal/classifier"
	"github.com/custodia-labs/adam/internal/core/domain"
)

func newTestWatcher(t *testing.T, roots ...string) (*FolderWatcher, *DocumentService) {
	t.Helper()
	docs, _ := newTestDocumentService(t)
	w := NewFolderWatcher(domain.WatcherSettings{
		Enabled:  true,
		Interval: time.Second,
		Roots:    roots,
	}, docs, memory.NewCandidateStore(), classifier.New())
	return w, docs
}

// makeProject creates root/name with the given files.
func makeProject(t *testing.T, root, name string, files ...string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range files {
		writeFile(t, dir, f, "content of "+f)
	}
	return dir
}

func TestFolderWatcher_ScanNow_FindsProjects(t *testing.T) {
	root := t.TempDir()
	api := makeProject(t, root, "api", "go.mod", "main.go", "README.md")
	makeProject(t, root, "notes", "todo.txt")            // no marker
	makeProject(t, root, "empty-proj", "go.mod")         // marker but nothing supported
	makeProject(t, root, ".hidden", "go.mod", "main.go") // hidden folder
	require.NoError(t, os.MkdirAll(filepath.Join(root, "web", ".git"), 0o755))
	writeFile(t, filepath.Join(root, "web"), "index.html", "<html></html>")

	w, docs := newTestWatcher(t, root)

	found, err := w.ScanNow(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, api, found[0].Path)
	assert.Equal(t, root, found[0].Root)
	assert.Equal(t, []string{"go.mod"}, found[0].Markers)
	assert.Equal(t, []string{"README.md", "main.go"}, found[0].Preview)
	assert.Equal(t, 2, found[0].FileCount)
	assert.Equal(t, domain.CandidatePendingConfirmation, found[0].State)

	assert.Equal(t, filepath.Join(root, "web"), found[1].Path)
	assert.Equal(t, []string{".git"}, found[1].Markers)

	// Scanning never writes to the store.
	stats, err := docs.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)

	assert.Equal(t, domain.RootAwaitingConfirmation, w.RootStates()[root])
}

func TestFolderWatcher_ScanNow_DoesNotRediscover(t *testing.T) {
	root := t.TempDir()
	makeProject(t, root, "api", "go.mod", "main.go")
	w, _ := newTestWatcher(t, root)
	ctx := context.Background()

	first, err := w.ScanNow(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	again, err := w.ScanNow(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, w.Pending(), 1)

	_, err = w.Resolve(ctx, first[0].Path, false)
	require.NoError(t, err)

	again, err = w.ScanNow(ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "rejected projects are remembered for the session")
	assert.Empty(t, w.Pending())
	assert.Equal(t, domain.RootIdle, w.RootStates()[root])
}

func TestFolderWatcher_ScanNow_MissingRootIgnored(t *testing.T) {
	w, _ := newTestWatcher(t, filepath.Join(t.TempDir(), "does-not-exist"))

	found, err := w.ScanNow(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFolderWatcher_ScanNow_PreviewLimited(t *testing.T) {
	root := t.TempDir()
	files := []string{"pyproject.toml"}
	for i := 0; i < 14; i++ {
		files = append(files, string(rune('a'+i))+".py")
	}
	makeProject(t, root, "big", files...)
	w, _ := newTestWatcher(t, root)

	found, err := w.ScanNow(context.Background())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Len(t, found[0].Preview, previewFiles)
	assert.Equal(t, 15, found[0].FileCount)
}

func TestFolderWatcher_Resolve_AcceptIngests(t *testing.T) {
	root := t.TempDir()
	api := makeProject(t, root, "api", "go.mod", "main.go", "notes.md")
	w, docs := newTestWatcher(t, root)
	ctx := context.Background()

	_, err := w.ScanNow(ctx)
	require.NoError(t, err)

	report, err := w.Resolve(ctx, api, true)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 3, report.Succeeded())

	stats, err := docs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
	assert.Empty(t, w.Pending())
	assert.Equal(t, domain.RootIdle, w.RootStates()[root])

	_, err = w.Resolve(ctx, api, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderWatcher_OnDiscovered(t *testing.T) {
	root := t.TempDir()
	makeProject(t, root, "svc", "Cargo.toml", "lib.rs")
	docs, _ := newTestDocumentService(t)

	var got []domain.ProjectCandidate
	w := NewFolderWatcher(domain.WatcherSettings{Roots: []string{root}}, docs,
		memory.NewCandidateStore(), classifier.New(),
		WithOnDiscovered(func(c domain.ProjectCandidate) { got = append(got, c) }))

	_, err := w.ScanNow(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, filepath.Join(root, "svc"), got[0].Path)
}

func TestFolderWatcher_SingleScanInFlight(t *testing.T) {
	root := t.TempDir()
	makeProject(t, root, "api", "go.mod", "main.go")
	w, _ := newTestWatcher(t, root)

	var rootReads int32
	started := make(chan struct{})
	release := make(chan struct{})
	w.readDir = func(path string) ([]os.DirEntry, error) {
		if path == root {
			if atomic.AddInt32(&rootReads, 1) == 1 {
				close(started)
				<-release
			}
		}
		return os.ReadDir(path)
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	var firstFound []domain.ProjectCandidate
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstFound, _ = w.scanRoot(ctx, root)
	}()

	<-started
	assert.Equal(t, domain.RootScanning, w.RootStates()[root])

	// A tick arriving mid-scan joins the running scan.
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.tick(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&rootReads))
	assert.Len(t, firstFound, 1)
	assert.Len(t, w.Pending(), 1)
}

func TestFolderWatcher_StartStop_NoLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	docs, _ := newTestDocumentService(t)
	w := NewFolderWatcher(domain.WatcherSettings{
		Enabled:  true,
		Interval: time.Second,
		Roots:    []string{root},
	}, docs, memory.NewCandidateStore(), classifier.New())

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, <-errCh)
	require.NoError(t, w.Stop(), "stopping twice is a no-op")
}

func TestFolderWatcher_Start_ScansOnSchedule(t *testing.T) {
	root := t.TempDir()
	makeProject(t, root, "api", "go.mod", "main.go")
	docs, _ := newTestDocumentService(t)

	discovered := make(chan domain.ProjectCandidate, 1)
	w := NewFolderWatcher(domain.WatcherSettings{
		Enabled:  true,
		Interval: time.Second,
		Roots:    []string{root},
	}, docs, memory.NewCandidateStore(), classifier.New(),
		WithOnDiscovered(func(c domain.ProjectCandidate) { discovered <- c }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	select {
	case c := <-discovered:
		assert.Equal(t, filepath.Join(root, "api"), c.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no scan within 5s")
	}
	cancel()
}

func TestFolderWatcher_Start_NotifyTriggersScan(t *testing.T) {
	root := t.TempDir()
	docs, _ := newTestDocumentService(t)

	var scans int32
	w := NewFolderWatcher(domain.WatcherSettings{
		Enabled:  true,
		Interval: time.Hour,
		Roots:    []string{root},
		Notify:   true,
	}, docs, memory.NewCandidateStore(), classifier.New())
	w.readDir = func(path string) ([]os.DirEntry, error) {
		if path == root {
			atomic.AddInt32(&scans, 1)
		}
		return os.ReadDir(path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(ctx)
	}()
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(root, "new-project"), 0o755))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&scans) >= 1
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestFolderWatcher_Start_Disabled(t *testing.T) {
	w, _ := newTestWatcher(t)
	w.settings.Enabled = false

	assert.NoError(t, w.Start(context.Background()))
}

func TestFolderWatcher_UncleanRootSharesScanWithEvents(t *testing.T) {
	root := t.TempDir()
	makeProject(t, root, "api", "go.mod", "main.go")
	w, _ := newTestWatcher(t, root+string(filepath.Separator))

	require.Equal(t, map[string]domain.RootState{root: domain.RootIdle}, w.RootStates())

	var rootReads, active, maxActive int32
	started := make(chan struct{})
	release := make(chan struct{})
	w.readDir = func(path string) ([]os.DirEntry, error) {
		if path == root {
			n := atomic.AddInt32(&active, 1)
			defer atomic.AddInt32(&active, -1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			if atomic.AddInt32(&rootReads, 1) == 1 {
				close(started)
				<-release
			}
		}
		return os.ReadDir(path)
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.tick(ctx)
	}()
	<-started

	// A create event in the root resolves to the configured key.
	eventRoot, ok := w.rootFor(filepath.Dir(filepath.Join(root, "web")))
	require.True(t, ok)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = w.scanRoot(ctx, eventRoot)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
	assert.Equal(t, []string{root}, keys(w.RootStates()))
}

func TestFolderWatcher_RootForUnknownDir(t *testing.T) {
	root := t.TempDir()
	w, _ := newTestWatcher(t, root)

	_, ok := w.rootFor(filepath.Join(root, "api"))
	assert.False(t, ok)
	got, ok := w.rootFor(root + "/.")
	assert.True(t, ok)
	assert.Equal(t, root, got)
}

func TestNormalizeRoots(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got := normalizeRoots([]string{"/srv/code/", "/srv/code", "", "~/work", "./proj", "/srv/./code/../code"})

	assert.Equal(t, []string{
		"/srv/code",
		filepath.Join(home, "work"),
		filepath.Join(cwd, "proj"),
	}, got)
}

func keys(m map[string]domain.RootState) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
