package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/adam/internal/core/domain"
	"github.com/custodia-labs/adam/internal/core/ports/driven"
	"github.com/custodia-labs/adam/internal/core/ports/driving"
	"github.com/custodia-labs/adam/internal/logger"
)

// Ensure FolderWatcher implements the interface.
var _ driving.FolderWatcher = (*FolderWatcher)(nil)

// previewFiles bounds ProjectCandidate.Preview.
const previewFiles = 10

// FolderWatcher periodically scans watched roots for project folders and
// queues them for confirmation. Scanning never writes to the document
// store; only Resolve with accept does, through the document service.
type FolderWatcher struct {
	settings   domain.WatcherSettings
	documents  driving.DocumentService
	candidates driven.CandidateStore
	classifier driven.Classifier
	ingestOpts driving.IngestOptions

	onDiscovered func(domain.ProjectCandidate)
	readDir      func(string) ([]os.DirEntry, error)
	now          func() time.Time

	// scans holds at most one in-flight scan per root.
	scans singleflight.Group

	mu      sync.Mutex
	states  map[string]domain.RootState
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a FolderWatcher.
type WatcherOption func(*FolderWatcher)

// WithOnDiscovered registers a callback for newly queued candidates.
// The callback runs on the scanning goroutine.
func WithOnDiscovered(fn func(domain.ProjectCandidate)) WatcherOption {
	return func(w *FolderWatcher) {
		w.onDiscovered = fn
	}
}

// WithIngestOptions sets the options used when an accepted candidate is ingested.
func WithIngestOptions(opts driving.IngestOptions) WatcherOption {
	return func(w *FolderWatcher) {
		w.ingestOpts = opts
	}
}

// NewFolderWatcher creates a watcher over settings.Roots. Roots are made
// absolute and deduplicated, so every scan of a folder uses the same key.
func NewFolderWatcher(
	settings domain.WatcherSettings,
	documents driving.DocumentService,
	candidates driven.CandidateStore,
	classifier driven.Classifier,
	opts ...WatcherOption,
) *FolderWatcher {
	if settings.Interval <= 0 {
		settings.Interval = domain.DefaultScanInterval
	}
	if len(settings.Markers) == 0 {
		settings.Markers = domain.DefaultMarkers()
	}
	settings.Roots = normalizeRoots(settings.Roots)

	w := &FolderWatcher{
		settings:   settings,
		documents:  documents,
		candidates: candidates,
		classifier: classifier,
		readDir:    os.ReadDir,
		now:        time.Now,
		states:     make(map[string]domain.RootState, len(settings.Roots)),
	}
	for _, root := range settings.Roots {
		w.states[root] = domain.RootIdle
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start schedules a scan of every root at the configured interval and,
// when enabled, on filesystem create events in a root. It blocks until
// ctx is cancelled or Stop is called.
func (w *FolderWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if !w.settings.Enabled {
		w.mu.Unlock()
		logger.Debug("watcher disabled")
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.running = true
	w.cancel = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(done)
	}()

	log := cronLogger{}
	scheduler := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log)),
	)
	spec := fmt.Sprintf("@every %s", w.settings.Interval)
	if _, err := scheduler.AddFunc(spec, func() { w.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule scans %q: %w", spec, err)
	}
	scheduler.Start()
	logger.Debug("watcher started: %d roots every %s", len(w.settings.Roots), w.settings.Interval)

	var notifier *fsnotify.Watcher
	if w.settings.Notify {
		n, err := w.watchRoots(ctx)
		if err != nil {
			logger.Warn("filesystem notifications unavailable: %v", err)
		} else {
			notifier = n
		}
	}

	<-ctx.Done()

	<-scheduler.Stop().Done()
	if notifier != nil {
		_ = notifier.Close()
	}
	w.wg.Wait()
	logger.Debug("watcher stopped")
	return nil
}

// Stop cancels scanning and waits for Start to return.
func (w *FolderWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done
	return nil
}

// tick scans every root. Roots that are still being scanned are joined.
func (w *FolderWatcher) tick(ctx context.Context) {
	for _, root := range w.settings.Roots {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.scanRoot(ctx, root); err != nil {
			logger.Warn("scan %s: %v", root, err)
		}
	}
}

// ScanNow scans every root once and returns the newly queued candidates.
func (w *FolderWatcher) ScanNow(ctx context.Context) ([]domain.ProjectCandidate, error) {
	var found []domain.ProjectCandidate
	var errs []error
	for _, root := range w.settings.Roots {
		queued, err := w.scanRoot(ctx, root)
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", root, err))
		}
		found = append(found, queued...)
	}
	return found, errors.Join(errs...)
}

// scanRoot scans one root. Concurrent callers for the same root share a
// single scan and its result.
func (w *FolderWatcher) scanRoot(ctx context.Context, root string) ([]domain.ProjectCandidate, error) {
	v, err, shared := w.scans.Do(root, func() (any, error) {
		w.setState(root, domain.RootScanning)
		found, err := w.scan(ctx, root)
		queued := w.queue(ctx, found)
		w.settle(root, true)
		return queued, err
	})
	if shared {
		logger.Debug("scan %s: joined in-flight scan", root)
	}
	queued, _ := v.([]domain.ProjectCandidate)
	return queued, err
}

// scan lists candidate project folders directly under root.
func (w *FolderWatcher) scan(ctx context.Context, root string) ([]domain.ProjectCandidate, error) {
	entries, err := w.readDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var found []domain.ProjectCandidate
	for _, entry := range entries {
		if ctx.Err() != nil {
			return found, ctx.Err()
		}
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if w.candidates.Known(ctx, path) {
			continue
		}
		c, ok := w.inspect(root, path)
		if ok {
			found = append(found, c)
		}
	}
	return found, nil
}

// inspect builds a candidate for path when it holds a marker file and at
// least one supported file.
func (w *FolderWatcher) inspect(root, path string) (domain.ProjectCandidate, bool) {
	entries, err := w.readDir(path)
	if err != nil {
		logger.Debug("scan %s: %v", path, err)
		return domain.ProjectCandidate{}, false
	}

	markers := make(map[string]bool, len(w.settings.Markers))
	for _, m := range w.settings.Markers {
		markers[m] = true
	}

	var matched, files []string
	for _, entry := range entries {
		name := entry.Name()
		if markers[name] {
			matched = append(matched, name)
		}
		if entry.IsDir() || isHidden(name) {
			continue
		}
		if w.classifier.Classify(name, nil) != domain.MimeClassUnknown {
			files = append(files, name)
		}
	}
	if len(matched) == 0 || len(files) == 0 {
		return domain.ProjectCandidate{}, false
	}

	sort.Strings(matched)
	sort.Strings(files)
	preview := files
	if len(preview) > previewFiles {
		preview = preview[:previewFiles]
	}

	return domain.ProjectCandidate{
		Path:         path,
		Root:         root,
		Markers:      matched,
		Preview:      append([]string(nil), preview...),
		FileCount:    len(files),
		DiscoveredAt: w.now(),
		State:        domain.CandidateDiscovered,
	}, true
}

// queue stores new candidates and notifies the callback.
func (w *FolderWatcher) queue(ctx context.Context, found []domain.ProjectCandidate) []domain.ProjectCandidate {
	var queued []domain.ProjectCandidate
	for _, c := range found {
		added, err := w.candidates.Save(ctx, c)
		if err != nil {
			logger.Warn("queue candidate %s: %v", c.Path, err)
			continue
		}
		if !added {
			continue
		}
		c.State = domain.CandidatePendingConfirmation
		queued = append(queued, c)
		logger.L().Sugar().Infow("project discovered", "path", c.Path, "markers", c.Markers, "files", c.FileCount)
		if w.onDiscovered != nil {
			w.onDiscovered(c)
		}
	}
	return queued
}

// Pending returns candidates awaiting confirmation.
func (w *FolderWatcher) Pending() []domain.ProjectCandidate {
	pending, err := w.candidates.List(context.Background())
	if err != nil {
		logger.Warn("list candidates: %v", err)
		return nil
	}
	return pending
}

// Resolve accepts or rejects a pending candidate. Accepting ingests the
// folder through the document service; rejecting only forgets it.
func (w *FolderWatcher) Resolve(ctx context.Context, path string, accept bool) (*domain.IngestionReport, error) {
	c, err := w.candidates.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer w.settle(c.Root, false)

	if !accept {
		_, err := w.candidates.Resolve(ctx, path, domain.CandidateRejected)
		return nil, err
	}

	report, err := w.documents.IngestDirectory(ctx, c.Path, w.ingestOpts)
	if err != nil {
		return report, err
	}
	if _, err := w.candidates.Resolve(ctx, path, domain.CandidateAccepted); err != nil {
		return report, err
	}
	return report, nil
}

// RootStates returns a copy of the per-root scan states.
func (w *FolderWatcher) RootStates() map[string]domain.RootState {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]domain.RootState, len(w.states))
	for k, v := range w.states {
		out[k] = v
	}
	return out
}

func (w *FolderWatcher) setState(root string, state domain.RootState) {
	w.mu.Lock()
	w.states[root] = state
	w.mu.Unlock()
}

// settle sets root to awaiting confirmation while any of its candidates
// are pending, otherwise to idle. A root that is being scanned keeps its
// state unless the scan itself is finishing.
func (w *FolderWatcher) settle(root string, finishing bool) {
	state := domain.RootIdle
	for _, c := range w.Pending() {
		if c.Root == root {
			state = domain.RootAwaitingConfirmation
			break
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !finishing && w.states[root] == domain.RootScanning {
		return
	}
	w.states[root] = state
}

// watchRoots starts a filesystem watcher that triggers an early scan of a
// root when something is created in it.
func (w *FolderWatcher) watchRoots(ctx context.Context) (*fsnotify.Watcher, error) {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, root := range w.settings.Roots {
		if err := notifier.Add(root); err != nil {
			logger.Debug("watch %s: %v", root, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = notifier.Close()
		return nil, errors.New("no watchable roots")
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-notifier.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				root, ok := w.rootFor(filepath.Dir(event.Name))
				if !ok {
					continue
				}
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					if _, err := w.scanRoot(ctx, root); err != nil {
						logger.Warn("scan %s: %v", root, err)
					}
				}()
			case err, ok := <-notifier.Errors:
				if !ok {
					return
				}
				logger.Warn("filesystem watcher: %v", err)
			}
		}
	}()
	return notifier, nil
}

// rootFor maps a directory reported by fsnotify back to its configured root.
func (w *FolderWatcher) rootFor(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for _, root := range w.settings.Roots {
		if root == dir {
			return root, true
		}
	}
	return "", false
}

// normalizeRoots expands a leading ~, makes each root absolute and drops
// duplicates, keeping the configured order.
func normalizeRoots(roots []string) []string {
	seen := make(map[string]bool, len(roots))
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		if root == "~" || strings.HasPrefix(root, "~"+string(filepath.Separator)) {
			if home, err := os.UserHomeDir(); err == nil {
				root = filepath.Join(home, root[1:])
			}
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		} else {
			root = filepath.Clean(root)
		}
		if seen[root] {
			continue
		}
		seen[root] = true
		out = append(out, root)
	}
	return out
}

// cronLogger routes cron's logging through the structured logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.L().Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.L().Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
