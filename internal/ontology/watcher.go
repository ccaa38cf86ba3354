package ontology

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moolen/troubleshooter/internal/logging"
)

// LoadFile decodes a Turtle file and enforces the minimum ontology version
func LoadFile(path, namespace, minVersion string) (*MemoryStore, error) {
	store, err := LoadTurtle(path, namespace)
	if err != nil {
		return nil, err
	}
	if err := CheckVersion(store.Version(), minVersion); err != nil {
		return nil, fmt.Errorf("ontology %q: %w", path, err)
	}
	return store, nil
}

// WatcherConfig holds configuration for the Watcher
type WatcherConfig struct {
	Path       string
	Namespace  string
	MinVersion string

	// DebounceMillis coalesces bursts of file events. Default: 500ms
	DebounceMillis int
}

// Watcher reloads the Turtle file on change and swaps the result into a
// Snapshot. A reload that fails to decode or fails the version gate keeps the
// previous store.
type Watcher struct {
	config   WatcherConfig
	snapshot *Snapshot
	logger   *logging.Logger

	cancel   context.CancelFunc
	stopped  chan struct{}
	ready    chan struct{}
	startErr chan error
	mu       sync.Mutex

	debounceTimer *time.Timer
	reloads       atomic.Uint64
	failures      atomic.Uint64
}

// NewWatcher creates a watcher feeding snapshot
func NewWatcher(config WatcherConfig, snapshot *Snapshot) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("ontology path cannot be empty")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("snapshot cannot be nil")
	}
	if config.DebounceMillis == 0 {
		config.DebounceMillis = 500
	}
	return &Watcher{
		config:   config,
		snapshot: snapshot,
		logger:   logging.GetLogger("ontology.watcher"),
		stopped:  make(chan struct{}),
		ready:    make(chan struct{}),
		startErr: make(chan error, 1),
	}, nil
}

// Name implements lifecycle.Component
func (w *Watcher) Name() string {
	return "ontology-watcher"
}

// Start begins watching and returns once the fsnotify watch is installed,
// or the error that prevented installing it
func (w *Watcher) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.watchLoop(watchCtx)

	select {
	case <-w.ready:
		select {
		case err := <-w.startErr:
			cancel()
			return err
		default:
			return nil
		}
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	case <-time.After(5 * time.Second):
		cancel()
		return fmt.Errorf("timeout waiting for ontology watcher to initialize")
	}
}

func (w *Watcher) signalReady() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.ready:
	default:
		close(w.ready)
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer close(w.stopped)
	defer w.signalReady()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.startErr <- fmt.Errorf("failed to create file watcher: %w", err)
		return
	}
	defer watcher.Close()

	// startErr is sent before the deferred signalReady closes ready
	if err := watcher.Add(w.config.Path); err != nil {
		w.startErr <- fmt.Errorf("failed to watch %s: %w", w.config.Path, err)
		return
	}
	w.logger.Info("Watching %s for changes (debounce: %dms)", w.config.Path, w.config.DebounceMillis)
	w.signalReady()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			// Atomic replaces unlink the watched inode; watch the new file.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(50 * time.Millisecond)
				if err := watcher.Add(w.config.Path); err != nil {
					w.logger.Warn("Failed to re-add watch after %s: %v", event.Op, err)
				}
			}
			w.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(time.Duration(w.config.DebounceMillis)*time.Millisecond, func() {
		if err := w.Reload(); err != nil {
			w.logger.Warn("Ontology reload failed, keeping previous graph: %v", err)
		}
	})
}

// Reload decodes the file now and swaps it in on success
func (w *Watcher) Reload() error {
	store, err := LoadFile(w.config.Path, w.config.Namespace, w.config.MinVersion)
	if err != nil {
		w.failures.Add(1)
		return err
	}
	w.snapshot.Swap(store)
	w.reloads.Add(1)
	w.logger.InfoWithFields("Ontology reloaded",
		logging.Field("path", w.config.Path),
		logging.Field("version", store.Version()),
		logging.Field("triples", store.TripleCount()),
	)
	return nil
}

// Reloads returns the number of successful reloads
func (w *Watcher) Reloads() uint64 {
	return w.reloads.Load()
}

// Failures returns the number of rejected reloads
func (w *Watcher) Failures() uint64 {
	return w.failures.Load()
}

// Stop ends the watch loop
func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timeout waiting for ontology watcher to stop")
	}
}
