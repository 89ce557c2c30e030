package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Xiska/libvisio"
)

// pathLocker provides per-path mutual exclusion, so a rapid delete+recreate
// on one output file can never race two conversions against it.
type pathLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocker() *pathLocker {
	return &pathLocker{locks: make(map[string]*sync.Mutex)}
}

func (pl *pathLocker) Lock(path string) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	if !ok {
		l = &sync.Mutex{}
		pl.locks[path] = l
	}
	pl.mu.Unlock()
	l.Lock()
}

func (pl *pathLocker) Unlock(path string) {
	pl.mu.Lock()
	l, ok := pl.locks[path]
	if !ok {
		pl.mu.Unlock()
		return
	}
	pl.mu.Unlock()
	l.Unlock()
}

// debouncer coalesces rapid event bursts into a single callback per file.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	delay  time.Duration
	onFire func(path string)
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.onFire(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

func runWatchMode(cfg *libvisio.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	for _, dir := range cfg.Watch.Directories {
		if err := watchRecursive(w, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		fmt.Printf("Watching: %s\n", dir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	outLock := newPathLocker()

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	db := newDebouncer(500*time.Millisecond, func(path string) {
		j := classifyEvent(path, cfg)
		if j == nil {
			return
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			outLock.Lock(j.output)
			defer outLock.Unlock(j.output)
			if recheck := classifyEvent(path, cfg); recheck == nil {
				return
			}
			runJob(*j, cfg)
		}()
	})
	defer db.stop()

	initialScan(cfg, outLock)

	fmt.Println("Daemon ready. Waiting for file changes...")

	// Polling fallback for network/virtual filesystems where kqueue/inotify
	// don't fire.
	go pollLoop(ctx, cfg, cfg.Watch.PollDuration(), func(path string) {
		db.trigger(path)
	}, func(path string) {
		handleDeletion(path, cfg)
	})

	eventLoop(ctx, w, db)

	fmt.Println("Waiting for in-flight conversions...")
	wg.Wait()
	fmt.Println("Shutdown complete.")
	return nil
}

func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// initialScan processes stale files already present in watched directories
// on daemon startup. Jobs are deduplicated by output path.
func initialScan(cfg *libvisio.Config, outLock *pathLocker) {
	jobs := make(map[string]convJob)

	for _, dir := range cfg.Watch.Directories {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(path), ".vsd") {
				return nil
			}
			if j := classifyEvent(path, cfg); j != nil {
				jobs[j.output] = *j
			}
			return nil
		})
	}

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j convJob) {
			defer func() { <-sem; wg.Done() }()
			outLock.Lock(j.output)
			defer outLock.Unlock(j.output)
			runJob(j, cfg)
		}(j)
	}
	wg.Wait()
}

func eventLoop(ctx context.Context, w *fsnotify.Watcher, db *debouncer) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Remove) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					watchRecursive(w, ev.Name)
					continue
				}
			}
			if ev.Has(fsnotify.Rename) {
				if _, err := os.Stat(ev.Name); err != nil {
					continue
				}
				w.Add(filepath.Dir(ev.Name))
			}
			db.trigger(ev.Name)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		}
	}
}

// pollLoop walks the watched directories at a fixed interval to catch mtime
// changes on filesystems where fsnotify doesn't deliver events.
func pollLoop(ctx context.Context, cfg *libvisio.Config, interval time.Duration, onChanged func(path string), onDeleted func(path string)) {
	mtimes := make(map[string]time.Time)
	prevSources := make(map[string]bool)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		seen := make(map[string]bool)
		sources := make(map[string]bool)
		for _, dir := range cfg.Watch.Directories {
			filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return nil
				}
				if !strings.HasSuffix(strings.ToLower(path), ".vsd") {
					return nil
				}
				seen[path] = true
				sources[path] = true
				info, err := d.Info()
				if err != nil {
					return nil
				}
				mt := info.ModTime()
				if prev, ok := mtimes[path]; !ok || !mt.Equal(prev) {
					mtimes[path] = mt
					onChanged(path)
				}
				return nil
			})
		}

		for path := range prevSources {
			if !sources[path] {
				onDeleted(path)
			}
		}
		prevSources = sources

		for path := range mtimes {
			if !seen[path] {
				delete(mtimes, path)
			}
		}
	}
}

func classifyEvent(path string, cfg *libvisio.Config) *convJob {
	if !strings.HasSuffix(strings.ToLower(path), ".vsd") {
		return nil
	}
	srcDir := sourceDir(path, cfg)
	if srcDir == "" {
		return nil
	}
	rel, _ := filepath.Rel(srcDir, path)
	out := filepath.Join(cfg.Watch.Output, strings.TrimSuffix(rel, filepath.Ext(rel))+outputExt(cfg))
	if isUpToDate(path, out) {
		return nil
	}
	return &convJob{input: path, output: out}
}

func runJob(j convJob, cfg *libvisio.Config) {
	if dir := filepath.Dir(j.output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory '%s': %v\n", dir, err)
			return
		}
	}

	start := time.Now()
	if err := convertFile(j.input, j.output, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error converting '%s': %v\n", j.input, err)
		return
	}
	fmt.Printf("Converted '%s' -> '%s' (%.2fs)\n", filepath.Base(j.input), filepath.Base(j.output), time.Since(start).Seconds())
}

func sourceDir(path string, cfg *libvisio.Config) string {
	for _, dir := range cfg.Watch.Directories {
		if isUnderDir(path, dir) {
			return dir
		}
	}
	return ""
}

func isUnderDir(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	return strings.HasPrefix(absPath, absDir+string(filepath.Separator)) || absPath == absDir
}

// handleDeletion removes the output file for a deleted source file and
// cleans up empty parent directories up to the output root.
func handleDeletion(path string, cfg *libvisio.Config) {
	srcDir := sourceDir(path, cfg)
	if srcDir == "" {
		return
	}
	rel, _ := filepath.Rel(srcDir, path)
	out := filepath.Join(cfg.Watch.Output, strings.TrimSuffix(rel, filepath.Ext(rel))+outputExt(cfg))
	if _, err := os.Stat(out); err != nil {
		return
	}
	if err := os.Remove(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing output '%s': %v\n", out, err)
		return
	}
	fmt.Printf("Removed output '%s' (source deleted)\n", filepath.Base(out))
	removeEmptyParents(filepath.Dir(out), cfg.Watch.Output)
}

func removeEmptyParents(dir, stopDir string) {
	absStop, err := filepath.Abs(stopDir)
	if err != nil {
		return
	}
	for {
		absDir, err := filepath.Abs(dir)
		if err != nil || absDir == absStop {
			return
		}
		if !strings.HasPrefix(absDir, absStop+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
