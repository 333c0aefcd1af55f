// Package catalogwatch reloads the files of a catalogfile data source whenever they change.
// It is kept apart from catalogfile so that applications that only read the files once do not
// need the fsnotify dependency.
package catalogwatch

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

const (
	// DefaultDebounce is how long the watcher waits after the last change to a catalog file before
	// reloading.
	DefaultDebounce = 250 * time.Millisecond

	// DefaultRetryInterval is how often the watcher tries again to watch a directory that does not
	// exist yet.
	DefaultRetryInterval = time.Second

	relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
)

// WatchFiles reloads the catalog files whenever one of them changes, using the default settings
// of Watcher. Use it as follows:
//
//	catalogfile.DataSource().
//	    FilePaths("./catalog/products.yaml").
//	    Reloader(catalogwatch.WatchFiles)
func WatchFiles(paths []string, loggers ldlog.Loggers, reload func(), closeCh <-chan struct{}) error {
	return Watcher().WatchFiles(paths, loggers, reload, closeCh)
}

// WatcherBuilder configures a file watcher. Obtain an instance by calling Watcher(), and pass its
// WatchFiles method to catalogfile.DataSourceBuilder.Reloader:
//
//	catalogfile.DataSource().
//	    FilePaths("./catalog/products.yaml").
//	    Reloader(catalogwatch.Watcher().Debounce(time.Second).WatchFiles)
type WatcherBuilder struct {
	debounce      time.Duration
	retryInterval time.Duration
}

// Watcher returns a builder for a file watcher with the default settings.
func Watcher() *WatcherBuilder {
	return &WatcherBuilder{debounce: DefaultDebounce, retryInterval: DefaultRetryInterval}
}

// Debounce sets how long the watcher waits for more changes before reloading. Editors and
// deployment tools often write a file in several steps, and every change within this interval
// of the previous one results in a single reload. Zero or less means DefaultDebounce.
func (b *WatcherBuilder) Debounce(debounce time.Duration) *WatcherBuilder {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	b.debounce = debounce
	return b
}

// RetryInterval sets how often a directory that cannot be watched yet is tried again. Zero or
// less means DefaultRetryInterval.
func (b *WatcherBuilder) RetryInterval(interval time.Duration) *WatcherBuilder {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	b.retryInterval = interval
	return b
}

// WatchFiles calls reload once right away, and again whenever one of the files at paths is
// created, written, removed or renamed. Changes to other files in the same directories are
// ignored. The files and their directories do not need to exist yet.
//
// The watcher stops when closeCh is closed.
func (b *WatcherBuilder) WatchFiles(paths []string, loggers ldlog.Loggers, reload func(), closeCh <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create file watcher: %w", err)
	}
	s := &watchSession{
		watcher:       watcher,
		loggers:       loggers,
		reload:        reload,
		debounce:      b.debounce,
		retryInterval: b.retryInterval,
		dirs:          make(map[string]*watchedDir),
		files:         make(map[string]bool),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return fmt.Errorf("unable to resolve catalog file path %q: %w", p, err)
		}
		dir := filepath.Dir(abs)
		if s.dirs[dir] == nil {
			s.dirs[dir] = &watchedDir{}
		}
		s.dirs[dir].names = append(s.dirs[dir].names, filepath.Base(abs))
	}
	go s.run(closeCh)
	return nil
}

// watchedDir is a directory containing one or more catalog files. realPath is empty until the
// directory exists and is being watched.
type watchedDir struct {
	names    []string
	realPath string
	warned   bool
}

type watchSession struct {
	watcher       *fsnotify.Watcher
	loggers       ldlog.Loggers
	reload        func()
	debounce      time.Duration
	retryInterval time.Duration
	dirs          map[string]*watchedDir // by configured path
	files         map[string]bool        // real paths of the catalog files in watched directories
}

func (s *watchSession) run(closeCh <-chan struct{}) {
	var (
		debounceTimer *time.Timer
		reloadCh      <-chan time.Time
		retryTicker   *time.Ticker
		retryCh       <-chan time.Time
	)
	scheduleReload := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(s.debounce)
		} else {
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(s.debounce)
		}
		reloadCh = debounceTimer.C
	}
	updateRetry := func() {
		switch pending := s.pendingDirs() > 0; {
		case pending && retryTicker == nil:
			retryTicker = time.NewTicker(s.retryInterval)
			retryCh = retryTicker.C
		case !pending && retryTicker != nil:
			retryTicker.Stop()
			retryTicker, retryCh = nil, nil
		}
	}
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		if retryTicker != nil {
			retryTicker.Stop()
		}
	}()

	// the watches are added before the first load, so a change made while loading is not missed
	s.addWatches()
	updateRetry()
	s.reload()

	for {
		select {
		case <-closeCh:
			if err := s.watcher.Close(); err != nil {
				s.loggers.Errorf("Error closing file watcher: %s", err)
			}
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if s.handleEvent(event) {
				scheduleReload()
			}
			updateRetry()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.loggers.Errorf("File watcher error: %s", err)
		case <-retryCh:
			if s.addWatches() {
				// the files may have been written before their directory could be watched
				scheduleReload()
			}
			updateRetry()
		case <-reloadCh:
			reloadCh = nil
			s.reload()
		}
	}
}

// handleEvent returns true if the event should cause a reload.
func (s *watchSession) handleEvent(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	if event.Op&relevantOps == 0 {
		return false
	}
	if s.files[name] {
		if s.loggers.IsDebugEnabled() {
			s.loggers.Debugf("Catalog file %s changed (%s)", name, event.Op)
		}
		return true
	}
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		for _, dir := range s.dirs {
			if dir.realPath == name {
				s.loggers.Warnf("Directory %s was removed; waiting for it to come back", name)
				s.unwatch(dir)
				return true
			}
		}
	}
	return false
}

// addWatches tries to watch every directory that is not watched yet, and returns true if any
// new directory is now watched.
func (s *watchSession) addWatches() bool {
	added := false
	for _, configured := range s.sortedDirs() {
		dir := s.dirs[configured]
		if dir.realPath != "" {
			continue
		}
		realPath, err := filepath.EvalSymlinks(configured)
		if err == nil {
			err = s.watcher.Add(realPath)
		}
		if err != nil {
			if !dir.warned {
				s.loggers.Warnf("Unable to watch directory %s, will keep trying: %s", configured, err)
				dir.warned = true
			}
			continue
		}
		dir.realPath, dir.warned = realPath, false
		for _, name := range dir.names {
			s.files[filepath.Join(realPath, name)] = true
		}
		added = true
	}
	return added
}

func (s *watchSession) unwatch(dir *watchedDir) {
	for _, name := range dir.names {
		delete(s.files, filepath.Join(dir.realPath, name))
	}
	_ = s.watcher.Remove(dir.realPath) // fsnotify may already have dropped it
	dir.realPath = ""
}

func (s *watchSession) pendingDirs() int {
	n := 0
	for _, dir := range s.dirs {
		if dir.realPath == "" {
			n++
		}
	}
	return n
}

func (s *watchSession) sortedDirs() []string {
	ret := make([]string, 0, len(s.dirs))
	for configured := range s.dirs {
		ret = append(ret, configured)
	}
	sort.Strings(ret)
	return ret
}
