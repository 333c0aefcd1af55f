package catalogwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/mohsenKh75/next-patterns/catalog"
	"github.com/mohsenKh75/next-patterns/catalogfile"
	"github.com/mohsenKh75/next-patterns/interfaces"
	"github.com/mohsenKh75/next-patterns/internal/sharedtest"
)

const testDebounce = 100 * time.Millisecond

func writeFile(t *testing.T, filename, text string) {
	require.NoError(t, os.WriteFile(filename, []byte(text), 0o600))
}

func requireTrueWithinDuration(t *testing.T, maxTime time.Duration, test func() bool) {
	deadline := time.Now().Add(maxTime)
	for !test() {
		if time.Now().After(deadline) {
			require.FailNowf(t, "Did not see expected change", "waited %v", maxTime)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// startWatching watches paths and returns a count of reloads. The watcher is stopped when the
// test ends, or earlier if the returned function is called.
func startWatching(t *testing.T, builder *WatcherBuilder, paths ...string) (*atomic.Int32, func()) {
	reloads := atomic.NewInt32(0)
	closeCh := make(chan struct{})
	stop := func() {
		select {
		case <-closeCh:
		default:
			close(closeCh)
		}
	}
	t.Cleanup(stop)
	require.NoError(t, builder.WatchFiles(paths, sharedtest.NewTestLoggers(), func() { reloads.Inc() }, closeCh))
	return reloads, stop
}

func TestWatcherStartsWithOneReload(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "products.json")
	writeFile(t, filename, `[]`)

	reloads, _ := startWatching(t, Watcher().Debounce(testDebounce), filename)

	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 1 })
	time.Sleep(3 * testDebounce)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestWatcherReloadsOncePerBurstOfChanges(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "products.json")
	writeFile(t, filename, `[]`)
	reloads, _ := startWatching(t, Watcher().Debounce(testDebounce), filename)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 1 })

	for i := 0; i < 5; i++ {
		writeFile(t, filename, `[{"id": 1, "title": "draft"}]`)
	}

	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 2 })
	time.Sleep(3 * testDebounce)
	assert.Equal(t, int32(2), reloads.Load())

	writeFile(t, filename, `[{"id": 1, "title": "final"}]`)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 3 })
}

func TestWatcherIgnoresOtherFilesInDirectory(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "products.json")
	writeFile(t, filename, `[]`)
	reloads, _ := startWatching(t, Watcher().Debounce(testDebounce), filename)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 1 })

	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated")
	writeFile(t, filepath.Join(dir, "products.json.bak"), `[]`)
	time.Sleep(3 * testDebounce)
	assert.Equal(t, int32(1), reloads.Load())

	writeFile(t, filename, `[{"id": 1, "title": "first"}]`)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 2 })
}

func TestWatcherWatchesFilesInSeveralDirectories(t *testing.T) {
	first := filepath.Join(t.TempDir(), "a.json")
	second := filepath.Join(t.TempDir(), "b.json")
	writeFile(t, first, `[]`)
	writeFile(t, second, `[]`)
	reloads, _ := startWatching(t, Watcher().Debounce(testDebounce), first, second)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 1 })

	writeFile(t, second, `[{"id": 2, "title": "second"}]`)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 2 })
}

func TestWatcherWaitsForMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalog")
	filename := filepath.Join(dir, "products.json")
	reloads, _ := startWatching(t, Watcher().Debounce(testDebounce).RetryInterval(50*time.Millisecond), filename)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 1 })

	require.NoError(t, os.Mkdir(dir, 0o700))
	writeFile(t, filename, `[{"id": 1, "title": "first"}]`)

	requireTrueWithinDuration(t, 2*time.Second, func() bool { return reloads.Load() >= 2 })
}

func TestWatcherStopsWhenClosed(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "products.json")
	writeFile(t, filename, `[]`)
	reloads, stop := startWatching(t, Watcher().Debounce(testDebounce), filename)
	requireTrueWithinDuration(t, time.Second, func() bool { return reloads.Load() == 1 })

	stop()
	time.Sleep(testDebounce)
	writeFile(t, filename, `[{"id": 1, "title": "first"}]`)
	time.Sleep(3 * testDebounce)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestHandleEvent(t *testing.T) {
	s := &watchSession{
		loggers: ldlog.NewDisabledLoggers(),
		dirs: map[string]*watchedDir{
			"/catalog": {names: []string{"products.json"}, realPath: "/real/catalog"},
		},
		files: map[string]bool{"/real/catalog/products.json": true},
	}
	s.watcher, _ = fsnotify.NewWatcher()
	defer s.watcher.Close()

	assert.True(t, s.handleEvent(fsnotify.Event{Name: "/real/catalog/products.json", Op: fsnotify.Write}))
	assert.True(t, s.handleEvent(fsnotify.Event{Name: "/real/catalog/products.json", Op: fsnotify.Create}))
	assert.False(t, s.handleEvent(fsnotify.Event{Name: "/real/catalog/products.json", Op: fsnotify.Chmod}))
	assert.False(t, s.handleEvent(fsnotify.Event{Name: "/real/catalog/other.json", Op: fsnotify.Write}))
	assert.Equal(t, 0, s.pendingDirs())

	assert.True(t, s.handleEvent(fsnotify.Event{Name: "/real/catalog", Op: fsnotify.Remove}))
	assert.Equal(t, 1, s.pendingDirs())
	assert.False(t, s.handleEvent(fsnotify.Event{Name: "/real/catalog/products.json", Op: fsnotify.Write}))
}

func TestWatchedDataSourceReloadsOncePerEdit(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "products.yaml")
	writeFile(t, filename, `
---
products: bad
`)
	dataSource, err := catalogfile.DataSource().
		FilePaths(filename).
		Reloader(Watcher().Debounce(testDebounce).WatchFiles).
		Build(interfaces.LoggingConfiguration{Loggers: sharedtest.NewTestLoggers()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dataSource.Close() })

	loads := atomic.NewInt32(0)
	dataSource.OnReload(func([]catalog.Product) { loads.Inc() })
	hasTitle := func(title string) bool {
		p, err := dataSource.FetchProductByID(context.Background(), 1, interfaces.FetchOptions{})
		return err == nil && p.Title == title
	}

	closeWhenReady := make(chan struct{})
	dataSource.Start(closeWhenReady)
	time.Sleep(3 * testDebounce)
	assert.False(t, dataSource.IsInitialized())
	assert.Equal(t, int32(0), loads.Load())

	writeFile(t, filename, `
---
products:
  - id: 1
    title: first
`)
	<-closeWhenReady
	assert.True(t, hasTitle("first"))
	assert.Equal(t, int32(1), loads.Load())

	writeFile(t, filename, `
---
products:
  - id: 1
    title: second
`)
	requireTrueWithinDuration(t, time.Second, func() bool { return hasTitle("second") })
	time.Sleep(3 * testDebounce)
	assert.Equal(t, int32(2), loads.Load())
}
