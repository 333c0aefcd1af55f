package catalogfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"gopkg.in/ghodss/yaml.v1"

	"github.com/mohsenKh75/next-patterns/catalog"
	"github.com/mohsenKh75/next-patterns/interfaces"
)

var errNotLoaded = errors.New("catalog files have not been loaded")

// FileDataSource is a catalog.DataSource backed by local files. It is created by DataSourceBuilder.
//
// If a reload fails, the products from the last successful load stay in place.
type FileDataSource struct {
	absFilePaths         []string
	duplicateIDsHandling DuplicateIDsHandling
	reloaderFactory      ReloaderFactory
	loggers              ldlog.Loggers
	products             []catalog.Product
	byID                 map[int]catalog.Product
	loaded               bool
	onReload             func([]catalog.Product)
	readyCh              chan<- struct{}
	readyOnce            sync.Once
	closeOnce            sync.Once
	closeReloaderCh      chan struct{}
	lock                 sync.RWMutex
}

var _ catalog.DataSource = (*FileDataSource)(nil)

func newFileDataSource(
	loggers ldlog.Loggers,
	filePaths []string,
	duplicateIDsHandling DuplicateIDsHandling,
	reloaderFactory ReloaderFactory,
) (*FileDataSource, error) {
	abs, err := absFilePaths(filePaths)
	if err != nil {
		// COVERAGE: there's no reliable cross-platform way to simulate an invalid path in unit tests
		return nil, err
	}
	fs := &FileDataSource{
		absFilePaths:         abs,
		duplicateIDsHandling: duplicateIDsHandling,
		reloaderFactory:      reloaderFactory,
		loggers:              loggers,
	}
	fs.loggers.SetPrefix("FileDataSource:")
	return fs, nil
}

// OnReload registers a function that is called with the new products after every successful
// load. It must be called before Start.
func (fs *FileDataSource) OnReload(fn func([]catalog.Product)) {
	fs.onReload = fn
}

// IsInitialized returns true once the files have been loaded successfully at least once.
func (fs *FileDataSource) IsInitialized() bool {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.loaded
}

// Start reads the files. closeWhenReady is closed when the first load has finished; if there is a
// reloader and the first load failed, it is closed the first time a load succeeds instead.
func (fs *FileDataSource) Start(closeWhenReady chan<- struct{}) {
	fs.readyCh = closeWhenReady
	fs.reload()

	// If there is no reloader, then we signal readiness immediately regardless of whether the
	// data load succeeded or failed.
	if fs.reloaderFactory == nil {
		fs.signalStartComplete()
		return
	}

	fs.closeReloaderCh = make(chan struct{})
	err := fs.reloaderFactory(fs.absFilePaths, fs.loggers, fs.reload, fs.closeReloaderCh)
	if err != nil {
		fs.loggers.Errorf("Unable to start reloader: %s", err)
		fs.signalStartComplete()
	}
}

// FetchProducts returns the loaded products in file order.
func (fs *FileDataSource) FetchProducts(ctx context.Context, opts interfaces.FetchOptions) ([]catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if !fs.loaded {
		return nil, errNotLoaded
	}
	return append([]catalog.Product(nil), fs.products...), nil
}

// FetchProductByID returns one loaded product, or an error wrapping catalog.ErrUnknownProduct.
func (fs *FileDataSource) FetchProductByID(ctx context.Context, id int, opts interfaces.FetchOptions) (
	catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Product{}, err
	}
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if !fs.loaded {
		return catalog.Product{}, errNotLoaded
	}
	p, ok := fs.byID[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %d", catalog.ErrUnknownProduct, id)
	}
	return p, nil
}

// reload tells the data source to immediately attempt to reread all of the configured source files.
// If any file cannot be loaded or parsed, the loaded products are not modified.
func (fs *FileDataSource) reload() {
	var all []catalog.Product
	for _, path := range fs.absFilePaths {
		products, err := readFile(path)
		if err != nil {
			fs.loggers.Errorf("Unable to load products: %s [%s]", err, path)
			return
		}
		all = append(all, products...)
	}
	products, byID, err := fs.mergeProducts(all)
	if err != nil {
		fs.loggers.Error(err)
		return
	}

	fs.lock.Lock()
	fs.products = products
	fs.byID = byID
	fs.loaded = true
	fs.lock.Unlock()
	fs.loggers.Infof("Loaded %d products", len(products))

	if fs.onReload != nil {
		fs.onReload(append([]catalog.Product(nil), products...))
	}
	fs.signalStartComplete()
}

func (fs *FileDataSource) mergeProducts(all []catalog.Product) ([]catalog.Product, map[int]catalog.Product, error) {
	products := make([]catalog.Product, 0, len(all))
	byID := make(map[int]catalog.Product, len(all))
	for _, p := range all {
		if _, exists := byID[p.ID]; exists {
			if fs.duplicateIDsHandling == DuplicateIDsIgnoreAllButFirst {
				continue
			}
			return nil, nil, fmt.Errorf("product %d is specified more than once", p.ID)
		}
		byID[p.ID] = p
		products = append(products, p)
	}
	return products, byID, nil
}

func (fs *FileDataSource) signalStartComplete() {
	fs.readyOnce.Do(func() {
		if fs.readyCh != nil {
			close(fs.readyCh)
		}
	})
}

// Close stops the reloader, if any.
func (fs *FileDataSource) Close() error {
	fs.closeOnce.Do(func() {
		if fs.closeReloaderCh != nil {
			close(fs.closeReloaderCh)
		}
	})
	return nil
}

func absFilePaths(paths []string) ([]string, error) {
	absPaths := make([]string, 0)
	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			// COVERAGE: there's no reliable cross-platform way to simulate an invalid path in unit tests
			return nil, fmt.Errorf("unable to determine absolute path for '%s'", p)
		}
		absPaths = append(absPaths, absPath)
	}
	return absPaths, nil
}

func readFile(path string) ([]catalog.Product, error) {
	rawData, err := os.ReadFile(path) //nolint:gosec // G304: ok to read file into variable
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %s", err)
	}
	if !detectJSON(rawData) {
		if rawData, err = yaml.YAMLToJSON(rawData); err != nil {
			return nil, fmt.Errorf("error parsing file: %s", err)
		}
	}
	products, err := parseFileData(rawData)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %s", err)
	}
	return products, nil
}

func detectJSON(rawData []byte) bool {
	// A JSON file for our purposes must be an object or an array
	trimmed := strings.TrimLeftFunc(string(rawData), unicode.IsSpace)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

func parseFileData(data []byte) ([]catalog.Product, error) {
	if strings.HasPrefix(strings.TrimLeftFunc(string(data), unicode.IsSpace), "[") {
		return catalog.ParseProducts(data)
	}
	r := jreader.NewReader(data)
	var products []catalog.Product
	for obj := r.Object(); obj.Next(); {
		if string(obj.Name()) == "products" {
			products = catalog.ReadProducts(&r)
		}
	}
	if err := r.Error(); err != nil {
		return nil, err
	}
	return products, nil
}
