package catalogfile

import (
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

// ReloaderFactory is a function type used with DataSourceBuilder.Reloader, to specify a mechanism for
// detecting when data files should be reloaded. Its standard implementation is in the catalogwatch package.
type ReloaderFactory func(paths []string, loggers ldlog.Loggers, reload func(), closeCh <-chan struct{}) error

// DuplicateIDsHandling is a parameter type used with DataSourceBuilder.DuplicateIDsHandling.
type DuplicateIDsHandling string

const (
	// DuplicateIDsFail is an option for DataSourceBuilder.DuplicateIDsHandling, meaning that data loading
	// should fail if product IDs are duplicated. This is the default behavior.
	DuplicateIDsFail DuplicateIDsHandling = "fail"

	// DuplicateIDsIgnoreAllButFirst is an option for DataSourceBuilder.DuplicateIDsHandling, meaning that
	// if product IDs are duplicated the first occurrence will be used.
	DuplicateIDsIgnoreAllButFirst DuplicateIDsHandling = "ignore"
)

// DataSourceBuilder is a builder for configuring the file-based data source.
//
// Obtain an instance of this type by calling DataSource(). Builder calls can be chained, for example:
//
//	source, err := catalogfile.DataSource().
//	    FilePaths("products.yaml").
//	    Reloader(catalogwatch.WatchFiles).
//	    Build(logging)
type DataSourceBuilder struct {
	filePaths            []string
	duplicateIDsHandling DuplicateIDsHandling
	reloaderFactory      ReloaderFactory
}

// DataSource returns a configurable builder for a file-based data source.
func DataSource() *DataSourceBuilder {
	return &DataSourceBuilder{duplicateIDsHandling: DuplicateIDsFail}
}

// DuplicateIDsHandling specifies how to handle product IDs that are duplicated within or across files.
//
// If this is not specified, or if you set it to an unrecognized value, the default is DuplicateIDsFail.
func (b *DataSourceBuilder) DuplicateIDsHandling(duplicateIDsHandling DuplicateIDsHandling) *DataSourceBuilder {
	b.duplicateIDsHandling = duplicateIDsHandling
	return b
}

// FilePaths specifies the input data files. The paths may be any number of absolute or relative file paths.
func (b *DataSourceBuilder) FilePaths(paths ...string) *DataSourceBuilder {
	b.filePaths = append(b.filePaths, paths...)
	return b
}

// Reloader specifies a mechanism for reloading data files.
//
// It is normally used with the catalogwatch package, as follows:
//
//	catalogfile.DataSource().FilePaths(filePaths...).Reloader(catalogwatch.WatchFiles)
func (b *DataSourceBuilder) Reloader(reloaderFactory ReloaderFactory) *DataSourceBuilder {
	b.reloaderFactory = reloaderFactory
	return b
}

// Build creates the data source. It does not read any files until Start is called.
func (b *DataSourceBuilder) Build(logging interfaces.LoggingConfiguration) (*FileDataSource, error) {
	return newFileDataSource(logging.Loggers, b.filePaths, b.duplicateIDsHandling, b.reloaderFactory)
}
