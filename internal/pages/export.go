package pages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/mohsenKh75/next-patterns/interfaces"
)

const (
	manifestFileName = "manifest.json"
	manifestVersion  = 1
)

// ExportOptions controls Site.Export.
type ExportOptions struct {
	// Strict makes the export fail if the product list cannot be fetched or any page cannot be
	// rendered. Otherwise such pages are logged and left out, and are generated on demand when
	// the site is served.
	Strict bool
}

// ExportedPage describes one file written by Site.Export.
type ExportedPage struct {
	Path         string
	File         string
	CacheControl string
}

// Manifest describes the result of Site.Export. It is also written to manifest.json in the
// export directory.
type Manifest struct {
	BuildID     string
	GeneratedAt time.Time
	Pages       []ExportedPage
}

// MarshalJSON encodes the manifest.
func (m Manifest) MarshalJSON() ([]byte, error) {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("version").Int(manifestVersion)
	obj.Name("buildId").String(m.BuildID)
	obj.Name("generatedAt").String(m.GeneratedAt.UTC().Format(time.RFC3339))
	pagesArr := obj.Name("pages").Array()
	for _, p := range m.Pages {
		pageObj := w.Object()
		pageObj.Name("path").String(p.Path)
		pageObj.Name("file").String(p.File)
		pageObj.Name("cacheControl").String(p.CacheControl)
		pageObj.End()
	}
	pagesArr.End()
	obj.End()
	return w.Bytes(), w.Error()
}

// Export pre-renders the home page, the product list and the product detail pages named by the
// product handle's static params into dir, as <path>/index.html, and writes manifest.json.
func (s *Site) Export(ctx context.Context, dir string, options ExportOptions) (Manifest, error) {
	var params []interfaces.Params
	if options.Strict {
		var err error
		if params, err = s.products.LoadStaticParams(ctx); err != nil {
			return Manifest{}, fmt.Errorf("loading product list: %w", err)
		}
	} else {
		params = s.products.GenerateStaticParams(ctx)
	}

	type pending struct {
		path       string
		renderPage func(context.Context) (page, error)
	}
	pages := []pending{
		{"/", s.renderHome},
		{"/products", s.renderProducts},
	}
	for _, p := range params {
		pages = append(pages, pending{
			path:       "/products/" + p[ProductParam],
			renderPage: func(ctx context.Context) (page, error) { return s.renderProduct(ctx, p) },
		})
	}

	manifest := Manifest{BuildID: uuid.NewString(), GeneratedAt: time.Now()}
	for _, pp := range pages {
		if err := ctx.Err(); err != nil {
			return Manifest{}, err
		}
		rendered, err := pp.renderPage(ctx)
		if err != nil {
			if options.Strict {
				return Manifest{}, fmt.Errorf("rendering %s: %w", pp.path, err)
			}
			s.loggers.Errorf("Skipping export of %s: %s", pp.path, err)
			continue
		}
		file := exportFileName(pp.path)
		if err := writeFile(filepath.Join(dir, file), rendered.body); err != nil {
			return Manifest{}, err
		}
		manifest.Pages = append(manifest.Pages, ExportedPage{
			Path:         pp.path,
			File:         file,
			CacheControl: rendered.cacheControl,
		})
	}

	data, err := manifest.MarshalJSON()
	if err != nil {
		return Manifest{}, err
	}
	if err := writeFile(filepath.Join(dir, manifestFileName), data); err != nil {
		return Manifest{}, err
	}
	s.loggers.Infof("Exported %d pages to %s (build %s)", len(manifest.Pages), dir, manifest.BuildID)
	return manifest, nil
}

// exportFileName maps a page path to its file, relative to the export directory.
func exportFileName(path string) string {
	return filepath.Join(filepath.FromSlash(strings.Trim(path, "/")), "index.html")
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // exported pages are public
}
