package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/manifest"
)

// AssetSource supplies the bytes behind an asset path referenced by a
// manifest. Paths are the values found in component props, e.g.
// "assets/logo.svg".
type AssetSource interface {
	Asset(ctx context.Context, path string) ([]byte, error)
}

// AssetSourceFunc adapts a function to the AssetSource interface.
type AssetSourceFunc func(ctx context.Context, path string) ([]byte, error)

func (f AssetSourceFunc) Asset(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

// Asset is one collected static file.
type Asset struct {
	Path string
	Data []byte
}

// Bundle is the assembled export artifact prior to serialization.
type Bundle struct {
	Manifest *manifest.Manifest
	Encoded  []byte // manifest.json contents
	Docs     []byte // COMPONENTS.md contents
	Assets   []Asset

	// MissingAssets lists referenced asset paths the source could not
	// provide. The export still succeeds; callers decide whether a
	// partial bundle is acceptable.
	MissingAssets []string

	CreatedAt time.Time
}

// Exporter assembles bundles from manifests.
type Exporter struct {
	assets AssetSource
	logger *slog.Logger

	// maxAssetFetch bounds concurrent asset reads.
	maxAssetFetch int
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithAssetSource sets the source for referenced static assets. Without
// one, referenced assets are reported missing.
func WithAssetSource(src AssetSource) Option {
	return func(e *Exporter) { e.assets = src }
}

// WithLogger sets the logger used during export.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// WithAssetConcurrency bounds the number of concurrent asset fetches.
func WithAssetConcurrency(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.maxAssetFetch = n
		}
	}
}

// NewExporter returns an Exporter ready for use.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		logger:        slog.Default().With("component", "bundle"),
		maxAssetFetch: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export assembles a bundle for the given manifest. The manifest is
// encoded, its asset references collected, and component documentation
// generated. Asset fetch failures do not abort the export; the paths
// land in MissingAssets instead.
func (e *Exporter) Export(ctx context.Context, m *manifest.Manifest) (*Bundle, error) {
	if m == nil {
		return nil, enginerr.New("M601").
			WithDetail("manifest is nil")
	}

	encoded, err := m.Encode()
	if err != nil {
		return nil, enginerr.New("M601").
			WithDetail(fmt.Sprintf("encoding manifest %q: %v", m.ID, err)).
			Wrap(err)
	}

	b := &Bundle{
		Manifest:  m,
		Encoded:   encoded,
		Docs:      GenerateDocs(m),
		CreatedAt: time.Now().UTC(),
	}

	paths := AssetPaths(m)
	if len(paths) == 0 {
		return b, nil
	}

	if e.assets == nil {
		b.MissingAssets = paths
		e.logger.Warn("no asset source configured, skipping assets",
			"manifest", m.ID, "referenced", len(paths))
		return b, nil
	}

	collected := make([]Asset, len(paths))
	missing := make([]string, len(paths))

	// Fetch failures never abort the export; they land in the missing
	// list. The errgroup is used for its concurrency limit.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxAssetFetch)
	for i, path := range paths {
		g.Go(func() error {
			data, err := e.assets.Asset(gctx, path)
			if err != nil {
				e.logger.Warn("asset unavailable", "path", path, "error", err)
				missing[i] = path
				return nil
			}
			collected[i] = Asset{Path: path, Data: data}
			return nil
		})
	}
	_ = g.Wait()

	for i := range paths {
		if missing[i] != "" {
			b.MissingAssets = append(b.MissingAssets, missing[i])
			continue
		}
		b.Assets = append(b.Assets, collected[i])
	}
	return b, nil
}

// AssetPaths walks a manifest's component props and returns the sorted,
// de-duplicated set of string values that look like static asset
// references (prefixed "assets/").
func AssetPaths(m *manifest.Manifest) []string {
	seen := map[string]struct{}{}
	m.Walk(func(node *manifest.ComponentNode) bool {
		for _, v := range node.Props {
			s, ok := v.(string)
			if !ok || !strings.HasPrefix(s, "assets/") {
				continue
			}
			seen[s] = struct{}{}
		}
		return true
	})
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// WriteZip serializes a bundle into zip format on w.
func WriteZip(b *Bundle, w io.Writer) error {
	zw := zip.NewWriter(w)

	write := func(name string, data []byte) error {
		hdr := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: b.CreatedAt,
		}
		f, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	}

	if err := write("manifest.json", b.Encoded); err != nil {
		return enginerr.New("M602").
			WithDetail("writing manifest.json: " + err.Error()).Wrap(err)
	}
	if err := write("COMPONENTS.md", b.Docs); err != nil {
		return enginerr.New("M602").
			WithDetail("writing COMPONENTS.md: " + err.Error()).Wrap(err)
	}
	for _, a := range b.Assets {
		if err := write(a.Path, a.Data); err != nil {
			return enginerr.New("M602").
				WithDetail("writing " + a.Path + ": " + err.Error()).Wrap(err)
		}
	}
	if err := zw.Close(); err != nil {
		return enginerr.New("M602").
			WithDetail("finalizing archive: " + err.Error()).Wrap(err)
	}
	return nil
}

// Zip is a convenience wrapper returning the archive as a byte slice.
func Zip(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteZip(b, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
