package store

import (
	"context"

	"golang.org/x/mod/semver"

	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/manifest"
)

// Store is the external storage collaborator contract. An empty
// version requests the latest stored version of the manifest.
type Store interface {
	Get(ctx context.Context, id, version string) (*manifest.Manifest, error)
	Put(ctx context.Context, m *manifest.Manifest) (string, error)
}

// NotFound constructs the canonical not-found error for a manifest.
func NotFound(id, version string) error {
	e := enginerr.New("M551")
	if version == "" {
		return e.WithDetail("no versions of manifest " + id + " exist")
	}
	return e.WithDetail("manifest " + id + "@" + version + " does not exist")
}

// IsNotFound reports whether err is a manifest-not-found error.
func IsNotFound(err error) bool {
	return enginerr.Is(err, "M551")
}

// versionGreater reports whether a is a higher semantic version than b.
func versionGreater(a, b string) bool {
	return semver.Compare("v"+a, "v"+b) > 0
}
