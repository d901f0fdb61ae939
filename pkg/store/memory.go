package store

import (
	"context"
	"sync"

	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/manifest"
)

// MemoryStore keeps manifests in process memory. It is safe for
// concurrent use. Stored documents are deep-copied through the codec
// so callers can keep mutating their drafts.
type MemoryStore struct {
	mu       sync.RWMutex
	versions map[string]map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[string]map[string][]byte)}
}

// Put stores a manifest under (id, version) and returns the id.
func (s *MemoryStore) Put(_ context.Context, m *manifest.Manifest) (string, error) {
	if m == nil || m.ID == "" {
		return "", enginerr.New("M552").WithDetail("cannot store a manifest without an id")
	}
	data, err := m.Encode()
	if err != nil {
		return "", enginerr.FromError(err, "M552")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[m.ID] == nil {
		s.versions[m.ID] = make(map[string][]byte)
	}
	s.versions[m.ID][m.Version] = data
	return m.ID, nil
}

// Get retrieves a manifest. An empty version returns the highest
// stored semantic version.
func (s *MemoryStore) Get(_ context.Context, id, version string) (*manifest.Manifest, error) {
	s.mu.RLock()
	byVersion := s.versions[id]
	var data []byte
	if version != "" {
		data = byVersion[version]
	} else {
		best := ""
		for v := range byVersion {
			if best == "" || versionGreater(v, best) {
				best = v
			}
		}
		if best != "" {
			data = byVersion[best]
		}
	}
	s.mu.RUnlock()

	if data == nil {
		return nil, NotFound(id, version)
	}
	return manifest.Parse(data)
}

// Len returns the total number of stored (id, version) documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byVersion := range s.versions {
		n += len(byVersion)
	}
	return n
}
