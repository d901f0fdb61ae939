package manifest

import (
	"github.com/google/uuid"
)

// Manifest is the root page document: an ordered tree of typed,
// versioned components plus theme and metadata.
type Manifest struct {
	// ID uniquely identifies the page document.
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable page name.
	Name string `json:"name" yaml:"name"`

	// TenantID is the owning tenant. It is mandatory and must be
	// non-empty; validation rejects manifests without it.
	TenantID string `json:"tenantId" yaml:"tenantId"`

	// Version is the semantic version of the document.
	Version string `json:"version" yaml:"version"`

	// Components is the ordered component tree. Order is significant
	// and preserved through every stage of the pipeline.
	Components []ComponentNode `json:"components" yaml:"components"`

	// Theme configures design tokens for this page.
	Theme ThemeConfig `json:"theme,omitempty" yaml:"theme,omitempty"`

	// Metadata holds SEO-like page fields.
	Metadata Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Flags holds optional feature/integration switches.
	Flags map[string]bool `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// ComponentNode is one entry in the manifest tree.
type ComponentNode struct {
	// ID is unique within the manifest. Collisions are a validation
	// error.
	ID string `json:"id" yaml:"id"`

	// Type is the component type key resolved through the registry.
	Type string `json:"type" yaml:"type"`

	// Version pins a component version. Empty means "latest
	// registered".
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Props is the node's property bag.
	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`

	// ThemeOverrides are node-level token overrides, the highest
	// priority level of the theme inheritance chain.
	ThemeOverrides map[string]any `json:"themeOverrides,omitempty" yaml:"themeOverrides,omitempty"`

	// Children is the ordered child list. Only meaningful for
	// container-type components.
	Children []ComponentNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// ThemeConfig is the manifest-level theme block.
type ThemeConfig struct {
	// BrandID selects brand-scoped token defaults.
	BrandID string `json:"brandId,omitempty" yaml:"brandId,omitempty"`

	// Tokens are manifest-level design token values.
	Tokens map[string]any `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Metadata holds SEO-like page fields.
type Metadata struct {
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Canonical   string   `json:"canonical,omitempty" yaml:"canonical,omitempty"`
}

// NewDraft creates an empty draft manifest for a tenant with a fresh id
// and version 0.1.0.
func NewDraft(tenantID, name string) *Manifest {
	return &Manifest{
		ID:       uuid.NewString(),
		Name:     name,
		TenantID: tenantID,
		Version:  "0.1.0",
	}
}

// EnsureNodeIDs assigns fresh ids to any nodes missing one. Existing
// ids are never changed.
func (m *Manifest) EnsureNodeIDs() {
	var ensure func(nodes []ComponentNode)
	ensure = func(nodes []ComponentNode) {
		for i := range nodes {
			if nodes[i].ID == "" {
				nodes[i].ID = uuid.NewString()
			}
			ensure(nodes[i].Children)
		}
	}
	ensure(m.Components)
}

// Walk visits every component node depth-first in tree order. Walking
// stops early if fn returns false.
func (m *Manifest) Walk(fn func(*ComponentNode) bool) {
	var walk func(nodes []ComponentNode) bool
	walk = func(nodes []ComponentNode) bool {
		for i := range nodes {
			if !fn(&nodes[i]) {
				return false
			}
			if !walk(nodes[i].Children) {
				return false
			}
		}
		return true
	}
	walk(m.Components)
}

// NodeCount returns the total number of component nodes in the tree.
func (m *Manifest) NodeCount() int {
	n := 0
	m.Walk(func(*ComponentNode) bool {
		n++
		return true
	})
	return n
}

// TypesUsed returns the distinct component types in tree order of
// first appearance.
func (m *Manifest) TypesUsed() []string {
	seen := make(map[string]bool)
	var types []string
	m.Walk(func(node *ComponentNode) bool {
		if !seen[node.Type] {
			seen[node.Type] = true
			types = append(types, node.Type)
		}
		return true
	})
	return types
}
