package manifest

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// FindingType categorizes validation findings.
type FindingType string

const (
	// ErrorMissingField indicates a required top-level field is absent.
	ErrorMissingField FindingType = "MISSING_FIELD"

	// ErrorEmptyTenant indicates the owning-tenant identifier is empty.
	// This is its own finding type because an empty tenant id once
	// reached render-time route generation and caused a hard failure
	// deep in the pipeline; it must be rejected up front.
	ErrorEmptyTenant FindingType = "EMPTY_TENANT"

	// ErrorDuplicateNodeID indicates two nodes share an id.
	ErrorDuplicateNodeID FindingType = "DUPLICATE_NODE_ID"

	// ErrorNodeMissingID indicates a node has an empty id.
	ErrorNodeMissingID FindingType = "NODE_MISSING_ID"

	// ErrorNodeMissingType indicates a node has an empty type key.
	ErrorNodeMissingType FindingType = "NODE_MISSING_TYPE"

	// WarnUnknownType indicates a node's type is not registered.
	// Rendering proceeds with a fallback placeholder for the node.
	WarnUnknownType FindingType = "UNKNOWN_TYPE"

	// WarnInvalidVersion indicates the manifest version is not a
	// semantic version string.
	WarnInvalidVersion FindingType = "INVALID_VERSION"
)

// Finding is a single validation error, warning, or suggestion.
type Finding struct {
	// Type is the finding category.
	Type FindingType `json:"type"`

	// Field names the manifest field involved, if any.
	Field string `json:"field,omitempty"`

	// NodeID identifies the component node involved, if any.
	NodeID string `json:"nodeId,omitempty"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

func (f Finding) String() string {
	switch {
	case f.NodeID != "":
		return fmt.Sprintf("%s: %s (node %s)", f.Type, f.Message, f.NodeID)
	case f.Field != "":
		return fmt.Sprintf("%s: %s (field %s)", f.Type, f.Message, f.Field)
	default:
		return fmt.Sprintf("%s: %s", f.Type, f.Message)
	}
}

// Result is the outcome of validating a manifest. Fatal errors set
// IsValid to false and block rendering entirely; warnings do not.
type Result struct {
	IsValid     bool      `json:"isValid"`
	Errors      []Finding `json:"errors"`
	Warnings    []Finding `json:"warnings"`
	Suggestions []Finding `json:"suggestions"`
}

// TypeSet is the registry view the validator needs: just enough to
// flag unknown component types. The authoring tool never reaches past
// this boundary into registry internals.
type TypeSet interface {
	HasType(componentType string) bool
}

// Options configures validation.
type Options struct {
	// KnownTypes, when set, enables unknown-type warnings. Types not
	// present in the set produce warnings, never errors: rendering
	// substitutes fallback nodes for them.
	KnownTypes TypeSet
}

// Validate checks structural and referential integrity of a manifest.
// It never panics and always returns a structured Result, even for a
// nil manifest.
func Validate(m *Manifest, opts Options) Result {
	res := Result{IsValid: true}

	fail := func(f Finding) {
		res.Errors = append(res.Errors, f)
		res.IsValid = false
	}
	warn := func(f Finding) {
		res.Warnings = append(res.Warnings, f)
	}
	suggest := func(f Finding) {
		res.Suggestions = append(res.Suggestions, f)
	}

	if m == nil {
		fail(Finding{Type: ErrorMissingField, Message: "manifest is nil"})
		return res
	}

	// Required top-level fields, in order.
	if m.ID == "" {
		fail(Finding{Type: ErrorMissingField, Field: "id", Message: "manifest id is required"})
	}
	if m.TenantID == "" {
		fail(Finding{Type: ErrorEmptyTenant, Field: "tenantId", Message: "owning-tenant identifier is required and must be non-empty"})
	}
	if m.Version == "" {
		fail(Finding{Type: ErrorMissingField, Field: "version", Message: "manifest version is required"})
	} else if !semver.IsValid("v" + m.Version) {
		warn(Finding{Type: WarnInvalidVersion, Field: "version", Message: fmt.Sprintf("version %q is not a semantic version", m.Version)})
	}
	if m.Components == nil {
		fail(Finding{Type: ErrorMissingField, Field: "components", Message: "components array is required"})
	}

	// Tree-wide node id uniqueness, plus per-node shape checks.
	seen := make(map[string]bool)
	m.Walk(func(node *ComponentNode) bool {
		switch {
		case node.ID == "":
			fail(Finding{Type: ErrorNodeMissingID, Message: fmt.Sprintf("component node of type %q has no id", node.Type)})
		case seen[node.ID]:
			fail(Finding{Type: ErrorDuplicateNodeID, NodeID: node.ID, Message: fmt.Sprintf("node id %q appears more than once", node.ID)})
		default:
			seen[node.ID] = true
		}

		if node.Type == "" {
			fail(Finding{Type: ErrorNodeMissingType, NodeID: node.ID, Message: "component node has no type key"})
		} else if opts.KnownTypes != nil && !opts.KnownTypes.HasType(node.Type) {
			warn(Finding{Type: WarnUnknownType, NodeID: node.ID, Message: fmt.Sprintf("type %q is not registered; a fallback placeholder will be rendered", node.Type)})
		}
		return true
	})

	if m.Name == "" {
		suggest(Finding{Field: "name", Message: "consider setting a human-readable page name"})
	}
	if m.Metadata.Title == "" {
		suggest(Finding{Field: "metadata.title", Message: "consider setting metadata.title for SEO"})
	}

	return res
}
