package registry

import (
	"context"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"golang.org/x/mod/semver"
	"golang.org/x/sync/singleflight"

	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/vtree"
)

// Loader produces a factory on first resolution. Loaders may fetch
// remote component bundles; they are called at most once per key.
type Loader func(ctx context.Context) (vtree.Factory, error)

// PropSpec describes a single component property.
type PropSpec struct {
	// Type is a hint such as "string", "int", "bool", "list", "map".
	Type string

	// Required marks the prop as mandatory for the factory.
	Required bool
}

// PropSchema describes the props a component accepts.
type PropSchema map[string]PropSpec

// Resolved is a fully resolved registry entry.
type Resolved struct {
	Type     string
	Version  string
	Factory  vtree.Factory
	Defaults vtree.Props
	Schema   PropSchema
}

type key struct {
	typ     string
	version string
}

func (k key) String() string { return k.typ + "@" + k.version }

type entry struct {
	factory  vtree.Factory
	loader   Loader
	defaults vtree.Props
	schema   PropSchema
}

// Registry maps (type, version) to component factories.
// Resolve is safe for concurrent use across render passes; Register is
// expected from a single bootstrap or authoring context.
type Registry struct {
	mu      sync.RWMutex
	entries map[key]*entry
	group   singleflight.Group
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for collision warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[key]*entry),
		logger:  slog.Default().With("component", "registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterOption configures a single registration.
type RegisterOption func(*entry)

// WithDefaults sets the factory default props for the entry.
func WithDefaults(defaults vtree.Props) RegisterOption {
	return func(e *entry) {
		e.defaults = defaults
	}
}

// WithPropSchema attaches a prop schema to the entry.
func WithPropSchema(schema PropSchema) RegisterOption {
	return func(e *entry) {
		e.schema = schema
	}
}

// Register adds a factory for (componentType, version).
//
// Re-registering the identical factory for the same key is quiet;
// options on the repeat call replace the stored defaults and schema.
// Registering a different factory for an existing key logs a collision
// warning and replaces the entry (last write wins).
func (r *Registry) Register(componentType, version string, factory vtree.Factory, opts ...RegisterOption) {
	r.register(componentType, version, factory, nil, opts)
}

// RegisterLazy adds a loader for (componentType, version). The loader
// runs on first Resolve; concurrent resolves share a single load.
func (r *Registry) RegisterLazy(componentType, version string, loader Loader, opts ...RegisterOption) {
	r.register(componentType, version, nil, loader, opts)
}

func (r *Registry) register(componentType, version string, factory vtree.Factory, loader Loader, opts []RegisterOption) {
	k := key{typ: componentType, version: version}

	e := &entry{factory: factory, loader: loader}
	for _, opt := range opts {
		opt(e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[k]; ok {
		if factory != nil && sameFactory(existing.factory, factory) {
			// Idempotent re-registration. Options given on the repeat
			// call still replace the stored defaults and schema; a
			// call without options leaves them untouched.
			if len(opts) > 0 {
				existing.defaults = e.defaults
				existing.schema = e.schema
			}
			return
		}
		r.logger.Warn("component registration collision, last write wins",
			"type", componentType,
			"version", version)
		// A replaced key forgets any pending single-flight result so
		// the new loader can run.
		r.group.Forget(k.String())
	}

	r.entries[k] = e
}

// sameFactory reports whether two factories are the identical
// registration. Pointer factories compare by pointer; other comparable
// types compare by value.
func sameFactory(a, b vtree.Factory) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// HasType reports whether any version of the type is registered.
// It implements the validator's TypeSet view.
func (r *Registry) HasType(componentType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k := range r.entries {
		if k.typ == componentType {
			return true
		}
	}
	return false
}

// Versions returns the registered versions for a type, highest first.
func (r *Registry) Versions(componentType string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var versions []string
	for k := range r.entries {
		if k.typ == componentType {
			versions = append(versions, k.version)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versionLess(versions[j], versions[i])
	})
	return versions
}

// Types returns all registered component types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for k := range r.entries {
		if !seen[k.typ] {
			seen[k.typ] = true
			types = append(types, k.typ)
		}
	}
	sort.Strings(types)
	return types
}

// Resolve returns the factory for (componentType, version).
//
// An empty version resolves to the highest registered semantic version
// for the type. A requested version that is absent fails closed with
// an M201 error rather than guessing a compatible version.
func (r *Registry) Resolve(ctx context.Context, componentType, version string) (vtree.Factory, error) {
	resolved, err := r.ResolveEntry(ctx, componentType, version)
	if err != nil {
		return nil, err
	}
	return resolved.Factory, nil
}

// ResolveEntry is Resolve plus the entry's defaults and schema, for
// callers that merge props.
func (r *Registry) ResolveEntry(ctx context.Context, componentType, version string) (*Resolved, error) {
	k, e, err := r.lookup(componentType, version)
	if err != nil {
		return nil, err
	}

	factory, err := r.factoryFor(ctx, k, e)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Resolved{
		Type:     k.typ,
		Version:  k.version,
		Factory:  factory,
		Defaults: e.defaults.Clone(),
		Schema:   e.schema,
	}, nil
}

// lookup finds the entry for the request without loading anything.
func (r *Registry) lookup(componentType, version string) (key, *entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if version != "" {
		k := key{typ: componentType, version: version}
		if e, ok := r.entries[k]; ok {
			return k, e, nil
		}
		return key{}, nil, enginerr.New("M201").
			WithDetail("no factory registered for " + componentType + "@" + version).
			WithSuggestion("register the component or request a released version")
	}

	// Unversioned request: highest registered version wins.
	var (
		best      key
		bestEntry *entry
		found     bool
	)
	for k, e := range r.entries {
		if k.typ != componentType {
			continue
		}
		if !found || versionLess(best.version, k.version) {
			best, bestEntry, found = k, e, true
		}
	}
	if !found {
		return key{}, nil, enginerr.New("M201").
			WithDetail("no versions registered for type " + componentType)
	}
	return best, bestEntry, nil
}

// factoryFor returns the cached factory, running the loader exactly
// once per key across concurrent callers.
func (r *Registry) factoryFor(ctx context.Context, k key, e *entry) (vtree.Factory, error) {
	r.mu.RLock()
	cached := e.factory
	loader := e.loader
	r.mu.RUnlock()

	if cached != nil {
		return cached, nil
	}
	if loader == nil {
		return nil, enginerr.New("M203").
			WithDetail("entry " + k.String() + " has neither factory nor loader")
	}

	result, err, _ := r.group.Do(k.String(), func() (any, error) {
		factory, err := loader(ctx)
		if err != nil {
			return nil, enginerr.New("M202").
				WithDetail("loading " + k.String() + " failed").
				Wrap(err)
		}
		if factory == nil {
			return nil, enginerr.New("M203").
				WithDetail("loader for " + k.String() + " returned a nil factory")
		}

		r.mu.Lock()
		e.factory = factory
		r.mu.Unlock()
		return factory, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(vtree.Factory), nil
}

// versionLess reports whether version a orders before version b.
// Valid semantic versions order above invalid ones; two invalid
// versions fall back to lexicographic order.
func versionLess(a, b string) bool {
	av, bv := "v"+a, "v"+b
	aValid, bValid := semver.IsValid(av), semver.IsValid(bv)
	switch {
	case aValid && bValid:
		if c := semver.Compare(av, bv); c != 0 {
			return c < 0
		}
		return a < b
	case aValid:
		return false
	case bValid:
		return true
	default:
		return a < b
	}
}
