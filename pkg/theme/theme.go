package theme

import (
	"context"
	"log/slog"
	"sync"
)

// Source is the external brand/asset token collaborator. Lookups may
// suspend on asynchronous work such as fetching a brand sheet.
//
// ResolveToken returns (value, true, nil) when the token is defined
// for the brand, and (nil, false, nil) when it is not. Errors never
// abort a render; they degrade to the next chain level.
type Source interface {
	ResolveToken(ctx context.Context, key, brandID string) (any, bool, error)
}

// StaticSource is an in-memory Source keyed by brand id.
type StaticSource struct {
	mu     sync.RWMutex
	brands map[string]map[string]any
}

// NewStaticSource creates an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{brands: make(map[string]map[string]any)}
}

// SetBrand replaces the token set for a brand.
func (s *StaticSource) SetBrand(brandID string, tokens map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[brandID] = tokens
}

// ResolveToken implements Source.
func (s *StaticSource) ResolveToken(_ context.Context, key, brandID string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tokens, ok := s.brands[brandID]; ok {
		if v, ok := tokens[key]; ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// Resolver resolves tokens through the inheritance chain
// node override → manifest theme → brand default → global default.
type Resolver struct {
	source Source
	global map[string]any
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSource sets the brand token source.
func WithSource(source Source) ResolverOption {
	return func(r *Resolver) {
		r.source = source
	}
}

// WithGlobalDefaults sets the global default tokens, the last level of
// the chain.
func WithGlobalDefaults(tokens map[string]any) ResolverOption {
	return func(r *Resolver) {
		r.global = tokens
	}
}

// WithLogger sets the logger for miss warnings.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		logger: slog.Default().With("component", "theme"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveToken walks the inheritance chain and returns the first
// defined value. The second return is false when the token is
// undefined at every level; callers must treat that as "use the
// built-in default", never as a fatal condition.
func (r *Resolver) ResolveToken(ctx context.Context, key string, nodeOverrides, manifestTokens map[string]any, brandID string) (any, bool) {
	if v, ok := nodeOverrides[key]; ok {
		return v, true
	}
	if v, ok := manifestTokens[key]; ok {
		return v, true
	}
	if r.source != nil && brandID != "" {
		v, ok, err := r.source.ResolveToken(ctx, key, brandID)
		if err != nil {
			r.logger.Warn("brand token fetch failed, falling through",
				"token", key,
				"brand", brandID,
				"error", err)
		} else if ok {
			return v, true
		}
	}
	if v, ok := r.global[key]; ok {
		return v, true
	}
	return nil, false
}

// Effective computes the flattened token set for a render pass:
// global defaults overlaid by brand defaults overlaid by manifest
// tokens. Node overrides are applied per node by the caller.
//
// The brand level requires enumerating the brand sheet, which the
// Source contract does not offer; brands served by a Source are
// consulted lazily through ResolveToken instead. StaticSource brands
// are folded in directly.
func (r *Resolver) Effective(ctx context.Context, manifestTokens map[string]any, brandID string) map[string]any {
	out := make(map[string]any, len(r.global)+len(manifestTokens))
	for k, v := range r.global {
		out[k] = v
	}
	if s, ok := r.source.(*StaticSource); ok && brandID != "" {
		s.mu.RLock()
		for k, v := range s.brands[brandID] {
			out[k] = v
		}
		s.mu.RUnlock()
	}
	for k, v := range manifestTokens {
		out[k] = v
	}
	return out
}
