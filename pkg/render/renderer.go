package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/registry"
	"github.com/maquette-dev/maquette/pkg/theme"
	"github.com/maquette-dev/maquette/pkg/vtree"
)

// Default tracer name for render passes.
const defaultTracerName = "maquette"

// Stats counts output nodes by status across the whole tree.
type Stats struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Fallback int `json:"fallback"`
	Error    int `json:"error"`
}

// Output is the result of one render pass.
type Output struct {
	// Generation is the monotonically increasing pass counter of the
	// renderer that produced this output.
	Generation uint64 `json:"generation"`

	// ManifestID identifies the rendered manifest.
	ManifestID string `json:"manifestId"`

	// Nodes is the output tree in manifest array order.
	Nodes []*vtree.Node `json:"nodes"`

	// Stats counts nodes by status.
	Stats Stats `json:"stats"`

	// Warnings collects non-fatal findings such as undefined theme
	// tokens.
	Warnings []string `json:"warnings,omitempty"`

	// Elapsed is the wall time of the pass.
	Elapsed time.Duration `json:"elapsed"`
}

// Renderer turns manifests into output trees. It is safe for
// concurrent use; each Render call is an independent pass.
type Renderer struct {
	registry   *registry.Registry
	themes     *theme.Resolver
	logger     *slog.Logger
	tracer     trace.Tracer
	generation atomic.Uint64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for render warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithTracerName overrides the OpenTelemetry tracer name.
func WithTracerName(name string) Option {
	return func(r *Renderer) {
		r.tracer = otel.Tracer(name)
	}
}

// New creates a Renderer over a registry and theme resolver. Both are
// injected: per-tenant setups construct separate registries and pass
// them in here.
func New(reg *registry.Registry, themes *theme.Resolver, opts ...Option) *Renderer {
	r := &Renderer{
		registry: reg,
		themes:   themes,
		logger:   slog.Default().With("component", "renderer"),
		tracer:   otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generation returns the number of passes started so far.
func (r *Renderer) Generation() uint64 {
	return r.generation.Load()
}

// Render performs one render pass. It never returns an error and never
// panics: all per-node failures are represented in the output tree.
// The caller is responsible for validating the manifest first; Render
// assumes structural integrity.
func (r *Renderer) Render(ctx context.Context, m *manifest.Manifest) *Output {
	start := time.Now()
	gen := r.generation.Add(1)

	out := &Output{Generation: gen}
	if m == nil {
		return out
	}
	out.ManifestID = m.ID

	ctx, span := r.tracer.Start(ctx, "maquette.render",
		trace.WithAttributes(
			attribute.String("maquette.manifest_id", m.ID),
			attribute.String("maquette.tenant_id", m.TenantID),
			attribute.Int64("maquette.generation", int64(gen)),
			attribute.Int("maquette.manifest_nodes", m.NodeCount()),
		))
	defer span.End()

	// The effective theme is resolved once per pass; node overrides
	// are applied per node below.
	pass := &passState{
		effective:      r.themes.Effective(ctx, m.Theme.Tokens, m.Theme.BrandID),
		manifestTokens: m.Theme.Tokens,
		brandID:        m.Theme.BrandID,
	}

	out.Nodes = r.renderLevel(ctx, m.Components, pass)
	out.Warnings = pass.takeWarnings()

	for _, node := range out.Nodes {
		node.Walk(func(n *vtree.Node) bool {
			out.Stats.Total++
			switch n.Status {
			case vtree.StatusOK:
				out.Stats.OK++
			case vtree.StatusFallback:
				out.Stats.Fallback++
			case vtree.StatusError:
				out.Stats.Error++
			}
			return true
		})
	}
	out.Elapsed = time.Since(start)

	span.SetAttributes(
		attribute.Int("maquette.nodes_ok", out.Stats.OK),
		attribute.Int("maquette.nodes_fallback", out.Stats.Fallback),
		attribute.Int("maquette.nodes_error", out.Stats.Error),
	)
	span.SetStatus(codes.Ok, "")

	if out.Stats.Fallback > 0 || out.Stats.Error > 0 {
		r.logger.Warn("render pass completed with degraded nodes",
			"manifest", m.ID,
			"generation", gen,
			"fallback", out.Stats.Fallback,
			"error", out.Stats.Error)
	}

	return out
}

// passState is the per-pass shared context: the flattened theme plus a
// concurrency-safe warning collector.
type passState struct {
	effective      map[string]any
	manifestTokens map[string]any
	brandID        string

	mu       sync.Mutex
	warnings []string
}

func (p *passState) warnf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *passState) takeWarnings() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.warnings
}

// renderLevel resolves one sibling level concurrently. Output slots
// are reserved by index before any resolution starts, so final order
// equals manifest order no matter which resolution settles first.
func (r *Renderer) renderLevel(ctx context.Context, nodes []manifest.ComponentNode, pass *passState) []*vtree.Node {
	if len(nodes) == 0 {
		return nil
	}

	out := make([]*vtree.Node, len(nodes))
	var wg sync.WaitGroup
	for i := range nodes {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			out[slot] = r.renderNode(ctx, &nodes[slot], pass)
		}(i)
	}
	wg.Wait()
	return out
}

// renderNode produces exactly one output node for a manifest node.
// Resolution failure yields a fallback node, build failure an error
// node; children are rendered in both cases so the preview keeps as
// much of the page as possible.
func (r *Renderer) renderNode(ctx context.Context, node *manifest.ComponentNode, pass *passState) *vtree.Node {
	children := r.renderLevel(ctx, node.Children, pass)

	resolved, err := r.registry.ResolveEntry(ctx, node.Type, node.Version)
	if err != nil {
		return &vtree.Node{
			ID:       node.ID,
			Type:     node.Type,
			Version:  node.Version,
			Status:   vtree.StatusFallback,
			Reason:   fmt.Sprintf("unresolved component %s: %v", describe(node), err),
			Children: children,
		}
	}

	props := r.mergeProps(ctx, node, resolved, pass)
	built, buildErr := safeBuild(resolved.Factory, props)
	if buildErr != nil {
		return &vtree.Node{
			ID:       node.ID,
			Type:     node.Type,
			Version:  resolved.Version,
			Status:   vtree.StatusError,
			Reason:   buildErr.Error(),
			Children: children,
		}
	}

	if built == nil {
		built = &vtree.Node{}
	}
	built.ID = node.ID
	built.Type = resolved.Type
	built.Version = resolved.Version
	built.Status = vtree.StatusOK
	if built.Props == nil {
		built.Props = props
	}
	built.Children = append(built.Children, children...)
	return built
}

// safeBuild invokes the factory, converting panics into errors so a
// single misbehaving component never aborts the tree.
func safeBuild(factory vtree.Factory, props vtree.Props) (node *vtree.Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			node = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return factory.Build(props)
}

// themeRefPrefix marks a string prop value as a theme token reference.
const themeRefPrefix = "@theme:"

// mergeProps merges in priority order: explicit node props >
// theme-derived props > factory default props.
func (r *Renderer) mergeProps(ctx context.Context, node *manifest.ComponentNode, resolved *registry.Resolved, pass *passState) vtree.Props {
	merged := resolved.Defaults.Clone()
	if merged == nil {
		merged = make(vtree.Props)
	}

	// Theme-derived props: tokens namespaced "<type>.<prop>" apply to
	// nodes of that type. Node overrides take part through the chain.
	prefix := node.Type + "."
	for key := range pass.effective {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			if v, ok := r.themes.ResolveToken(ctx, key, node.ThemeOverrides, pass.manifestTokens, pass.brandID); ok {
				merged[key[len(prefix):]] = v
			}
		}
	}
	for key := range node.ThemeOverrides {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			merged[key[len(prefix):]] = node.ThemeOverrides[key]
		}
	}

	// Explicit props always win. A "@theme:" reference that resolves
	// nowhere keeps the factory default and records a warning.
	for key, value := range node.Props {
		if ref, ok := value.(string); ok && len(ref) > len(themeRefPrefix) && ref[:len(themeRefPrefix)] == themeRefPrefix {
			token := ref[len(themeRefPrefix):]
			if v, defined := r.themes.ResolveToken(ctx, token, node.ThemeOverrides, pass.manifestTokens, pass.brandID); defined {
				merged[key] = v
			} else {
				pass.warnf("theme token %q undefined for node %s; using factory default for prop %q", token, describe(node), key)
			}
			continue
		}
		merged[key] = value
	}

	return merged
}

func describe(node *manifest.ComponentNode) string {
	if node.Version != "" {
		return node.ID + " (" + node.Type + "@" + node.Version + ")"
	}
	return node.ID + " (" + node.Type + ")"
}
