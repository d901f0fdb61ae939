package render

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/registry"
	"github.com/maquette-dev/maquette/pkg/theme"
	"github.com/maquette-dev/maquette/pkg/vtree"
)

func passthroughFactory(t string) vtree.Factory {
	return vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
		return &vtree.Node{Type: t, Props: props}, nil
	})
}

func newTestRenderer(opts ...func(*registry.Registry)) (*Renderer, *registry.Registry) {
	reg := registry.New()
	for _, t := range []string{"header", "footer", "section", "text"} {
		reg.Register(t, "1.0.0", passthroughFactory(t))
	}
	for _, opt := range opts {
		opt(reg)
	}
	themes := theme.NewResolver(
		theme.WithGlobalDefaults(map[string]any{
			"color.primary": "#336699",
		}),
	)
	return New(reg, themes), reg
}

func flatManifest(types ...string) *manifest.Manifest {
	m := &manifest.Manifest{ID: "page-1", TenantID: "acme", Version: "1.0.0"}
	for i, t := range types {
		m.Components = append(m.Components, manifest.ComponentNode{
			ID:   fmt.Sprintf("%s-%d", t, i),
			Type: t,
		})
	}
	return m
}

func TestRenderScenarioUnresolvedNodeIsIsolated(t *testing.T) {
	r, _ := newTestRenderer()
	m := flatManifest("header", "banner-x", "footer")

	out := r.Render(context.Background(), m)

	if len(out.Nodes) != 3 {
		t.Fatalf("expected exactly 3 output nodes, got %d", len(out.Nodes))
	}
	wantStatus := []vtree.Status{vtree.StatusOK, vtree.StatusFallback, vtree.StatusOK}
	for i, want := range wantStatus {
		if out.Nodes[i].Status != want {
			t.Errorf("nodes[%d].Status = %s, want %s", i, out.Nodes[i].Status, want)
		}
	}

	fb := out.Nodes[1]
	if fb.ID != "banner-x-1" || fb.Type != "banner-x" {
		t.Errorf("fallback node must carry original id/type, got %s/%s", fb.ID, fb.Type)
	}
	if fb.Reason == "" {
		t.Error("fallback node must carry a diagnostic reason")
	}
	if out.Stats.OK != 2 || out.Stats.Fallback != 1 || out.Stats.Error != 0 {
		t.Errorf("stats = %+v, want 2 ok / 1 fallback", out.Stats)
	}
}

func TestRenderFactoryErrorProducesErrorNode(t *testing.T) {
	r, reg := newTestRenderer()
	reg.Register("broken", "1.0.0", vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
		return nil, errors.New("missing data source")
	}))
	m := flatManifest("header", "broken", "footer")

	out := r.Render(context.Background(), m)

	if out.Nodes[1].Status != vtree.StatusError {
		t.Fatalf("got status %s, want error", out.Nodes[1].Status)
	}
	if out.Nodes[1].Reason != "missing data source" {
		t.Errorf("error node should carry the captured message, got %q", out.Nodes[1].Reason)
	}
	if out.Nodes[0].Status != vtree.StatusOK || out.Nodes[2].Status != vtree.StatusOK {
		t.Error("siblings of a failing node must still render")
	}
}

func TestRenderFactoryPanicIsRecovered(t *testing.T) {
	r, reg := newTestRenderer()
	reg.Register("panicky", "1.0.0", vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
		panic("nil dereference in component")
	}))
	m := flatManifest("header", "panicky", "footer")

	out := r.Render(context.Background(), m)

	if out.Nodes[1].Status != vtree.StatusError {
		t.Fatalf("got status %s, want error", out.Nodes[1].Status)
	}
	if out.Nodes[1].Reason != "panic: nil dereference in component" {
		t.Errorf("panic message not captured: %q", out.Nodes[1].Reason)
	}
}

func TestRenderOrderIndependentOfCompletionOrder(t *testing.T) {
	reg := registry.New()
	// Lazy factories with randomized delays: completion order is
	// scrambled, output order must not be.
	const n = 12
	for i := 0; i < n; i++ {
		typ := fmt.Sprintf("block-%d", i)
		delay := time.Duration(rand.Intn(40)) * time.Millisecond
		factory := passthroughFactory(typ)
		reg.RegisterLazy(typ, "1.0.0", func(ctx context.Context) (vtree.Factory, error) {
			time.Sleep(delay)
			return factory, nil
		})
	}
	r := New(reg, theme.NewResolver())

	m := &manifest.Manifest{ID: "p", TenantID: "t", Version: "1.0.0"}
	for i := 0; i < n; i++ {
		m.Components = append(m.Components, manifest.ComponentNode{
			ID:   fmt.Sprintf("node-%d", i),
			Type: fmt.Sprintf("block-%d", i),
		})
	}

	out := r.Render(context.Background(), m)

	if len(out.Nodes) != n {
		t.Fatalf("got %d nodes, want %d", len(out.Nodes), n)
	}
	for i, node := range out.Nodes {
		if node.ID != fmt.Sprintf("node-%d", i) {
			t.Errorf("nodes[%d].ID = %q, slot order violated", i, node.ID)
		}
	}
}

func TestRenderDepthFirstChildren(t *testing.T) {
	r, _ := newTestRenderer()
	m := &manifest.Manifest{
		ID: "p", TenantID: "t", Version: "1.0.0",
		Components: []manifest.ComponentNode{
			{ID: "s-1", Type: "section", Children: []manifest.ComponentNode{
				{ID: "t-1", Type: "text"},
				{ID: "t-2", Type: "text"},
			}},
		},
	}

	out := r.Render(context.Background(), m)

	if len(out.Nodes) != 1 {
		t.Fatalf("got %d root nodes, want 1", len(out.Nodes))
	}
	children := out.Nodes[0].Children
	if len(children) != 2 || children[0].ID != "t-1" || children[1].ID != "t-2" {
		t.Errorf("child order not preserved: %v", children)
	}
	if out.Stats.Total != 3 {
		t.Errorf("stats.Total = %d, want 3", out.Stats.Total)
	}
}

func TestRenderChildrenKeptUnderFallback(t *testing.T) {
	r, _ := newTestRenderer()
	m := &manifest.Manifest{
		ID: "p", TenantID: "t", Version: "1.0.0",
		Components: []manifest.ComponentNode{
			{ID: "wrap-1", Type: "unknown-container", Children: []manifest.ComponentNode{
				{ID: "t-1", Type: "text"},
			}},
		},
	}

	out := r.Render(context.Background(), m)

	if out.Nodes[0].Status != vtree.StatusFallback {
		t.Fatalf("got status %s, want fallback", out.Nodes[0].Status)
	}
	if len(out.Nodes[0].Children) != 1 || out.Nodes[0].Children[0].Status != vtree.StatusOK {
		t.Error("children of a fallback container should still render")
	}
}

func TestRenderPropMergePriority(t *testing.T) {
	reg := registry.New()
	reg.Register("card", "1.0.0", passthroughFactory("card"),
		registry.WithDefaults(vtree.Props{
			"variant": "plain",
			"padding": int64(4),
			"shadow":  true,
		}))
	themes := theme.NewResolver(
		theme.WithGlobalDefaults(map[string]any{
			"card.variant": "global-themed",
			"card.padding": int64(8),
		}),
	)
	r := New(reg, themes)

	m := &manifest.Manifest{
		ID: "p", TenantID: "t", Version: "1.0.0",
		Theme: manifest.ThemeConfig{Tokens: map[string]any{"card.variant": "manifest-themed"}},
		Components: []manifest.ComponentNode{
			{ID: "c-1", Type: "card", Props: map[string]any{"variant": "explicit"}},
		},
	}

	out := r.Render(context.Background(), m)

	props := out.Nodes[0].Props
	if props["variant"] != "explicit" {
		t.Errorf("explicit prop must win, got %v", props["variant"])
	}
	if props["padding"] != int64(8) {
		t.Errorf("theme-derived prop must beat factory default, got %v", props["padding"])
	}
	if props["shadow"] != true {
		t.Errorf("factory default must survive when not overridden, got %v", props["shadow"])
	}
}

func TestRenderThemeRefResolution(t *testing.T) {
	reg := registry.New()
	reg.Register("text", "1.0.0", passthroughFactory("text"),
		registry.WithDefaults(vtree.Props{"color": "#default"}))
	themes := theme.NewResolver(
		theme.WithGlobalDefaults(map[string]any{"color.primary": "#336699"}),
	)
	r := New(reg, themes)

	m := &manifest.Manifest{
		ID: "p", TenantID: "t", Version: "1.0.0",
		Components: []manifest.ComponentNode{
			{ID: "t-1", Type: "text", Props: map[string]any{"color": "@theme:color.primary"}},
			{ID: "t-2", Type: "text", Props: map[string]any{"color": "@theme:color.missing"}},
		},
	}

	out := r.Render(context.Background(), m)

	if got := out.Nodes[0].Props["color"]; got != "#336699" {
		t.Errorf("theme ref should resolve through the chain, got %v", got)
	}
	// Undefined token: keep the factory default, warn, never fail.
	if got := out.Nodes[1].Props["color"]; got != "#default" {
		t.Errorf("undefined token should keep factory default, got %v", got)
	}
	if len(out.Warnings) != 1 {
		t.Errorf("expected exactly 1 warning, got %v", out.Warnings)
	}
	if out.Nodes[1].Status != vtree.StatusOK {
		t.Error("undefined theme token must never degrade node status")
	}
}

func TestRenderNilManifest(t *testing.T) {
	r, _ := newTestRenderer()

	out := r.Render(context.Background(), nil)
	if out == nil {
		t.Fatal("Render must always return an output")
	}
	if len(out.Nodes) != 0 {
		t.Errorf("nil manifest should produce no nodes, got %d", len(out.Nodes))
	}
}

func TestRenderGenerationMonotonic(t *testing.T) {
	r, _ := newTestRenderer()
	m := flatManifest("header")

	first := r.Render(context.Background(), m)
	second := r.Render(context.Background(), m)

	if second.Generation != first.Generation+1 {
		t.Errorf("generations must increase monotonically: %d then %d", first.Generation, second.Generation)
	}
}

func TestRenderOrderProperty(t *testing.T) {
	r, _ := newTestRenderer()

	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z][a-z0-9]{1,6}`), 1, 10, rapid.ID[string]).Draw(t, "ids")
		types := []string{"header", "footer", "section", "text", "missing-type"}

		m := &manifest.Manifest{ID: "p", TenantID: "t", Version: "1.0.0"}
		for _, id := range ids {
			m.Components = append(m.Components, manifest.ComponentNode{
				ID:   id,
				Type: rapid.SampledFrom(types).Draw(t, "type"),
			})
		}

		out := r.Render(context.Background(), m)

		if len(out.Nodes) != len(ids) {
			t.Fatalf("got %d nodes, want %d", len(out.Nodes), len(ids))
		}
		for i, node := range out.Nodes {
			if node.ID != ids[i] {
				t.Fatalf("nodes[%d].ID = %q, want %q", i, node.ID, ids[i])
			}
		}
	})
}
