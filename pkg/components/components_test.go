package components

import (
	"context"
	"testing"

	"github.com/maquette-dev/maquette/pkg/registry"
	"github.com/maquette-dev/maquette/pkg/vtree"
)

func TestRegisterAll(t *testing.T) {
	reg := registry.New()
	RegisterAll(reg)

	for _, typ := range Types() {
		if !reg.HasType(typ) {
			t.Errorf("type %q not registered", typ)
		}
		factory, err := reg.Resolve(context.Background(), typ, Version)
		if err != nil {
			t.Errorf("resolving %q: %v", typ, err)
			continue
		}
		if factory == nil {
			t.Errorf("nil factory for %q", typ)
		}
	}
}

func TestRegisterAllIdempotent(t *testing.T) {
	reg := registry.New()
	RegisterAll(reg)
	// A second pass must not replace entries or log collisions.
	RegisterAll(reg)

	if got := len(reg.Types()); got != len(Types()) {
		t.Fatalf("got %d types after double registration, want %d", got, len(Types()))
	}
}

func TestLeafRequiredProps(t *testing.T) {
	reg := registry.New()
	RegisterAll(reg)

	factory, err := reg.Resolve(context.Background(), "hero", Version)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if _, err := factory.Build(vtree.Props{"subtitle": "only"}); err == nil {
		t.Fatal("expected error for missing required title")
	}

	node, err := factory.Build(vtree.Props{"title": "Welcome"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Type != "hero" {
		t.Fatalf("got type %q, want hero", node.Type)
	}
	if node.Props["title"] != "Welcome" {
		t.Fatalf("props not carried: %v", node.Props)
	}
}

func TestContainerAcceptsEmptyProps(t *testing.T) {
	reg := registry.New()
	RegisterAll(reg)

	factory, err := reg.Resolve(context.Background(), "section", Version)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	node, err := factory.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Type != "section" {
		t.Fatalf("got type %q, want section", node.Type)
	}
}

func TestDefaultsExposedThroughEntry(t *testing.T) {
	reg := registry.New()
	RegisterAll(reg)

	resolved, err := reg.ResolveEntry(context.Background(), "button", Version)
	if err != nil {
		t.Fatalf("ResolveEntry: %v", err)
	}
	if resolved.Defaults["variant"] != "primary" {
		t.Fatalf("got defaults %v, want variant=primary", resolved.Defaults)
	}
	if spec, ok := resolved.Schema["label"]; !ok || !spec.Required {
		t.Fatalf("label schema missing or not required: %+v", resolved.Schema)
	}
}
