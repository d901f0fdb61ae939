package components

import (
	"fmt"

	"github.com/maquette-dev/maquette/pkg/registry"
	"github.com/maquette-dev/maquette/pkg/vtree"
)

// Version is the builtin library version registered by RegisterAll.
const Version = "1.0.0"

// Registry is the subset of the component registry RegisterAll needs.
type Registry interface {
	Register(componentType, version string, factory vtree.Factory, opts ...registry.RegisterOption)
}

// RegisterAll registers every builtin component at Version. Calling it
// twice is a no-op; the registry recognizes identical factories.
func RegisterAll(reg Registry) {
	for _, b := range builtins {
		reg.Register(b.typ, Version, b.factory,
			registry.WithDefaults(b.defaults),
			registry.WithPropSchema(b.schema))
	}
}

// Types returns the builtin component type keys in registration order.
func Types() []string {
	types := make([]string, len(builtins))
	for i, b := range builtins {
		types[i] = b.typ
	}
	return types
}

// builtin bundles one stock component definition.
type builtin struct {
	typ      string
	factory  vtree.Factory
	defaults vtree.Props
	schema   registry.PropSchema
}

var builtins = makeBuiltins()

func makeBuiltins() []builtin {
	defs := []struct {
		typ       string
		container bool
		defaults  vtree.Props
		schema    registry.PropSchema
	}{
		{
			typ:      "header",
			defaults: vtree.Props{"sticky": false},
			schema: registry.PropSchema{
				"title":  {Type: "string", Required: true},
				"logo":   {Type: "string"},
				"links":  {Type: "list"},
				"sticky": {Type: "bool"},
			},
		},
		{
			typ:      "hero",
			defaults: vtree.Props{"align": "center", "fullBleed": false},
			schema: registry.PropSchema{
				"title":     {Type: "string", Required: true},
				"subtitle":  {Type: "string"},
				"image":     {Type: "string"},
				"cta":       {Type: "map"},
				"align":     {Type: "string"},
				"fullBleed": {Type: "bool"},
			},
		},
		{
			typ:      "text",
			defaults: vtree.Props{"format": "markdown"},
			schema: registry.PropSchema{
				"content": {Type: "string", Required: true},
				"format":  {Type: "string"},
			},
		},
		{
			typ:      "image",
			defaults: vtree.Props{"loading": "lazy"},
			schema: registry.PropSchema{
				"src":     {Type: "string", Required: true},
				"alt":     {Type: "string"},
				"loading": {Type: "string"},
			},
		},
		{
			typ:      "button",
			defaults: vtree.Props{"variant": "primary"},
			schema: registry.PropSchema{
				"label":   {Type: "string", Required: true},
				"href":    {Type: "string"},
				"variant": {Type: "string"},
			},
		},
		{
			typ: "card",
			schema: registry.PropSchema{
				"title": {Type: "string"},
				"body":  {Type: "string"},
				"image": {Type: "string"},
			},
		},
		{
			typ:       "section",
			container: true,
			defaults:  vtree.Props{"layout": "stack"},
			schema: registry.PropSchema{
				"layout":  {Type: "string"},
				"gap":     {Type: "string"},
				"padding": {Type: "string"},
			},
		},
		{
			typ:       "footer",
			container: true,
			schema: registry.PropSchema{
				"copyright": {Type: "string"},
				"links":     {Type: "list"},
			},
		},
	}

	out := make([]builtin, len(defs))
	for i, d := range defs {
		b := builtin{typ: d.typ, defaults: d.defaults, schema: d.schema}
		if d.container {
			b.factory = container(d.typ)
		} else {
			b.factory = leaf(d.typ, d.schema)
		}
		out[i] = b
	}
	return out
}

// leaf builds a factory for a childless component. Required props are
// enforced at build time so authoring mistakes surface as error nodes
// instead of silently empty output.
func leaf(typ string, schema registry.PropSchema) vtree.Factory {
	return vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
		for name, spec := range schema {
			if !spec.Required {
				continue
			}
			v, ok := props[name]
			if !ok || v == nil || v == "" {
				return nil, fmt.Errorf("%s: required prop %q is missing", typ, name)
			}
		}
		return &vtree.Node{Type: typ, Props: props}, nil
	})
}

// container builds a factory for a component that carries children.
// Children are attached by the renderer after the build.
func container(typ string) vtree.Factory {
	return vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
		return &vtree.Node{Type: typ, Props: props}, nil
	})
}
