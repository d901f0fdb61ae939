// Package vtree defines the render output tree produced by the Maquette
// engine.
//
// A render pass turns a manifest (an ordered tree of typed component
// nodes) into a tree of *Node values. Every node carries a Status flag
// that makes partial-failure rendering observable:
//
//   - StatusOK: the component resolved and built successfully
//   - StatusFallback: the (type, version) could not be resolved; the
//     node is a labeled placeholder preserving the original id and type
//   - StatusError: the factory failed or panicked during Build; the
//     node carries the captured message
//
// Factories are the unit of dynamic dispatch: a Factory is a pure
// function from resolved props to an output node. Implementations are
// registered with a registry and looked up by (type, version) at render
// time.
//
// # Basic Usage
//
//	hero := vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
//	    return &vtree.Node{Type: "hero", Props: props}, nil
//	})
//
// The package is a leaf: it has no dependencies on the rest of the
// engine so that registries, renderers, and host tooling can all share
// the same node type.
package vtree
