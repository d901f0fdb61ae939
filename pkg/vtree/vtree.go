package vtree

import (
	"encoding/json"
	"fmt"
)

// Status is the node outcome discriminator.
type Status uint8

const (
	StatusOK       Status = iota // Component resolved and built
	StatusFallback               // Type/version unresolved, placeholder emitted
	StatusError                  // Factory failed or panicked during Build
)

// String returns the string representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFallback:
		return "fallback"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status in its string form so API and socket
// payload consumers can tell ok, fallback and error nodes apart.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the string form produced by MarshalJSON.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "ok":
		*s = StatusOK
	case "fallback":
		*s = StatusFallback
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown node status %q", name)
	}
	return nil
}

// Props holds the concrete, fully merged properties of an output node.
type Props map[string]any

// Clone returns a shallow copy of the props.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Node is one entry in the render output tree.
type Node struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Version  string  `json:"version,omitempty"`
	Props    Props   `json:"props,omitempty"`
	Children []*Node `json:"children,omitempty"`
	Status   Status  `json:"status"`
	// Reason is a short diagnostic for fallback and error nodes.
	Reason string `json:"reason,omitempty"`
}

// Walk visits the node and all descendants depth-first in tree order.
// Walking stops early if fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range n.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the tree with the given status.
func (n *Node) Count(status Status) int {
	total := 0
	n.Walk(func(node *Node) bool {
		if node.Status == status {
			total++
		}
		return true
	})
	return total
}

// Factory builds an output node from resolved props.
// Implementations must be pure: no retained references to props, no
// shared mutable state.
type Factory interface {
	Build(props Props) (*Node, error)
}

// FuncFactory wraps a build function.
type FuncFactory struct {
	build func(props Props) (*Node, error)
}

// Build implements Factory.
func (f *FuncFactory) Build(props Props) (*Node, error) {
	return f.build(props)
}

// Func creates a Factory from a build function.
func Func(build func(props Props) (*Node, error)) Factory {
	return &FuncFactory{build: build}
}
