package vtree

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusOK, "ok"},
		{StatusFallback, "fallback"},
		{StatusError, "error"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusSurvivesJSON(t *testing.T) {
	node := &Node{ID: "banner-1", Type: "banner-x", Status: StatusFallback, Reason: "unresolved"}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"status":"fallback"`) {
		t.Fatalf("payload should carry the status, got %s", data)
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Status != StatusFallback {
		t.Errorf("got status %s, want fallback", back.Status)
	}

	if err := json.Unmarshal([]byte(`{"status":"bogus"}`), &back); err == nil {
		t.Error("expected error for unknown status name")
	}
}

func TestWalkOrder(t *testing.T) {
	root := &Node{
		ID: "root",
		Children: []*Node{
			{ID: "a", Children: []*Node{{ID: "a1"}, {ID: "a2"}}},
			{ID: "b"},
		},
	}

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.ID)
		return true
	})

	want := []string{"root", "a", "a1", "a2", "b"}
	if len(visited) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(visited), len(want))
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visit[%d] = %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestWalkEarlyStop(t *testing.T) {
	root := &Node{ID: "root", Children: []*Node{{ID: "a"}, {ID: "b"}}}

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.ID)
		return n.ID != "a"
	})

	if len(visited) != 2 {
		t.Errorf("expected walk to stop after 'a', visited %v", visited)
	}
}

func TestCount(t *testing.T) {
	root := &Node{
		ID:     "root",
		Status: StatusOK,
		Children: []*Node{
			{ID: "a", Status: StatusFallback},
			{ID: "b", Status: StatusOK, Children: []*Node{
				{ID: "b1", Status: StatusError},
			}},
		},
	}

	if got := root.Count(StatusOK); got != 2 {
		t.Errorf("Count(StatusOK) = %d, want 2", got)
	}
	if got := root.Count(StatusFallback); got != 1 {
		t.Errorf("Count(StatusFallback) = %d, want 1", got)
	}
	if got := root.Count(StatusError); got != 1 {
		t.Errorf("Count(StatusError) = %d, want 1", got)
	}
}

func TestPropsClone(t *testing.T) {
	orig := Props{"variant": "primary", "size": 3}
	cloned := orig.Clone()

	cloned["variant"] = "secondary"
	if orig["variant"] != "primary" {
		t.Error("mutating clone should not affect original")
	}

	if Props(nil).Clone() != nil {
		t.Error("cloning nil props should return nil")
	}
}

func TestFuncFactory(t *testing.T) {
	f := Func(func(props Props) (*Node, error) {
		return &Node{Type: "text", Props: props}, nil
	})

	node, err := f.Build(Props{"content": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Type != "text" {
		t.Errorf("got type %q, want %q", node.Type, "text")
	}
	if node.Props["content"] != "hello" {
		t.Errorf("props not passed through: %v", node.Props)
	}
}
