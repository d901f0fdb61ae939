package preview

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/registry"
	"github.com/maquette-dev/maquette/pkg/render"
	"github.com/maquette-dev/maquette/pkg/theme"
	"github.com/maquette-dev/maquette/pkg/vtree"
)

func buildRenderer(loadDelay time.Duration) *render.Renderer {
	reg := registry.New()
	reg.Register("text", "1.0.0", vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
		return &vtree.Node{Type: "text", Props: props}, nil
	}))
	if loadDelay > 0 {
		slow := vtree.Func(func(props vtree.Props) (*vtree.Node, error) {
			return &vtree.Node{Type: "slow", Props: props}, nil
		})
		reg.RegisterLazy("slow", "1.0.0", func(ctx context.Context) (vtree.Factory, error) {
			time.Sleep(loadDelay)
			return slow, nil
		})
	}
	return render.New(reg, theme.NewResolver())
}

func pageWith(id string, types ...string) *manifest.Manifest {
	m := &manifest.Manifest{ID: id, TenantID: "acme", Version: "1.0.0"}
	for i, t := range types {
		m.Components = append(m.Components, manifest.ComponentNode{
			ID:   t + "-" + string(rune('a'+i)),
			Type: t,
		})
	}
	return m
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDebounceCoalescesBursts(t *testing.T) {
	r := buildRenderer(0)
	h := NewHarness(r, WithDebounce(80*time.Millisecond))
	defer h.Close()

	var applied atomic.Int32
	h.Subscribe(func(*render.Output) { applied.Add(1) })

	// A burst of edits inside one debounce window.
	h.Update(pageWith("draft", "text"))
	time.Sleep(10 * time.Millisecond)
	h.Update(pageWith("draft", "text", "text"))
	time.Sleep(10 * time.Millisecond)
	final := pageWith("draft", "text", "text", "text")
	h.Update(final)

	waitFor(t, time.Second, func() bool { return applied.Load() > 0 })

	if got := applied.Load(); got != 1 {
		t.Errorf("burst should coalesce into 1 pass, got %d", got)
	}
	out := h.Current()
	if len(out.Nodes) != 3 {
		t.Errorf("pass should render the latest manifest, got %d nodes", len(out.Nodes))
	}
}

func TestStaleGenerationDiscarded(t *testing.T) {
	// Pass 1 renders a manifest whose lazy component takes 250ms to
	// load; pass 2 starts 100ms later. Only generation-2 results may
	// be reflected, even though generation 1 settles afterwards.
	r := buildRenderer(250 * time.Millisecond)
	h := NewHarness(r, WithDebounce(20*time.Millisecond))
	defer h.Close()

	h.Update(pageWith("gen1", "slow"))
	time.Sleep(100 * time.Millisecond)
	h.Update(pageWith("gen2", "text"))

	waitFor(t, 2*time.Second, func() bool { return h.Current() != nil })
	// Give the stale pass time to settle and (incorrectly) apply.
	time.Sleep(400 * time.Millisecond)

	out := h.Current()
	if out.ManifestID != "gen2" {
		t.Fatalf("displayed output is %q, want gen2 only", out.ManifestID)
	}
}

func TestFlushBypassesDebounce(t *testing.T) {
	r := buildRenderer(0)
	h := NewHarness(r, WithDebounce(10*time.Second))
	defer h.Close()

	h.Update(pageWith("draft", "text"))
	h.Flush()

	waitFor(t, time.Second, func() bool { return h.Current() != nil })

	if h.Current().ManifestID != "draft" {
		t.Errorf("flush should render immediately, got %v", h.Current())
	}
}

func TestGenerationsMonotonic(t *testing.T) {
	r := buildRenderer(0)
	h := NewHarness(r, WithDebounce(10*time.Millisecond))
	defer h.Close()

	for i := 0; i < 3; i++ {
		h.Update(pageWith("draft", "text"))
		h.Flush()
		gen := uint64(i + 1)
		waitFor(t, time.Second, func() bool {
			out := h.Current()
			return out != nil && h.Generation() >= gen
		})
	}

	if h.Generation() != 3 {
		t.Errorf("expected 3 generations, got %d", h.Generation())
	}
}

func TestInteractionLogOrdered(t *testing.T) {
	r := buildRenderer(0)
	h := NewHarness(r)
	defer h.Close()

	var seen []string
	h.OnEvent(func(ev Event) { seen = append(seen, ev.Action) })

	h.Record(Event{ComponentID: "btn-1", Action: "click"})
	h.Record(Event{ComponentID: "input-1", Action: "change", Payload: map[string]any{"value": "x"}})
	h.Record(Event{ComponentID: "btn-1", Action: "click"})

	events := h.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	wantActions := []string{"click", "change", "click"}
	for i, ev := range events {
		if ev.Action != wantActions[i] {
			t.Errorf("events[%d].Action = %q, want %q", i, ev.Action, wantActions[i])
		}
		if ev.At.IsZero() {
			t.Errorf("events[%d] missing timestamp", i)
		}
	}
	if len(seen) != 3 {
		t.Errorf("callback should see every event, got %d", len(seen))
	}

	// The returned log is a copy.
	events[0].Action = "mutated"
	if h.Events()[0].Action != "click" {
		t.Error("Events must return a copy of the log")
	}
}

func TestModes(t *testing.T) {
	r := buildRenderer(0)
	h := NewHarness(r, WithMode(ModeModal))
	defer h.Close()

	if h.Mode() != ModeModal {
		t.Errorf("got mode %s, want modal", h.Mode())
	}
	h.SetMode(ModeHidden)
	if h.Mode() != ModeHidden {
		t.Errorf("got mode %s, want hidden", h.Mode())
	}
	if ModeSplit.String() != "split" || Mode(42).String() != "unknown" {
		t.Error("Mode.String mismatch")
	}
}

func TestSubscribeCancel(t *testing.T) {
	r := buildRenderer(0)
	h := NewHarness(r, WithDebounce(10*time.Millisecond))
	defer h.Close()

	var count atomic.Int32
	cancel := h.Subscribe(func(*render.Output) { count.Add(1) })

	h.Update(pageWith("draft", "text"))
	waitFor(t, time.Second, func() bool { return count.Load() == 1 })

	cancel()
	h.Update(pageWith("draft", "text", "text"))
	h.Flush()
	waitFor(t, time.Second, func() bool { return h.Generation() == 2 && h.Current() != nil && len(h.Current().Nodes) == 2 })

	if count.Load() != 1 {
		t.Errorf("cancelled subscriber should not fire again, got %d", count.Load())
	}
}

func TestUpdateAfterCloseIsNoop(t *testing.T) {
	r := buildRenderer(0)
	h := NewHarness(r, WithDebounce(10*time.Millisecond))
	h.Close()

	h.Update(pageWith("draft", "text"))
	h.Flush()
	time.Sleep(50 * time.Millisecond)

	if h.Current() != nil {
		t.Error("closed harness must not render")
	}
}
