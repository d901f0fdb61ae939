package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maquette-dev/maquette/pkg/manifest"
	"github.com/maquette-dev/maquette/pkg/render"
)

// Mode is the presentation mode of the preview surface.
type Mode int

const (
	ModeSplit Mode = iota
	ModeModal
	ModeHidden
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeSplit:
		return "split"
	case ModeModal:
		return "modal"
	case ModeHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Event is one captured host interaction.
type Event struct {
	ComponentID string         `json:"componentId"`
	Action      string         `json:"action"`
	Payload     map[string]any `json:"payload,omitempty"`
	At          time.Time      `json:"at"`
}

// DefaultDebounce is the mutation settle window before a re-render.
const DefaultDebounce = 250 * time.Millisecond

// Harness drives debounced re-rendering over a Renderer.
type Harness struct {
	renderer *render.Renderer
	debounce time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	mode       Mode
	pending    *manifest.Manifest
	timer      *time.Timer
	generation uint64
	applied    uint64
	current    *render.Output
	subs       map[int]func(*render.Output)
	nextSub    int
	events     []Event
	onEvent    func(Event)
	closed     bool
	inflight   sync.WaitGroup
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithDebounce sets the mutation settle window.
func WithDebounce(d time.Duration) HarnessOption {
	return func(h *Harness) {
		if d > 0 {
			h.debounce = d
		}
	}
}

// WithMode sets the initial presentation mode.
func WithMode(mode Mode) HarnessOption {
	return func(h *Harness) {
		h.mode = mode
	}
}

// WithLogger sets the harness logger.
func WithLogger(logger *slog.Logger) HarnessOption {
	return func(h *Harness) {
		h.logger = logger
	}
}

// NewHarness creates a Harness over a renderer.
func NewHarness(r *render.Renderer, opts ...HarnessOption) *Harness {
	h := &Harness{
		renderer: r,
		debounce: DefaultDebounce,
		logger:   slog.Default().With("component", "preview"),
		subs:     make(map[int]func(*render.Output)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Update schedules a render for a mutated manifest. Rapid successive
// updates within the debounce window coalesce into a single pass over
// the latest manifest.
func (h *Harness) Update(m *manifest.Manifest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.pending = m
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.debounce, h.fire)
}

// Flush renders any pending mutation immediately, bypassing the
// debounce window.
func (h *Harness) Flush() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()
	h.fire()
}

// fire starts a render pass for the pending manifest.
func (h *Harness) fire() {
	h.mu.Lock()
	if h.closed || h.pending == nil {
		h.mu.Unlock()
		return
	}
	m := h.pending
	h.pending = nil
	h.generation++
	gen := h.generation
	h.inflight.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.inflight.Done()
		out := h.renderer.Render(context.Background(), m)
		h.apply(gen, out)
	}()
}

// apply installs a completed pass unless a newer generation has
// started in the meantime. Stale results are dropped on arrival; the
// work itself is never hard-aborted, only disregarded.
func (h *Harness) apply(gen uint64, out *render.Output) {
	h.mu.Lock()
	if h.closed || gen != h.generation || gen <= h.applied {
		stale := h.generation
		h.mu.Unlock()
		h.logger.Debug("discarding stale render pass",
			"generation", gen,
			"current", stale)
		return
	}
	// Overlapping passes may hit the renderer out of start order, so
	// the harness generation replaces the renderer's pass counter.
	// Downstream consumers order deliveries by this field.
	out.Generation = gen
	h.applied = gen
	h.current = out
	subs := make([]func(*render.Output), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(out)
	}
}

// Current returns the most recently applied output, or nil before the
// first pass settles.
func (h *Harness) Current() *render.Output {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Generation returns the latest started pass generation.
func (h *Harness) Generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation
}

// Subscribe registers a callback invoked for every applied pass. The
// returned function cancels the subscription.
func (h *Harness) Subscribe(fn func(*render.Output)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Record appends a host interaction event to the ordered log. The
// harness never interprets events; it hands them to the OnEvent
// callback for host tooling.
func (h *Harness) Record(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	h.mu.Lock()
	h.events = append(h.events, ev)
	cb := h.onEvent
	h.mu.Unlock()

	if cb != nil {
		cb(ev)
	}
}

// Events returns a copy of the ordered interaction log.
func (h *Harness) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// OnEvent sets the interaction callback.
func (h *Harness) OnEvent(cb func(Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEvent = cb
}

// SetMode changes the presentation mode.
func (h *Harness) SetMode(mode Mode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = mode
}

// Mode returns the current presentation mode.
func (h *Harness) Mode() Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mode
}

// Close stops the harness. Pending debounce timers are cancelled;
// in-flight passes finish but their results are dropped.
func (h *Harness) Close() {
	h.mu.Lock()
	h.closed = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()
	h.inflight.Wait()
}
