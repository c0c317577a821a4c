// Package interact implements the pointer-driven drag, resize and swap
// state machine on top of a board.Store.
//
// An Engine is Idle, Dragging or Resizing. Pointer-down on an unlocked
// widget starts an operation on a working copy of the widget list; moves
// update that copy without snapping or collision checks; pointer-up
// resolves the final geometry against the current store contents and
// commits it. Only one operation is active at a time.
package interact

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/collision"
	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
)

// State is the interaction state of an Engine.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// operation is the record of the active drag or resize.
type operation struct {
	id         string
	handle     core.Handle
	pointer    core.Point // Pointer position at pointer-down
	start      core.Rect  // Widget geometry at pointer-down
	moved      bool       // Pointer went further than the drag threshold
	resolver   collision.Resolver
	minW, minH float64
}

// Engine drives drag and resize operations for one board.
type Engine struct {
	mu     sync.Mutex
	store  *board.Store
	cfg    config.InteractionConfig
	sched  Scheduler
	logger *log.Logger

	state   State
	op      operation
	working []core.Widget
	gen     uint64 // Bumped when an operation ends; stale timers compare against it

	swapTarget string
	swapTimer  Timer

	rejectedID  string
	rejectTimer Timer
	rejectSeq   uint64

	lastDrag map[string]bool
	suppress map[string]bool

	listeners []func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler, e.g. with a ManualClock.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithLogger sets the logger for commits and rejections.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an idle engine for the store.
func New(store *board.Store, cfg config.InteractionConfig, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		cfg:      cfg,
		sched:    realScheduler{},
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		lastDrag: make(map[string]bool),
		suppress: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store the engine commits to.
func (e *Engine) Store() *board.Store { return e.store }

// OnChange registers a listener called after every state or geometry
// change, outside the engine lock.
func (e *Engine) OnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) notify() {
	e.mu.Lock()
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Handle dispatches a pointer event. It reports whether a pointer-down
// started an operation; moves and releases always report false.
func (e *Engine) Handle(ev core.Event) bool {
	switch ev := ev.(type) {
	case core.PointerDown:
		return e.PointerDown(ev)
	case core.PointerMove:
		e.PointerMove(ev.X, ev.Y)
	case core.PointerUp:
		e.PointerUp(ev.X, ev.Y)
	}
	return false
}

// PointerDown starts a drag (HandleNone) or a resize. It is refused while
// another operation is active, for locked or unknown widgets, and for
// presses on interactive child elements.
func (e *Engine) PointerDown(ev core.PointerDown) bool {
	started := e.pointerDown(ev)
	if started {
		e.notify()
	}
	return started
}

func (e *Engine) pointerDown(ev core.PointerDown) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle || ev.Interactive {
		return false
	}
	widgets := e.store.Snapshot()
	i := core.IndexOf(widgets, ev.WidgetID)
	if i < 0 {
		e.logger.Debug("pointer down on unknown widget", "widget", ev.WidgetID)
		return false
	}
	w := widgets[i]
	if w.Locked {
		return false
	}

	resolver := e.store.Resolver()
	if e.cfg.SearchRadius > 0 {
		resolver.Radius = e.cfg.SearchRadius
	}
	minW, minH := e.store.MinSize(w.Type)

	e.op = operation{
		id:       w.ID,
		handle:   ev.Handle,
		pointer:  core.Point{X: ev.X, Y: ev.Y},
		start:    w.Rect(),
		resolver: resolver,
		minW:     minW,
		minH:     minH,
	}
	e.working = widgets
	e.lastDrag[w.ID] = false
	if ev.Handle == core.HandleNone {
		e.state = StateDragging
	} else {
		e.state = StateResizing
	}
	e.logger.Debug("operation started", "widget", w.ID, "state", e.state, "handle", ev.Handle)
	return true
}

// PointerMove updates the working geometry of the active operation.
func (e *Engine) PointerMove(x, y float64) {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return
	}
	e.track(x, y)
	i := core.IndexOf(e.working, e.op.id)
	if i >= 0 {
		switch e.state {
		case StateDragging:
			e.working[i].X = e.op.start.X + x - e.op.pointer.X
			e.working[i].Y = e.op.start.Y + y - e.op.pointer.Y
			e.hover(x, y)
		case StateResizing:
			e.working[i].SetRect(e.resizeRect(x, y))
		}
	}
	e.mu.Unlock()
	e.notify()
}

// PointerUp ends the active operation wherever the pointer is.
func (e *Engine) PointerUp(x, y float64) {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return
	}
	e.track(x, y)
	switch e.state {
	case StateDragging:
		e.finishDrag(x, y)
	case StateResizing:
		e.finishResize(x, y)
	}
	e.endLocked()
	e.mu.Unlock()
	e.notify()
}

// Cancel abandons the active operation without committing anything.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return
	}
	e.logger.Debug("operation cancelled", "widget", e.op.id)
	e.endLocked()
	e.mu.Unlock()
	e.notify()
}

// Close cancels the active operation and every pending timer.
func (e *Engine) Close() {
	e.Cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rejectTimer != nil {
		e.rejectTimer.Stop()
		e.rejectTimer = nil
	}
	e.rejectedID = ""
}

func (e *Engine) track(x, y float64) {
	if !e.op.moved && core.Distance(e.op.pointer, core.Point{X: x, Y: y}) > e.cfg.DragThreshold {
		e.op.moved = true
	}
}

func (e *Engine) endLocked() {
	e.stopSwapTimer()
	e.swapTarget = ""
	e.state = StateIdle
	e.working = nil
	e.gen++
}

func (e *Engine) commitLocked(widgets []core.Widget) {
	if err := e.store.Commit(widgets); err != nil {
		e.logger.Error("failed to commit layout", "widget", e.op.id, "err", err)
	}
}

// rejectLocked raises the transient rejected cue for a widget.
func (e *Engine) rejectLocked(id string) {
	e.rejectedID = id
	if e.rejectTimer != nil {
		e.rejectTimer.Stop()
	}
	e.rejectSeq++
	seq := e.rejectSeq
	e.logger.Debug("placement corrected", "widget", id)
	e.rejectTimer = e.sched.AfterFunc(e.cfg.RejectCue, func() {
		e.mu.Lock()
		cleared := e.rejectSeq == seq
		if cleared {
			e.rejectedID = ""
			e.rejectTimer = nil
		}
		e.mu.Unlock()
		if cleared {
			e.notify()
		}
	})
}

// State returns the current interaction state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsDragging reports whether a drag is active.
func (e *Engine) IsDragging() bool { return e.State() == StateDragging }

// IsResizing reports whether a resize is active.
func (e *Engine) IsResizing() bool { return e.State() == StateResizing }

// ActiveID returns the widget of the active operation, or "".
func (e *Engine) ActiveID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return ""
	}
	return e.op.id
}

// Widgets returns the list to render: the working copy while an operation
// is active, the committed list otherwise.
func (e *Engine) Widgets() []core.Widget {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.working != nil {
		return core.CloneWidgets(e.working)
	}
	return e.store.Snapshot()
}

// RejectedID returns the widget showing the rejected cue, or "".
func (e *Engine) RejectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rejectedID
}

// SwapTargetID returns the widget currently hovered during a drag, or "".
func (e *Engine) SwapTargetID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.swapTarget
}

// WasLastInteractionDrag reports whether the last operation on the widget
// moved the pointer beyond the drag threshold.
func (e *Engine) WasLastInteractionDrag(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastDrag[id]
}

// ShouldSuppressClick reports whether a click on the widget is the tail of
// a drag or swap rather than a genuine click. The post-swap mark is
// consumed by the call.
func (e *Engine) ShouldSuppressClick(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suppress[id] {
		delete(e.suppress, id)
		return true
	}
	return e.lastDrag[id]
}
