package host

import (
	"context"
	"fmt"
)

// DebugMode enables dev-time validation: hook order checking and scheduler
// goroutine affinity. Set it at startup, not while components are mounted.
var DebugMode bool

// HookType identifies the type of hook call for order validation.
type HookType uint8

const (
	HookForceUpdate HookType = iota + 1
	HookMemo
	HookSlot
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookForceUpdate:
		return "ForceUpdate"
	case HookMemo:
		return "Memo"
	case HookSlot:
		return "Slot"
	default:
		return "Unknown"
	}
}

// Owner is the scope of one mounted component instance. Cleanups registered
// on it run when the component unmounts, and its hook slots give hooks stable
// identity across renders.
//
// Owners are not safe for concurrent use.
type Owner struct {
	id uint64

	parent   *Owner
	children []*Owner

	// cleanups run in reverse registration order on Dispose.
	cleanups []func()

	disposed bool

	// requestUpdate is installed by the component and asks the scheduler for
	// a re-render.
	requestUpdate func()

	// ctx is the context of the render in progress.
	ctx context.Context

	// Dev-mode hook order tracking (only used when DebugMode is true)
	hookOrder   []HookType
	hookIndex   int
	renderCount int

	hookSlots   []any
	hookSlotIdx int
}

// NewOwner creates an Owner. If parent is non-nil the new Owner is disposed
// together with it.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.children = append(parent.children, o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true once Dispose has run.
func (o *Owner) IsDisposed() bool {
	return o.disposed
}

// Context returns the context of the render in progress, or
// context.Background outside a render.
func (o *Owner) Context() context.Context {
	if o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

// OnCleanup registers fn to run when the Owner is disposed. On an already
// disposed Owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// RequestUpdate asks the host to render the component again. It is a no-op
// for a disposed Owner or one not attached to a component.
func (o *Owner) RequestUpdate() {
	if o.disposed || o.requestUpdate == nil {
		return
	}
	o.requestUpdate()
}

// Dispose disposes children (last created first), then runs cleanups in
// reverse order. Calling it again is a no-op.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	children := o.children
	o.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	cleanups := o.cleanups
	o.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.hookSlots = nil
}

func (o *Owner) removeChild(child *Owner) {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// =============================================================================
// Render phase and hook slots
// =============================================================================

// StartRender resets the hook slot index. Hosts call it before each render.
func (o *Owner) StartRender() {
	o.hookSlotIdx = 0
	if DebugMode {
		o.hookIndex = 0
	}
}

// EndRender finishes a render. In debug mode it checks that every hook seen
// on the first render was called again.
func (o *Owner) EndRender() {
	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		o.renderCount = 1
	} else if o.hookIndex < len(o.hookOrder) {
		panic(fmt.Sprintf("[COMPOSE E102] Hook order changed: expected %d hooks, got %d",
			len(o.hookOrder), o.hookIndex))
	}
}

// TrackHook records a hook call. In debug mode hooks must be called in the
// same order on every render; violations panic.
func (o *Owner) TrackHook(ht HookType) {
	if !DebugMode {
		return
	}

	if o.renderCount == 0 {
		o.hookOrder = append(o.hookOrder, ht)
	} else {
		if o.hookIndex >= len(o.hookOrder) {
			panic(fmt.Sprintf("[COMPOSE E102] Hook order changed: extra %s hook at index %d",
				ht, o.hookIndex))
		}
		if expected := o.hookOrder[o.hookIndex]; expected != ht {
			panic(fmt.Sprintf("[COMPOSE E102] Hook order changed at index %d: expected %s, got %s",
				o.hookIndex, expected, ht))
		}
	}
	o.hookIndex++
}

// UseHookSlot returns the value stored in the current slot, or nil on the
// first render, in which case the caller creates the value and stores it with
// SetHookSlot.
//
//	if slot := o.UseHookSlot(); slot != nil {
//	    return slot.(*T)
//	}
//	v := &T{}
//	o.SetHookSlot(v)
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		return o.hookSlots[idx]
	}
	return nil
}

// SetHookSlot stores a value in the slot just returned empty by UseHookSlot.
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}
