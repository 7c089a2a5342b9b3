package gesture

import "photodesigner/internal/geom"

type EventKind int

const (
	EventDown EventKind = iota
	EventMove
	EventUp
	EventCancel
)

func (k EventKind) String() string {
	switch k {
	case EventDown:
		return "down"
	case EventMove:
		return "move"
	case EventUp:
		return "up"
	case EventCancel:
		return "cancel"
	}
	return "unknown"
}

// PointerEvent is one pointer event as delivered by the host, in client
// coordinates.
type PointerEvent struct {
	PointerID int        `json:"pointerId"`
	Kind      EventKind  `json:"kind"`
	Client    geom.Point `json:"client"`
}

// Listener receives every event dispatched while it is subscribed.
type Listener func(PointerEvent)

// Dispatcher is the window-level listener registry gestures attach to
// between press and release. It is not safe for concurrent use; the
// editor serialises all host calls.
type Dispatcher struct {
	next      int
	order     []int
	listeners map[int]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[int]Listener)}
}

// Subscribe attaches fn and returns the function that detaches it.
// Calling the returned function more than once is harmless.
func (d *Dispatcher) Subscribe(fn Listener) (unsubscribe func()) {
	d.next++
	id := d.next
	d.listeners[id] = fn
	d.order = append(d.order, id)
	return func() {
		if _, ok := d.listeners[id]; !ok {
			return
		}
		delete(d.listeners, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers ev to the listeners attached when the call started,
// in subscription order. Listeners may unsubscribe during delivery.
func (d *Dispatcher) Dispatch(ev PointerEvent) {
	ids := append([]int(nil), d.order...)
	for _, id := range ids {
		if fn, ok := d.listeners[id]; ok {
			fn(ev)
		}
	}
}

// Len returns the number of attached listeners.
func (d *Dispatcher) Len() int {
	return len(d.listeners)
}
