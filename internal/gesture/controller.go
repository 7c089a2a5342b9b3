// Package gesture implements the press/move/release state machine shared by
// every direct-manipulation interaction on the canvas.
//
// A gesture owns its pointer from Begin until End. End runs exactly once no
// matter how many of up, cancel, abort or an explicit call reach it.
package gesture

import (
	"errors"
	"log"
	"sync"

	"photodesigner/internal/domain"
	"photodesigner/internal/geom"
)

// ErrAbort ends a gesture silently when returned from a Move handler,
// e.g. when a layout measurement is no longer available.
var ErrAbort = errors.New("gesture aborted")

// Capturer grants exclusive delivery of a pointer's events to the element
// that started the gesture.
type Capturer interface {
	SetPointerCapture(pointerID int) error
	ReleasePointerCapture(pointerID int)
}

// NopCapturer is used when the host has no capture facility.
type NopCapturer struct{}

func (NopCapturer) SetPointerCapture(int) error { return nil }
func (NopCapturer) ReleasePointerCapture(int) {}

// Handlers are the per-gesture callbacks. Move runs for every move event of
// the owning pointer; End runs once when the gesture finishes.
type Handlers struct {
	Move func(s *Session, ev PointerEvent) error
	End  func(s *Session, cancelled bool)
}

// Session is the state of one active gesture.
type Session struct {
	Key       string
	PointerID int
	Origin    geom.Point
	Start     domain.CanvasObject
	Last      geom.Point

	c           *Controller
	h           Handlers
	captured    bool
	unsubscribe func()
	once        sync.Once
	ended       bool
}

// Delta returns the client-space offset of ev from the gesture origin.
func (s *Session) Delta(ev PointerEvent) geom.Point {
	return ev.Client.Sub(s.Origin)
}

// Ended reports whether cleanup has run.
func (s *Session) Ended() bool { return s.ended }

// End finishes the gesture normally. Subsequent calls are no-ops.
func (s *Session) End() { s.finish(false) }

// Cancel finishes the gesture with the same cleanup as End.
func (s *Session) Cancel() { s.finish(true) }

func (s *Session) finish(cancelled bool) {
	s.once.Do(func() {
		s.ended = true
		s.unsubscribe()
		if s.captured {
			s.c.capture.ReleasePointerCapture(s.PointerID)
		}
		delete(s.c.active, s.Key)
		if s.h.End != nil {
			s.h.End(s, cancelled)
		}
	})
}

func (s *Session) handle(ev PointerEvent) {
	if ev.PointerID != s.PointerID || s.ended {
		return
	}
	switch ev.Kind {
	case EventMove:
		s.move(ev)
	case EventUp:
		s.finish(false)
	case EventCancel:
		s.finish(true)
	}
}

func (s *Session) move(ev PointerEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("gesture: %s: move handler panicked: %v", s.Key, r)
			s.finish(true)
		}
	}()
	s.Last = ev.Client
	if s.h.Move == nil {
		return
	}
	err := s.h.Move(s, ev)
	switch {
	case err == nil:
	case errors.Is(err, ErrAbort):
		s.finish(true)
	default:
		log.Printf("gesture: %s: dropped frame: %v", s.Key, err)
	}
}

// Controller hands out gesture sessions. At most one session exists per
// key, and a pointer drives at most one session.
type Controller struct {
	dispatcher *Dispatcher
	capture    Capturer
	active     map[string]*Session
}

func NewController(d *Dispatcher, capture Capturer) *Controller {
	if capture == nil {
		capture = NopCapturer{}
	}
	return &Controller{dispatcher: d, capture: capture, active: make(map[string]*Session)}
}

// Dispatcher returns the registry sessions subscribe to.
func (c *Controller) Dispatcher() *Dispatcher { return c.dispatcher }

// Begin starts a gesture for key from the down event ev. It returns false
// when key or the pointer already owns a gesture.
func (c *Controller) Begin(key string, ev PointerEvent, start domain.CanvasObject, h Handlers) (*Session, bool) {
	if _, busy := c.active[key]; busy {
		return nil, false
	}
	for _, s := range c.active {
		if s.PointerID == ev.PointerID {
			return nil, false
		}
	}

	s := &Session{
		Key:       key,
		PointerID: ev.PointerID,
		Origin:    ev.Client,
		Last:      ev.Client,
		Start:     start.Clone(),
		c:         c,
		h:         h,
	}
	if err := c.capture.SetPointerCapture(ev.PointerID); err != nil {
		log.Printf("gesture: %s: pointer capture failed, using global listeners: %v", key, err)
	} else {
		s.captured = true
	}
	s.unsubscribe = c.dispatcher.Subscribe(s.handle)
	c.active[key] = s
	return s, true
}

// Active returns the session owning key, if any.
func (c *Controller) Active(key string) (*Session, bool) {
	s, ok := c.active[key]
	return s, ok
}

// Len returns the number of active sessions.
func (c *Controller) Len() int { return len(c.active) }

// CancelAll cancels every active session, e.g. when a design is closed.
func (c *Controller) CancelAll() {
	for _, s := range c.active {
		s.Cancel()
	}
}
