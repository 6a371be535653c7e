package strada

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Signal is the route broadcast contract the router depends on. Fire
// delivers a new current route to all subscribers synchronously; Get returns
// the last fired route.
type Signal interface {
	Fire(route Route)
	Get() Route
}

// routeBox wraps a route so nil routes can live in the atomic cell.
type routeBox struct {
	route Route
}

// RouteSignal is the Signal implementation shipped with the router. It
// holds the current route in a lock-free cell and invokes subscribers
// synchronously in registration order.
type RouteSignal struct {
	current atomic.Value

	mu    sync.Mutex
	order []uuid.UUID
	subs  map[uuid.UUID]func(Route)
}

// NewRouteSignal creates an empty RouteSignal. Get returns nil until the
// first Fire.
func NewRouteSignal() *RouteSignal {
	return &RouteSignal{
		subs: make(map[uuid.UUID]func(Route)),
	}
}

// Subscribe registers fn to be invoked on every Fire. It returns an
// unsubscribe function; calling it more than once is harmless.
func (s *RouteSignal) Subscribe(fn func(Route)) func() {
	s.mu.Lock()
	id := uuid.New()
	s.order = append(s.order, id)
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; !ok {
			return
		}
		delete(s.subs, id)
		for i, other := range s.order {
			if other == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Fire stores route as the current value and invokes every subscriber
// synchronously in registration order.
func (s *RouteSignal) Fire(route Route) {
	s.current.Store(routeBox{route: route})

	s.mu.Lock()
	fns := make([]func(Route), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(route)
	}
}

// Get returns the last fired route, or nil if nothing has fired yet.
func (s *RouteSignal) Get() Route {
	if box, ok := s.current.Load().(routeBox); ok {
		return box.route
	}
	return nil
}
