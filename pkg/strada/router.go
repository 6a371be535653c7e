package strada

import (
	"fmt"
	"log/slog"

	"github.com/BrandonKowalski/strada/pkg/strada/internal"
)

// DefaultStackSize is the default bound on retained navigation depth. The
// bound counts the displayed route plus the back-history stack, so a router
// with the default keeps up to 31 routes to go back to.
const DefaultStackSize = 32

// URLMapperFunc translates a URL into a Route. A nil result means the URL
// maps to no route. How URLs are matched is entirely up to the application;
// TableMapper covers the exact-lookup case.
type URLMapperFunc func(url string) Route

// Option configures a Router.
type Option func(*Router)

// WithStackSize bounds the retained navigation depth (displayed route plus
// back history). Values below 1 are ignored.
func WithStackSize(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.stackSize = n
		}
	}
}

// WithURLMapper supplies the URL-to-route mapping used by SetURL and
// PushURL. Without it, URL-based navigation fails with ErrNoURLMapper.
func WithURLMapper(fn URLMapperFunc) Option {
	return func(r *Router) {
		r.mapURL = fn
	}
}

// WithSignal replaces the route broadcast. The router only relies on the
// Fire/Get contract; delivery beyond that is the signal's business.
func WithSignal(s Signal) Option {
	return func(r *Router) {
		r.signal = s
	}
}

// WithLogger replaces the shared navigation logger for this instance.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		r.log = log
	}
}

// Router coordinates route changes: it owns the current route (through its
// signal), the back-navigation stack, and the confirmation protocol run
// before every change. All state is owned by the instance; there is no
// package-level default router.
type Router struct {
	stackSize   int
	stack       *routeStack
	coordinator *transitionCoordinator
	signal      Signal
	mapURL      URLMapperFunc
	log         *slog.Logger
}

// New creates a Router.
func New(opts ...Option) *Router {
	r := &Router{
		stackSize: DefaultStackSize,
		log:       internal.Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.signal == nil {
		r.signal = NewRouteSignal()
	}
	// The displayed route counts against the bound, so the history stack
	// keeps one entry fewer.
	r.stack = newRouteStack(r.stackSize - 1)
	r.coordinator = newTransitionCoordinator(r.log)
	return r
}

// RegisterHandler adds fn to the confirm-handler list and returns a function
// that unregisters it. Every registered handler participates in each
// subsequent confirmation round and must eventually vote.
func (r *Router) RegisterHandler(fn ConfirmTransitionFunc) func() {
	return r.coordinator.registerHandler(fn)
}

// CurrentRoute returns the last route broadcast through the signal, or nil
// before the first navigation.
func (r *Router) CurrentRoute() Route {
	return r.signal.Get()
}

// Signal returns the router's route broadcast.
func (r *Router) Signal() Signal {
	return r.signal
}

// CanGoBack reports whether Pop has anywhere to go.
func (r *Router) CanGoBack() bool {
	return r.stack.depth() > 0
}

// Depth returns the number of routes retained for back navigation.
func (r *Router) Depth() int {
	return r.stack.depth()
}

// Peek returns the route Pop would navigate to, without navigating.
func (r *Router) Peek() (Route, bool) {
	return r.stack.peek()
}

// Set replaces the current route and clears the back history. Setting the
// route already displayed only clears the history; no transition runs and
// nothing fires. The history is cleared before the confirmation round, so a
// cancelled Set still leaves it cleared.
func (r *Router) Set(route Route) error {
	if r.coordinator.voting() {
		return ErrTransitionInProgress
	}
	r.stack.clear()
	if route == r.signal.Get() {
		return nil
	}
	return r.coordinator.request(route, r.notify)
}

// Push navigates to route, recording the previously displayed route so Pop
// can return to it. Pushing the route already displayed is a no-op.
func (r *Router) Push(route Route) error {
	prev := r.signal.Get()
	if route == prev {
		return nil
	}
	return r.coordinator.request(route, func(next Route) {
		r.stack.push(prev)
		r.notify(next)
	})
}

// Pop navigates back to the most recently recorded route. The second return
// reports whether there was anything to pop; popping an empty stack performs
// no transition and fires nothing. The entry is removed before the
// confirmation round, so a cancelled Pop still consumes it.
func (r *Router) Pop() (Route, bool, error) {
	if r.coordinator.voting() {
		return nil, false, ErrTransitionInProgress
	}
	route, ok := r.stack.pop()
	if !ok {
		return nil, false, nil
	}
	if err := r.coordinator.request(route, r.notify); err != nil {
		return route, true, err
	}
	return route, true, nil
}

// SetURL maps url to a route and delegates to Set.
func (r *Router) SetURL(url string) error {
	route, err := r.mapRoute(url)
	if err != nil {
		return err
	}
	return r.Set(route)
}

// PushURL maps url to a route and delegates to Push.
func (r *Router) PushURL(url string) error {
	route, err := r.mapRoute(url)
	if err != nil {
		return err
	}
	return r.Push(route)
}

func (r *Router) mapRoute(url string) (Route, error) {
	if r.mapURL == nil {
		return nil, ErrNoURLMapper
	}
	route := r.mapURL(url)
	if route == nil {
		return nil, fmt.Errorf("%w: %q", ErrRouteNotFound, url)
	}
	return route, nil
}

// notify broadcasts route as the new current route. A nil route indicates
// caller misuse; it is logged and still delivered so the notification
// contract holds.
func (r *Router) notify(route Route) {
	if route == nil {
		r.log.Warn("nil route passed to route update")
	}
	r.signal.Fire(route)
	r.log.Debug("route changed", "route", route)
}
