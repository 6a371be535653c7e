// Package strada provides coordinated client-side navigation: a current
// route, a bounded back-navigation history, and a confirmation protocol that
// lets registered handlers veto a route change before it takes effect.
//
// A Route is an opaque, comparable value owned by the application. The
// router never constructs or inspects routes; it only stores them and
// compares them for equality.
//
// # Basic Usage
//
//	// Routes can be any comparable type; string names work fine.
//	sig := strada.NewRouteSignal()
//	r := strada.New(
//	    strada.WithStackSize(16),
//	    strada.WithSignal(sig),
//	)
//
//	// React to route changes through the router's signal.
//	sig.Subscribe(func(route strada.Route) {
//	    render(route)
//	})
//
//	r.Set("home")      // replace the current route, clear history
//	r.Push("library")  // navigate forward, remembering "home"
//	r.Pop()            // navigate back to "home"
//
// # Confirming Transitions
//
// Handlers registered with RegisterHandler participate in every route
// change. A transition commits only when every handler confirms; any single
// cancellation aborts it:
//
//	unregister := r.RegisterHandler(func(t *strada.Transition) {
//	    if editor.Dirty() {
//	        t.Cancel("unsaved changes")
//	        return
//	    }
//	    t.Confirm()
//	})
//	defer unregister()
//
//	if err := r.Push("settings"); strada.IsCancelled(err) {
//	    // the handler vetoed, current route is unchanged
//	}
//
// Handlers may vote synchronously from inside the callback or later from
// another goroutine; the navigation call blocks until the round resolves.
// There is no timeout: a handler that never votes leaves the transition
// pending, so every registered handler must eventually call Confirm or
// Cancel. While a transition is pending, further navigation calls fail with
// ErrTransitionInProgress rather than queue.
//
// # URL Navigation
//
// SetURL and PushURL translate a URL through a mapper supplied at
// construction:
//
//	r := strada.New(strada.WithURLMapper(strada.TableMapper(map[string]strada.Route{
//	    "/":         "home",
//	    "/settings": "settings",
//	})))
//	r.SetURL("/settings")
//
// Routers are explicit instances. Construct one per application (or per
// test) and pass it where navigation happens; there is no package-level
// default.
package strada
