package strada

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const defaultCancelReason = "cancelled by handler"

// ConfirmTransitionFunc is a registered participant in the confirmation
// round run before every route change. It is invoked exactly once per round
// and must eventually call Confirm or Cancel on the transition it receives.
type ConfirmTransitionFunc func(t *Transition)

// Transition is the voting capability handed to a confirm handler: the
// proposed route plus Confirm and Cancel bound to that handler and that
// round.
type Transition struct {
	route   Route
	confirm func()
	cancel  func(reason string)
}

// Route returns the proposed route.
func (t *Transition) Route() Route {
	return t.route
}

// Confirm approves the transition on behalf of this handler. The transition
// commits once every handler in the round has confirmed. Duplicate calls,
// and calls after the round has resolved, are no-ops.
func (t *Transition) Confirm() {
	t.confirm()
}

// Cancel vetoes the transition. The reason, if non-empty, is surfaced to the
// caller through CancelledError. Calls after the round has resolved are
// no-ops.
func (t *Transition) Cancel(reason string) {
	t.cancel(reason)
}

type voteOutcome struct {
	committed bool
	reason    string
}

// pendingTransition is the coordinator's Voting state: the proposed route,
// the handler tokens still outstanding, and the channel the requesting
// goroutine waits on. At most one exists per coordinator at any time.
type pendingTransition struct {
	route       Route
	outstanding map[uuid.UUID]struct{}
	resolved    chan voteOutcome
}

// transitionCoordinator serializes route transitions. It is Idle when
// pending is nil and Voting otherwise; there are no other states and no
// queue of waiting transitions.
type transitionCoordinator struct {
	mu       sync.Mutex
	order    []uuid.UUID
	handlers map[uuid.UUID]ConfirmTransitionFunc
	pending  *pendingTransition
	log      *slog.Logger
}

func newTransitionCoordinator(log *slog.Logger) *transitionCoordinator {
	return &transitionCoordinator{
		handlers: make(map[uuid.UUID]ConfirmTransitionFunc),
		log:      log,
	}
}

// registerHandler adds fn to the ordered handler list and returns a function
// that unregisters it. Unregistering never counts as a vote: a round whose
// snapshot already includes the handler still waits for it.
func (c *transitionCoordinator) registerHandler(fn ConfirmTransitionFunc) func() {
	c.mu.Lock()
	id := uuid.New()
	c.order = append(c.order, id)
	c.handlers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.handlers[id]; !ok {
			return
		}
		delete(c.handlers, id)
		for i, other := range c.order {
			if other == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// request runs the confirmation protocol for route. It fails fast with
// ErrTransitionInProgress while another transition is voting, short-circuits
// when no handlers are registered, and otherwise blocks until every handler
// in the snapshot confirms or one cancels. On commit, apply runs exactly
// once before request returns.
func (c *transitionCoordinator) request(route Route, apply func(Route)) error {
	c.mu.Lock()
	if c.pending != nil {
		c.mu.Unlock()
		return ErrTransitionInProgress
	}
	if len(c.order) == 0 {
		c.mu.Unlock()
		apply(route)
		return nil
	}

	// Snapshot the registration list; handlers registered after this point
	// sit out the round.
	ids := make([]uuid.UUID, len(c.order))
	copy(ids, c.order)
	fns := make([]ConfirmTransitionFunc, len(ids))
	outstanding := make(map[uuid.UUID]struct{}, len(ids))
	for i, id := range ids {
		fns[i] = c.handlers[id]
		outstanding[id] = struct{}{}
	}
	p := &pendingTransition{
		route:       route,
		outstanding: outstanding,
		resolved:    make(chan voteOutcome, 1),
	}
	c.pending = p
	c.mu.Unlock()

	for i, fn := range fns {
		id := ids[i]
		fn(&Transition{
			route:   route,
			confirm: func() { c.vote(p, id, true, "") },
			cancel:  func(reason string) { c.vote(p, id, false, reason) },
		})
	}

	outcome := <-p.resolved
	if !outcome.committed {
		return &CancelledError{Reason: outcome.reason}
	}
	apply(route)
	return nil
}

// vote is the single state-transition function for a voting round. Votes
// against a round that already resolved, and duplicate confirms from the
// same handler, are no-ops.
func (c *transitionCoordinator) vote(p *pendingTransition, id uuid.UUID, approved bool, reason string) {
	c.mu.Lock()
	if c.pending != p {
		c.mu.Unlock()
		return
	}

	if approved {
		if _, ok := p.outstanding[id]; !ok {
			c.mu.Unlock()
			return
		}
		delete(p.outstanding, id)
		if len(p.outstanding) > 0 {
			c.mu.Unlock()
			return
		}
		c.pending = nil
		c.mu.Unlock()
		p.resolved <- voteOutcome{committed: true}
		return
	}

	c.pending = nil
	c.mu.Unlock()
	if reason == "" {
		reason = defaultCancelReason
	}
	c.log.Debug("route transition cancelled", "reason", reason)
	p.resolved <- voteOutcome{committed: false, reason: reason}
}

// voting reports whether a transition is currently collecting votes.
func (c *transitionCoordinator) voting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}
