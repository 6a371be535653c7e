package strada

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/strada/pkg/strada/internal"
)

func newTestCoordinator() *transitionCoordinator {
	return newTransitionCoordinator(internal.Logger())
}

// requestAsync registers handlerCount passthrough handlers, runs request on
// its own goroutine, and returns the result channel, the transitions handed
// to each handler in registration order, and the channel later rounds
// deliver transitions on. It only returns once every handler has been
// invoked, so the coordinator is guaranteed to be voting (or already
// resolved) by then.
func requestAsync(t *testing.T, c *transitionCoordinator, route Route, apply func(Route), handlerCount int) (<-chan error, []*Transition, chan *Transition) {
	t.Helper()

	got := make(chan *Transition, handlerCount)
	for i := 0; i < handlerCount; i++ {
		c.registerHandler(func(tr *Transition) {
			got <- tr
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.request(route, apply)
	}()

	transitions := make([]*Transition, 0, handlerCount)
	for i := 0; i < handlerCount; i++ {
		transitions = append(transitions, waitTransition(t, got))
	}
	return errCh, transitions, got
}

func waitTransition(t *testing.T, got <-chan *Transition) *Transition {
	t.Helper()
	select {
	case tr := <-got:
		return tr
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
		return nil
	}
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(time.Second):
		t.Fatal("transition never resolved")
		return nil
	}
}

func TestRequestNoHandlersShortCircuits(t *testing.T) {
	c := newTestCoordinator()

	applied := 0
	err := c.request("home", func(route Route) {
		applied++
		assert.Equal(t, "home", route)
	})

	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.False(t, c.voting())
}

func TestRequestCommitsOnUnanimousConfirm(t *testing.T) {
	c := newTestCoordinator()

	applied := 0
	errCh, transitions, _ := requestAsync(t, c, "home", func(Route) { applied++ }, 3)

	// Confirmation order must not matter.
	transitions[2].Confirm()
	transitions[0].Confirm()
	assert.True(t, c.voting(), "still one vote outstanding")

	transitions[1].Confirm()

	require.NoError(t, waitErr(t, errCh))
	assert.Equal(t, 1, applied)
	assert.False(t, c.voting())
}

func TestRequestAbortsOnSingleCancel(t *testing.T) {
	c := newTestCoordinator()

	applied := 0
	errCh, transitions, _ := requestAsync(t, c, "home", func(Route) { applied++ }, 3)

	transitions[0].Confirm()
	transitions[1].Confirm()
	transitions[2].Cancel("blocked")

	err := waitErr(t, errCh)
	require.Error(t, err)
	assert.True(t, IsCancelled(err))

	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, "blocked", cancelled.Reason)

	assert.Equal(t, 0, applied, "apply must never run on abort")
	assert.False(t, c.voting())
}

func TestRequestCancelWithoutReasonUsesDefault(t *testing.T) {
	c := newTestCoordinator()

	errCh, transitions, _ := requestAsync(t, c, "home", func(Route) {}, 1)
	transitions[0].Cancel("")

	var cancelled *CancelledError
	require.ErrorAs(t, waitErr(t, errCh), &cancelled)
	assert.Equal(t, defaultCancelReason, cancelled.Reason)
}

func TestRequestFailsFastWhileVoting(t *testing.T) {
	c := newTestCoordinator()

	errCh, transitions, _ := requestAsync(t, c, "home", func(Route) {}, 1)

	err := c.request("settings", func(Route) {
		t.Error("concurrent request must not apply")
	})
	assert.ErrorIs(t, err, ErrTransitionInProgress)
	assert.True(t, c.voting(), "pending transition must be unaffected")

	transitions[0].Confirm()
	require.NoError(t, waitErr(t, errCh))
}

func TestDuplicateConfirmIsNoOp(t *testing.T) {
	c := newTestCoordinator()

	errCh, transitions, _ := requestAsync(t, c, "home", func(Route) {}, 2)

	transitions[0].Confirm()
	transitions[0].Confirm()
	transitions[0].Confirm()
	assert.True(t, c.voting(), "double-confirm must not count for the other handler")

	transitions[1].Confirm()
	require.NoError(t, waitErr(t, errCh))
}

func TestVoteAfterResolutionIsNoOp(t *testing.T) {
	c := newTestCoordinator()

	errCh, transitions, got := requestAsync(t, c, "home", func(Route) {}, 2)

	transitions[0].Cancel("blocked")
	require.Error(t, waitErr(t, errCh))

	// Straggling votes from the already-resolved round change nothing.
	transitions[1].Confirm()
	transitions[1].Cancel("late")
	transitions[0].Confirm()
	assert.False(t, c.voting())

	// The coordinator is back to Idle and a fresh round works.
	applied := 0
	nextCh := make(chan error, 1)
	go func() {
		nextCh <- c.request("settings", func(Route) { applied++ })
	}()
	waitTransition(t, got).Confirm()
	waitTransition(t, got).Confirm()
	require.NoError(t, waitErr(t, nextCh))
	assert.Equal(t, 1, applied)
}

func TestHandlerRegisteredDuringVoteSitsOutRound(t *testing.T) {
	c := newTestCoordinator()

	errCh, transitions, got := requestAsync(t, c, "home", func(Route) {}, 1)

	lateCalls := 0
	c.registerHandler(func(tr *Transition) {
		lateCalls++
		tr.Confirm()
	})

	// The snapshot was taken before the late registration; the original
	// handler alone resolves the round.
	transitions[0].Confirm()
	require.NoError(t, waitErr(t, errCh))
	assert.Equal(t, 0, lateCalls)

	// The next round includes it.
	nextCh := make(chan error, 1)
	go func() {
		nextCh <- c.request("settings", func(Route) {})
	}()
	waitTransition(t, got).Confirm()
	require.NoError(t, waitErr(t, nextCh))
	assert.Equal(t, 1, lateCalls)
}

func TestUnregisterDuringVoteDoesNotCountAsVote(t *testing.T) {
	c := newTestCoordinator()

	got := make(chan *Transition, 1)
	c.registerHandler(func(tr *Transition) {
		tr.Confirm()
	})
	unregister := c.registerHandler(func(tr *Transition) {
		got <- tr
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.request("home", func(Route) {})
	}()
	second := waitTransition(t, got)

	unregister()
	assert.True(t, c.voting(), "unregistering mid-round is not a vote")

	second.Confirm()
	require.NoError(t, waitErr(t, errCh))

	// Future rounds no longer include the unregistered handler; the one
	// remaining handler confirms synchronously.
	require.NoError(t, c.request("settings", func(Route) {}))
}

func TestUnregisterTwiceIsHarmless(t *testing.T) {
	c := newTestCoordinator()

	calls := 0
	unregister := c.registerHandler(func(tr *Transition) {
		calls++
		tr.Confirm()
	})
	c.registerHandler(func(tr *Transition) {
		tr.Confirm()
	})

	unregister()
	unregister()

	require.NoError(t, c.request("home", func(Route) {}))
	assert.Equal(t, 0, calls)
}

func TestSynchronousVotesInsideHandler(t *testing.T) {
	c := newTestCoordinator()

	c.registerHandler(func(tr *Transition) {
		tr.Confirm()
	})
	c.registerHandler(func(tr *Transition) {
		tr.Confirm()
	})

	applied := 0
	require.NoError(t, c.request("home", func(Route) { applied++ }))
	assert.Equal(t, 1, applied)
	assert.False(t, c.voting())
}

func TestSynchronousCancelStopsCommit(t *testing.T) {
	c := newTestCoordinator()

	confirmed := 0
	c.registerHandler(func(tr *Transition) {
		confirmed++
		tr.Confirm()
	})
	c.registerHandler(func(tr *Transition) {
		tr.Cancel("nope")
	})

	err := c.request("home", func(Route) {
		t.Error("apply must never run on abort")
	})
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, 1, confirmed)
	assert.False(t, c.voting())
}
