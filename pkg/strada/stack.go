package strada

// Route is an opaque application navigation-state value. Routes must be
// comparable; the library stores them and compares them with ==, nothing
// more.
type Route any

// routeStack is the bounded back-navigation history, oldest-first. All
// access happens under the coordinator's single-active-transition
// discipline, so it carries no locking of its own.
type routeStack struct {
	entries []Route
	limit   int
}

func newRouteStack(limit int) *routeStack {
	if limit < 0 {
		limit = 0
	}
	return &routeStack{limit: limit}
}

// push appends route, evicting the oldest entries first once the bound is
// exceeded.
func (s *routeStack) push(route Route) {
	s.entries = append(s.entries, route)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
}

// pop removes and returns the most recent entry. Returns false if the stack
// is empty.
func (s *routeStack) pop() (Route, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	route := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return route, true
}

// peek returns the most recent entry without removing it.
func (s *routeStack) peek() (Route, bool) {
	if len(s.entries) == 0 {
		return nil, false
	}
	return s.entries[len(s.entries)-1], true
}

// clear removes all entries.
func (s *routeStack) clear() {
	s.entries = s.entries[:0]
}

// depth returns the number of entries.
func (s *routeStack) depth() int {
	return len(s.entries)
}
