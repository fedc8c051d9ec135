package progression

// Cell holds the one authoritative UserState of a session. All writers go
// through Replace; there is no partial update.
//
// Cell is not synchronized. It is owned by the UI event loop.
type Cell struct {
	state       UserState
	loaded      bool
	subscribers []func(Change)
}

// NewCell returns an empty cell.
func NewCell() *Cell {
	return &Cell{}
}

// Load returns the current state and whether one has been stored yet.
func (c *Cell) Load() (UserState, bool) {
	return c.state, c.loaded
}

// Replace swaps in next wholesale and notifies subscribers. The returned
// Change is relative to the previous state, or to the zero state before the
// first Replace.
func (c *Cell) Replace(next UserState) Change {
	ch := Diff(c.state, next)
	c.state = next
	c.loaded = true
	for _, fn := range c.subscribers {
		fn(ch)
	}
	return ch
}

// Subscribe registers fn to be called after every Replace.
func (c *Cell) Subscribe(fn func(Change)) {
	c.subscribers = append(c.subscribers, fn)
}
