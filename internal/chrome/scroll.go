package chrome

// ScrollState is a snapshot of a list viewport.
type ScrollState struct {
	FirstVisible    int `json:"first_visible" yaml:"first_visible"`
	TotalItems      int `json:"total_items" yaml:"total_items"`
	FirstChildTop   int `json:"first_child_top" yaml:"first_child_top"`
	LastChildBottom int `json:"last_child_bottom" yaml:"last_child_bottom"`
	ViewportHeight  int `json:"viewport_height" yaml:"viewport_height"`
}

// Scrolled reports whether the list has left its top edge.
func (s ScrollState) Scrolled() bool {
	return s.FirstVisible > 0 || (s.TotalItems > 0 && s.FirstChildTop < 0)
}

// Scrollable reports whether content extends past the bottom edge.
func (s ScrollState) Scrollable() bool {
	if s.Scrolled() {
		return true
	}
	return s.TotalItems > 0 && s.LastChildBottom >= s.ViewportHeight
}

// Scheduler defers work until the current layout pass is done.
type Scheduler interface {
	Post(fn func())
}

// Immediate runs posted work inline.
type Immediate struct{}

// Post calls fn.
func (Immediate) Post(fn func()) { fn() }

// Queue collects posted work until Drain is called, the way a UI thread
// event queue runs callbacks after layout. It is not safe for concurrent use.
type Queue struct {
	pending []func()
}

// Post appends fn to the queue.
func (q *Queue) Post(fn func()) {
	q.pending = append(q.pending, fn)
}

// Len returns the number of pending callbacks.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Drain runs pending callbacks in order, including ones posted while
// draining.
func (q *Queue) Drain() {
	for len(q.pending) > 0 {
		fn := q.pending[0]
		q.pending = q.pending[1:]
		fn()
	}
}
