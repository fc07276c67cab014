package sched

// Queue collects zero-argument tasks to run on the next main-tick cycle.
// Enqueuing is allowed from any goroutine; Drain must only be called by the
// tick goroutine. Tasks run once, in enqueue order, and cannot be cancelled.
type Queue struct {
	ch chan func()
}

func NewQueue() *Queue {
	return &Queue{ch: make(chan func(), 1024)}
}

// RunOnNextTick enqueues fn. Nil tasks are ignored.
func (q *Queue) RunOnNextTick(fn func()) {
	if fn == nil {
		return
	}
	q.ch <- fn
}

// Drain runs every task enqueued before the call. Tasks enqueued by a
// running task land in the following tick's drain, matching the host
// scheduler's "next tick" semantics.
func (q *Queue) Drain() {
	n := len(q.ch)
	for i := 0; i < n; i++ {
		fn := <-q.ch
		fn()
	}
}

// Len reports the number of pending tasks; diagnostics only.
func (q *Queue) Len() int { return len(q.ch) }
