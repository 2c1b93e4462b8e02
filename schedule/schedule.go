// Package schedule batches per-frame work. Tasks queued between two frames
// are coalesced by key and run together when the next frame is drawn.
package schedule

// Task is a unit of frame work.
type Task func()

type entry struct {
	key  string
	task Task
}

// Scheduler queues at most one task per key until the next Flush. It is not
// safe for concurrent use; all calls happen on the frame goroutine.
type Scheduler struct {
	invalidate func()
	queue      []entry
	index      map[string]int
	closed     bool
}

// New returns a scheduler that calls invalidate whenever the first task of
// a frame is queued, so the window system produces another frame.
func New(invalidate func()) *Scheduler {
	if invalidate == nil {
		invalidate = func() {}
	}
	return &Scheduler{
		invalidate: invalidate,
		index:      make(map[string]int),
	}
}

// Schedule queues task under key. If a task with the same key is already
// pending, task replaces it and keeps its place in the queue.
func (s *Scheduler) Schedule(key string, task Task) {
	if s.closed || task == nil {
		return
	}
	if i, ok := s.index[key]; ok {
		s.queue[i].task = task
		return
	}
	s.index[key] = len(s.queue)
	s.queue = append(s.queue, entry{key: key, task: task})
	if len(s.queue) == 1 {
		s.invalidate()
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Flush runs the queued tasks in the order they were first scheduled.
// Tasks scheduled while flushing wait for the next frame.
func (s *Scheduler) Flush() {
	if len(s.queue) == 0 {
		return
	}
	queue := s.queue
	s.queue = nil
	clear(s.index)
	for _, e := range queue {
		e.task()
	}
}

// Close drops pending tasks and ignores any scheduled afterwards.
func (s *Scheduler) Close() {
	s.closed = true
	s.queue = nil
	clear(s.index)
}
