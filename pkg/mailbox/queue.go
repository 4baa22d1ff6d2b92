package mailbox

import (
	"sync"
	"time"
)

// eventQueue is the worker's task queue. Post and PostAfter are safe from any goroutine;
// tasks only ever run on the worker.
type eventQueue struct {
	mu     sync.Mutex
	tasks  []func()
	timers map[*time.Timer]struct{}
	closed bool
	wake   chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		timers: make(map[*time.Timer]struct{}),
		wake:   make(chan struct{}, 1),
	}
}

// Post enqueues task. Tasks posted after the worker exits are dropped.
func (q *eventQueue) Post(task func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// PostAfter enqueues task once delay has elapsed. The timer only enqueues; the task
// still runs on the worker.
func (q *eventQueue) PostAfter(delay time.Duration, task func()) {
	if delay <= 0 {
		q.Post(task)
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.timers, timer)
		q.mu.Unlock()
		q.Post(task)
	})
	q.timers[timer] = struct{}{}
}

// take removes and returns the queued tasks.
func (q *eventQueue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	tasks := q.tasks
	q.tasks = nil
	return tasks
}

func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.tasks = nil
	for timer := range q.timers {
		timer.Stop()
	}
	clear(q.timers)
}

func (q *eventQueue) pending() (tasks, timers int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks), len(q.timers)
}
