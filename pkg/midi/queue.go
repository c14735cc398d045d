package midi

import "sync"

// Queue hands note events from control threads to the audio thread.
// Producers Push at any time; the audio thread drains once per block.
// The lock is held only for the append/swap, never across processing.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue creates a queue with room for a typical block's events.
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 64)}
}

// Push appends an event.
func (q *Queue) Push(event Event) {
	q.mu.Lock()
	q.events = append(q.events, event)
	q.mu.Unlock()
}

// Drain moves all pending events into dst (reusing its capacity) and
// clears the queue. Returns the filled slice.
func (q *Queue) Drain(dst []Event) []Event {
	q.mu.Lock()
	dst = append(dst[:0], q.events...)
	q.events = q.events[:0]
	q.mu.Unlock()
	return dst
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
