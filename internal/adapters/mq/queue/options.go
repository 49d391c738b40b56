package queue

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the number of completions waiting for a refresh.
// Completions beyond it are rejected with ErrFull and the leaderboard is
// recomputed on the next read instead.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
