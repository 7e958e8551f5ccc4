package listen

import (
	"context"
	"errors"
	"sync"

	"aura/internal/assistant"
)

// ErrQueueClosed is returned once the queue is shut down.
var ErrQueueClosed = errors.New("input queue closed")

// Queue is the bounded, blocking hand-off between capture goroutines and the
// processing loop.
type Queue struct {
	ch   chan assistant.Utterance
	done chan struct{}
	once sync.Once
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 4
	}
	return &Queue{
		ch:   make(chan assistant.Utterance, capacity),
		done: make(chan struct{}),
	}
}

// Push blocks while the queue is full.
func (q *Queue) Push(ctx context.Context, u assistant.Utterance) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- u:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop blocks until an utterance arrives, the context ends or the queue closes.
func (q *Queue) Pop(ctx context.Context) (assistant.Utterance, error) {
	select {
	case u := <-q.ch:
		return u, nil
	case <-ctx.Done():
		return assistant.Utterance{}, ctx.Err()
	case <-q.done:
		// Drain anything pushed before Close won the race.
		select {
		case u := <-q.ch:
			return u, nil
		default:
			return assistant.Utterance{}, ErrQueueClosed
		}
	}
}

func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}
