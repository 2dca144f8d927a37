package queue

import (
	"context"
	"errors"
	"log"
	"sync"

	"safarpay/internal/usecase/interfaces"
)

var ErrQueueFull = errors.New("notification queue full")

const defaultBufferSize = 64

// TaskHandler processes one notification task. A returned error fails
// the task; the worker logs it and moves on (no retry policy here).
type TaskHandler func(ctx context.Context, task interfaces.NotificationTask) error

// InMemoryNotificationQueue is a buffered-channel task queue with a
// single background worker. Enqueue never blocks: a full buffer is an
// error the producer may ignore.
type InMemoryNotificationQueue struct {
	tasks chan interfaces.NotificationTask

	startOnce sync.Once
	done      chan struct{}
}

var _ interfaces.INotificationQueue = (*InMemoryNotificationQueue)(nil)

func NewInMemoryNotificationQueue(bufferSize int) *InMemoryNotificationQueue {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &InMemoryNotificationQueue{
		tasks: make(chan interfaces.NotificationTask, bufferSize),
		done:  make(chan struct{}),
	}
}

func (q *InMemoryNotificationQueue) Enqueue(_ context.Context, task interfaces.NotificationTask) error {
	select {
	case q.tasks <- task:
		log.Printf("[notification][queue] enqueued payment_id=%s", task.PaymentID)
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker goroutine. It runs until ctx is cancelled;
// Done reports when the worker has drained out.
func (q *InMemoryNotificationQueue) Start(ctx context.Context, handler TaskHandler) {
	q.startOnce.Do(func() {
		go func() {
			defer close(q.done)
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-q.tasks:
					if err := handler(ctx, task); err != nil {
						log.Printf("[notification][queue] task failed payment_id=%s err=%v", task.PaymentID, err)
					}
				}
			}
		}()
	})
}

func (q *InMemoryNotificationQueue) Done() <-chan struct{} {
	return q.done
}
