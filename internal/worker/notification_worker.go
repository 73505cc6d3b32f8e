package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/mailer"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// NotificationWorker sends queued emails on a single background goroutine.
// The queue is bounded; Enqueue never blocks and drops mail when full.
type NotificationWorker struct {
	mailer mailer.Mailer
	logger *zap.Logger

	mu     sync.Mutex
	queue  chan mailer.Message
	closed bool
	done   chan struct{}
}

// NewNotificationWorker creates a worker with room for size pending messages.
func NewNotificationWorker(m mailer.Mailer, size int, logger *zap.Logger) *NotificationWorker {
	if size <= 0 {
		size = 1
	}
	return &NotificationWorker{
		mailer: m,
		logger: logger,
		queue:  make(chan mailer.Message, size),
		done:   make(chan struct{}),
	}
}

// StartNotificationWorker subscribes the notification handlers and starts
// draining the queue.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, w *NotificationWorker) {
	if notifications == nil || w == nil {
		return
	}
	notifications.RegisterHandlers(w)
	go w.run(ctx)
}

// Enqueue schedules msg for delivery and reports whether it was accepted.
func (w *NotificationWorker) Enqueue(msg mailer.Message) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- msg:
		return true
	default:
		w.logger.Warn("notification queue full; dropping email",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject))
		return false
	}
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer close(w.done)
	for msg := range w.queue {
		if err := w.mailer.Send(context.WithoutCancel(ctx), msg); err != nil {
			w.logger.Error("send notification", zap.Strings("to", msg.To), zap.Error(err))
		}
	}
}

// Stop refuses new mail and waits for queued mail to be sent or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
