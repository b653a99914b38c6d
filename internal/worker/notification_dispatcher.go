package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/text/currency"

	"github.com/polkiloo/storefront/internal/adapter/notification"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const publishTimeout = 5 * time.Second

// NotificationDispatcher queues order events and publishes them from a worker pool.
// Enqueueing never blocks: when the queue is full the event is dropped and logged.
type NotificationDispatcher struct {
	publisher notification.Publisher
	currency  currency.Unit
	workers   int
	logger    *slog.Logger
	now       func() time.Time

	queue  chan notification.Event
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewNotificationDispatcher constructs the dispatcher; it publishes nothing until Start.
func NewNotificationDispatcher(publisher notification.Publisher, unit currency.Unit, workers, queueSize int, logger *slog.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &NotificationDispatcher{
		publisher: publisher,
		currency:  unit,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
		queue:     make(chan notification.Event, queueSize),
	}
}

// OrderCreated enqueues an order.created event.
func (d *NotificationDispatcher) OrderCreated(ctx context.Context, order *model.Order, user *model.User) {
	d.enqueue(ctx, notification.EventOrderCreated, order, user)
}

// OrderStatusChanged enqueues an order.status_changed event.
func (d *NotificationDispatcher) OrderStatusChanged(ctx context.Context, order *model.Order, user *model.User) {
	d.enqueue(ctx, notification.EventOrderStatusChanged, order, user)
}

func (d *NotificationDispatcher) enqueue(ctx context.Context, kind notification.EventType, order *model.Order, user *model.User) {
	if order == nil {
		return
	}
	ev := notification.NewEvent(kind, order, user, d.currency, d.now())
	select {
	case d.queue <- ev:
	default:
		d.logger.WarnContext(ctx, "notification queue full, event dropped",
			slog.String("type", string(kind)),
			slog.Int64("order_id", order.ID))
	}
}

// Start launches the workers. The pool outlives ctx cancellation; use Stop.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop signals the workers, lets them flush what is already queued and waits.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *NotificationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case ev := <-d.queue:
			d.publish(context.Background(), ev)
		}
	}
}

func (d *NotificationDispatcher) drain() {
	for {
		select {
		case ev := <-d.queue:
			d.publish(context.Background(), ev)
		default:
			return
		}
	}
}

func (d *NotificationDispatcher) publish(parent context.Context, ev notification.Event) {
	ctx, cancel := context.WithTimeout(parent, publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, ev); err != nil {
		d.logger.Error("publish notification failed",
			slog.String("event_id", ev.ID),
			slog.String("type", string(ev.Type)),
			slog.Int64("order_id", ev.OrderID),
			slog.String("error", err.Error()))
	}
}
