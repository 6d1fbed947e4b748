package notification

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"food-delivery-tracking/models"
	"food-delivery-tracking/statemachine"
)

// Writer stores a generated notification.
type Writer interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Generator emits the notifications for an order status change. Delivery is
// best effort: a write is retried a bounded number of times, then logged and
// dropped.
type Generator struct {
	writer     Writer
	locale     statemachine.Locale
	logger     *zap.Logger
	maxRetries uint64
	retryBase  time.Duration
	counter    *prometheus.CounterVec
}

type Option func(*Generator)

func WithLocale(locale statemachine.Locale) Option {
	return func(g *Generator) { g.locale = locale }
}

func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithRetry sets how many times a failed write is retried and the base delay
// of the exponential backoff between attempts.
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(g *Generator) {
		g.maxRetries = maxRetries
		g.retryBase = base
	}
}

// WithCounter records each write outcome, labelled by role and outcome.
func WithCounter(counter *prometheus.CounterVec) Option {
	return func(g *Generator) { g.counter = counter }
}

func NewGenerator(w Writer, opts ...Option) *Generator {
	g := &Generator{
		writer:     w,
		locale:     statemachine.DefaultLocale,
		logger:     zap.NewNop(),
		maxRetries: 2,
		retryBase:  50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NotifyTransition writes one notification per recipient of order entering
// status and returns how many were stored. Failures never propagate.
func (g *Generator) NotifyTransition(ctx context.Context, order *models.Order, status models.OrderStatus) int {
	stored := 0
	for _, recipient := range Recipients(order, status) {
		n, ok := Build(order, status, recipient, g.locale)
		if !ok {
			continue
		}
		if err := g.write(ctx, n); err != nil {
			g.observe(recipient.Role, "failed")
			g.logger.Warn("notification dropped",
				zap.Uint("order_id", order.ID),
				zap.String("status", string(status)),
				zap.Stringer("recipient", recipient),
				zap.Error(err),
			)
			continue
		}
		g.observe(recipient.Role, "stored")
		stored++
	}
	return stored
}

func (g *Generator) write(ctx context.Context, n *models.Notification) error {
	backoff := retry.WithMaxRetries(g.maxRetries, retry.NewExponential(g.retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		// A failed insert may have assigned an id; start clean on retry.
		n.ID = 0
		if err := g.writer.Create(ctx, n); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (g *Generator) observe(role models.Role, outcome string) {
	if g.counter != nil {
		g.counter.WithLabelValues(string(role), outcome).Inc()
	}
}
