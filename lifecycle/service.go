// Package lifecycle drives orders through their status state machine. Every
// accepted change commits the order update and its tracking event together,
// then fans out notifications.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
	"food-delivery-tracking/statemachine"
	"food-delivery-tracking/tracking"
)

// Notifier is told about every committed status change.
type Notifier interface {
	NotifyTransition(ctx context.Context, order *models.Order, status models.OrderStatus) int
}

type nopNotifier struct{}

func (nopNotifier) NotifyTransition(context.Context, *models.Order, models.OrderStatus) int { return 0 }

// Service is the order lifecycle service.
type Service struct {
	db          *gorm.DB
	log         *tracking.Log
	notifier    Notifier
	locks       *keyedMutex
	now         func() time.Time
	logger      *zap.Logger
	tracer      trace.Tracer
	transitions *prometheus.CounterVec
	grace       time.Duration
	locale      statemachine.Locale
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock replaces time.Now for every timestamp the service writes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithTransitionCounter counts transition attempts by target and outcome.
func WithTransitionCounter(counter *prometheus.CounterVec) Option {
	return func(s *Service) { s.transitions = counter }
}

// WithOnTimeGrace sets the slack allowed past the promised arrival.
func WithOnTimeGrace(grace time.Duration) Option {
	return func(s *Service) { s.grace = grace }
}

// WithLocale sets the locale used when a request does not name one.
func WithLocale(locale statemachine.Locale) Option {
	return func(s *Service) { s.locale = locale }
}

func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		notifier: nopNotifier{},
		locks:    newKeyedMutex(),
		now:      time.Now,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("food-delivery-tracking/lifecycle"),
		grace:    tracking.DefaultOnTimeGrace,
		locale:   statemachine.DefaultLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = tracking.NewLog(db, s.now)
	return s
}

func (s *Service) localeOr(locale statemachine.Locale) statemachine.Locale {
	if locale == "" {
		return s.locale
	}
	return locale
}

// GetOrder loads an order with its restaurant.
func (s *Service) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return loadOrder(s.db.WithContext(ctx), orderID)
}

func loadOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Restaurant").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return &order, nil
}

// asServiceError keeps the service's own errors and wraps anything else,
// such as a failed commit, as a persistence failure.
func asServiceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrPersistence) {
		return err
	}
	if _, ok := errs.IsIllegalTransition(err); ok {
		return err
	}
	for _, known := range []error{errs.ErrAlreadyAssigned, errs.ErrNotAssignable, errs.ErrRestaurantClosed} {
		if errors.Is(err, known) {
			return err
		}
	}
	return errs.Persistence(err)
}
