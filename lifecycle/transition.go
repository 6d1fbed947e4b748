package lifecycle

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
	"food-delivery-tracking/statemachine"
	"food-delivery-tracking/tracking"
)

// TransitionRequest asks to move an order to Status. The actor must already
// be authorized by the caller.
type TransitionRequest struct {
	OrderID   uint
	Status    models.OrderStatus
	Actor     models.Actor
	Latitude  *float64
	Longitude *float64
	Notes     *string
	// Expected, when set, must equal the order's status at commit time.
	Expected models.OrderStatus
	Locale   statemachine.Locale
}

// TransitionResult is a committed transition.
type TransitionResult struct {
	Order         *models.Order
	Event         *models.TrackingEvent
	Previous      models.OrderStatus
	Message       string
	Notifications int
}

var confirmations = map[statemachine.Locale]string{
	statemachine.LocaleEnglish: "Order status updated successfully",
	statemachine.LocaleArabic:  "تم تحديث حالة الطلب بنجاح",
}

// Transition validates and applies a status change. The order update and
// its tracking event commit together or not at all; notifications follow the
// commit and never fail the call.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.Transition", trace.WithAttributes(
		attribute.Int64("order.id", int64(req.OrderID)),
		attribute.String("order.status.requested", string(req.Status)),
		attribute.String("actor", req.Actor.String()),
	))
	defer span.End()

	order, previous, event, err := s.apply(ctx, req)
	if err != nil {
		s.observe(req.Status, outcome(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Info("transition rejected",
			zap.Uint("order_id", req.OrderID),
			zap.String("requested", string(req.Status)),
			zap.Stringer("actor", req.Actor),
			zap.Error(err),
		)
		return nil, err
	}
	s.observe(req.Status, "ok")
	s.logger.Info("order status changed",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
		zap.Stringer("actor", req.Actor),
	)

	sent := s.notifier.NotifyTransition(context.WithoutCancel(ctx), order, order.Status)
	span.SetAttributes(attribute.Int("notifications", sent))

	locale := s.localeOr(req.Locale)
	msg, ok := confirmations[locale]
	if !ok {
		msg = confirmations[statemachine.DefaultLocale]
	}
	return &TransitionResult{
		Order:         order,
		Event:         event,
		Previous:      previous,
		Message:       msg,
		Notifications: sent,
	}, nil
}

func (s *Service) apply(ctx context.Context, req TransitionRequest) (*models.Order, models.OrderStatus, *models.TrackingEvent, error) {
	unlock := s.locks.Lock(req.OrderID)
	defer unlock()

	var (
		order    *models.Order
		previous models.OrderStatus
		event    *models.TrackingEvent
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = loadOrder(tx, req.OrderID)
		if err != nil {
			return err
		}
		previous = order.Status
		if req.Expected != "" && req.Expected != order.Status {
			return &errs.IllegalTransitionError{From: order.Status, To: req.Status}
		}
		if err := statemachine.Check(order.Status, req.Status); err != nil {
			return err
		}

		now := s.now()
		estimate, clears := statemachine.EstimatedArrival(req.Status, now)

		event, err = s.log.WithTx(tx).Append(ctx, tracking.AppendParams{
			OrderID:          order.ID,
			Status:           req.Status,
			Actor:            req.Actor,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			Notes:            req.Notes,
			EstimatedArrival: estimate,
			At:               now,
		})
		if err != nil {
			return errs.Persistence(err)
		}

		updates := map[string]any{
			"status":     req.Status,
			"updated_at": now,
		}
		if m := statemachine.MilestoneFor(req.Status); m != statemachine.MilestoneNone && stampMilestone(order, m, now) {
			updates[string(m)] = now
		}
		switch {
		case estimate != nil:
			updates["estimated_delivery_time"] = *estimate
			order.EstimatedDeliveryTime = estimate
		case clears:
			updates["estimated_delivery_time"] = nil
			order.EstimatedDeliveryTime = nil
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, previous).
			Updates(updates)
		if res.Error != nil {
			return errs.Persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.Persistence(errs.ErrConflict)
		}
		order.Status = req.Status
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, "", nil, asServiceError(err)
	}
	return order, previous, event, nil
}

// stampMilestone sets the milestone field on order unless it is already set,
// and reports whether it changed.
func stampMilestone(order *models.Order, m statemachine.Milestone, now time.Time) bool {
	var field **time.Time
	switch m {
	case statemachine.MilestoneConfirmed:
		field = &order.ConfirmedAt
	case statemachine.MilestonePrepared:
		field = &order.PreparedAt
	case statemachine.MilestonePickedUp:
		field = &order.PickedUpAt
	case statemachine.MilestoneDelivered:
		field = &order.DeliveredAt
	default:
		return false
	}
	if *field != nil {
		return false
	}
	t := now
	*field = &t
	return true
}

func (s *Service) observe(to models.OrderStatus, outcome string) {
	if s.transitions != nil {
		s.transitions.WithLabelValues(string(to), outcome).Inc()
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	}
	if _, ok := errs.IsIllegalTransition(err); ok {
		return "illegal"
	}
	return "persistence"
}
