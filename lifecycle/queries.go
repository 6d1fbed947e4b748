package lifecycle

import (
	"context"
	"time"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
	"food-delivery-tracking/statemachine"
	"food-delivery-tracking/tracking"
)

// StatusSnapshot is the current state of an order as shown to its parties.
type StatusSnapshot struct {
	OrderID               uint               `json:"order_id"`
	OrderNumber           string             `json:"order_number"`
	CurrentStatus         models.OrderStatus `json:"current_status"`
	StatusDescription     string             `json:"status_description"`
	EstimatedDeliveryTime *time.Time         `json:"estimated_delivery_time"`
	CreatedAt             time.Time          `json:"created_at"`
	ConfirmedAt           *time.Time         `json:"confirmed_at"`
	PreparedAt            *time.Time         `json:"prepared_at"`
	PickedUpAt            *time.Time         `json:"picked_up_at"`
	DeliveredAt           *time.Time         `json:"delivered_at"`

	// Set only once the order has a tracking event.
	LastLocationLatitude  *float64   `json:"last_location_latitude,omitempty"`
	LastLocationLongitude *float64   `json:"last_location_longitude,omitempty"`
	LastUpdateTime        *time.Time `json:"last_update_time,omitempty"`
	LastNotes             *string    `json:"last_notes,omitempty"`
}

// Status returns the order's snapshot with its status described in locale.
func (s *Service) Status(ctx context.Context, orderID uint, locale statemachine.Locale) (*StatusSnapshot, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, order, locale)
}

func (s *Service) snapshot(ctx context.Context, order *models.Order, locale statemachine.Locale) (*StatusSnapshot, error) {
	latest, err := s.log.Latest(ctx, order.ID)
	if err != nil {
		return nil, errs.Persistence(err)
	}

	snap := &StatusSnapshot{
		OrderID:               order.ID,
		OrderNumber:           order.OrderNumber,
		CurrentStatus:         order.Status,
		StatusDescription:     statemachine.Label(order.Status, s.localeOr(locale)),
		EstimatedDeliveryTime: order.EstimatedDeliveryTime,
		CreatedAt:             order.CreatedAt,
		ConfirmedAt:           order.ConfirmedAt,
		PreparedAt:            order.PreparedAt,
		PickedUpAt:            order.PickedUpAt,
		DeliveredAt:           order.DeliveredAt,
	}
	if latest != nil {
		at := latest.CreatedAt
		snap.LastLocationLatitude = latest.Latitude
		snap.LastLocationLongitude = latest.Longitude
		snap.LastUpdateTime = &at
		snap.LastNotes = latest.Notes
	}
	return snap, nil
}

// History returns the order's tracking events, oldest first.
func (s *Service) History(ctx context.Context, orderID uint) ([]models.TrackingEvent, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	events, err := s.log.History(ctx, orderID)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return events, nil
}

// Metrics replays the order's tracking log. It returns nil metrics when the
// order has no events yet.
func (s *Service) Metrics(ctx context.Context, orderID uint) (*tracking.Metrics, error) {
	events, err := s.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return tracking.CalculateMetrics(events, tracking.PromisedArrival(events), s.grace), nil
}
