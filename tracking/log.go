// Package tracking holds the append-only tracking log of order status
// changes and the delivery metrics derived from it.
package tracking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"food-delivery-tracking/models"
)

// Log is the ordered, append-only record of accepted status changes.
// It performs no transition validation.
type Log struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLog creates a tracking log over db. now stamps new events.
func NewLog(db *gorm.DB, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{db: db, now: now}
}

// WithTx returns a Log that writes through tx.
func (l *Log) WithTx(tx *gorm.DB) *Log {
	return &Log{db: tx, now: l.now}
}

// AppendParams describes one tracking event.
type AppendParams struct {
	OrderID          uint
	Status           models.OrderStatus
	Actor            models.Actor
	Latitude         *float64
	Longitude        *float64
	Notes            *string
	EstimatedArrival *time.Time
	// At overrides the event timestamp; zero means now.
	At time.Time
}

// Append inserts a new event.
func (l *Log) Append(ctx context.Context, p AppendParams) (*models.TrackingEvent, error) {
	at := p.At
	if at.IsZero() {
		at = l.now()
	}
	event := &models.TrackingEvent{
		OrderID:          p.OrderID,
		Status:           p.Status,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		Notes:            p.Notes,
		EstimatedArrival: p.EstimatedArrival,
		ActorID:          p.Actor.ID,
		ActorRole:        p.Actor.Role,
		CreatedAt:        at,
	}
	if err := l.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// History returns every event of the order, oldest first. Ties on the
// timestamp fall back to insertion order.
func (l *Log) History(ctx context.Context, orderID uint) ([]models.TrackingEvent, error) {
	events := []models.TrackingEvent{}
	err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").Order("id asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Latest returns the most recent event of the order, or nil if it has none.
func (l *Log) Latest(ctx context.Context, orderID uint) (*models.TrackingEvent, error) {
	var event models.TrackingEvent
	err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at desc").Order("id desc").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteForOrder removes the order's events. Used only when the order
// itself is deleted.
func (l *Log) DeleteForOrder(ctx context.Context, orderID uint) error {
	return l.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.TrackingEvent{}).Error
}
