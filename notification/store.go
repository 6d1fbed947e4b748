package notification

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Store persists notifications and serves recipients' inboxes.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a single notification.
func (s *Store) Create(ctx context.Context, n *models.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return errs.Persistence(err)
	}
	return nil
}

// ListParams filters a recipient's inbox.
type ListParams struct {
	Recipient  models.Actor
	Limit      int
	UnreadOnly bool
}

// List returns the recipient's notifications, newest first. Limit defaults to
// DefaultListLimit and is capped at MaxListLimit.
func (s *Store) List(ctx context.Context, p ListParams) ([]models.Notification, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := s.recipientScope(ctx, p.Recipient)
	if p.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	out := []models.Notification{}
	if err := query.Order("created_at desc").Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, errs.Persistence(err)
	}
	return out, nil
}

// MarkRead flags one of the recipient's notifications as read. Notifications
// of other recipients are reported as not found.
func (s *Store) MarkRead(ctx context.Context, recipient models.Actor, id uint) error {
	var n models.Notification
	err := s.recipientScope(ctx, recipient).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	if err != nil {
		return errs.Persistence(err)
	}
	if n.IsRead {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error; err != nil {
		return errs.Persistence(err)
	}
	return nil
}

// MarkAllRead flags every unread notification of the recipient and returns
// how many changed.
func (s *Store) MarkAllRead(ctx context.Context, recipient models.Actor) (int64, error) {
	res := s.recipientScope(ctx, recipient).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, errs.Persistence(res.Error)
	}
	return res.RowsAffected, nil
}

// UnreadCount counts the recipient's unread notifications.
func (s *Store) UnreadCount(ctx context.Context, recipient models.Actor) (int64, error) {
	var count int64
	err := s.recipientScope(ctx, recipient).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, errs.Persistence(err)
	}
	return count, nil
}

func (s *Store) recipientScope(ctx context.Context, recipient models.Actor) *gorm.DB {
	return s.db.WithContext(ctx).Where("recipient_id = ? AND recipient_role = ?", recipient.ID, recipient.Role)
}
