package lifecycle

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
)

// OwnedRestaurant returns the restaurant owned by ownerID.
func (s *Service) OwnedRestaurant(ctx context.Context, ownerID uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return &restaurant, nil
}

// SetRestaurantOpen opens or closes the owner's restaurant to new orders.
// Orders already placed are not affected.
func (s *Service) SetRestaurantOpen(ctx context.Context, ownerID uint, open bool) (*models.Restaurant, error) {
	restaurant, err := s.OwnedRestaurant(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(restaurant).Update("is_open", open).Error; err != nil {
		return nil, errs.Persistence(err)
	}
	restaurant.IsOpen = open
	return restaurant, nil
}

// ListRestaurants returns restaurants by name, optionally only open ones
// whose name contains search.
func (s *Service) ListRestaurants(ctx context.Context, openOnly bool, search string) ([]models.Restaurant, error) {
	q := s.db.WithContext(ctx)
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if openOnly {
		q = q.Where("is_open = ?", true)
	}
	restaurants := []models.Restaurant{}
	if err := q.Order("name asc").Find(&restaurants).Error; err != nil {
		return nil, errs.Persistence(err)
	}
	return restaurants, nil
}
