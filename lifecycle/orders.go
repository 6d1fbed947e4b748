package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
	"food-delivery-tracking/tracking"
)

// assignable are the statuses in which an order may still take an agent.
var assignable = []models.OrderStatus{
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusReady,
}

// agentActive are the statuses an assigned agent is still working on.
var agentActive = []models.OrderStatus{
	models.StatusReady,
	models.StatusPickedUp,
}

// NewOrderNumber builds a human readable order number: LVR, the UTC
// timestamp to the second, then 8 random hex characters.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "LVR" + now.UTC().Format("20060102150405") + suffix
}

// PlaceOrderParams describes a new order.
type PlaceOrderParams struct {
	CustomerID        uint
	RestaurantID      uint
	TotalAmount       float64
	DeliveryAddress   string
	DeliveryLatitude  *float64
	DeliveryLongitude *float64
	DeliveryNotes     string
}

// PlaceOrder creates a pending order at an open restaurant.
func (s *Service) PlaceOrder(ctx context.Context, p PlaceOrderParams) (*models.Order, error) {
	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).First(&restaurant, p.RestaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Persistence(err)
	}
	if !restaurant.IsOpen {
		return nil, errs.ErrRestaurantClosed
	}

	now := s.now()
	order := &models.Order{
		OrderNumber:       NewOrderNumber(now),
		CustomerID:        p.CustomerID,
		RestaurantID:      restaurant.ID,
		Status:            models.StatusPending,
		TotalAmount:       p.TotalAmount,
		DeliveryAddress:   p.DeliveryAddress,
		DeliveryLatitude:  p.DeliveryLatitude,
		DeliveryLongitude: p.DeliveryLongitude,
		DeliveryNotes:     p.DeliveryNotes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, errs.Persistence(err)
	}
	order.Restaurant = &restaurant

	s.logger.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", order.CustomerID),
		zap.Uint("restaurant_id", order.RestaurantID),
	)
	return order, nil
}

// AssignAgent gives an unassigned order to a delivery agent. The order keeps
// its status; the agent moves it on through Transition.
func (s *Service) AssignAgent(ctx context.Context, orderID, agentID uint) (*models.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = loadOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.DeliveryAgentID != nil {
			return errs.ErrAlreadyAssigned
		}
		if !containsStatus(assignable, order.Status) {
			return errs.ErrNotAssignable
		}

		now := s.now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND delivery_agent_id IS NULL AND status IN ?", order.ID, assignable).
			Updates(map[string]any{"delivery_agent_id": agentID, "updated_at": now})
		if res.Error != nil {
			return errs.Persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.Persistence(errs.ErrConflict)
		}
		order.DeliveryAgentID = &agentID
		order.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, asServiceError(err)
	}

	s.logger.Info("delivery agent assigned", zap.Uint("order_id", orderID), zap.Uint("agent_id", agentID))
	return order, nil
}

// DeleteOrder removes an order and its tracking history together.
// Notifications that mention the order are kept.
func (s *Service) DeleteOrder(ctx context.Context, orderID uint) error {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tracking.NewLog(tx, s.now).DeleteForOrder(ctx, orderID); err != nil {
			return errs.Persistence(err)
		}
		res := tx.Delete(&models.Order{}, orderID)
		if res.Error != nil {
			return errs.Persistence(res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return asServiceError(err)
	}
	s.logger.Info("order deleted", zap.Uint("order_id", orderID))
	return nil
}

// ListFilter narrows order listings. Zero values mean no filter.
type ListFilter struct {
	Status       models.OrderStatus
	CustomerID   uint
	RestaurantID uint
	Limit        int
	Offset       int
}

// OrderList is a page of orders. Summary counts every status of the
// customer or restaurant scope, ignoring the status filter and paging.
type OrderList struct {
	Orders  []models.Order               `json:"orders"`
	Count   int                          `json:"count"`
	Summary map[models.OrderStatus]int64 `json:"order_summary"`
}

// ListOrders returns orders matching f, newest first.
func (s *Service) ListOrders(ctx context.Context, f ListFilter) (*OrderList, error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Order{})
		if f.CustomerID != 0 {
			q = q.Where("customer_id = ?", f.CustomerID)
		}
		if f.RestaurantID != 0 {
			q = q.Where("restaurant_id = ?", f.RestaurantID)
		}
		return q
	}

	var rows []struct {
		Status models.OrderStatus
		Total  int64
	}
	if err := base().Select("status, count(*) as total").Group("status").Scan(&rows).Error; err != nil {
		return nil, errs.Persistence(err)
	}
	summary := make(map[models.OrderStatus]int64, len(rows))
	for _, r := range rows {
		summary[r.Status] = r.Total
	}

	q := base().Preload("Restaurant")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	orders := []models.Order{}
	if err := q.Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return nil, errs.Persistence(err)
	}
	return &OrderList{Orders: orders, Count: len(orders), Summary: summary}, nil
}

// RestaurantOrders lists the orders of the restaurant owned by ownerID.
func (s *Service) RestaurantOrders(ctx context.Context, ownerID uint, status models.OrderStatus) (*models.Restaurant, *OrderList, error) {
	restaurant, err := s.OwnedRestaurant(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.ListOrders(ctx, ListFilter{RestaurantID: restaurant.ID, Status: status})
	if err != nil {
		return nil, nil, err
	}
	return restaurant, list, nil
}

// AvailableOrders lists unassigned orders an agent may accept, oldest first.
func (s *Service) AvailableOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).Preload("Restaurant").
		Where("delivery_agent_id IS NULL AND status IN ?", assignable).
		Order("created_at asc").Order("id asc").
		Find(&orders).Error
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return orders, nil
}

// AgentOrder is an order an agent is carrying, with its live status.
type AgentOrder struct {
	models.Order
	TrackingInfo *StatusSnapshot `json:"tracking_info"`
}

// AgentCurrentOrders lists the agent's orders that are ready or on the road.
func (s *Service) AgentCurrentOrders(ctx context.Context, agentID uint) ([]AgentOrder, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("Restaurant").
		Where("delivery_agent_id = ? AND status IN ?", agentID, agentActive).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, errs.Persistence(err)
	}

	out := make([]AgentOrder, 0, len(orders))
	for i := range orders {
		snap, err := s.snapshot(ctx, &orders[i], "")
		if err != nil {
			return nil, err
		}
		out = append(out, AgentOrder{Order: orders[i], TrackingInfo: snap})
	}
	return out, nil
}

func containsStatus(set []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
