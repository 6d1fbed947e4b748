// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"food-delivery-tracking/config"
	"food-delivery-tracking/models"
)

// NewDB returns a migrated in-memory sqlite database. The pool is pinned to a
// single connection so every query sees the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Fixture is a restaurant with its owner, a customer and a delivery agent.
type Fixture struct {
	Customer   models.User
	Owner      models.User
	Agent      models.User
	Admin      models.User
	Restaurant models.Restaurant
}

// Seed creates the users and restaurant every lifecycle test needs.
func Seed(t testing.TB, db *gorm.DB) Fixture {
	t.Helper()
	f := Fixture{
		Customer: models.User{Name: "Aicha", Email: "customer@example.com", Role: models.RoleCustomer},
		Owner:    models.User{Name: "Chez Sidi", Email: "owner@example.com", Role: models.RoleRestaurant},
		Agent:    models.User{Name: "Moussa", Email: "agent@example.com", Role: models.RoleDeliveryAgent},
		Admin:    models.User{Name: "Ops", Email: "admin@example.com", Role: models.RoleAdmin},
	}
	for _, u := range []*models.User{&f.Customer, &f.Owner, &f.Agent, &f.Admin} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	f.Restaurant = models.Restaurant{OwnerID: f.Owner.ID, Name: "Chez Sidi", Address: "Tevragh Zeina", IsOpen: true}
	if err := db.Create(&f.Restaurant).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return f
}

// CreateOrder inserts a pending order for the fixture's customer and restaurant.
func (f Fixture) CreateOrder(t testing.TB, db *gorm.DB, number string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:     number,
		CustomerID:      f.Customer.ID,
		RestaurantID:    f.Restaurant.ID,
		Status:          models.StatusPending,
		TotalAmount:     450,
		DeliveryAddress: "Ilot K, Nouakchott",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}
