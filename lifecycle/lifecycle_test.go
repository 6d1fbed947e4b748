package lifecycle

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
	"food-delivery-tracking/notification"
	"food-delivery-tracking/statemachine"
	"food-delivery-tracking/testutil"
)

var start = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	db      *gorm.DB
	fx      testutil.Fixture
	clock   *testutil.Clock
	store   *notification.Store
	counter *prometheus.CounterVec
	svc     *Service
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	h := &harness{
		db:    db,
		fx:    testutil.Seed(t, db),
		clock: testutil.NewClock(start),
		store: notification.NewStore(db),
		counter: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "transitions_total"},
			[]string{"to", "outcome"},
		),
	}
	base := []Option{
		WithClock(h.clock.Now),
		WithNotifier(notification.NewGenerator(h.store, notification.WithRetry(0, time.Millisecond))),
		WithTransitionCounter(h.counter),
	}
	h.svc = NewService(db, append(base, opts...)...)
	return h
}

func (h *harness) restaurant() models.Actor {
	return models.Actor{Role: models.RoleRestaurant, ID: h.fx.Owner.ID}
}

func (h *harness) agent() models.Actor {
	return models.Actor{Role: models.RoleDeliveryAgent, ID: h.fx.Agent.ID}
}

func (h *harness) move(t *testing.T, orderID uint, to models.OrderStatus, actor models.Actor) *TransitionResult {
	t.Helper()
	res, err := h.svc.Transition(context.Background(), TransitionRequest{OrderID: orderID, Status: to, Actor: actor})
	require.NoError(t, err, "transition to %s", to)
	return res
}

func (h *harness) inbox(t *testing.T, who models.Actor) []models.Notification {
	t.Helper()
	list, err := h.store.List(context.Background(), notification.ListParams{Recipient: who, Limit: 100})
	require.NoError(t, err)
	return list
}

func (h *harness) setStatus(t *testing.T, orderID uint, status models.OrderStatus) {
	t.Helper()
	require.NoError(t, h.db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error)
}

func ts(d time.Duration) time.Time { return start.Add(d) }

func TestTransition_EndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.fx.CreateOrder(t, h.db, "LVR-E2E")
	customer := models.Actor{Role: models.RoleCustomer, ID: h.fx.Customer.ID}

	res := h.move(t, order.ID, models.StatusConfirmed, h.restaurant())
	assert.Equal(t, models.StatusPending, res.Previous)
	assert.Equal(t, "Order status updated successfully", res.Message)
	assert.Equal(t, 2, res.Notifications)
	require.NotNil(t, res.Order.ConfirmedAt)
	assert.True(t, res.Order.ConfirmedAt.Equal(ts(0)))
	require.NotNil(t, res.Order.EstimatedDeliveryTime)
	assert.True(t, res.Order.EstimatedDeliveryTime.Equal(ts(5*time.Minute)))
	assert.Len(t, h.inbox(t, h.restaurant()), 1)

	h.clock.Advance(2 * time.Minute)
	res = h.move(t, order.ID, models.StatusPreparing, h.restaurant())
	assert.True(t, res.Order.ConfirmedAt.Equal(ts(0)))
	assert.Nil(t, res.Order.PreparedAt)
	assert.True(t, res.Order.EstimatedDeliveryTime.Equal(ts(27*time.Minute)))

	_, err := h.svc.AssignAgent(ctx, order.ID, h.fx.Agent.ID)
	require.NoError(t, err)

	h.clock.Advance(25 * time.Minute)
	res = h.move(t, order.ID, models.StatusReady, h.restaurant())
	assert.Equal(t, 2, res.Notifications)
	require.NotNil(t, res.Order.PreparedAt)
	assert.True(t, res.Order.PreparedAt.Equal(ts(27*time.Minute)))
	assert.True(t, res.Order.EstimatedDeliveryTime.Equal(ts(32*time.Minute)))
	agentInbox := h.inbox(t, h.agent())
	require.Len(t, agentInbox, 1)
	assert.Equal(t, "New delivery task", agentInbox[0].Title)

	h.clock.Advance(5 * time.Minute)
	res = h.move(t, order.ID, models.StatusPickedUp, h.agent())
	assert.True(t, res.Order.PickedUpAt.Equal(ts(32*time.Minute)))
	assert.True(t, res.Order.EstimatedDeliveryTime.Equal(ts(52*time.Minute)))

	h.clock.Advance(18 * time.Minute)
	lat, lon := 18.0735, -15.9582
	res, err = h.svc.Transition(ctx, TransitionRequest{
		OrderID: order.ID, Status: models.StatusDelivered, Actor: h.agent(),
		Latitude: &lat, Longitude: &lon,
	})
	require.NoError(t, err)
	assert.True(t, res.Order.DeliveredAt.Equal(ts(50*time.Minute)))
	assert.Nil(t, res.Order.EstimatedDeliveryTime)

	stored, err := h.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
	assert.Nil(t, stored.EstimatedDeliveryTime)
	require.NotNil(t, stored.DeliveredAt)
	assert.True(t, stored.DeliveredAt.Equal(ts(50*time.Minute)))

	history, err := h.svc.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 5)
	want := []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReady,
		models.StatusPickedUp, models.StatusDelivered,
	}
	for i, e := range history {
		assert.Equal(t, want[i], e.Status)
	}
	assert.Equal(t, models.RoleDeliveryAgent, history[4].ActorRole)
	assert.Nil(t, history[4].EstimatedArrival)

	metrics, err := h.svc.Metrics(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.InDelta(t, 27.0, *metrics.PreparationTime, 1e-9)
	assert.InDelta(t, 18.0, *metrics.DeliveryTime, 1e-9)
	assert.InDelta(t, 50.0, *metrics.TotalTime, 1e-9)
	assert.True(t, metrics.OnTimeDelivery)

	assert.Len(t, h.inbox(t, customer), 5)
	assert.Equal(t, 1.0, promtest.ToFloat64(h.counter.WithLabelValues("delivered", "ok")))

	snap, err := h.svc.Status(ctx, order.ID, statemachine.LocaleArabic)
	require.NoError(t, err)
	assert.Equal(t, "تم توصيل الطلب", snap.StatusDescription)
	require.NotNil(t, snap.LastLocationLatitude)
	assert.InDelta(t, lat, *snap.LastLocationLatitude, 1e-9)
	require.NotNil(t, snap.LastUpdateTime)
	assert.True(t, snap.LastUpdateTime.Equal(ts(50*time.Minute)))
}

func TestTransition_IllegalLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := models.Actor{Role: models.RoleAdmin, ID: h.fx.Admin.ID}

	for _, from := range models.AllStatuses {
		for _, to := range models.AllStatuses {
			if statemachine.IsLegal(from, to) {
				continue
			}
			order := h.fx.CreateOrder(t, h.db, "LVR-ILL-"+string(from)+"-"+string(to))
			h.setStatus(t, order.ID, from)

			_, err := h.svc.Transition(ctx, TransitionRequest{OrderID: order.ID, Status: to, Actor: admin})
			ill, ok := errs.IsIllegalTransition(err)
			require.True(t, ok, "%s -> %s: %v", from, to, err)
			assert.Equal(t, from, ill.From)
			assert.Equal(t, to, ill.To)

			stored, err := h.svc.GetOrder(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, from, stored.Status)
			assert.Nil(t, stored.ConfirmedAt)
			assert.Nil(t, stored.EstimatedDeliveryTime)

			history, err := h.svc.History(ctx, order.ID)
			require.NoError(t, err)
			assert.Empty(t, history)
		}
	}
	assert.Positive(t, promtest.ToFloat64(h.counter.WithLabelValues("confirmed", "illegal")))
}

func TestTransition_RepeatIsRejected(t *testing.T) {
	h := newHarness(t)
	order := h.fx.CreateOrder(t, h.db, "LVR-REPEAT")
	h.move(t, order.ID, models.StatusConfirmed, h.restaurant())

	_, err := h.svc.Transition(context.Background(), TransitionRequest{
		OrderID: order.ID, Status: models.StatusConfirmed, Actor: h.restaurant(),
	})
	_, ok := errs.IsIllegalTransition(err)
	assert.True(t, ok)

	history, err := h.svc.History(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTransition_TerminalStatesRejectEverything(t *testing.T) {
	h := newHarness(t)
	for _, terminal := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled} {
		order := h.fx.CreateOrder(t, h.db, "LVR-TERM-"+string(terminal))
		h.setStatus(t, order.ID, terminal)
		for _, to := range models.AllStatuses {
			_, err := h.svc.Transition(context.Background(), TransitionRequest{
				OrderID: order.ID, Status: to, Actor: models.Actor{Role: models.RoleAdmin, ID: 1},
			})
			_, ok := errs.IsIllegalTransition(err)
			assert.True(t, ok, "%s -> %s", terminal, to)
		}
	}
}

func TestTransition_NotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Transition(context.Background(), TransitionRequest{
		OrderID: 9999, Status: models.StatusConfirmed, Actor: h.restaurant(),
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = h.svc.Status(context.Background(), 9999, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = h.svc.History(context.Background(), 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = h.svc.Metrics(context.Background(), 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTransition_CancelKeepsEstimate(t *testing.T) {
	h := newHarness(t)
	order := h.fx.CreateOrder(t, h.db, "LVR-CANCEL")
	h.move(t, order.ID, models.StatusConfirmed, h.restaurant())
	h.clock.Advance(time.Minute)
	res := h.move(t, order.ID, models.StatusCancelled, models.Actor{Role: models.RoleCustomer, ID: h.fx.Customer.ID})

	require.NotNil(t, res.Order.EstimatedDeliveryTime)
	assert.True(t, res.Order.EstimatedDeliveryTime.Equal(ts(5*time.Minute)))
	assert.True(t, res.Order.ConfirmedAt.Equal(ts(0)))
	assert.Equal(t, 1, res.Notifications)
}

func TestTransition_ExpectedStatusMismatch(t *testing.T) {
	h := newHarness(t)
	order := h.fx.CreateOrder(t, h.db, "LVR-EXPECT")
	h.move(t, order.ID, models.StatusConfirmed, h.restaurant())

	_, err := h.svc.Transition(context.Background(), TransitionRequest{
		OrderID: order.ID, Status: models.StatusCancelled, Actor: h.restaurant(),
		Expected: models.StatusPending,
	})
	ill, ok := errs.IsIllegalTransition(err)
	require.True(t, ok)
	assert.Equal(t, models.StatusConfirmed, ill.From)
}

func race(t *testing.T, n int, fn func(i int) error) []error {
	t.Helper()
	var (
		wg    sync.WaitGroup
		ready sync.WaitGroup
		gate  = make(chan struct{})
		out   = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		ready.Add(1)
		go func(i int) {
			defer wg.Done()
			ready.Done()
			<-gate
			out[i] = fn(i)
		}(i)
	}
	ready.Wait()
	close(gate)
	wg.Wait()
	return out
}

func assertOneWinner(t *testing.T, results []error) {
	t.Helper()
	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		_, illegal := errs.IsIllegalTransition(err)
		assert.True(t, illegal || errors.Is(err, errs.ErrPersistence), "unexpected error %v", err)
	}
	assert.Equal(t, 1, wins)
}

func TestTransition_ConcurrentSameTarget(t *testing.T) {
	h := newHarness(t)
	order := h.fx.CreateOrder(t, h.db, "LVR-RACE")

	results := race(t, 8, func(int) error {
		_, err := h.svc.Transition(context.Background(), TransitionRequest{
			OrderID: order.ID, Status: models.StatusConfirmed, Actor: h.restaurant(),
		})
		return err
	})
	assertOneWinner(t, results)

	history, err := h.svc.History(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Zero(t, h.svc.locks.size())
}

func TestTransition_ConcurrentAcrossServices(t *testing.T) {
	h := newHarness(t)
	other := NewService(h.db, WithClock(h.clock.Now))
	order := h.fx.CreateOrder(t, h.db, "LVR-RACE-2")
	h.setStatus(t, order.ID, models.StatusReady)

	targets := []models.OrderStatus{models.StatusPickedUp, models.StatusCancelled}
	services := []*Service{h.svc, other}
	results := race(t, 2, func(i int) error {
		_, err := services[i].Transition(context.Background(), TransitionRequest{
			OrderID: order.ID, Status: targets[i], Actor: models.Actor{Role: models.RoleAdmin, ID: 1},
			Expected: models.StatusReady,
		})
		return err
	})
	assertOneWinner(t, results)

	history, err := h.svc.History(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTransition_ConflictingWriteRollsBack(t *testing.T) {
	h := newHarness(t)
	order := h.fx.CreateOrder(t, h.db, "LVR-CAS")

	// Another writer moves the order between our read and our update.
	fired := false
	require.NoError(t, h.db.Callback().Update().Before("gorm:update").Register("test:interleave", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "orders" {
			return
		}
		fired = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE orders SET status = ? WHERE id = ?", models.StatusCancelled, order.ID)
	}))

	_, err := h.svc.Transition(context.Background(), TransitionRequest{
		OrderID: order.ID, Status: models.StatusConfirmed, Actor: h.restaurant(),
	})
	require.True(t, fired)
	assert.ErrorIs(t, err, errs.ErrPersistence)
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, 1.0, promtest.ToFloat64(h.counter.WithLabelValues("confirmed", "conflict")))

	stored, err := h.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	history, err := h.svc.History(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, h.inbox(t, h.restaurant()))
}

type failingWriter struct{}

func (failingWriter) Create(context.Context, *models.Notification) error {
	return errors.New("notification store down")
}

func TestTransition_NotificationFailureDoesNotRollBack(t *testing.T) {
	h := newHarness(t, WithNotifier(notification.NewGenerator(failingWriter{}, notification.WithRetry(1, time.Millisecond))))
	order := h.fx.CreateOrder(t, h.db, "LVR-NOTIFY")

	res := h.move(t, order.ID, models.StatusConfirmed, h.restaurant())
	assert.Zero(t, res.Notifications)

	stored, err := h.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	history, err := h.svc.History(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTransition_LocalizedMessage(t *testing.T) {
	h := newHarness(t, WithLocale(statemachine.LocaleArabic))
	order := h.fx.CreateOrder(t, h.db, "LVR-AR")
	res := h.move(t, order.ID, models.StatusConfirmed, h.restaurant())
	assert.Equal(t, "تم تحديث حالة الطلب بنجاح", res.Message)

	res, err := h.svc.Transition(context.Background(), TransitionRequest{
		OrderID: order.ID, Status: models.StatusPreparing, Actor: h.restaurant(), Locale: statemachine.LocaleEnglish,
	})
	require.NoError(t, err)
	assert.Equal(t, "Order status updated successfully", res.Message)
}

func TestMetrics_EmptyLog(t *testing.T) {
	h := newHarness(t)
	order := h.fx.CreateOrder(t, h.db, "LVR-EMPTY")
	m, err := h.svc.Metrics(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, m)

	snap, err := h.svc.Status(context.Background(), order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Awaiting confirmation", snap.StatusDescription)
	assert.Nil(t, snap.LastUpdateTime)
}

func TestPlaceOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	order, err := h.svc.PlaceOrder(ctx, PlaceOrderParams{
		CustomerID: h.fx.Customer.ID, RestaurantID: h.fx.Restaurant.ID,
		TotalAmount: 800, DeliveryAddress: "Ksar",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Regexp(t, regexp.MustCompile(`^LVR20250301120000[0-9A-F]{8}$`), order.OrderNumber)
	assert.True(t, order.CreatedAt.Equal(start))

	history, err := h.svc.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = h.svc.PlaceOrder(ctx, PlaceOrderParams{CustomerID: h.fx.Customer.ID, RestaurantID: 999})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, h.db.Model(&h.fx.Restaurant).Update("is_open", false).Error)
	_, err = h.svc.PlaceOrder(ctx, PlaceOrderParams{CustomerID: h.fx.Customer.ID, RestaurantID: h.fx.Restaurant.ID})
	assert.ErrorIs(t, err, errs.ErrRestaurantClosed)
}

func TestAssignAgent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.fx.CreateOrder(t, h.db, "LVR-ASSIGN")

	_, err := h.svc.AssignAgent(ctx, order.ID, h.fx.Agent.ID)
	assert.ErrorIs(t, err, errs.ErrNotAssignable)

	h.move(t, order.ID, models.StatusConfirmed, h.restaurant())

	available, err := h.svc.AvailableOrders(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, order.ID, available[0].ID)

	assigned, err := h.svc.AssignAgent(ctx, order.ID, h.fx.Agent.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.DeliveryAgentID)
	assert.Equal(t, h.fx.Agent.ID, *assigned.DeliveryAgentID)

	_, err = h.svc.AssignAgent(ctx, order.ID, h.fx.Agent.ID+100)
	assert.ErrorIs(t, err, errs.ErrAlreadyAssigned)
	_, err = h.svc.AssignAgent(ctx, 4242, h.fx.Agent.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	available, err = h.svc.AvailableOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	current, err := h.svc.AgentCurrentOrders(ctx, h.fx.Agent.ID)
	require.NoError(t, err)
	assert.Empty(t, current)

	h.move(t, order.ID, models.StatusPreparing, h.restaurant())
	h.move(t, order.ID, models.StatusReady, h.restaurant())
	current, err = h.svc.AgentCurrentOrders(ctx, h.fx.Agent.ID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	require.NotNil(t, current[0].TrackingInfo)
	assert.Equal(t, models.StatusReady, current[0].TrackingInfo.CurrentStatus)
}

func TestConcurrentAssignOneWinner(t *testing.T) {
	h := newHarness(t)
	order := h.fx.CreateOrder(t, h.db, "LVR-ASSIGN-RACE")
	h.setStatus(t, order.ID, models.StatusReady)

	results := race(t, 4, func(i int) error {
		_, err := h.svc.AssignAgent(context.Background(), order.ID, uint(100+i))
		return err
	})
	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, errs.ErrAlreadyAssigned)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestListOrders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.fx.CreateOrder(t, h.db, "LVR-LIST-A")
	h.fx.CreateOrder(t, h.db, "LVR-LIST-B")
	h.move(t, a.ID, models.StatusConfirmed, h.restaurant())

	restaurant, list, err := h.svc.RestaurantOrders(ctx, h.fx.Owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, h.fx.Restaurant.ID, restaurant.ID)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, int64(1), list.Summary[models.StatusPending])
	assert.Equal(t, int64(1), list.Summary[models.StatusConfirmed])

	_, list, err = h.svc.RestaurantOrders(ctx, h.fx.Owner.ID, models.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, a.ID, list.Orders[0].ID)
	assert.Equal(t, int64(1), list.Summary[models.StatusPending])

	_, _, err = h.svc.RestaurantOrders(ctx, h.fx.Customer.ID, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	list, err = h.svc.ListOrders(ctx, ListFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 1)

	list, err = h.svc.ListOrders(ctx, ListFilter{CustomerID: h.fx.Customer.ID + 1000})
	require.NoError(t, err)
	assert.Empty(t, list.Orders)
}

func TestDeleteOrder_RemovesHistoryKeepsNotifications(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := h.fx.CreateOrder(t, h.db, "LVR-DEL")
	h.move(t, order.ID, models.StatusConfirmed, h.restaurant())
	customer := models.Actor{Role: models.RoleCustomer, ID: h.fx.Customer.ID}
	require.Len(t, h.inbox(t, customer), 1)

	require.NoError(t, h.svc.DeleteOrder(ctx, order.ID))

	_, err := h.svc.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	var events int64
	require.NoError(t, h.db.Model(&models.TrackingEvent{}).Where("order_id = ?", order.ID).Count(&events).Error)
	assert.Zero(t, events)
	assert.Len(t, h.inbox(t, customer), 1)

	assert.ErrorIs(t, h.svc.DeleteOrder(ctx, order.ID), errs.ErrNotFound)
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock(1)
	unlockB := k.Lock(2)
	assert.Equal(t, 2, k.size())

	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock(1)
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held key")
	case <-time.After(20 * time.Millisecond):
	}
	unlockA()
	<-acquired
	unlockB()
	assert.Zero(t, k.size())
}
