package tracking

import (
	"time"

	"food-delivery-tracking/models"
)

// DefaultOnTimeGrace is how late a delivery may land past its promised
// arrival and still count as on time.
const DefaultOnTimeGrace = 10 * time.Minute

// Metrics are durations in minutes derived from an order's tracking log.
// A nil duration means one of its endpoints has not been reached.
type Metrics struct {
	PreparationTime *float64 `json:"preparation_time"`
	DeliveryTime    *float64 `json:"delivery_time"`
	TotalTime       *float64 `json:"total_time"`
	OnTimeDelivery  bool     `json:"on_time_delivery"`
}

// CalculateMetrics replays events and returns nil when there are none.
// promised is the arrival estimate the delivery is judged against.
func CalculateMetrics(events []models.TrackingEvent, promised *time.Time, grace time.Duration) *Metrics {
	if len(events) == 0 {
		return nil
	}

	first := firstOccurrences(events)
	m := &Metrics{
		PreparationTime: minutesBetween(first, models.StatusConfirmed, models.StatusReady),
		DeliveryTime:    minutesBetween(first, models.StatusPickedUp, models.StatusDelivered),
		TotalTime:       minutesBetween(first, models.StatusConfirmed, models.StatusDelivered),
	}
	if delivered, ok := first[models.StatusDelivered]; ok && promised != nil {
		m.OnTimeDelivery = !delivered.After(promised.Add(grace))
	}
	return m
}

// PromisedArrival returns the last estimate recorded before the order was
// delivered, or before the end of the log if it never was.
func PromisedArrival(events []models.TrackingEvent) *time.Time {
	var promised *time.Time
	for i := range events {
		if events[i].Status == models.StatusDelivered {
			break
		}
		if events[i].EstimatedArrival != nil {
			promised = events[i].EstimatedArrival
		}
	}
	return promised
}

func firstOccurrences(events []models.TrackingEvent) map[models.OrderStatus]time.Time {
	first := make(map[models.OrderStatus]time.Time, len(events))
	for _, e := range events {
		if _, seen := first[e.Status]; !seen {
			first[e.Status] = e.CreatedAt
		}
	}
	return first
}

func minutesBetween(first map[models.OrderStatus]time.Time, from, to models.OrderStatus) *float64 {
	start, ok := first[from]
	if !ok {
		return nil
	}
	end, ok := first[to]
	if !ok {
		return nil
	}
	minutes := end.Sub(start).Minutes()
	return &minutes
}
