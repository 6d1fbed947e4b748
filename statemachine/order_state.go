package statemachine

import (
	"strings"
	"time"

	"food-delivery-tracking/errs"
	"food-delivery-tracking/models"
)

// Transition defines a valid state change
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

// validTransitions is the authoritative state machine definition.
// delivered and cancelled are terminal.
var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing: {models.StatusReady, models.StatusCancelled},
	models.StatusReady:     {models.StatusPickedUp, models.StatusCancelled},
	models.StatusPickedUp:  {models.StatusDelivered, models.StatusCancelled},
	models.StatusDelivered: {},
	models.StatusCancelled: {},
}

// leadTimes is the standard time, in minutes, until the next milestone once
// a status is entered. Zero means no further estimate.
var leadTimes = map[models.OrderStatus]int{
	models.StatusConfirmed: 5,
	models.StatusPreparing: 25,
	models.StatusReady:     5,
	models.StatusPickedUp:  20,
	models.StatusDelivered: 0,
}

// Milestone names the order timestamp column stamped when a status is reached.
type Milestone string

const (
	MilestoneNone      Milestone = ""
	MilestoneConfirmed Milestone = "confirmed_at"
	MilestonePrepared  Milestone = "prepared_at"
	MilestonePickedUp  Milestone = "picked_up_at"
	MilestoneDelivered Milestone = "delivered_at"
)

var milestones = map[models.OrderStatus]Milestone{
	models.StatusConfirmed: MilestoneConfirmed,
	models.StatusReady:     MilestonePrepared,
	models.StatusPickedUp:  MilestonePickedUp,
	models.StatusDelivered: MilestoneDelivered,
}

// IsLegal reports whether requested is reachable from current in one step.
// Statuses without an entry have no outgoing transitions.
func IsLegal(current, requested models.OrderStatus) bool {
	for _, next := range validTransitions[current] {
		if next == requested {
			return true
		}
	}
	return false
}

// Check is IsLegal reported as an error carrying both statuses.
func Check(current, requested models.OrderStatus) error {
	if IsLegal(current, requested) {
		return nil
	}
	return &errs.IllegalTransitionError{From: current, To: requested}
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(validTransitions[status]) == 0
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	nexts := validTransitions[status]
	out := make([]models.OrderStatus, len(nexts))
	copy(out, nexts)
	return out
}

// LeadTime returns the standard lead time for entering status and whether
// the status has one at all.
func LeadTime(status models.OrderStatus) (time.Duration, bool) {
	minutes, ok := leadTimes[status]
	return time.Duration(minutes) * time.Minute, ok
}

// EstimatedArrival projects the next estimate when entering status at now.
// A nil estimate with clears=true means the existing estimate must be removed;
// nil with clears=false leaves it untouched.
func EstimatedArrival(status models.OrderStatus, now time.Time) (estimate *time.Time, clears bool) {
	lead, ok := LeadTime(status)
	if !ok {
		return nil, false
	}
	if lead == 0 {
		return nil, true
	}
	t := now.Add(lead)
	return &t, false
}

// MilestoneFor returns the timestamp column stamped on entering status.
func MilestoneFor(status models.OrderStatus) Milestone {
	return milestones[status]
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	var all []Transition
	for _, from := range models.AllStatuses {
		for _, to := range validTransitions[from] {
			all = append(all, Transition{From: from, To: to})
		}
	}
	return all
}

// DescribeValidFrom renders the legal next states for error messages.
func DescribeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
