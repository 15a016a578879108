package booking

import "fmt"

// CapacityError reports a reservation attempt against a schedule with
// fewer seats remaining than requested. It is an expected, user-facing
// outcome: the conditional update simply did not apply.
type CapacityError struct {
	ScheduleID string
	Requested  int
	Available  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("schedule %s has %d seats available, %d requested", e.ScheduleID, e.Available, e.Requested)
}

// InvalidTransitionError marks a lifecycle event attempted on a
// booking not in the required state.
type InvalidTransitionError struct {
	BookingID string
	From      string
	Event     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot apply %s to booking %s in state %s", e.Event, e.BookingID, e.From)
}

// ValidationError marks malformed booking input. The caller's fault;
// no side effects were attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}
