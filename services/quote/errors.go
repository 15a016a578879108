package quote

import "fmt"

// AlreadyConvertedError reports a convert call on a quote that has
// already produced a booking.
type AlreadyConvertedError struct {
	QuoteID   string
	BookingID string
}

func (e *AlreadyConvertedError) Error() string {
	return fmt.Sprintf("quote %s already converted to booking %s", e.QuoteID, e.BookingID)
}

// InvalidStatusError reports a quote operation attempted from the
// wrong status.
type InvalidStatusError struct {
	QuoteID string
	From    string
	Event   string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("cannot apply %s to quote %s in state %s", e.Event, e.QuoteID, e.From)
}
