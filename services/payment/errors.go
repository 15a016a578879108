package payment

import "fmt"

// RefundExceedsAvailableError reports a refund request larger than
// what remains refundable on the payment.
type RefundExceedsAvailableError struct {
	PaymentID string
	Requested float64
	Available float64
}

func (e *RefundExceedsAvailableError) Error() string {
	return fmt.Sprintf("refund of %.2f exceeds %.2f available on payment %s", e.Requested, e.Available, e.PaymentID)
}

// FailedError reports a provider decline. The booking stays in its
// pre-payment state so the customer can retry with other details.
type FailedError struct {
	IntentID string
	Reason   string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("payment %s failed: %s", e.IntentID, e.Reason)
}
