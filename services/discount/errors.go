package discount

import "fmt"

// RejectionReason is why a discount code did not apply. Surfaced
// verbatim to the user.
type RejectionReason string

const (
	ReasonNotFound      RejectionReason = "not_found"
	ReasonExpired       RejectionReason = "expired"
	ReasonNotApplicable RejectionReason = "not_applicable"
	ReasonLimitReached  RejectionReason = "limit_reached"
)

// RejectionError carries the code and the reason it was rejected.
type RejectionError struct {
	Code   string
	Reason RejectionReason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("discount code %s rejected: %s", e.Code, e.Reason)
}
