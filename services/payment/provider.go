package payment

import "context"

// Intent is the provider-side payment intent the client completes.
type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
}

// IntentStatus is the provider's view of an intent.
type IntentStatus string

const (
	IntentStatusPending   IntentStatus = "pending"
	IntentStatusSucceeded IntentStatus = "succeeded"
	IntentStatusCanceled  IntentStatus = "canceled"
)

// RefundResult is the provider's acknowledgement of a refund.
type RefundResult struct {
	ID     string
	Status string
}

// Provider wraps the external payment service. Every call takes a
// caller-supplied idempotency key so a retried request after a network
// timeout never double-charges or double-refunds.
type Provider interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency, idempotencyKey string, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string, amountMinor int64, idempotencyKey string) (*RefundResult, error)
}
