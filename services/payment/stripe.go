package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// StripeProvider implements Provider against the Stripe API. The API
// key is set globally in main via stripe.Key.
type StripeProvider struct{}

// NewStripeProvider returns a Stripe-backed provider.
func NewStripeProvider() *StripeProvider {
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountMinor int64, currency, idempotencyKey string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe intent creation failed: %w", err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

func (p *StripeProvider) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe intent lookup failed: %w", err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

func (p *StripeProvider) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(intentID, params); err != nil {
		return fmt.Errorf("stripe intent cancel failed: %w", err)
	}
	return nil
}

func (p *StripeProvider) Refund(ctx context.Context, intentID string, amountMinor int64, idempotencyKey string) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amountMinor),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}
	return &RefundResult{ID: r.ID, Status: string(r.Status)}, nil
}

func mapIntentStatus(status stripe.PaymentIntentStatus) IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return IntentStatusCanceled
	default:
		return IntentStatusPending
	}
}
