package quoteRepo

import (
	"context"

	"github.com/srikanth-zersys/divedream-sub002/models"
)

// QuoteRepository is the data access layer for quotes.
type QuoteRepository interface {
	GetByID(ctx context.Context, quoteID string) (*models.Quote, error)
	Create(ctx context.Context, quote *models.Quote) error

	// TransitionStatus flips status only from the expected source
	// state; moved == false means the guard did not match.
	TransitionStatus(ctx context.Context, quoteID string, from, to models.QuoteStatus) (moved bool, err error)

	// ConvertTransactionally flips the quote from accepted to
	// converted, inserts the resulting booking, and commits the
	// capacity hold, all in one transaction. A quote that is no
	// longer accepted aborts everything.
	ConvertTransactionally(ctx context.Context, quote *models.Quote, booking *models.Booking, holdID string) error
}

// ErrQuoteNotAccepted is returned when the conversion flip matched no
// document: the quote was already converted or never accepted.
type ErrQuoteNotAccepted struct{ QuoteID string }

func (e *ErrQuoteNotAccepted) Error() string {
	return "quote " + e.QuoteID + " is not in accepted state"
}
