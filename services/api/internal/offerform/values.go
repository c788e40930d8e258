// Package offerform holds the typed values of each offer wizard step, the
// rules that validate them and the builders that seed them from a draft.
package offerform

import "github.com/cimillas/pro-portal/services/api/internal/domain"

// Kind tags a form schema. The stocks step uses a different schema for
// events and things.
type Kind string

const (
	KindInformations Kind = "informations"
	KindTarifs       Kind = "tarifs"
	KindStocksThing  Kind = "stocks_thing"
	KindStocksEvent  Kind = "stocks_event"
	KindSummary      Kind = "summary"
)

// Values is the record edited on one step.
type Values interface {
	Kind() Kind
	// Validate checks the record against the current draft. An empty
	// result means the record may be sent to the backend.
	Validate(draft *domain.Offer) FieldErrors
}

// FieldErrors maps a field path to a user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) add(field, msg string) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = msg
}

func (e FieldErrors) orNil() FieldErrors {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Summary has no fields; submitting it publishes the offer.
type Summary struct{}

func (Summary) Kind() Kind { return KindSummary }

func (Summary) Validate(*domain.Offer) FieldErrors { return nil }
