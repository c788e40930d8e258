package wizard

import (
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/offerform"
)

// FormState is the form of one step.
type FormState struct {
	Values     offerform.Values      `json:"values"`
	Errors     offerform.FieldErrors `json:"errors,omitempty"`
	Dirty      bool                  `json:"dirty"`
	Submitting bool                  `json:"isSubmitting"`
}

// FormKind returns the schema edited on a step. The confirmation step has
// no form.
func FormKind(step StepID, kind OfferKind) (offerform.Kind, bool) {
	switch step {
	case StepInformations:
		return offerform.KindInformations, true
	case StepTarifs:
		return offerform.KindTarifs, true
	case StepStocks:
		if kind == KindEvent {
			return offerform.KindStocksEvent, true
		}
		return offerform.KindStocksThing, true
	case StepSummary:
		return offerform.KindSummary, true
	default:
		return "", false
	}
}

// BuildInitialValues seeds the form of a step from the draft.
func BuildInitialValues(fk offerform.Kind, draft *domain.Offer, lastVenueID string) offerform.Values {
	switch fk {
	case offerform.KindInformations:
		return offerform.InitialInformations(draft, lastVenueID)
	case offerform.KindTarifs:
		return offerform.InitialTarifs(draft)
	case offerform.KindStocksThing:
		return offerform.InitialStocksThing(draft)
	case offerform.KindStocksEvent:
		return offerform.InitialStocksEvent(draft)
	default:
		return offerform.Summary{}
	}
}
