package offerform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

const (
	MaxPrice            = 300.0
	maxLabelLength      = 50
	defaultTariffLabel  = "Tarif unique"
	priceRequiredMsg    = "Veuillez renseigner un prix"
	priceTooHighMsg     = "Veuillez renseigner un prix inférieur à 300€"
	priceNegativeMsg    = "Le prix doit être positif"
	quantityNegativeMsg = "Doit être positif"
)

// PriceCategory is one editable tariff line.
type PriceCategory struct {
	ID    string   `json:"id,omitempty"`
	Label string   `json:"label"`
	Price *float64 `json:"price"`
}

// Tarifs is the event-only step listing price categories.
type Tarifs struct {
	PriceCategories []PriceCategory `json:"priceCategories"`
}

func (Tarifs) Kind() Kind { return KindTarifs }

func (v Tarifs) Validate(*domain.Offer) FieldErrors {
	errs := FieldErrors{}
	if len(v.PriceCategories) == 0 {
		errs.add("priceCategories", "Veuillez renseigner au moins un tarif")
		return errs
	}
	seen := make(map[string]struct{}, len(v.PriceCategories))
	for i, pc := range v.PriceCategories {
		labelField := fmt.Sprintf("priceCategories[%d].label", i)
		priceField := fmt.Sprintf("priceCategories[%d].price", i)

		label := strings.TrimSpace(pc.Label)
		switch {
		case label == "":
			errs.add(labelField, "Veuillez renseigner un intitulé de tarif")
		case utf8.RuneCountInString(label) > maxLabelLength:
			errs.add(labelField, "L’intitulé du tarif doit faire au maximum 50 caractères")
		}
		validatePrice(errs, priceField, pc.Price)

		if label != "" && pc.Price != nil {
			key := fmt.Sprintf("%s|%.2f", strings.ToLower(label), *pc.Price)
			if _, dup := seen[key]; dup {
				errs.add(labelField, "Plusieurs tarifs sont identiques")
			}
			seen[key] = struct{}{}
		}
	}
	return errs.orNil()
}

// InitialTarifs seeds the tariffs from the draft, or one empty default line.
func InitialTarifs(draft *domain.Offer) Tarifs {
	if !draft.HasPriceCategories() {
		return Tarifs{PriceCategories: []PriceCategory{{Label: defaultTariffLabel}}}
	}
	out := make([]PriceCategory, 0, len(draft.PriceCategories))
	for _, pc := range draft.PriceCategories {
		price := pc.Price
		out = append(out, PriceCategory{ID: pc.ID, Label: pc.Label, Price: &price})
	}
	return Tarifs{PriceCategories: out}
}

func validatePrice(errs FieldErrors, field string, price *float64) {
	switch {
	case price == nil:
		errs.add(field, priceRequiredMsg)
	case *price < 0:
		errs.add(field, priceNegativeMsg)
	case *price > MaxPrice:
		errs.add(field, priceTooHighMsg)
	}
}
