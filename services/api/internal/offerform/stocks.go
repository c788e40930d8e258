package offerform

import (
	"fmt"
	"time"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

// StocksThing is the single stock of a non-event offer. A nil Quantity
// means unlimited.
type StocksThing struct {
	StockID              string     `json:"stockId,omitempty"`
	Price                *float64   `json:"price"`
	Quantity             *int       `json:"quantity"`
	BookingsQuantity     int        `json:"bookingsQuantity"`
	RemainingQuantity    *int       `json:"remainingQuantity"`
	BookingLimitDatetime *time.Time `json:"bookingLimitDatetime"`
}

func (StocksThing) Kind() Kind { return KindStocksThing }

func (v StocksThing) Validate(*domain.Offer) FieldErrors {
	errs := FieldErrors{}
	validatePrice(errs, "price", v.Price)
	if v.Quantity != nil {
		switch {
		case *v.Quantity < 0:
			errs.add("quantity", quantityNegativeMsg)
		case *v.Quantity < v.BookingsQuantity:
			errs.add("quantity", "Quantité trop faible")
		}
	}
	return errs.orNil()
}

// InitialStocksThing reads the first stock of the draft. Missing values
// stay nil so the form shows them empty.
func InitialStocksThing(draft *domain.Offer) StocksThing {
	if !draft.HasStocks() {
		return StocksThing{}
	}
	s := draft.Stocks[0]
	price := s.Price
	v := StocksThing{
		StockID:          s.ID,
		Price:            &price,
		BookingsQuantity: s.BookingsQuantity,
	}
	if s.Quantity != nil {
		q := *s.Quantity
		v.Quantity = &q
	}
	if s.RemainingQuantity != nil {
		r := *s.RemainingQuantity
		v.RemainingQuantity = &r
	}
	if s.BookingLimitDatetime != nil {
		t := *s.BookingLimitDatetime
		v.BookingLimitDatetime = &t
	}
	return v
}

// EventStock is one dated stock of an event offer.
type EventStock struct {
	StockID              string     `json:"stockId,omitempty"`
	BeginningDatetime    *time.Time `json:"beginningDatetime"`
	PriceCategoryID      string     `json:"priceCategoryId"`
	Quantity             *int       `json:"quantity"`
	BookingsQuantity     int        `json:"bookingsQuantity"`
	BookingLimitDatetime *time.Time `json:"bookingLimitDatetime"`
}

// StocksEvent lists the dates of an event offer.
type StocksEvent struct {
	Stocks []EventStock `json:"stocks"`
}

func (StocksEvent) Kind() Kind { return KindStocksEvent }

func (v StocksEvent) Validate(draft *domain.Offer) FieldErrors {
	errs := FieldErrors{}
	if len(v.Stocks) == 0 {
		errs.add("stocks", "Veuillez renseigner au moins une date")
		return errs
	}
	categories := map[string]struct{}{}
	if draft != nil {
		for _, pc := range draft.PriceCategories {
			categories[pc.ID] = struct{}{}
		}
	}
	for i, s := range v.Stocks {
		prefix := fmt.Sprintf("stocks[%d].", i)
		if s.BeginningDatetime == nil {
			errs.add(prefix+"beginningDatetime", "Veuillez renseigner une date")
		}
		if _, ok := categories[s.PriceCategoryID]; !ok || s.PriceCategoryID == "" {
			errs.add(prefix+"priceCategoryId", "Veuillez renseigner un tarif")
		}
		if s.Quantity != nil {
			switch {
			case *s.Quantity < 0:
				errs.add(prefix+"quantity", quantityNegativeMsg)
			case *s.Quantity < s.BookingsQuantity:
				errs.add(prefix+"quantity", "Quantité trop faible")
			}
		}
		if s.BeginningDatetime != nil && s.BookingLimitDatetime != nil &&
			s.BookingLimitDatetime.After(*s.BeginningDatetime) {
			errs.add(prefix+"bookingLimitDatetime", "Veuillez renseigner une date antérieure à la date de l’évènement")
		}
	}
	return errs.orNil()
}

// InitialStocksEvent copies the dated stocks of the draft.
func InitialStocksEvent(draft *domain.Offer) StocksEvent {
	if !draft.HasStocks() {
		return StocksEvent{}
	}
	out := make([]EventStock, 0, len(draft.Stocks))
	for _, s := range draft.Stocks {
		es := EventStock{
			StockID:          s.ID,
			PriceCategoryID:  s.PriceCategoryID,
			BookingsQuantity: s.BookingsQuantity,
		}
		if s.BeginningDatetime != nil {
			t := *s.BeginningDatetime
			es.BeginningDatetime = &t
		}
		if s.BookingLimitDatetime != nil {
			t := *s.BookingLimitDatetime
			es.BookingLimitDatetime = &t
		}
		if s.Quantity != nil {
			q := *s.Quantity
			es.Quantity = &q
		}
		out = append(out, es)
	}
	return StocksEvent{Stocks: out}
}
