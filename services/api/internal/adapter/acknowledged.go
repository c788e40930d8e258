package adapter

import (
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/offerform"
)

// The builders below rebuild the draft locally from what the backend just
// accepted. They are answered when the refetch after a write fails.

func acknowledgedInformations(id string, base *domain.Offer, v offerform.Informations) *domain.Offer {
	o := base.Clone()
	if o == nil {
		o = &domain.Offer{Status: domain.OfferStatusDraft}
	}
	o.ID = id
	o.Name = v.Name
	o.Description = v.Description
	o.OffererID = v.OffererID
	o.VenueID = v.VenueID
	o.SubcategoryID = v.SubcategoryID
	o.IsEvent = v.IsEvent
	o.IsDuo = v.IsDuo
	o.URL = v.URL
	o.BookingEmail = v.BookingEmail
	o.WithdrawalDetails = v.WithdrawalDetails
	o.DurationMinutes = v.DurationMinutes
	return o.Clone()
}

func acknowledgedStocksThing(draft *domain.Offer, v offerform.StocksThing) *domain.Offer {
	o := draft.Clone()
	s := domain.Stock{
		ID:                   v.StockID,
		Quantity:             v.Quantity,
		BookingsQuantity:     v.BookingsQuantity,
		RemainingQuantity:    v.RemainingQuantity,
		BookingLimitDatetime: v.BookingLimitDatetime,
	}
	if v.Price != nil {
		s.Price = *v.Price
	}
	o.Stocks = []domain.Stock{s}
	return o.Clone()
}

func acknowledgedStocksEvent(draft *domain.Offer, v offerform.StocksEvent) *domain.Offer {
	o := draft.Clone()
	prices := make(map[string]float64, len(o.PriceCategories))
	for _, pc := range o.PriceCategories {
		prices[pc.ID] = pc.Price
	}
	o.Stocks = make([]domain.Stock, 0, len(v.Stocks))
	for _, es := range v.Stocks {
		o.Stocks = append(o.Stocks, domain.Stock{
			ID:                   es.StockID,
			Price:                prices[es.PriceCategoryID],
			Quantity:             es.Quantity,
			BookingsQuantity:     es.BookingsQuantity,
			BookingLimitDatetime: es.BookingLimitDatetime,
			BeginningDatetime:    es.BeginningDatetime,
			PriceCategoryID:      es.PriceCategoryID,
		})
	}
	return o.Clone()
}

func acknowledgedPublication(draft *domain.Offer) *domain.Offer {
	o := draft.Clone()
	o.Status = domain.OfferStatusActive
	return o
}
