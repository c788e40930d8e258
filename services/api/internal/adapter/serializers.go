package adapter

import (
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/offerform"
	"github.com/cimillas/pro-portal/services/api/internal/pcapi"
)

func serializeOffer(v offerform.Informations) pcapi.OfferBody {
	return pcapi.OfferBody{
		Name:              v.Name,
		Description:       v.Description,
		VenueID:           v.VenueID,
		SubcategoryID:     v.SubcategoryID,
		IsDuo:             v.IsDuo,
		URL:               v.URL,
		BookingEmail:      v.BookingEmail,
		WithdrawalDetails: v.WithdrawalDetails,
		DurationMinutes:   v.DurationMinutes,
	}
}

func serializePriceCategories(v offerform.Tarifs) pcapi.PriceCategoriesBody {
	out := make([]pcapi.PriceCategoryBody, 0, len(v.PriceCategories))
	for _, pc := range v.PriceCategories {
		body := pcapi.PriceCategoryBody{ID: pc.ID, Label: pc.Label}
		if pc.Price != nil {
			body.Price = *pc.Price
		}
		out = append(out, body)
	}
	return pcapi.PriceCategoriesBody{PriceCategories: out}
}

// serializeStockThingList turns the thing form into the single stock sent to
// the backend. The booking limit is the end of the chosen day in the venue's
// departement.
func serializeStockThingList(v offerform.StocksThing, departementCode string) []pcapi.StockBody {
	stock := pcapi.StockBody{
		HumanizedID: v.StockID,
		Price:       v.Price,
		Quantity:    v.Quantity,
	}
	if v.BookingLimitDatetime != nil {
		s := endOfDayUTC(*v.BookingLimitDatetime, departementCode)
		stock.BookingLimitDatetime = &s
	}
	return []pcapi.StockBody{stock}
}

// serializeStockEventList sends each date. The booking limit is the end of
// its day, never later than the beginning of the event, which is also the
// default.
func serializeStockEventList(v offerform.StocksEvent, departementCode string) []pcapi.StockBody {
	out := make([]pcapi.StockBody, 0, len(v.Stocks))
	for _, s := range v.Stocks {
		body := pcapi.StockBody{
			HumanizedID:     s.StockID,
			PriceCategoryID: s.PriceCategoryID,
			Quantity:        s.Quantity,
		}
		if s.BeginningDatetime != nil {
			begin := formatUTC(*s.BeginningDatetime)
			body.BeginningDatetime = &begin
			limit := begin
			body.BookingLimitDatetime = &limit
		}
		if s.BookingLimitDatetime != nil {
			eod := endOfDay(*s.BookingLimitDatetime, departementCode)
			if s.BeginningDatetime != nil && eod.After(*s.BeginningDatetime) {
				eod = *s.BeginningDatetime
			}
			limit := formatUTC(eod)
			body.BookingLimitDatetime = &limit
		}
		out = append(out, body)
	}
	return out
}

func offerFromAPI(r pcapi.OfferResponse) *domain.Offer {
	o := &domain.Offer{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		OffererID:         r.Venue.ManagingOfferer.ID,
		VenueID:           r.Venue.ID,
		SubcategoryID:     r.SubcategoryID,
		IsEvent:           r.IsEvent,
		IsDuo:             r.IsDuo,
		URL:               r.URL,
		BookingEmail:      r.BookingEmail,
		WithdrawalDetails: r.WithdrawalDetails,
		DurationMinutes:   r.DurationMinutes,
		Status:            domain.OfferStatus(r.Status),
		Venue: &domain.Venue{
			ID:              r.Venue.ID,
			Name:            r.Venue.Name,
			PublicName:      r.Venue.PublicName,
			DepartementCode: r.Venue.DepartementCode,
			IsVirtual:       r.Venue.IsVirtual,
			OffererID:       r.Venue.ManagingOfferer.ID,
		},
	}
	for _, pc := range r.PriceCategories {
		o.PriceCategories = append(o.PriceCategories, domain.PriceCategory{
			ID:    pc.ID,
			Label: pc.Label,
			Price: pc.Price,
		})
	}
	for _, s := range r.Stocks {
		o.Stocks = append(o.Stocks, domain.Stock{
			ID:                   s.ID,
			Price:                s.Price,
			Quantity:             s.Quantity,
			BookingsQuantity:     s.BookingsQuantity,
			RemainingQuantity:    s.RemainingQuantity,
			BookingLimitDatetime: parseAPIDatetime(s.BookingLimitDatetime),
			BeginningDatetime:    parseAPIDatetime(s.BeginningDatetime),
			PriceCategoryID:      s.PriceCategoryID,
		})
	}
	return o
}

func offersFromList(list []pcapi.ListOfferResponse) []domain.Offer {
	out := make([]domain.Offer, 0, len(list))
	for _, r := range list {
		o := domain.Offer{
			ID:      r.ID,
			Name:    r.Name,
			IsEvent: r.IsEvent,
			Status:  domain.OfferStatus(r.Status),
			VenueID: r.Venue.ID,
			Venue: &domain.Venue{
				ID:              r.Venue.ID,
				Name:            r.Venue.Name,
				PublicName:      r.Venue.PublicName,
				DepartementCode: r.Venue.DepartementCode,
				IsVirtual:       r.Venue.IsVirtual,
				OffererID:       r.Venue.ManagingOfferer.ID,
			},
			OffererID: r.Venue.ManagingOfferer.ID,
		}
		for _, s := range r.Stocks {
			o.Stocks = append(o.Stocks, domain.Stock{ID: s.ID})
		}
		out = append(out, o)
	}
	return out
}

func serializeFilters(f domain.OfferFilters) pcapi.ListOffersQuery {
	const allValue = "all"
	clean := func(v string) string {
		if v == allValue {
			return ""
		}
		return v
	}
	return pcapi.ListOffersQuery{
		NameOrISBN:          f.NameOrISBN,
		OffererID:           clean(f.OffererID),
		Status:              clean(f.Status),
		VenueID:             clean(f.VenueID),
		CategoryID:          clean(f.CategoryID),
		CreationMode:        clean(f.CreationMode),
		PeriodBeginningDate: f.PeriodBeginningDate,
		PeriodEndingDate:    f.PeriodEndingDate,
	}
}
