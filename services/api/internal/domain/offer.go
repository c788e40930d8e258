package domain

import "time"

type OfferStatus string

const (
	OfferStatusDraft    OfferStatus = "DRAFT"
	OfferStatusPending  OfferStatus = "PENDING"
	OfferStatusActive   OfferStatus = "ACTIVE"
	OfferStatusRejected OfferStatus = "REJECTED"
)

// Offer is an individual offer as returned by the backend. While a wizard
// is open it doubles as the draft under construction.
type Offer struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	OffererID         string          `json:"offererId"`
	VenueID           string          `json:"venueId"`
	SubcategoryID     string          `json:"subcategoryId"`
	IsEvent           bool            `json:"isEvent"`
	IsDuo             bool            `json:"isDuo"`
	URL               string          `json:"url"`
	BookingEmail      string          `json:"bookingEmail"`
	WithdrawalDetails string          `json:"withdrawalDetails"`
	DurationMinutes   *int            `json:"durationMinutes,omitempty"`
	Status            OfferStatus     `json:"status"`
	PriceCategories   []PriceCategory `json:"priceCategories,omitempty"`
	Stocks            []Stock         `json:"stocks,omitempty"`
	Venue             *Venue          `json:"venue,omitempty"`
}

// HasPriceCategories reports whether at least one price category exists.
func (o *Offer) HasPriceCategories() bool {
	return o != nil && len(o.PriceCategories) > 0
}

// HasStocks reports whether at least one stock exists.
func (o *Offer) HasStocks() bool {
	return o != nil && len(o.Stocks) > 0
}

// DepartementCode returns the venue departement, empty when unknown.
func (o *Offer) DepartementCode() string {
	if o == nil || o.Venue == nil {
		return ""
	}
	return o.Venue.DepartementCode
}

// Clone returns a deep copy so callers can hand out drafts without sharing slices.
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	c := *o
	if o.DurationMinutes != nil {
		d := *o.DurationMinutes
		c.DurationMinutes = &d
	}
	c.PriceCategories = append([]PriceCategory(nil), o.PriceCategories...)
	c.Stocks = make([]Stock, len(o.Stocks))
	for i, s := range o.Stocks {
		c.Stocks[i] = s.clone()
	}
	if o.Venue != nil {
		v := *o.Venue
		c.Venue = &v
	}
	return &c
}

// PriceCategory is a named tariff of an event offer.
type PriceCategory struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// Stock is a bookable quantity of an offer. Quantity nil means unlimited.
type Stock struct {
	ID                   string     `json:"id"`
	Price                float64    `json:"price"`
	Quantity             *int       `json:"quantity,omitempty"`
	BookingsQuantity     int        `json:"bookingsQuantity"`
	RemainingQuantity    *int       `json:"remainingQuantity,omitempty"`
	BookingLimitDatetime *time.Time `json:"bookingLimitDatetime,omitempty"`
	BeginningDatetime    *time.Time `json:"beginningDatetime,omitempty"`
	PriceCategoryID      string     `json:"priceCategoryId"`
}

func (s Stock) clone() Stock {
	c := s
	if s.Quantity != nil {
		q := *s.Quantity
		c.Quantity = &q
	}
	if s.RemainingQuantity != nil {
		r := *s.RemainingQuantity
		c.RemainingQuantity = &r
	}
	if s.BookingLimitDatetime != nil {
		t := *s.BookingLimitDatetime
		c.BookingLimitDatetime = &t
	}
	if s.BeginningDatetime != nil {
		t := *s.BeginningDatetime
		c.BeginningDatetime = &t
	}
	return c
}

// Subcategory drives which fields an offer needs and whether it is an event.
type Subcategory struct {
	ID                string
	CategoryID        string
	ProLabel          string
	IsEvent           bool
	ConditionalFields []string
}

// OfferFilters narrows the offer list.
type OfferFilters struct {
	NameOrISBN          string
	OffererID           string
	VenueID             string
	CategoryID          string
	Status              string
	CreationMode        string
	PeriodBeginningDate string
	PeriodEndingDate    string
}
