package pcapi

// Wire models of the pro backend. Field names follow the backend's JSON.

type OfferResponse struct {
	ID                string                  `json:"id"`
	Name              string                  `json:"name"`
	Description       string                  `json:"description,omitempty"`
	SubcategoryID     string                  `json:"subcategoryId"`
	IsEvent           bool                    `json:"isEvent"`
	IsDuo             bool                    `json:"isDuo"`
	URL               string                  `json:"url,omitempty"`
	BookingEmail      string                  `json:"bookingEmail,omitempty"`
	WithdrawalDetails string                  `json:"withdrawalDetails,omitempty"`
	DurationMinutes   *int                    `json:"durationMinutes"`
	Status            string                  `json:"status"`
	Venue             VenueResponse           `json:"venue"`
	PriceCategories   []PriceCategoryResponse `json:"priceCategories"`
	Stocks            []StockResponse         `json:"stocks"`
}

type VenueResponse struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	PublicName      string                  `json:"publicName,omitempty"`
	DepartementCode string                  `json:"departementCode,omitempty"`
	IsVirtual       bool                    `json:"isVirtual"`
	ManagingOfferer ManagingOffererResponse `json:"managingOfferer"`
}

type ManagingOffererResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PriceCategoryResponse struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type StockResponse struct {
	ID                   string  `json:"id"`
	Price                float64 `json:"price"`
	Quantity             *int    `json:"quantity"`
	BookingsQuantity     int     `json:"bookingsQuantity"`
	RemainingQuantity    *int    `json:"remainingQuantity"`
	BookingLimitDatetime *string `json:"bookingLimitDatetime"`
	BeginningDatetime    *string `json:"beginningDatetime"`
	PriceCategoryID      string  `json:"priceCategoryId,omitempty"`
}

type OfferBody struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	VenueID           string `json:"venueId"`
	SubcategoryID     string `json:"subcategoryId"`
	IsDuo             bool   `json:"isDuo"`
	URL               string `json:"url,omitempty"`
	BookingEmail      string `json:"bookingEmail,omitempty"`
	WithdrawalDetails string `json:"withdrawalDetails,omitempty"`
	DurationMinutes   *int   `json:"durationMinutes,omitempty"`
}

type OfferIDResponse struct {
	ID string `json:"id"`
}

type PriceCategoryBody struct {
	ID    string  `json:"id,omitempty"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type PriceCategoriesBody struct {
	PriceCategories []PriceCategoryBody `json:"priceCategories"`
}

// StockBody is used for creation and edition; HumanizedID is only set for
// existing stocks.
type StockBody struct {
	HumanizedID          string   `json:"humanizedId,omitempty"`
	Price                *float64 `json:"price,omitempty"`
	PriceCategoryID      string   `json:"priceCategoryId,omitempty"`
	Quantity             *int     `json:"quantity"`
	BookingLimitDatetime *string  `json:"bookingLimitDatetime"`
	BeginningDatetime    *string  `json:"beginningDatetime,omitempty"`
}

type StocksUpsertBody struct {
	OfferID string      `json:"offerId"`
	Stocks  []StockBody `json:"stocks"`
}

type StocksUpsertResponse struct {
	StocksCount int `json:"stocks_count"`
}

type PublishOfferBody struct {
	ID string `json:"id"`
}

type DeleteDraftOffersBody struct {
	IDs []string `json:"ids"`
}

type ListOfferResponse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	IsEvent bool          `json:"isEvent"`
	Status  string        `json:"status"`
	Venue   VenueResponse `json:"venue"`
	Stocks  []struct {
		ID string `json:"id"`
	} `json:"stocks"`
}

type ListOffersQuery struct {
	NameOrISBN          string
	OffererID           string
	Status              string
	VenueID             string
	CategoryID          string
	CreationMode        string
	PeriodBeginningDate string
	PeriodEndingDate    string
}

type UserHasBookingsResponse struct {
	HasBookings bool `json:"hasBookings"`
}

// VenueImageBody carries a banner upload. Crop values are ratios of the
// original image.
type VenueImageBody struct {
	Image             []byte
	Filename          string
	XCropPercent      float64
	YCropPercent      float64
	HeightCropPercent float64
	WidthCropPercent  float64
	ImageCredit       string
}

type VenueImageResponse struct {
	BannerURL  string         `json:"bannerUrl"`
	BannerMeta map[string]any `json:"bannerMeta,omitempty"`
}
