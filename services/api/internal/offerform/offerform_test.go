package offerform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestInformations_Validate(t *testing.T) {
	t.Parallel()

	valid := Informations{Name: "Concert", SubcategoryID: "CONCERT", VenueID: "V1"}

	tests := []struct {
		name  string
		edit  func(*Informations)
		field string
	}{
		{name: "valid", edit: func(*Informations) {}},
		{name: "missing name", edit: func(v *Informations) { v.Name = "  " }, field: "name"},
		{name: "name too long", edit: func(v *Informations) { v.Name = strings.Repeat("é", 91) }, field: "name"},
		{name: "missing subcategory", edit: func(v *Informations) { v.SubcategoryID = "" }, field: "subcategoryId"},
		{name: "missing venue", edit: func(v *Informations) { v.VenueID = "" }, field: "venueId"},
		{name: "bad email", edit: func(v *Informations) { v.BookingEmail = "nope" }, field: "bookingEmail"},
		{name: "bad url", edit: func(v *Informations) { v.URL = "ftp://x" }, field: "url"},
		{name: "good url", edit: func(v *Informations) { v.URL = "https://www.example.com/a" }},
		{name: "negative duration", edit: func(v *Informations) { v.DurationMinutes = ptr(-1) }, field: "durationMinutes"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := valid
			tt.edit(&v)
			errs := v.Validate(nil)
			if tt.field == "" {
				assert.Nil(t, errs)
				return
			}
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestInitialInformations(t *testing.T) {
	t.Parallel()

	t.Run("uses last venue without draft", func(t *testing.T) {
		v := InitialInformations(nil, "V9")
		assert.Equal(t, Informations{VenueID: "V9"}, v)
	})

	t.Run("copies draft", func(t *testing.T) {
		draft := &domain.Offer{ID: "O1", Name: "Livre", VenueID: "V1", SubcategoryID: "LIVRE", DurationMinutes: ptr(30)}
		v := InitialInformations(draft, "V9")
		assert.Equal(t, "Livre", v.Name)
		assert.Equal(t, "V1", v.VenueID)
		require.NotNil(t, v.DurationMinutes)
		*v.DurationMinutes = 45
		assert.Equal(t, 30, *draft.DurationMinutes)
	})
}

func TestTarifs_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires one line", func(t *testing.T) {
		errs := Tarifs{}.Validate(nil)
		assert.Contains(t, errs, "priceCategories")
	})

	t.Run("rejects price above max", func(t *testing.T) {
		errs := Tarifs{PriceCategories: []PriceCategory{{Label: "Plein", Price: ptr(300.01)}}}.Validate(nil)
		assert.Equal(t, priceTooHighMsg, errs["priceCategories[0].price"])
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		errs := Tarifs{PriceCategories: []PriceCategory{
			{Label: "Plein", Price: ptr(10.0)},
			{Label: "plein", Price: ptr(10.0)},
		}}.Validate(nil)
		assert.Contains(t, errs, "priceCategories[1].label")
		assert.NotContains(t, errs, "priceCategories[0].label")
	})

	t.Run("accepts free tariff", func(t *testing.T) {
		errs := Tarifs{PriceCategories: []PriceCategory{{Label: "Gratuit", Price: ptr(0.0)}}}.Validate(nil)
		assert.Nil(t, errs)
	})
}

func TestInitialTarifs(t *testing.T) {
	t.Parallel()

	v := InitialTarifs(nil)
	require.Len(t, v.PriceCategories, 1)
	assert.Equal(t, "Tarif unique", v.PriceCategories[0].Label)
	assert.Nil(t, v.PriceCategories[0].Price)

	draft := &domain.Offer{PriceCategories: []domain.PriceCategory{{ID: "P1", Label: "Plein", Price: 12}}}
	v = InitialTarifs(draft)
	require.Len(t, v.PriceCategories, 1)
	assert.Equal(t, 12.0, *v.PriceCategories[0].Price)
}

func TestStocksThing_Validate(t *testing.T) {
	t.Parallel()

	assert.Contains(t, StocksThing{}.Validate(nil), "price")
	assert.Nil(t, StocksThing{Price: ptr(5.0)}.Validate(nil))

	errs := StocksThing{Price: ptr(5.0), Quantity: ptr(2), BookingsQuantity: 3}.Validate(nil)
	assert.Equal(t, "Quantité trop faible", errs["quantity"])
}

func TestInitialStocksThing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StocksThing{}, InitialStocksThing(nil))

	limit := time.Date(2022, 10, 26, 21, 59, 59, 0, time.UTC)
	draft := &domain.Offer{Stocks: []domain.Stock{{ID: "S1", Price: 8, BookingsQuantity: 1, BookingLimitDatetime: &limit}}}
	v := InitialStocksThing(draft)
	assert.Equal(t, "S1", v.StockID)
	assert.Equal(t, 8.0, *v.Price)
	assert.Nil(t, v.Quantity)
	assert.True(t, v.BookingLimitDatetime.Equal(limit))
}

func TestStocksEvent_Validate(t *testing.T) {
	t.Parallel()

	begin := time.Date(2030, 5, 1, 20, 0, 0, 0, time.UTC)
	after := begin.Add(time.Hour)
	draft := &domain.Offer{PriceCategories: []domain.PriceCategory{{ID: "P1", Label: "Plein", Price: 10}}}

	assert.Contains(t, StocksEvent{}.Validate(draft), "stocks")

	errs := StocksEvent{Stocks: []EventStock{
		{BeginningDatetime: &begin, PriceCategoryID: "P1"},
		{PriceCategoryID: "P2", BookingLimitDatetime: &after},
		{BeginningDatetime: &begin, PriceCategoryID: "P1", BookingLimitDatetime: &after},
	}}.Validate(draft)

	assert.NotContains(t, errs, "stocks[0].beginningDatetime")
	assert.Contains(t, errs, "stocks[1].beginningDatetime")
	assert.Contains(t, errs, "stocks[1].priceCategoryId")
	assert.Contains(t, errs, "stocks[2].bookingLimitDatetime")
}

func TestDecode(t *testing.T) {
	t.Parallel()

	v, err := Decode(KindTarifs, []byte(`{"priceCategories":[{"label":"Plein","price":10}]}`))
	require.NoError(t, err)
	assert.Equal(t, KindTarifs, v.Kind())

	_, err = Decode(KindInformations, []byte(`{"name":"x","unknown":1}`))
	assert.Error(t, err)

	_, err = Decode(Kind("nope"), []byte(`{}`))
	assert.Error(t, err)

	v, err = Decode(KindSummary, nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, v)
}
