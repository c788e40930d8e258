package adapter

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/offerform"
	"github.com/cimillas/pro-portal/services/api/internal/pcapi"
)

type fakeBackend struct {
	offers     map[string]pcapi.OfferResponse
	err        error
	failOn     map[string]error
	panicOn    string
	posted     []pcapi.OfferBody
	stocks     []pcapi.StocksUpsertBody
	published  []string
	deleted    []string
	listQuery  pcapi.ListOffersQuery
	hasBooking bool
	image      pcapi.VenueImageBody
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{offers: map[string]pcapi.OfferResponse{}}
}

func (f *fakeBackend) check(op string) error {
	if f.panicOn == op {
		panic("boom")
	}
	if err, ok := f.failOn[op]; ok {
		return err
	}
	return f.err
}

func (f *fakeBackend) GetOffer(_ context.Context, id string) (pcapi.OfferResponse, error) {
	if err := f.check("get"); err != nil {
		return pcapi.OfferResponse{}, err
	}
	o, ok := f.offers[id]
	if !ok {
		return pcapi.OfferResponse{}, &pcapi.APIError{StatusCode: http.StatusNotFound}
	}
	return o, nil
}

func (f *fakeBackend) PostOffer(_ context.Context, body pcapi.OfferBody) (pcapi.OfferIDResponse, error) {
	if err := f.check("post"); err != nil {
		return pcapi.OfferIDResponse{}, err
	}
	f.posted = append(f.posted, body)
	f.offers["NEW"] = pcapi.OfferResponse{ID: "NEW", Name: body.Name, Status: "DRAFT", Venue: pcapi.VenueResponse{ID: body.VenueID}}
	return pcapi.OfferIDResponse{ID: "NEW"}, nil
}

func (f *fakeBackend) PatchOffer(_ context.Context, id string, body pcapi.OfferBody) (pcapi.OfferIDResponse, error) {
	if err := f.check("patch"); err != nil {
		return pcapi.OfferIDResponse{}, err
	}
	o := f.offers[id]
	o.Name = body.Name
	f.offers[id] = o
	return pcapi.OfferIDResponse{ID: id}, nil
}

func (f *fakeBackend) PostPriceCategories(_ context.Context, id string, body pcapi.PriceCategoriesBody) (pcapi.OfferResponse, error) {
	if err := f.check("price_categories"); err != nil {
		return pcapi.OfferResponse{}, err
	}
	o := f.offers[id]
	o.PriceCategories = nil
	for i, pc := range body.PriceCategories {
		o.PriceCategories = append(o.PriceCategories, pcapi.PriceCategoryResponse{ID: string(rune('A' + i)), Label: pc.Label, Price: pc.Price})
	}
	f.offers[id] = o
	return o, nil
}

func (f *fakeBackend) UpsertStocks(_ context.Context, body pcapi.StocksUpsertBody) (pcapi.StocksUpsertResponse, error) {
	if err := f.check("stocks"); err != nil {
		return pcapi.StocksUpsertResponse{}, err
	}
	f.stocks = append(f.stocks, body)
	o := f.offers[body.OfferID]
	o.Stocks = append(o.Stocks, pcapi.StockResponse{ID: "S1"})
	f.offers[body.OfferID] = o
	return pcapi.StocksUpsertResponse{StocksCount: len(body.Stocks)}, nil
}

func (f *fakeBackend) PatchPublishOffer(_ context.Context, id string) error {
	if err := f.check("publish"); err != nil {
		return err
	}
	f.published = append(f.published, id)
	o := f.offers[id]
	o.Status = "ACTIVE"
	f.offers[id] = o
	return nil
}

func (f *fakeBackend) DeleteDraftOffers(_ context.Context, ids []string) error {
	if err := f.check("delete"); err != nil {
		return err
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func (f *fakeBackend) ListOffers(_ context.Context, q pcapi.ListOffersQuery) ([]pcapi.ListOfferResponse, error) {
	if err := f.check("list"); err != nil {
		return nil, err
	}
	f.listQuery = q
	return []pcapi.ListOfferResponse{{ID: "A", Name: "x", Status: "DRAFT"}}, nil
}

func (f *fakeBackend) GetUserHasBookings(context.Context) (pcapi.UserHasBookingsResponse, error) {
	if err := f.check("bookings"); err != nil {
		return pcapi.UserHasBookingsResponse{}, err
	}
	return pcapi.UserHasBookingsResponse{HasBookings: f.hasBooking}, nil
}

func (f *fakeBackend) UploadVenueImage(_ context.Context, _ string, body pcapi.VenueImageBody) (pcapi.VenueImageResponse, error) {
	if err := f.check("image"); err != nil {
		return pcapi.VenueImageResponse{}, err
	}
	f.image = body
	return pcapi.VenueImageResponse{BannerURL: "https://cdn/banner.jpg"}, nil
}

type recordingObserver struct {
	calls map[string]bool
}

func (o *recordingObserver) AdapterCalled(op string, ok bool, _ time.Duration) {
	if o.calls == nil {
		o.calls = map[string]bool{}
	}
	o.calls[op] = ok
}

func TestAdapters_SubmitStep(t *testing.T) {
	t.Parallel()

	t.Run("informations without draft creates offer", func(t *testing.T) {
		backend := newFakeBackend()
		obs := &recordingObserver{}
		a := New(backend, WithObserver(obs))

		res := a.SubmitStep(context.Background(), nil, offerform.Informations{Name: "Concert", VenueID: "V1", SubcategoryID: "CONCERT"})
		require.True(t, res.IsOk)
		assert.Equal(t, "NEW", res.Payload.ID)
		assert.Equal(t, domain.OfferStatusDraft, res.Payload.Status)
		require.Len(t, backend.posted, 1)
		assert.True(t, obs.calls["create_offer"])
	})

	t.Run("informations with draft updates offer", func(t *testing.T) {
		backend := newFakeBackend()
		backend.offers["O1"] = pcapi.OfferResponse{ID: "O1", Name: "Old"}
		a := New(backend)

		res := a.SubmitStep(context.Background(), &domain.Offer{ID: "O1"}, offerform.Informations{Name: "New"})
		require.True(t, res.IsOk)
		assert.Equal(t, "New", res.Payload.Name)
		assert.Empty(t, backend.posted)
	})

	t.Run("tarifs upserts price categories", func(t *testing.T) {
		backend := newFakeBackend()
		backend.offers["O1"] = pcapi.OfferResponse{ID: "O1", IsEvent: true}
		a := New(backend)
		price := 12.5

		res := a.SubmitStep(context.Background(), &domain.Offer{ID: "O1"}, offerform.Tarifs{PriceCategories: []offerform.PriceCategory{{Label: "Plein", Price: &price}}})
		require.True(t, res.IsOk)
		assert.True(t, res.Payload.HasPriceCategories())
	})

	t.Run("summary publishes", func(t *testing.T) {
		backend := newFakeBackend()
		backend.offers["O1"] = pcapi.OfferResponse{ID: "O1", Status: "DRAFT"}
		a := New(backend)

		res := a.SubmitStep(context.Background(), &domain.Offer{ID: "O1"}, offerform.Summary{})
		require.True(t, res.IsOk)
		assert.Equal(t, []string{"O1"}, backend.published)
		assert.Equal(t, domain.OfferStatusActive, res.Payload.Status)
	})

	t.Run("stocks without draft fails", func(t *testing.T) {
		res := New(newFakeBackend()).SubmitStep(context.Background(), nil, offerform.StocksThing{})
		assert.False(t, res.IsOk)
		assert.Equal(t, SentDataErrorMessage, res.Message)
	})
}

func TestAdapters_AcknowledgedWriteSurvivesReloadFailure(t *testing.T) {
	t.Parallel()

	unreachable := errors.New("read timeout")

	t.Run("create answers the acknowledged id and a retry patches", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failOn = map[string]error{"get": unreachable}
		a := New(backend)
		v := offerform.Informations{Name: "Concert", VenueID: "V1", SubcategoryID: "CONCERT", IsEvent: true}

		res := a.SubmitStep(context.Background(), nil, v)
		require.True(t, res.IsOk)
		require.NotNil(t, res.Payload)
		assert.Equal(t, PatchSuccessMessage, res.Message)
		assert.Equal(t, "NEW", res.Payload.ID)
		assert.Equal(t, "Concert", res.Payload.Name)
		assert.Equal(t, "V1", res.Payload.VenueID)
		assert.True(t, res.Payload.IsEvent)
		assert.Equal(t, domain.OfferStatusDraft, res.Payload.Status)

		again := a.SubmitStep(context.Background(), res.Payload, v)
		require.True(t, again.IsOk)
		assert.Len(t, backend.posted, 1)
		assert.Equal(t, "NEW", again.Payload.ID)
	})

	t.Run("update applies the submitted values to the draft", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failOn = map[string]error{"get": unreachable}
		draft := &domain.Offer{ID: "O1", Name: "Old", Venue: &domain.Venue{ID: "V1", DepartementCode: "75"}}

		res := New(backend).UpdateOffer(context.Background(), draft, offerform.Informations{Name: "New", VenueID: "V1"})
		require.True(t, res.IsOk)
		assert.Equal(t, "New", res.Payload.Name)
		assert.Equal(t, "75", res.Payload.DepartementCode())
		assert.Equal(t, "Old", draft.Name)
	})

	t.Run("thing stock is kept on the draft", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failOn = map[string]error{"get": unreachable}
		amount, quantity := 9.5, 3

		res := New(backend).UpsertStocksThing(context.Background(), &domain.Offer{ID: "O1"}, offerform.StocksThing{Price: &amount, Quantity: &quantity})
		require.True(t, res.IsOk)
		require.Len(t, res.Payload.Stocks, 1)
		assert.Equal(t, 9.5, res.Payload.Stocks[0].Price)
		require.NotNil(t, res.Payload.Stocks[0].Quantity)
		assert.Equal(t, 3, *res.Payload.Stocks[0].Quantity)
		assert.Len(t, backend.stocks, 1)
	})

	t.Run("event stocks take their category price", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failOn = map[string]error{"get": unreachable}
		begin := time.Date(2026, 12, 1, 20, 0, 0, 0, time.UTC)
		draft := &domain.Offer{ID: "O1", IsEvent: true, PriceCategories: []domain.PriceCategory{{ID: "A", Label: "Plein", Price: 15}}}

		res := New(backend).UpsertStocksEvent(context.Background(), draft, offerform.StocksEvent{
			Stocks: []offerform.EventStock{{BeginningDatetime: &begin, PriceCategoryID: "A"}},
		})
		require.True(t, res.IsOk)
		require.Len(t, res.Payload.Stocks, 1)
		assert.Equal(t, 15.0, res.Payload.Stocks[0].Price)
		assert.Equal(t, begin, *res.Payload.Stocks[0].BeginningDatetime)
		assert.Empty(t, draft.Stocks)
	})

	t.Run("publication is reported once", func(t *testing.T) {
		backend := newFakeBackend()
		backend.failOn = map[string]error{"get": unreachable}

		res := New(backend).PublishOffer(context.Background(), &domain.Offer{ID: "O1", Status: domain.OfferStatusDraft})
		require.True(t, res.IsOk)
		assert.Equal(t, domain.OfferStatusActive, res.Payload.Status)
		assert.Equal(t, []string{"O1"}, backend.published)
	})
}

func TestAdapters_FieldErrors(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.err = &pcapi.APIError{StatusCode: http.StatusBadRequest, Fields: map[string]string{"name": "Trop long"}}
	draft := &domain.Offer{ID: "O1", Name: "keep"}

	res := New(backend).UpdateOffer(context.Background(), draft, offerform.Informations{Name: "x"})
	assert.False(t, res.IsOk)
	assert.Equal(t, FormErrorMessage, res.Message)
	assert.Equal(t, map[string]string{"name": "Trop long"}, res.FieldErrors)
	assert.Same(t, draft, res.Payload)

	backend.err = &pcapi.APIError{StatusCode: http.StatusBadRequest, Fields: map[string]string{"global": "Offre refusée"}}
	res = New(backend).UpdateOffer(context.Background(), draft, offerform.Informations{Name: "x"})
	assert.Equal(t, "Offre refusée", res.Message)
	assert.Nil(t, res.FieldErrors)

	backend.err = &pcapi.APIError{StatusCode: http.StatusBadRequest, Fields: map[string]string{"quantity": "Trop faible"}}
	res = New(backend).UpsertStocksEvent(context.Background(), draft, offerform.StocksEvent{})
	assert.Equal(t, map[string]string{"stocks.quantity": "Trop faible"}, res.FieldErrors)
}

func TestAdapters_NetworkFailure(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.err = errors.New("connection refused")
	a := New(backend)

	get := a.GetOffer(context.Background(), "O1")
	assert.False(t, get.IsOk)
	assert.Nil(t, get.Payload)
	assert.Equal(t, getOfferErrorMessage, get.Message)

	list := a.GetFilteredOffers(context.Background(), domain.OfferFilters{})
	assert.False(t, list.IsOk)
	assert.NotNil(t, list.Payload)
	assert.Empty(t, list.Payload)

	bookings := a.GetUserHasBookings(context.Background())
	assert.False(t, bookings.IsOk)
	assert.Equal(t, GetDataErrorMessage, bookings.Message)
}

func TestAdapters_RecoversPanic(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.panicOn = "publish"
	obs := &recordingObserver{}
	draft := &domain.Offer{ID: "O1"}

	res := New(backend, WithObserver(obs)).PublishOffer(context.Background(), draft)
	assert.False(t, res.IsOk)
	assert.Equal(t, publishErrorMessage, res.Message)
	assert.Same(t, draft, res.Payload)
	assert.False(t, obs.calls["publish_offer"])
}

func TestAdapters_DeleteDraftOffers(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	a := New(backend)

	res := a.DeleteDraftOffers(context.Background(), []string{"A"}, 1)
	require.True(t, res.IsOk)
	assert.Equal(t, "1 brouillon a bien été supprimé", res.Message)

	res = a.DeleteDraftOffers(context.Background(), []string{"A", "B", "C"}, 3)
	assert.Equal(t, "3 brouillons ont bien été supprimés", res.Message)
	assert.Equal(t, []string{"A", "A", "B", "C"}, backend.deleted)

	backend.err = errors.New("down")
	res = a.DeleteDraftOffers(context.Background(), []string{"A"}, 1)
	assert.False(t, res.IsOk)
	assert.Equal(t, deleteDraftErrorMessage, res.Message)
}

func TestAdapters_GetFilteredOffers(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	res := New(backend).GetFilteredOffers(context.Background(), domain.OfferFilters{VenueID: "V1", Status: "all"})
	require.True(t, res.IsOk)
	require.Len(t, res.Payload, 1)
	assert.Equal(t, "V1", backend.listQuery.VenueID)
	assert.Empty(t, backend.listQuery.Status)
}

func TestAdapters_UploadVenueImage(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	res := New(backend).UploadVenueImage(context.Background(), "V1", VenueImage{Image: []byte("x"), X: 0.1, Y: 0.2, Width: 0.5, Height: 0.4})
	require.True(t, res.IsOk)
	assert.Equal(t, "https://cdn/banner.jpg", res.Payload)
	assert.Equal(t, 0.1, backend.image.XCropPercent)
	assert.Equal(t, 0.4, backend.image.HeightCropPercent)
}
