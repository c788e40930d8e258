package adapter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/offerform"
	"github.com/cimillas/pro-portal/services/api/internal/pcapi"
)

// Backend is the subset of the pro REST API the adapters rely on.
type Backend interface {
	GetOffer(ctx context.Context, offerID string) (pcapi.OfferResponse, error)
	PostOffer(ctx context.Context, body pcapi.OfferBody) (pcapi.OfferIDResponse, error)
	PatchOffer(ctx context.Context, offerID string, body pcapi.OfferBody) (pcapi.OfferIDResponse, error)
	PostPriceCategories(ctx context.Context, offerID string, body pcapi.PriceCategoriesBody) (pcapi.OfferResponse, error)
	UpsertStocks(ctx context.Context, body pcapi.StocksUpsertBody) (pcapi.StocksUpsertResponse, error)
	PatchPublishOffer(ctx context.Context, offerID string) error
	DeleteDraftOffers(ctx context.Context, ids []string) error
	ListOffers(ctx context.Context, q pcapi.ListOffersQuery) ([]pcapi.ListOfferResponse, error)
	GetUserHasBookings(ctx context.Context) (pcapi.UserHasBookingsResponse, error)
	UploadVenueImage(ctx context.Context, venueID string, body pcapi.VenueImageBody) (pcapi.VenueImageResponse, error)
}

// Observer is told about every backend operation.
type Observer interface {
	AdapterCalled(operation string, ok bool, elapsed time.Duration)
}

type Adapters struct {
	backend  Backend
	logger   *zap.Logger
	observer Observer
}

type Option func(*Adapters)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapters) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(a *Adapters) {
		a.observer = o
	}
}

func New(backend Backend, opts ...Option) *Adapters {
	a := &Adapters{
		backend: backend,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SubmitStep routes a validated step record to the matching write and
// answers the refreshed draft.
func (a *Adapters) SubmitStep(ctx context.Context, draft *domain.Offer, values offerform.Values) Result[*domain.Offer] {
	switch v := values.(type) {
	case offerform.Informations:
		if draft == nil || draft.ID == "" {
			return a.CreateOffer(ctx, v)
		}
		return a.UpdateOffer(ctx, draft, v)
	case offerform.Tarifs:
		if draft == nil {
			return failure(draft, SentDataErrorMessage)
		}
		return a.UpsertPriceCategories(ctx, draft, v)
	case offerform.StocksThing:
		if draft == nil {
			return failure(draft, SentDataErrorMessage)
		}
		return a.UpsertStocksThing(ctx, draft, v)
	case offerform.StocksEvent:
		if draft == nil {
			return failure(draft, SentDataErrorMessage)
		}
		return a.UpsertStocksEvent(ctx, draft, v)
	case offerform.Summary:
		if draft == nil {
			return failure(draft, publishErrorMessage)
		}
		return a.PublishOffer(ctx, draft)
	default:
		return failure(draft, unknownFormMessage)
	}
}

func (a *Adapters) GetOffer(ctx context.Context, offerID string) (res Result[*domain.Offer]) {
	defer guard(a, "get_offer", time.Now(), &res, nil, getOfferErrorMessage)

	resp, err := a.backend.GetOffer(ctx, offerID)
	if err != nil {
		a.logFailure("get_offer", err)
		return failure[*domain.Offer](nil, getOfferErrorMessage)
	}
	return success(offerFromAPI(resp), "")
}

func (a *Adapters) CreateOffer(ctx context.Context, v offerform.Informations) (res Result[*domain.Offer]) {
	defer guard(a, "create_offer", time.Now(), &res, nil, SentDataErrorMessage)

	created, err := a.backend.PostOffer(ctx, serializeOffer(v))
	if err != nil {
		return backendFailure[*domain.Offer](a, "create_offer", err, nil, SentDataErrorMessage, "")
	}
	return a.reload(ctx, "create_offer", created.ID, acknowledgedInformations(created.ID, nil, v))
}

func (a *Adapters) UpdateOffer(ctx context.Context, draft *domain.Offer, v offerform.Informations) (res Result[*domain.Offer]) {
	defer guard(a, "update_offer", time.Now(), &res, draft, SentDataErrorMessage)

	if _, err := a.backend.PatchOffer(ctx, draft.ID, serializeOffer(v)); err != nil {
		return backendFailure(a, "update_offer", err, draft, SentDataErrorMessage, "")
	}
	return a.reload(ctx, "update_offer", draft.ID, acknowledgedInformations(draft.ID, draft, v))
}

func (a *Adapters) UpsertPriceCategories(ctx context.Context, draft *domain.Offer, v offerform.Tarifs) (res Result[*domain.Offer]) {
	defer guard(a, "upsert_price_categories", time.Now(), &res, draft, SentDataErrorMessage)

	resp, err := a.backend.PostPriceCategories(ctx, draft.ID, serializePriceCategories(v))
	if err != nil {
		return backendFailure(a, "upsert_price_categories", err, draft, SentDataErrorMessage, "")
	}
	return success(offerFromAPI(resp), PatchSuccessMessage)
}

func (a *Adapters) UpsertStocksThing(ctx context.Context, draft *domain.Offer, v offerform.StocksThing) (res Result[*domain.Offer]) {
	defer guard(a, "upsert_stocks", time.Now(), &res, draft, SentDataErrorMessage)

	body := pcapi.StocksUpsertBody{
		OfferID: draft.ID,
		Stocks:  serializeStockThingList(v, draft.DepartementCode()),
	}
	if _, err := a.backend.UpsertStocks(ctx, body); err != nil {
		return backendFailure(a, "upsert_stocks", err, draft, SentDataErrorMessage, "")
	}
	return a.reload(ctx, "upsert_stocks", draft.ID, acknowledgedStocksThing(draft, v))
}

func (a *Adapters) UpsertStocksEvent(ctx context.Context, draft *domain.Offer, v offerform.StocksEvent) (res Result[*domain.Offer]) {
	defer guard(a, "upsert_stocks", time.Now(), &res, draft, SentDataErrorMessage)

	body := pcapi.StocksUpsertBody{
		OfferID: draft.ID,
		Stocks:  serializeStockEventList(v, draft.DepartementCode()),
	}
	if _, err := a.backend.UpsertStocks(ctx, body); err != nil {
		return backendFailure(a, "upsert_stocks", err, draft, SentDataErrorMessage, "stocks.")
	}
	return a.reload(ctx, "upsert_stocks", draft.ID, acknowledgedStocksEvent(draft, v))
}

func (a *Adapters) PublishOffer(ctx context.Context, draft *domain.Offer) (res Result[*domain.Offer]) {
	defer guard(a, "publish_offer", time.Now(), &res, draft, publishErrorMessage)

	if err := a.backend.PatchPublishOffer(ctx, draft.ID); err != nil {
		a.logFailure("publish_offer", err)
		return failure(draft, publishErrorMessage)
	}
	return a.reload(ctx, "publish_offer", draft.ID, acknowledgedPublication(draft))
}

// DeleteDraftOffers removes drafts; count is the number the user selected.
func (a *Adapters) DeleteDraftOffers(ctx context.Context, ids []string, count int) (res Result[struct{}]) {
	defer guard(a, "delete_draft_offers", time.Now(), &res, struct{}{}, deleteDraftErrorMessage)

	if err := a.backend.DeleteDraftOffers(ctx, ids); err != nil {
		a.logFailure("delete_draft_offers", err)
		return failure(struct{}{}, deleteDraftErrorMessage)
	}
	return success(struct{}{}, deletionSuccessMessage(count))
}

func (a *Adapters) GetFilteredOffers(ctx context.Context, filters domain.OfferFilters) (res Result[[]domain.Offer]) {
	defer guard(a, "get_filtered_offers", time.Now(), &res, []domain.Offer{}, listOffersErrorMessage)

	list, err := a.backend.ListOffers(ctx, serializeFilters(filters))
	if err != nil {
		a.logFailure("get_filtered_offers", err)
		return failure([]domain.Offer{}, listOffersErrorMessage)
	}
	return success(offersFromList(list), "")
}

func (a *Adapters) GetUserHasBookings(ctx context.Context) (res Result[bool]) {
	defer guard(a, "get_user_has_bookings", time.Now(), &res, false, GetDataErrorMessage)

	resp, err := a.backend.GetUserHasBookings(ctx)
	if err != nil {
		a.logFailure("get_user_has_bookings", err)
		return failure(false, GetDataErrorMessage)
	}
	return success(resp.HasBookings, "")
}

// VenueImage is a banner crop to upload; ratios are relative to the original.
type VenueImage struct {
	Image       []byte
	Filename    string
	X           float64
	Y           float64
	Width       float64
	Height      float64
	ImageCredit string
}

// UploadVenueImage answers the new banner URL.
func (a *Adapters) UploadVenueImage(ctx context.Context, venueID string, img VenueImage) (res Result[string]) {
	defer guard(a, "upload_venue_image", time.Now(), &res, "", imageErrorMessage)

	resp, err := a.backend.UploadVenueImage(ctx, venueID, pcapi.VenueImageBody{
		Image:             img.Image,
		Filename:          img.Filename,
		XCropPercent:      img.X,
		YCropPercent:      img.Y,
		HeightCropPercent: img.Height,
		WidthCropPercent:  img.Width,
		ImageCredit:       img.ImageCredit,
	})
	if err != nil {
		return backendFailure(a, "upload_venue_image", err, "", imageErrorMessage, "")
	}
	return success(resp.BannerURL, "")
}

// reload refetches the offer after a write the backend acknowledged. The
// write stands even when the refetch fails, so the locally rebuilt draft is
// answered as a success.
func (a *Adapters) reload(ctx context.Context, op, offerID string, acknowledged *domain.Offer) Result[*domain.Offer] {
	resp, err := a.backend.GetOffer(ctx, offerID)
	if err != nil {
		a.logger.Warn("reload after write failed",
			zap.String("operation", op),
			zap.String("offer_id", offerID),
			zap.Error(err),
		)
		return success(acknowledged, PatchSuccessMessage)
	}
	return success(offerFromAPI(resp), PatchSuccessMessage)
}

func (a *Adapters) logFailure(op string, err error) {
	a.logger.Warn("adapter call failed", zap.String("operation", op), zap.Error(err))
}

// backendFailure builds a failed Result from a backend error. Validation
// errors become field errors, prefixed for nested forms; the backend's
// global message replaces msg when present.
func backendFailure[T any](a *Adapters, op string, err error, payload T, msg, prefix string) Result[T] {
	a.logFailure(op, err)
	res := failure(payload, msg)
	apiErr, ok := pcapi.AsAPIError(err)
	if !ok || len(apiErr.Fields) == 0 {
		return res
	}
	res.Message = FormErrorMessage
	for field, m := range apiErr.Fields {
		if field == pcapi.GlobalErrorKey {
			res.Message = m
			continue
		}
		if res.FieldErrors == nil {
			res.FieldErrors = map[string]string{}
		}
		res.FieldErrors[prefix+field] = m
	}
	return res
}

// guard is deferred by every operation: a panic below it becomes a failed
// Result and the call is reported to the observer.
func guard[T any](a *Adapters, op string, start time.Time, res *Result[T], fallback T, msg string) {
	if r := recover(); r != nil {
		a.logger.Error("adapter panic", zap.String("operation", op), zap.Any("panic", r))
		*res = failure(fallback, msg)
	}
	if a.observer != nil {
		a.observer.AdapterCalled(op, res.IsOk, time.Since(start))
	}
}

func deletionSuccessMessage(count int) string {
	if count <= 1 {
		return "1 brouillon a bien été supprimé"
	}
	return fmt.Sprintf("%d brouillons ont bien été supprimés", count)
}
