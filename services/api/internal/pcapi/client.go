// Package pcapi is the HTTP client of the pro backend REST API.
package pcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 15 * time.Second
	requestIDHeader = "X-Request-ID"
	userAgent       = "pro-portal/1.0"
)

var ErrUnexpectedResponse = errors.New("unexpected backend response")

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *zap.Logger
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAuthToken sends a bearer token on every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetOffer(ctx context.Context, offerID string) (OfferResponse, error) {
	var out OfferResponse
	err := c.doJSON(ctx, http.MethodGet, "/offers/"+url.PathEscape(offerID), nil, &out)
	return out, err
}

func (c *Client) PostOffer(ctx context.Context, body OfferBody) (OfferIDResponse, error) {
	var out OfferIDResponse
	err := c.doJSON(ctx, http.MethodPost, "/offers", body, &out)
	return out, err
}

func (c *Client) PatchOffer(ctx context.Context, offerID string, body OfferBody) (OfferIDResponse, error) {
	var out OfferIDResponse
	err := c.doJSON(ctx, http.MethodPatch, "/offers/"+url.PathEscape(offerID), body, &out)
	return out, err
}

func (c *Client) PostPriceCategories(ctx context.Context, offerID string, body PriceCategoriesBody) (OfferResponse, error) {
	var out OfferResponse
	err := c.doJSON(ctx, http.MethodPost, "/offers/"+url.PathEscape(offerID)+"/price_categories", body, &out)
	return out, err
}

func (c *Client) UpsertStocks(ctx context.Context, body StocksUpsertBody) (StocksUpsertResponse, error) {
	var out StocksUpsertResponse
	err := c.doJSON(ctx, http.MethodPost, "/stocks/bulk", body, &out)
	return out, err
}

func (c *Client) PatchPublishOffer(ctx context.Context, offerID string) error {
	return c.doJSON(ctx, http.MethodPatch, "/offers/publish", PublishOfferBody{ID: offerID}, nil)
}

func (c *Client) DeleteDraftOffers(ctx context.Context, ids []string) error {
	return c.doJSON(ctx, http.MethodPost, "/offers/delete-draft", DeleteDraftOffersBody{IDs: ids}, nil)
}

func (c *Client) ListOffers(ctx context.Context, q ListOffersQuery) ([]ListOfferResponse, error) {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	set("nameOrIsbn", q.NameOrISBN)
	set("offererId", q.OffererID)
	set("status", q.Status)
	set("venueId", q.VenueID)
	set("categoryId", q.CategoryID)
	set("creationMode", q.CreationMode)
	set("periodBeginningDate", q.PeriodBeginningDate)
	set("periodEndingDate", q.PeriodEndingDate)

	path := "/offers"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var out []ListOfferResponse
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetUserHasBookings(ctx context.Context) (UserHasBookingsResponse, error) {
	var out UserHasBookingsResponse
	err := c.doJSON(ctx, http.MethodGet, "/bookings/pro/userHasBookings", nil, &out)
	return out, err
}

// UploadVenueImage posts a banner as multipart form data.
func (c *Client) UploadVenueImage(ctx context.Context, venueID string, body VenueImageBody) (VenueImageResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := body.Filename
	if filename == "" {
		filename = "banner.jpg"
	}
	part, err := mw.CreateFormFile("banner", filename)
	if err != nil {
		return VenueImageResponse{}, fmt.Errorf("create banner part: %w", err)
	}
	if _, err := part.Write(body.Image); err != nil {
		return VenueImageResponse{}, fmt.Errorf("write banner part: %w", err)
	}
	fields := map[string]string{
		"x_crop_percent":      formatRatio(body.XCropPercent),
		"y_crop_percent":      formatRatio(body.YCropPercent),
		"height_crop_percent": formatRatio(body.HeightCropPercent),
		"width_crop_percent":  formatRatio(body.WidthCropPercent),
		"image_credit":        body.ImageCredit,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return VenueImageResponse{}, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return VenueImageResponse{}, fmt.Errorf("close multipart: %w", err)
	}

	var out VenueImageResponse
	err = c.do(ctx, http.MethodPost, "/venues/"+url.PathEscape(venueID)+"/banner", &buf, mw.FormDataContentType(), &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method, path, resp.StatusCode, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrUnexpectedResponse, method, path, err)
	}
	return nil
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
