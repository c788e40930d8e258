package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cimillas/pro-portal/services/api/internal/app"
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/imagecrop"
)

type stubVenueService struct {
	selected  map[string]string
	upload    app.UploadImageInput
	uploadErr error
	discarded string
}

func newStubVenueService() *stubVenueService {
	return &stubVenueService{selected: map[string]string{}}
}

func (s *stubVenueService) LastSelected(_ context.Context, userID string) (string, error) {
	return s.selected[userID], nil
}

func (s *stubVenueService) Select(_ context.Context, userID, venueID string) error {
	if venueID == "" {
		return domain.ErrVenueRequired
	}
	s.selected[userID] = venueID
	return nil
}

func (s *stubVenueService) UploadImage(_ context.Context, in app.UploadImageInput) (app.UploadImageOutput, error) {
	s.upload = in
	if s.uploadErr != nil {
		return app.UploadImageOutput{}, s.uploadErr
	}
	return app.UploadImageOutput{BannerURL: "https://cdn/" + in.VenueID + ".jpg"}, nil
}

func (s *stubVenueService) ImageEditorState(_ context.Context, _ string) (app.EditorState, error) {
	params := imagecrop.DefaultCropParams()
	return app.EditorState{Params: params, Position: imagecrop.CroppedRectToPosition(params.CroppedRect)}, nil
}

func (s *stubVenueService) DiscardImage(_ context.Context, venueID string) error {
	s.discarded = venueID
	return nil
}

func TestHandleLastSelectedVenue(t *testing.T) {
	t.Parallel()

	svc := newStubVenueService()
	handler := HandleLastSelectedVenue(svc)

	req := httptest.NewRequest(http.MethodPut, "/venues/last-selected", strings.NewReader(`{"venueId":"V1"}`))
	req.Header.Set(userHeader, "u1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/venues/last-selected", nil)
	req.Header.Set(userHeader, "u1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var got lastSelectedVenue
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.VenueID != "V1" {
		t.Fatalf("expected V1, got %q", got.VenueID)
	}

	req = httptest.NewRequest(http.MethodPut, "/venues/last-selected", strings.NewReader(`{"venueId":""}`))
	req.Header.Set(userHeader, "u1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	assertErrorCode(t, rec, codeVenueRequired)

	req = httptest.NewRequest(http.MethodGet, "/venues/last-selected", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func multipartUpload(t *testing.T, file []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("banner", "banner.jpg")
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = fw.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestHandleVenueImage_Upload(t *testing.T) {
	t.Parallel()

	svc := newStubVenueService()
	crop := `{"croppedRect":{"x":0.25,"y":0,"width":0.5,"height":0.5},"scale":2}`
	body, contentType := multipartUpload(t, []byte("jpeg"), map[string]string{
		"credit":     "Jane",
		"cropParams": crop,
	})

	req := httptest.NewRequest(http.MethodPost, "/venues/V1/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(userHeader, "u1")
	rec := httptest.NewRecorder()

	HandleVenueImage(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.upload.VenueID != "V1" || string(svc.upload.Image) != "jpeg" || svc.upload.Filename != "banner.jpg" {
		t.Fatalf("unexpected upload input %+v", svc.upload)
	}
	if svc.upload.Credit != "Jane" || svc.upload.Params == nil || svc.upload.Params.Scale != 2 {
		t.Fatalf("unexpected upload params %+v", svc.upload)
	}
	if !strings.Contains(rec.Body.String(), "https://cdn/V1.jpg") {
		t.Fatalf("expected banner url in %s", rec.Body.String())
	}
}

func TestHandleVenueImage_RecropWithoutFile(t *testing.T) {
	t.Parallel()

	svc := newStubVenueService()
	body, contentType := multipartUpload(t, nil, map[string]string{"credit": "Jane"})
	req := httptest.NewRequest(http.MethodPost, "/venues/V1/image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(userHeader, "u1")
	rec := httptest.NewRecorder()

	HandleVenueImage(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if svc.upload.Image != nil || svc.upload.Params != nil {
		t.Fatalf("expected empty image and default params, got %+v", svc.upload)
	}
}

func TestHandleVenueImage_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		fields         map[string]string
		uploadErr      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "bad crop json",
			path:           "/venues/V1/image",
			fields:         map[string]string{"cropParams": "{"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "invalid crop",
			path:           "/venues/V1/image",
			uploadErr:      domain.ErrInvalidCrop,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidCrop,
		},
		{
			name:           "rejected by backend",
			path:           "/venues/V1/image",
			uploadErr:      fmt.Errorf("%w: Image trop petite", app.ErrUploadFailed),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   codeUploadFailed,
		},
		{
			name:           "bad path",
			path:           "/venues/V1/logo",
			expectedStatus: http.StatusNotFound,
			expectedCode:   codeNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newStubVenueService()
			svc.uploadErr = tt.uploadErr
			body, contentType := multipartUpload(t, []byte("jpeg"), tt.fields)
			req := httptest.NewRequest(http.MethodPost, tt.path, body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set(userHeader, "u1")
			rec := httptest.NewRecorder()

			HandleVenueImage(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			assertErrorCode(t, rec, tt.expectedCode)
		})
	}
}

func TestHandleVenueImage_EditorStateAndDiscard(t *testing.T) {
	t.Parallel()

	svc := newStubVenueService()
	handler := HandleVenueImage(svc)

	req := httptest.NewRequest(http.MethodGet, "/venues/V1/image", nil)
	req.Header.Set(userHeader, "u1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var state app.EditorState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if state.Position != (imagecrop.Position{X: 0.5, Y: 0.5}) {
		t.Fatalf("unexpected position %+v", state.Position)
	}

	req = httptest.NewRequest(http.MethodDelete, "/venues/V1/image", nil)
	req.Header.Set(userHeader, "u1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || svc.discarded != "V1" {
		t.Fatalf("expected discard of V1, got status %d venue %q", rec.Code, svc.discarded)
	}
}
