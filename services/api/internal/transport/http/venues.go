package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/cimillas/pro-portal/services/api/internal/app"
	"github.com/cimillas/pro-portal/services/api/internal/imagecrop"
)

const maxImageBytes = 10 << 20

// VenueService is the minimal interface needed for the venue endpoints.
type VenueService interface {
	LastSelected(ctx context.Context, userID string) (string, error)
	Select(ctx context.Context, userID, venueID string) error
	UploadImage(ctx context.Context, in app.UploadImageInput) (app.UploadImageOutput, error)
	ImageEditorState(ctx context.Context, venueID string) (app.EditorState, error)
	DiscardImage(ctx context.Context, venueID string) error
}

// HandleLastSelectedVenue serves GET and PUT /venues/last-selected.
func HandleLastSelectedVenue(svc VenueService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		switch r.Method {
		case http.MethodGet:
			venueID, err := svc.LastSelected(r.Context(), userID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, lastSelectedVenue{VenueID: venueID})
		case http.MethodPut:
			var req lastSelectedVenue
			if !decodeBody(w, r, &req) {
				return
			}
			if err := svc.Select(r.Context(), userID, req.VenueID); err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, req)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleVenueImage serves /venues/{id}/image: POST uploads a multipart
// form, GET returns the editor state and DELETE drops the staged original.
func HandleVenueImage(svc VenueService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venueID, ok := parseVenueImagePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if _, ok := requireUser(w, r); !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			state, err := svc.ImageEditorState(r.Context(), venueID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, state)
		case http.MethodDelete:
			if err := svc.DiscardImage(r.Context(), venueID); err != nil {
				writeServiceError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			in, err := readUploadForm(w, r)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
				return
			}
			in.VenueID = venueID
			out, err := svc.UploadImage(r.Context(), in)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, out)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// readUploadForm reads the "banner" file, the "credit" field and the
// optional "cropParams" JSON field. The file may be omitted to crop again.
func readUploadForm(w http.ResponseWriter, r *http.Request) (app.UploadImageInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return app.UploadImageInput{}, errors.New("invalid multipart form")
	}

	in := app.UploadImageInput{Credit: r.FormValue("credit")}
	if raw := r.FormValue("cropParams"); raw != "" {
		var params imagecrop.CropParams
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return app.UploadImageInput{}, errors.New("invalid cropParams")
		}
		in.Params = &params
	}

	file, header, err := r.FormFile("banner")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return in, nil
	case err != nil:
		return app.UploadImageInput{}, errors.New("invalid banner file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return app.UploadImageInput{}, errors.New("invalid banner file")
	}
	in.Image = data
	in.Filename = header.Filename
	in.ContentType = header.Header.Get("Content-Type")
	return in, nil
}

func parseVenueImagePath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "venues" || parts[2] != "image" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type lastSelectedVenue struct {
	VenueID string `json:"venueId"`
}
