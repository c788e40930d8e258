package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cimillas/pro-portal/services/api/internal/app"
	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeUserRequired       = "user_required"
	codeInvalidID          = "invalid_id"
	codeInvalidMode        = "invalid_mode"
	codeWizardNotFound     = "wizard_not_found"
	codeWizardExists       = "wizard_exists"
	codeUnknownStep        = "unknown_step"
	codeStepMismatch       = "step_mismatch"
	codeNotCurrentStep     = "not_current_step"
	codeNoForm             = "no_form"
	codeWizardClosed       = "wizard_closed"
	codeSubmitting         = "submitting"
	codeOfferRequired      = "offer_required"
	codeOfferUnavailable   = "offer_unavailable"
	codeVenueRequired      = "venue_required"
	codeInvalidCrop        = "invalid_crop"
	codeImageRequired      = "image_required"
	codeUploadFailed       = "upload_failed"
	codeTimeout            = "timeout"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{domain.ErrUserRequired, http.StatusUnauthorized, codeUserRequired},
	{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrInvalidMode, http.StatusBadRequest, codeInvalidMode},
	{domain.ErrWizardNotFound, http.StatusNotFound, codeWizardNotFound},
	{domain.ErrWizardExists, http.StatusConflict, codeWizardExists},
	{domain.ErrUnknownStep, http.StatusNotFound, codeUnknownStep},
	{domain.ErrStepMismatch, http.StatusBadRequest, codeStepMismatch},
	{domain.ErrNotCurrentStep, http.StatusConflict, codeNotCurrentStep},
	{domain.ErrNoForm, http.StatusBadRequest, codeNoForm},
	{domain.ErrWizardClosed, http.StatusGone, codeWizardClosed},
	{domain.ErrSubmitting, http.StatusConflict, codeSubmitting},
	{domain.ErrOfferRequired, http.StatusBadRequest, codeOfferRequired},
	{domain.ErrOfferUnavailable, http.StatusBadGateway, codeOfferUnavailable},
	{domain.ErrVenueRequired, http.StatusBadRequest, codeVenueRequired},
	{domain.ErrInvalidCrop, http.StatusBadRequest, codeInvalidCrop},
	{domain.ErrImageRequired, http.StatusBadRequest, codeImageRequired},
	{domain.ErrImageNotFound, http.StatusNotFound, codeNotFound},
	{app.ErrUploadFailed, http.StatusUnprocessableEntity, codeUploadFailed},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, codeTimeout},
}

// writeServiceError maps a service error to its status and code. Unknown
// errors become a 500 without leaking their text.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
