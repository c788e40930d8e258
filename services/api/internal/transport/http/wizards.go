package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cimillas/pro-portal/services/api/internal/app"
	"github.com/cimillas/pro-portal/services/api/internal/wizard"
)

const (
	userHeader   = "X-User-ID"
	maxBodyBytes = 1 << 20
)

// WizardService is the minimal interface needed for the wizard endpoints.
type WizardService interface {
	Start(ctx context.Context, in app.StartWizardInput) (app.WizardView, error)
	Get(ctx context.Context, id, userID string) (app.WizardView, error)
	SetValues(ctx context.Context, id, userID, step string, raw json.RawMessage) (app.WizardView, error)
	Submit(ctx context.Context, id, userID, step string) (app.SubmitOutput, error)
	Navigate(ctx context.Context, id, userID, step string) (app.NavigateOutput, error)
	Leave(ctx context.Context, id, userID, nextPath string) (wizard.NavigationGuardDecision, error)
	ConfirmLeave(ctx context.Context, id, userID string) error
}

// HandleStartWizard serves POST /wizards.
func HandleStartWizard(svc WizardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var req startWizardRequest
		if !decodeBody(w, r, &req) {
			return
		}

		view, err := svc.Start(r.Context(), app.StartWizardInput{
			UserID:    userID,
			Mode:      req.Mode,
			OfferID:   req.OfferID,
			OfferType: req.OfferType,
			Step:      req.Step,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

// HandleWizard serves every route below /wizards/{id}.
func HandleWizard(svc WizardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route, ok := parseWizardPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		method := route.method()
		if method == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != method {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		switch route.action {
		case actionView:
			view, err := svc.Get(ctx, route.id, userID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, view)

		case actionSetValues:
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil || !json.Valid(raw) {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			view, err := svc.SetValues(ctx, route.id, userID, route.step, raw)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, view)

		case actionSubmit:
			out, err := svc.Submit(ctx, route.id, userID, route.step)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, submitStatus(out.Result.Outcome), out)

		case actionNavigate:
			var req navigateRequest
			if !decodeBody(w, r, &req) {
				return
			}
			out, err := svc.Navigate(ctx, route.id, userID, req.Step)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, out)

		case actionLeave:
			var req leaveRequest
			if !decodeBody(w, r, &req) {
				return
			}
			decision, err := svc.Leave(ctx, route.id, userID, req.NextPath)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, decision)

		case actionConfirmLeave:
			if err := svc.ConfirmLeave(ctx, route.id, userID); err != nil {
				writeServiceError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

// submitStatus answers 422 for a rejected step, whose body still carries
// the field errors and the wizard view. A result the wizard moved past is
// a 409.
func submitStatus(o wizard.Outcome) int {
	switch o {
	case wizard.OutcomeInvalid, wizard.OutcomeFailed:
		return http.StatusUnprocessableEntity
	case wizard.OutcomeIgnored:
		return http.StatusAccepted
	case wizard.OutcomeDiscarded:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

type wizardAction int

const (
	actionView wizardAction = iota + 1
	actionSetValues
	actionSubmit
	actionNavigate
	actionLeave
	actionConfirmLeave
)

type wizardRoute struct {
	id     string
	step   string
	action wizardAction
}

func (r wizardRoute) method() string {
	switch r.action {
	case actionView:
		return http.MethodGet
	case actionSetValues:
		return http.MethodPut
	case actionSubmit, actionNavigate, actionLeave, actionConfirmLeave:
		return http.MethodPost
	default:
		return ""
	}
}

func parseWizardPath(path string) (wizardRoute, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "wizards" || parts[1] == "" {
		return wizardRoute{}, false
	}
	route := wizardRoute{id: parts[1]}
	rest := parts[2:]
	switch {
	case len(rest) == 0:
		route.action = actionView
	case len(rest) == 2 && rest[0] == "steps" && rest[1] != "":
		route.step, route.action = rest[1], actionSetValues
	case len(rest) == 3 && rest[0] == "steps" && rest[1] != "" && rest[2] == "submit":
		route.step, route.action = rest[1], actionSubmit
	case len(rest) == 1 && rest[0] == "navigate":
		route.action = actionNavigate
	case len(rest) == 1 && rest[0] == "leave":
		route.action = actionLeave
	case len(rest) == 2 && rest[0] == "leave" && rest[1] == "confirm":
		route.action = actionConfirmLeave
	default:
		return wizardRoute{}, false
	}
	return route, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userHeader))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codeUserRequired, "missing "+userHeader+" header")
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

type startWizardRequest struct {
	Mode      string `json:"mode"`
	OfferID   string `json:"offerId"`
	OfferType string `json:"offerType"`
	Step      string `json:"step"`
}

type navigateRequest struct {
	Step string `json:"step"`
}

type leaveRequest struct {
	NextPath string `json:"nextPath"`
}
