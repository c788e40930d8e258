package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cimillas/pro-portal/services/api/internal/app"
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/wizard"
)

type stubWizardService struct {
	err      error
	outcome  wizard.Outcome
	lastCall string
	lastUser string
	lastStep string
	lastRaw  string
	start    app.StartWizardInput
}

func (s *stubWizardService) view(id string) app.WizardView {
	return app.WizardView{ID: id, View: wizard.View{
		Mode:    wizard.ModeCreation,
		Kind:    wizard.KindThing,
		Status:  wizard.StatusAwaiting,
		Current: wizard.StepInformations,
	}}
}

func (s *stubWizardService) record(call, user, step string) {
	s.lastCall, s.lastUser, s.lastStep = call, user, step
}

func (s *stubWizardService) Start(_ context.Context, in app.StartWizardInput) (app.WizardView, error) {
	s.record("start", in.UserID, in.Step)
	s.start = in
	return s.view("w1"), s.err
}

func (s *stubWizardService) Get(_ context.Context, id, userID string) (app.WizardView, error) {
	s.record("get", userID, "")
	return s.view(id), s.err
}

func (s *stubWizardService) SetValues(_ context.Context, id, userID, step string, raw json.RawMessage) (app.WizardView, error) {
	s.record("set", userID, step)
	s.lastRaw = string(raw)
	return s.view(id), s.err
}

func (s *stubWizardService) Submit(_ context.Context, id, userID, step string) (app.SubmitOutput, error) {
	s.record("submit", userID, step)
	return app.SubmitOutput{
		Result: wizard.SubmitResult{Outcome: s.outcome, Step: wizard.StepID(step)},
		Wizard: s.view(id),
	}, s.err
}

func (s *stubWizardService) Navigate(_ context.Context, id, userID, step string) (app.NavigateOutput, error) {
	s.record("navigate", userID, step)
	return app.NavigateOutput{Moved: true, Wizard: s.view(id)}, s.err
}

func (s *stubWizardService) Leave(_ context.Context, _, userID, nextPath string) (wizard.NavigationGuardDecision, error) {
	s.record("leave", userID, nextPath)
	return wizard.NavigationGuardDecision{ShouldBlock: true}, s.err
}

func (s *stubWizardService) ConfirmLeave(_ context.Context, _, userID string) error {
	s.record("confirm", userID, "")
	return s.err
}

func TestHandleStartWizard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		user           string
		method         string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "created",
			user:           "u1",
			body:           `{"mode":"creation","offerType":"PHYSICAL_GOOD"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing user",
			body:           `{"mode":"creation"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   codeUserRequired,
		},
		{
			name:           "wrong method",
			user:           "u1",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedCode:   codeMethodNotAllowed,
		},
		{
			name:           "unknown field",
			user:           "u1",
			body:           `{"mode":"creation","extra":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidRequestBody,
		},
		{
			name:           "invalid mode",
			user:           "u1",
			body:           `{"mode":"nope"}`,
			serviceErr:     domain.ErrInvalidMode,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   codeInvalidMode,
		},
		{
			name:           "offer unavailable",
			user:           "u1",
			body:           `{"mode":"edition","offerId":"AB"}`,
			serviceErr:     domain.ErrOfferUnavailable,
			expectedStatus: http.StatusBadGateway,
			expectedCode:   codeOfferUnavailable,
		},
		{
			name:           "internal",
			user:           "u1",
			body:           `{"mode":"creation"}`,
			serviceErr:     errors.New("db down"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   codeInternalError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubWizardService{err: tt.serviceErr}
			method := tt.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, "/wizards", strings.NewReader(tt.body))
			if tt.user != "" {
				req.Header.Set(userHeader, tt.user)
			}
			rec := httptest.NewRecorder()

			HandleStartWizard(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedCode != "" {
				assertErrorCode(t, rec, tt.expectedCode)
			}
		})
	}
}

func TestHandleStartWizard_PassesInput(t *testing.T) {
	t.Parallel()

	svc := &stubWizardService{}
	req := httptest.NewRequest(http.MethodPost, "/wizards",
		strings.NewReader(`{"mode":"brouillon","offerId":"AB","step":"stocks"}`))
	req.Header.Set(userHeader, "u7")
	rec := httptest.NewRecorder()

	HandleStartWizard(svc).ServeHTTP(rec, req)

	want := app.StartWizardInput{UserID: "u7", Mode: "brouillon", OfferID: "AB", Step: "stocks"}
	if svc.start != want {
		t.Fatalf("expected %+v, got %+v", want, svc.start)
	}
	var view app.WizardView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.ID != "w1" || view.Current != wizard.StepInformations {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestHandleWizard_Routes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		outcome        wizard.Outcome
		expectedCall   string
		expectedStep   string
		expectedStatus int
	}{
		{name: "view", method: http.MethodGet, path: "/wizards/w1", expectedCall: "get", expectedStatus: http.StatusOK},
		{
			name: "set values", method: http.MethodPut, path: "/wizards/w1/steps/informations",
			body: `{"name":"Vélo"}`, expectedCall: "set", expectedStep: "informations", expectedStatus: http.StatusOK,
		},
		{
			name: "submit advanced", method: http.MethodPost, path: "/wizards/w1/steps/informations/submit",
			outcome: wizard.OutcomeAdvanced, expectedCall: "submit", expectedStep: "informations", expectedStatus: http.StatusOK,
		},
		{
			name: "submit invalid", method: http.MethodPost, path: "/wizards/w1/steps/stocks/submit",
			outcome: wizard.OutcomeInvalid, expectedCall: "submit", expectedStep: "stocks", expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "submit ignored", method: http.MethodPost, path: "/wizards/w1/steps/stocks/submit",
			outcome: wizard.OutcomeIgnored, expectedCall: "submit", expectedStep: "stocks", expectedStatus: http.StatusAccepted,
		},
		{
			name: "navigate", method: http.MethodPost, path: "/wizards/w1/navigate",
			body: `{"step":"tarifs"}`, expectedCall: "navigate", expectedStep: "tarifs", expectedStatus: http.StatusOK,
		},
		{
			name: "leave", method: http.MethodPost, path: "/wizards/w1/leave",
			body: `{"nextPath":"/offres"}`, expectedCall: "leave", expectedStep: "/offres", expectedStatus: http.StatusOK,
		},
		{name: "confirm leave", method: http.MethodPost, path: "/wizards/w1/leave/confirm", expectedCall: "confirm", expectedStatus: http.StatusNoContent},
		{name: "unknown route", method: http.MethodGet, path: "/wizards/w1/other", expectedStatus: http.StatusNotFound},
		{name: "empty id", method: http.MethodGet, path: "/wizards/", expectedStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/wizards/w1", expectedStatus: http.StatusMethodNotAllowed},
		{name: "invalid values", method: http.MethodPut, path: "/wizards/w1/steps/informations", body: `{"name":`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubWizardService{outcome: tt.outcome}
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set(userHeader, "u1")
			rec := httptest.NewRecorder()

			HandleWizard(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if svc.lastCall != tt.expectedCall {
				t.Fatalf("expected call %q, got %q", tt.expectedCall, svc.lastCall)
			}
			if tt.expectedCall != "" && svc.lastUser != "u1" {
				t.Fatalf("expected user u1, got %q", svc.lastUser)
			}
			if svc.lastStep != tt.expectedStep {
				t.Fatalf("expected step %q, got %q", tt.expectedStep, svc.lastStep)
			}
		})
	}
}

func TestHandleWizard_ForwardsRawValues(t *testing.T) {
	t.Parallel()

	svc := &stubWizardService{}
	body := `{"priceCategories":[{"label":"Plein","price":12}]}`
	req := httptest.NewRequest(http.MethodPut, "/wizards/w1/steps/tarifs", strings.NewReader(body))
	req.Header.Set(userHeader, "u1")
	rec := httptest.NewRecorder()

	HandleWizard(svc).ServeHTTP(rec, req)

	if svc.lastRaw != body {
		t.Fatalf("expected raw body %q, got %q", body, svc.lastRaw)
	}
}

func TestHandleWizard_SetValuesWhileSubmitting(t *testing.T) {
	t.Parallel()

	svc := &stubWizardService{err: domain.ErrSubmitting}
	req := httptest.NewRequest(http.MethodPut, "/wizards/w1/steps/informations", strings.NewReader(`{"name":"Concert"}`))
	req.Header.Set(userHeader, "u1")
	rec := httptest.NewRecorder()

	HandleWizard(svc).ServeHTTP(rec, req)

	if svc.lastCall != "set" {
		t.Fatalf("expected set call, got %q", svc.lastCall)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	assertErrorCode(t, rec, codeSubmitting)
}

func TestHandleWizard_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{domain.ErrWizardNotFound, http.StatusNotFound, codeWizardNotFound},
		{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
		{domain.ErrNotCurrentStep, http.StatusConflict, codeNotCurrentStep},
		{domain.ErrWizardClosed, http.StatusGone, codeWizardClosed},
		{domain.ErrUnknownStep, http.StatusNotFound, codeUnknownStep},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, codeTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.expectedCode, func(t *testing.T) {
			t.Parallel()
			svc := &stubWizardService{err: tt.err}
			req := httptest.NewRequest(http.MethodPost, "/wizards/w1/steps/stocks/submit", nil)
			req.Header.Set(userHeader, "u1")
			rec := httptest.NewRecorder()

			HandleWizard(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			assertErrorCode(t, rec, tt.expectedCode)
		})
	}
}

func TestParseWizardPath(t *testing.T) {
	t.Parallel()

	route, ok := parseWizardPath("/wizards/abc/steps/tarifs/submit")
	if !ok || route.id != "abc" || route.step != "tarifs" || route.action != actionSubmit {
		t.Fatalf("unexpected route %+v", route)
	}
	if _, ok := parseWizardPath("/wizards/abc/steps//submit"); ok {
		t.Fatalf("expected empty step to be rejected")
	}
	if _, ok := parseWizardPath("/venues/abc"); ok {
		t.Fatalf("expected foreign prefix to be rejected")
	}
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != code {
		t.Fatalf("expected code %s, got %s", code, resp.Code)
	}
}
