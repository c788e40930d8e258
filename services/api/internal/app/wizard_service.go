package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cimillas/pro-portal/services/api/internal/adapter"
	"github.com/cimillas/pro-portal/services/api/internal/clock"
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/offerform"
	"github.com/cimillas/pro-portal/services/api/internal/wizard"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, s domain.WizardSession) error
	// GetSession returns domain.ErrWizardNotFound when no session matches.
	GetSession(ctx context.Context, id string) (domain.WizardSession, error)
	UpdateSession(ctx context.Context, s domain.WizardSession) error
}

type VenuePreferences interface {
	// LastSelectedVenue returns "" when the user never picked a venue.
	LastSelectedVenue(ctx context.Context, userID string) (string, error)
	SetLastSelectedVenue(ctx context.Context, userID, venueID string) error
}

// OfferGateway is the part of the adapter layer the wizards need.
type OfferGateway interface {
	wizard.StepSubmitter
	GetOffer(ctx context.Context, offerID string) adapter.Result[*domain.Offer]
}

// WizardService hosts the open wizards of every user. Controllers stay in
// memory while in use and are restored from the repository otherwise.
type WizardService struct {
	repo     SessionRepository
	prefs    VenuePreferences
	gateway  OfferGateway
	clock    clock.Clock
	logger   *zap.Logger
	observer wizard.Observer
	timeout  time.Duration

	mu   sync.Mutex
	live map[string]*liveWizard
}

type liveWizard struct {
	ctrl      *wizard.Controller
	userID    string
	createdAt time.Time
	// saveMu orders snapshot writes of this session.
	saveMu sync.Mutex
}

type WizardServiceOption func(*WizardService)

func WithWizardLogger(logger *zap.Logger) WizardServiceOption {
	return func(s *WizardService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithWizardObserver(o wizard.Observer) WizardServiceOption {
	return func(s *WizardService) {
		s.observer = o
	}
}

// WithSubmitTimeout overrides the timeout of each backend write.
func WithSubmitTimeout(d time.Duration) WizardServiceOption {
	return func(s *WizardService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewWizardService(repo SessionRepository, prefs VenuePreferences, gateway OfferGateway, clk clock.Clock, opts ...WizardServiceOption) *WizardService {
	s := &WizardService{
		repo:    repo,
		prefs:   prefs,
		gateway: gateway,
		clock:   clk,
		logger:  zap.NewNop(),
		timeout: wizard.DefaultSubmitTimeout,
		live:    map[string]*liveWizard{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WizardView is what callers get back after every operation.
type WizardView struct {
	ID string `json:"id"`
	wizard.View
}

type StartWizardInput struct {
	UserID  string
	Mode    string
	OfferID string
	// OfferType is the offer-type query value of the creation URL.
	OfferType string
	Step      string
}

func (s *WizardService) Start(ctx context.Context, in StartWizardInput) (WizardView, error) {
	if in.UserID == "" {
		return WizardView{}, domain.ErrUserRequired
	}
	mode, err := wizard.ParseMode(in.Mode)
	if err != nil {
		return WizardView{}, err
	}

	var draft *domain.Offer
	if mode != wizard.ModeCreation || in.OfferID != "" {
		if in.OfferID == "" {
			return WizardView{}, domain.ErrOfferRequired
		}
		res := s.gateway.GetOffer(ctx, in.OfferID)
		if !res.IsOk || res.Payload == nil {
			return WizardView{}, fmt.Errorf("%w: %s", domain.ErrOfferUnavailable, res.Message)
		}
		draft = res.Payload
		if mode == wizard.ModeCreation {
			mode = wizard.ModeDraft
		}
	}

	lastVenue, err := s.prefs.LastSelectedVenue(ctx, in.UserID)
	if err != nil {
		s.logger.Warn("last selected venue unavailable", zap.String("user_id", in.UserID), zap.Error(err))
		lastVenue = ""
	}

	ctrl, err := wizard.NewController(s.deps(), wizard.Config{
		Mode:        mode,
		Kind:        wizard.ResolveKind(draft, nil, in.OfferType),
		Draft:       draft,
		Step:        wizard.StepID(in.Step),
		LastVenueID: lastVenue,
	})
	if err != nil {
		return WizardView{}, err
	}

	now := s.clock.Now()
	lw := &liveWizard{ctrl: ctrl, userID: in.UserID, createdAt: now}
	id := newUUID()
	if err := s.repo.CreateSession(ctx, toSession(id, lw, now)); err != nil {
		return WizardView{}, err
	}

	s.mu.Lock()
	s.live[id] = lw
	s.mu.Unlock()

	s.logger.Info("wizard started",
		zap.String("wizard_id", id),
		zap.String("user_id", in.UserID),
		zap.String("mode", string(mode)))
	return WizardView{ID: id, View: ctrl.View()}, nil
}

func (s *WizardService) Get(ctx context.Context, id, userID string) (WizardView, error) {
	lw, err := s.load(ctx, id, userID)
	if err != nil {
		return WizardView{}, err
	}
	return WizardView{ID: id, View: lw.ctrl.View()}, nil
}

// SetValues decodes the JSON record of a step and stores it in its form.
func (s *WizardService) SetValues(ctx context.Context, id, userID, step string, raw json.RawMessage) (WizardView, error) {
	lw, err := s.load(ctx, id, userID)
	if err != nil {
		return WizardView{}, err
	}
	stepID := wizard.StepID(step)
	if !wizard.KnownStep(stepID) {
		return WizardView{}, domain.ErrUnknownStep
	}
	fk, ok := wizard.FormKind(stepID, lw.ctrl.View().Kind)
	if !ok {
		return WizardView{}, domain.ErrNoForm
	}
	values, err := offerform.Decode(fk, raw)
	if err != nil {
		return WizardView{}, fmt.Errorf("%w: %v", domain.ErrStepMismatch, err)
	}
	if err := lw.ctrl.SetValues(stepID, values); err != nil {
		return WizardView{}, err
	}
	return WizardView{ID: id, View: lw.ctrl.View()}, nil
}

type SubmitOutput struct {
	Result wizard.SubmitResult `json:"result"`
	Wizard WizardView          `json:"wizard"`
}

func (s *WizardService) Submit(ctx context.Context, id, userID, step string) (SubmitOutput, error) {
	lw, err := s.load(ctx, id, userID)
	if err != nil {
		return SubmitOutput{}, err
	}
	res, err := lw.ctrl.SubmitStep(ctx, wizard.StepID(step))
	if err != nil {
		return SubmitOutput{}, err
	}

	switch res.Outcome {
	case wizard.OutcomeAdvanced, wizard.OutcomeSaved, wizard.OutcomeConfirmed:
		if res.Step == wizard.StepInformations {
			s.rememberVenue(ctx, userID, lw.ctrl.Draft())
		}
		if err := s.persist(ctx, id, lw); err != nil {
			return SubmitOutput{}, err
		}
	}
	return SubmitOutput{Result: res, Wizard: WizardView{ID: id, View: lw.ctrl.View()}}, nil
}

type NavigateOutput struct {
	Moved  bool       `json:"moved"`
	Wizard WizardView `json:"wizard"`
}

func (s *WizardService) Navigate(ctx context.Context, id, userID, step string) (NavigateOutput, error) {
	lw, err := s.load(ctx, id, userID)
	if err != nil {
		return NavigateOutput{}, err
	}
	moved, err := lw.ctrl.NavigateTo(wizard.StepID(step))
	if err != nil {
		return NavigateOutput{}, err
	}
	if moved {
		if err := s.persist(ctx, id, lw); err != nil {
			return NavigateOutput{}, err
		}
	}
	return NavigateOutput{Moved: moved, Wizard: WizardView{ID: id, View: lw.ctrl.View()}}, nil
}

func (s *WizardService) Leave(ctx context.Context, id, userID, nextPath string) (wizard.NavigationGuardDecision, error) {
	lw, err := s.load(ctx, id, userID)
	if err != nil {
		return wizard.NavigationGuardDecision{}, err
	}
	return lw.ctrl.LeaveWizard(nextPath), nil
}

// ConfirmLeave closes the wizard after the user accepted to lose changes.
func (s *WizardService) ConfirmLeave(ctx context.Context, id, userID string) error {
	lw, err := s.load(ctx, id, userID)
	if err != nil {
		return err
	}
	lw.ctrl.ConfirmLeave()
	return s.persist(ctx, id, lw)
}

func (s *WizardService) deps() wizard.Deps {
	return wizard.Deps{
		Submitter: s.gateway,
		Logger:    s.logger,
		Observer:  s.observer,
		Timeout:   s.timeout,
	}
}

func (s *WizardService) load(ctx context.Context, id, userID string) (*liveWizard, error) {
	if userID == "" {
		return nil, domain.ErrUserRequired
	}
	if id == "" {
		return nil, domain.ErrInvalidID
	}

	s.mu.Lock()
	lw, ok := s.live[id]
	s.mu.Unlock()

	if !ok {
		sess, err := s.repo.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		ctrl, err := wizard.Restore(s.deps(), fromSession(sess))
		if err != nil {
			return nil, err
		}
		restored := &liveWizard{ctrl: ctrl, userID: sess.UserID, createdAt: sess.CreatedAt}

		s.mu.Lock()
		if existing, ok := s.live[id]; ok {
			restored = existing
		} else {
			s.live[id] = restored
		}
		s.mu.Unlock()
		lw = restored
	}

	if lw.userID != userID {
		return nil, domain.ErrForbidden
	}
	return lw, nil
}

// persist writes the controller state; closed wizards leave memory.
func (s *WizardService) persist(ctx context.Context, id string, lw *liveWizard) error {
	lw.saveMu.Lock()
	defer lw.saveMu.Unlock()

	if err := s.repo.UpdateSession(ctx, toSession(id, lw, s.clock.Now())); err != nil {
		return err
	}
	if lw.ctrl.Status() != wizard.StatusAwaiting {
		s.mu.Lock()
		delete(s.live, id)
		s.mu.Unlock()
	}
	return nil
}

func (s *WizardService) rememberVenue(ctx context.Context, userID string, draft *domain.Offer) {
	if draft == nil || draft.VenueID == "" {
		return
	}
	if err := s.prefs.SetLastSelectedVenue(ctx, userID, draft.VenueID); err != nil {
		s.logger.Warn("remember venue failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func toSession(id string, lw *liveWizard, now time.Time) domain.WizardSession {
	snap := lw.ctrl.Snapshot()
	return domain.WizardSession{
		ID:          id,
		UserID:      lw.userID,
		Mode:        string(snap.Mode),
		Kind:        string(snap.Kind),
		Status:      string(snap.Status),
		CurrentStep: string(snap.CurrentStep),
		Draft:       snap.Draft,
		LastVenueID: snap.LastVenueID,
		CreatedAt:   lw.createdAt,
		UpdatedAt:   now,
	}
}

func fromSession(sess domain.WizardSession) wizard.Snapshot {
	return wizard.Snapshot{
		Mode:        wizard.Mode(sess.Mode),
		Kind:        wizard.OfferKind(sess.Kind),
		Status:      wizard.Status(sess.Status),
		CurrentStep: wizard.StepID(sess.CurrentStep),
		Draft:       sess.Draft,
		LastVenueID: sess.LastVenueID,
	}
}
