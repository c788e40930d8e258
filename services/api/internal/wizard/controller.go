package wizard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cimillas/pro-portal/services/api/internal/adapter"
	"github.com/cimillas/pro-portal/services/api/internal/domain"
	"github.com/cimillas/pro-portal/services/api/internal/offerform"
)

const DefaultSubmitTimeout = 15 * time.Second

type Status string

const (
	StatusAwaiting  Status = "awaiting"
	StatusConfirmed Status = "confirmed"
	StatusExited    Status = "exited"
)

// Outcome is what a submit did to the wizard.
type Outcome string

const (
	// OutcomeIgnored: a submit of the same step was already in flight.
	OutcomeIgnored   Outcome = "ignored"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
	OutcomeAdvanced  Outcome = "advanced"
	OutcomeSaved     Outcome = "saved"
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeDiscarded: the wizard moved on while the backend answered.
	OutcomeDiscarded Outcome = "discarded"
)

type SubmitResult struct {
	Outcome Outcome               `json:"outcome"`
	Step    StepID                `json:"step"`
	Message string                `json:"message,omitempty"`
	Errors  offerform.FieldErrors `json:"errors,omitempty"`
}

// StepSubmitter persists a validated step record and answers the refreshed
// draft. *adapter.Adapters satisfies it.
type StepSubmitter interface {
	SubmitStep(ctx context.Context, draft *domain.Offer, values offerform.Values) adapter.Result[*domain.Offer]
}

type Observer interface {
	StepSubmitted(step StepID, outcome Outcome)
	WizardFinished(status Status)
}

// Deps is everything a controller talks to.
type Deps struct {
	Submitter StepSubmitter
	Logger    *zap.Logger
	Observer  Observer
	// Timeout bounds each backend call; DefaultSubmitTimeout when zero.
	Timeout time.Duration
}

// Config describes the wizard to open. Step is the step requested by the
// URL; an unreachable step falls back to the first one.
type Config struct {
	Mode        Mode
	Kind        OfferKind
	Draft       *domain.Offer
	Step        StepID
	LastVenueID string
}

// Controller owns one wizard and its draft. It is safe for concurrent use;
// backend calls run without holding the lock.
type Controller struct {
	deps Deps

	mu          sync.Mutex
	mode        Mode
	kind        OfferKind
	draft       *domain.Offer
	current     StepID
	status      Status
	forms       map[StepID]*FormState
	lastVenueID string
	// generation changes each time the current step changes, so results
	// of submits started before can be recognised.
	generation uint64
}

func NewController(deps Deps, cfg Config) (*Controller, error) {
	if deps.Submitter == nil {
		panic("wizard: nil submitter")
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if cfg.Mode != ModeCreation && cfg.Draft == nil {
		return nil, domain.ErrOfferRequired
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultSubmitTimeout
	}
	kind := cfg.Kind
	if cfg.Draft != nil || kind == "" {
		kind = ResolveKind(cfg.Draft, nil, kindOfferType(kind))
	}

	c := &Controller{
		deps:        deps,
		mode:        cfg.Mode,
		kind:        kind,
		draft:       cfg.Draft.Clone(),
		current:     StepInformations,
		status:      StatusAwaiting,
		forms:       map[StepID]*FormState{},
		lastVenueID: cfg.LastVenueID,
	}
	c.rebuildForms()

	if cfg.Step != "" && cfg.Step != StepInformations {
		steps := c.stepsLocked()
		if i, ok := findStep(steps, cfg.Step); ok && steps[i].IsActive {
			c.current = cfg.Step
		} else {
			c.deps.Logger.Debug("requested step unreachable, falling back",
				zap.String("step", string(cfg.Step)))
		}
	}
	return c, nil
}

func kindOfferType(k OfferKind) string {
	if k == KindEvent {
		return OfferTypePhysicalEvent
	}
	return ""
}

// View is a consistent copy of the controller state.
type View struct {
	Mode    Mode                 `json:"mode"`
	Kind    OfferKind            `json:"kind"`
	Status  Status               `json:"status"`
	Current StepID               `json:"currentStep"`
	Steps   []Step               `json:"steps"`
	Draft   *domain.Offer        `json:"draft,omitempty"`
	Forms   map[StepID]FormState `json:"forms"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	forms := make(map[StepID]FormState, len(c.forms))
	for id, f := range c.forms {
		fs := *f
		if len(f.Errors) > 0 {
			fs.Errors = make(offerform.FieldErrors, len(f.Errors))
			for k, v := range f.Errors {
				fs.Errors[k] = v
			}
		}
		forms[id] = fs
	}
	return View{
		Mode:    c.mode,
		Kind:    c.kind,
		Status:  c.status,
		Current: c.current,
		Steps:   c.stepsLocked(),
		Draft:   c.draft.Clone(),
		Forms:   forms,
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) CurrentStep() StepID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Draft returns a copy of the draft, nil before the first save.
func (c *Controller) Draft() *domain.Offer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

func (c *Controller) Steps() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepsLocked()
}

// SetValues replaces the form record of a step and marks it dirty. A step
// whose submit is in flight refuses new values with domain.ErrSubmitting.
func (c *Controller) SetValues(step StepID, values offerform.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusAwaiting {
		return domain.ErrWizardClosed
	}
	form, err := c.formLocked(step)
	if err != nil {
		return err
	}
	if values == nil || values.Kind() != form.Values.Kind() {
		return domain.ErrStepMismatch
	}
	if form.Submitting {
		return domain.ErrSubmitting
	}
	form.Values = values
	form.Errors = nil
	form.Dirty = true

	// Before the first save the chosen subcategory decides the branch.
	if info, ok := values.(offerform.Informations); ok && c.draft == nil && info.SubcategoryID != "" {
		kind := ResolveKind(nil, &domain.Subcategory{ID: info.SubcategoryID, IsEvent: info.IsEvent}, "")
		if kind != c.kind {
			c.kind = kind
			c.rebuildForms()
		}
	}
	return nil
}

// SubmitStep validates the form of the current step and, when valid, sends
// it to the backend with a single adapter call.
func (c *Controller) SubmitStep(ctx context.Context, step StepID) (SubmitResult, error) {
	c.mu.Lock()
	if c.status != StatusAwaiting {
		c.mu.Unlock()
		return SubmitResult{}, domain.ErrWizardClosed
	}
	form, err := c.formLocked(step)
	if err != nil {
		c.mu.Unlock()
		return SubmitResult{}, err
	}
	if step != c.current {
		c.mu.Unlock()
		return SubmitResult{}, domain.ErrNotCurrentStep
	}
	if form.Submitting {
		c.mu.Unlock()
		return c.finish(SubmitResult{Outcome: OutcomeIgnored, Step: step}), nil
	}
	if errs := form.Values.Validate(c.draft); len(errs) > 0 {
		form.Errors = errs
		c.mu.Unlock()
		return c.finish(SubmitResult{Outcome: OutcomeInvalid, Step: step, Errors: errs}), nil
	}
	form.Errors = nil
	form.Submitting = true
	generation := c.generation
	draft := c.draft.Clone()
	values := form.Values
	c.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, c.deps.Timeout)
	res := c.deps.Submitter.SubmitStep(callCtx, draft, values)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	form.Submitting = false
	if c.generation != generation || c.status != StatusAwaiting {
		c.deps.Logger.Info("late submit result discarded",
			zap.String("step", string(step)),
			zap.Bool("ok", res.IsOk))
		return c.finish(SubmitResult{Outcome: OutcomeDiscarded, Step: step}), nil
	}
	if !res.IsOk || res.Payload == nil {
		msg := res.Message
		if msg == "" {
			msg = adapter.SentDataErrorMessage
		}
		form.Errors = offerform.FieldErrors(res.FieldErrors)
		return c.finish(SubmitResult{Outcome: OutcomeFailed, Step: step, Message: msg, Errors: form.Errors}), nil
	}

	c.draft = res.Payload.Clone()
	c.kind = ResolveKind(c.draft, nil, "")
	form.Dirty = false
	c.rebuildForms()

	steps := c.stepsLocked()
	if c.isLastActionable(steps, step) {
		c.status = StatusConfirmed
		if _, ok := findStep(steps, StepConfirmation); ok {
			c.current = StepConfirmation
		}
		c.generation++
		c.deps.Logger.Info("wizard confirmed", zap.String("offer_id", c.draft.ID), zap.String("mode", string(c.mode)))
		if c.deps.Observer != nil {
			c.deps.Observer.WizardFinished(StatusConfirmed)
		}
		return c.finish(SubmitResult{Outcome: OutcomeConfirmed, Step: step, Message: res.Message}), nil
	}

	i, _ := findStep(steps, step)
	if i+1 < len(steps) && steps[i+1].IsActive {
		c.current = steps[i+1].ID
		c.generation++
		return c.finish(SubmitResult{Outcome: OutcomeAdvanced, Step: step, Message: res.Message}), nil
	}
	return c.finish(SubmitResult{Outcome: OutcomeSaved, Step: step, Message: res.Message}), nil
}

// NavigateTo moves to an active step. Moving to an inactive step does
// nothing and reports false.
func (c *Controller) NavigateTo(step StepID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusAwaiting {
		return false, domain.ErrWizardClosed
	}
	if !KnownStep(step) {
		return false, domain.ErrUnknownStep
	}
	steps := c.stepsLocked()
	i, ok := findStep(steps, step)
	if !ok || !steps[i].IsActive {
		return false, nil
	}
	if step != c.current {
		c.current = step
		c.generation++
	}
	return true, nil
}

// LeaveWizard decides whether navigating to nextPath needs confirmation.
func (c *Controller) LeaveWizard(nextPath string) NavigationGuardDecision {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := leaveInput{
		mode:     c.mode,
		closed:   c.status != StatusAwaiting,
		nextPath: nextPath,
	}
	if c.draft != nil {
		in.offerID = c.draft.ID
	}
	for _, f := range c.forms {
		if f.Dirty {
			in.dirty = true
			break
		}
	}
	return decideLeave(in)
}

// ConfirmLeave drops the draft and closes the wizard once the user agreed
// to lose unsaved changes. Results still in flight are discarded.
func (c *Controller) ConfirmLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusAwaiting {
		return
	}
	c.status = StatusExited
	c.draft = nil
	c.forms = map[StepID]*FormState{}
	c.generation++
	if c.deps.Observer != nil {
		c.deps.Observer.WizardFinished(StatusExited)
	}
}

func (c *Controller) finish(r SubmitResult) SubmitResult {
	if c.deps.Observer != nil {
		c.deps.Observer.StepSubmitted(r.Step, r.Outcome)
	}
	return r
}

func (c *Controller) stepsLocked() []Step {
	return ComputeSteps(c.draft, c.kind, c.mode)
}

func (c *Controller) formLocked(step StepID) (*FormState, error) {
	if !KnownStep(step) {
		return nil, domain.ErrUnknownStep
	}
	form, ok := c.forms[step]
	if !ok {
		return nil, domain.ErrNoForm
	}
	return form, nil
}

// isLastActionable: the summary publishes in creation and draft modes; in
// edition the last step saves and closes.
func (c *Controller) isLastActionable(steps []Step, step StepID) bool {
	if !c.mode.IsEdition() {
		return step == StepSummary
	}
	return len(steps) > 0 && steps[len(steps)-1].ID == step
}

// rebuildForms aligns the forms with the steps of the current branch.
// Dirty forms keep their values.
func (c *Controller) rebuildForms() {
	wanted := map[StepID]bool{}
	for _, s := range c.stepsLocked() {
		fk, ok := FormKind(s.ID, c.kind)
		if !ok {
			continue
		}
		wanted[s.ID] = true
		f, exists := c.forms[s.ID]
		if exists && f.Dirty && f.Values.Kind() == fk {
			continue
		}
		if exists && f.Submitting {
			f.Values = BuildInitialValues(fk, c.draft, c.lastVenueID)
			continue
		}
		c.forms[s.ID] = &FormState{Values: BuildInitialValues(fk, c.draft, c.lastVenueID)}
	}
	for id := range c.forms {
		if !wanted[id] {
			delete(c.forms, id)
		}
	}
}
