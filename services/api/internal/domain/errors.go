package domain

import "errors"

var (
	ErrWizardNotFound   = errors.New("wizard not found")
	ErrWizardExists     = errors.New("wizard already exists")
	ErrUnknownStep      = errors.New("unknown step")
	ErrStepMismatch     = errors.New("form values do not belong to this step")
	ErrNotCurrentStep   = errors.New("step is not the current step")
	ErrNoForm           = errors.New("step has no form")
	ErrForbidden        = errors.New("wizard belongs to another user")
	ErrWizardClosed     = errors.New("wizard closed")
	ErrSubmitting       = errors.New("step is being submitted")
	ErrOfferRequired    = errors.New("offer id required")
	ErrInvalidMode      = errors.New("invalid wizard mode")
	ErrInvalidID        = errors.New("invalid id")
	ErrUserRequired     = errors.New("user id required")
	ErrVenueRequired    = errors.New("venue id required")
	ErrInvalidCrop      = errors.New("invalid crop parameters")
	ErrImageRequired    = errors.New("image required")
	ErrImageNotFound    = errors.New("image not found")
	ErrOfferUnavailable = errors.New("offer could not be loaded")
)
