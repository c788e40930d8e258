package domain

import "time"

// WizardSession is the stored state of one offer wizard, so that it can be
// resumed by id from any instance.
type WizardSession struct {
	ID          string
	UserID      string
	Mode        string
	Kind        string
	Status      string
	CurrentStep string
	Draft       *Offer
	LastVenueID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
