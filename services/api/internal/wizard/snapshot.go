package wizard

import (
	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

// Snapshot is the persisted part of a controller. Forms are not kept: they
// are rebuilt from the draft on restore.
type Snapshot struct {
	Mode        Mode
	Kind        OfferKind
	Status      Status
	CurrentStep StepID
	Draft       *domain.Offer
	LastVenueID string
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Mode:        c.mode,
		Kind:        c.kind,
		Status:      c.status,
		CurrentStep: c.current,
		Draft:       c.draft.Clone(),
		LastVenueID: c.lastVenueID,
	}
}

// Restore reopens a wizard from a snapshot. Step availability is derived
// again from the draft, as for a deep link.
func Restore(deps Deps, snap Snapshot) (*Controller, error) {
	if snap.Status == StatusExited {
		return nil, domain.ErrWizardClosed
	}
	c, err := NewController(deps, Config{
		Mode:        snap.Mode,
		Kind:        snap.Kind,
		Draft:       snap.Draft,
		Step:        snap.CurrentStep,
		LastVenueID: snap.LastVenueID,
	})
	if err != nil {
		return nil, err
	}
	if snap.Status == StatusConfirmed {
		c.status = StatusConfirmed
		c.current = snap.CurrentStep
	}
	return c, nil
}
