// Package wizard drives the individual offer wizard: which steps exist,
// which ones the user may reach, the form edited on each of them and the
// transitions between them.
package wizard

import (
	"net/url"
	"strings"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

type StepID string

const (
	StepInformations StepID = "informations"
	StepTarifs       StepID = "tarifs"
	StepStocks       StepID = "stocks"
	StepSummary      StepID = "recapitulatif"
	StepConfirmation StepID = "confirmation"
)

// Mode is the wizard flavour, also the second-to-last segment of step URLs.
type Mode string

const (
	ModeCreation Mode = "creation"
	ModeDraft    Mode = "brouillon"
	ModeEdition  Mode = "edition"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCreation, ModeDraft, ModeEdition:
		return m, nil
	default:
		return "", domain.ErrInvalidMode
	}
}

// IsEdition reports whether the offer already went through the wizard once.
func (m Mode) IsEdition() bool { return m == ModeEdition }

// OfferKind selects the event or thing branch of the wizard.
type OfferKind string

const (
	KindThing OfferKind = "thing"
	KindEvent OfferKind = "event"
)

// Values of the offer-type query parameter of the creation URL.
const (
	OfferTypePhysicalGood  = "PHYSICAL_GOOD"
	OfferTypeVirtualGood   = "VIRTUAL_GOOD"
	OfferTypePhysicalEvent = "PHYSICAL_EVENT"
	OfferTypeVirtualEvent  = "VIRTUAL_EVENT"
)

// ResolveKind picks the branch from the draft, then the selected
// subcategory, then the offer-type query value. Anything else is a thing.
func ResolveKind(draft *domain.Offer, sub *domain.Subcategory, offerType string) OfferKind {
	switch {
	case draft != nil:
		return kindOf(draft.IsEvent)
	case sub != nil && sub.ID != "":
		return kindOf(sub.IsEvent)
	}
	switch offerType {
	case OfferTypePhysicalEvent, OfferTypeVirtualEvent:
		return KindEvent
	default:
		return KindThing
	}
}

func kindOf(isEvent bool) OfferKind {
	if isEvent {
		return KindEvent
	}
	return KindThing
}

// Step is one entry of the breadcrumb. Path is empty when the step cannot
// be reached.
type Step struct {
	ID       StepID `json:"id"`
	Label    string `json:"label"`
	Path     string `json:"path,omitempty"`
	IsActive bool   `json:"isActive"`
}

type stepPattern struct {
	id           StepID
	label        string
	eventLabel   string
	eventOnly    bool
	creationOnly bool
	isActive     func(draft *domain.Offer, kind OfferKind) bool
}

var registry = []stepPattern{
	{
		id:       StepInformations,
		label:    "Détails de l’offre",
		isActive: func(*domain.Offer, OfferKind) bool { return true },
	},
	{
		id:        StepTarifs,
		label:     "Tarifs",
		eventOnly: true,
		isActive:  func(d *domain.Offer, _ OfferKind) bool { return d != nil },
	},
	{
		id:         StepStocks,
		label:      "Stock & Prix",
		eventLabel: "Dates & Capacités",
		isActive: func(d *domain.Offer, k OfferKind) bool {
			if k == KindEvent {
				return d.HasPriceCategories()
			}
			return d != nil
		},
	},
	{
		id:           StepSummary,
		label:        "Récapitulatif",
		creationOnly: true,
		isActive:     func(d *domain.Offer, _ OfferKind) bool { return d.HasStocks() },
	},
	{
		id:           StepConfirmation,
		label:        "Confirmation",
		creationOnly: true,
		isActive:     func(*domain.Offer, OfferKind) bool { return false },
	},
}

// ComputeSteps lists the steps of a wizard for the given draft, which may
// be nil before the first save. It is pure and never fails. A step is only
// active when the step listed before it is.
func ComputeSteps(draft *domain.Offer, kind OfferKind, mode Mode) []Step {
	offerID := ""
	if draft != nil {
		offerID = draft.ID
	}
	steps := make([]Step, 0, len(registry))
	for _, p := range registry {
		if p.eventOnly && kind != KindEvent {
			continue
		}
		if p.creationOnly && mode.IsEdition() {
			continue
		}
		s := Step{ID: p.id, Label: p.label}
		if kind == KindEvent && p.eventLabel != "" {
			s.Label = p.eventLabel
		}
		s.IsActive = p.isActive(draft, kind) && (len(steps) == 0 || steps[len(steps)-1].IsActive)
		if s.IsActive {
			s.Path = StepPath(offerID, mode, p.id)
		}
		steps = append(steps, s)
	}
	return steps
}

// KnownStep reports whether id names a registered step.
func KnownStep(id StepID) bool {
	for _, p := range registry {
		if p.id == id {
			return true
		}
	}
	return false
}

func findStep(steps []Step, id StepID) (int, bool) {
	for i, s := range steps {
		if s.ID == id {
			return i, true
		}
	}
	return -1, false
}

const pathPrefix = "/offre/individuelle"

// StepPath builds the URL of a step. Without an offer only the creation
// URL exists.
func StepPath(offerID string, mode Mode, step StepID) string {
	if offerID == "" {
		return pathPrefix + "/" + string(ModeCreation) + "/" + string(step)
	}
	return pathPrefix + "/" + url.PathEscape(offerID) + "/" + string(mode) + "/" + string(step)
}

// StepLocation is a parsed step URL. OfferID is empty for the creation URL
// of an offer not saved yet.
type StepLocation struct {
	OfferID string
	Mode    Mode
	Step    StepID
}

// ParseStepPath recognises wizard step URLs; query strings are ignored.
func ParseStepPath(path string) (StepLocation, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	rest, ok := strings.CutPrefix(path, pathPrefix+"/")
	if !ok {
		return StepLocation{}, false
	}
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	var loc StepLocation
	switch len(parts) {
	case 2:
		if Mode(parts[0]) != ModeCreation {
			return StepLocation{}, false
		}
		loc = StepLocation{Mode: ModeCreation, Step: StepID(parts[1])}
	case 3:
		mode, err := ParseMode(parts[1])
		if err != nil || parts[0] == "" {
			return StepLocation{}, false
		}
		id, err := url.PathUnescape(parts[0])
		if err != nil {
			return StepLocation{}, false
		}
		loc = StepLocation{OfferID: id, Mode: mode, Step: StepID(parts[2])}
	default:
		return StepLocation{}, false
	}
	if !KnownStep(loc.Step) {
		return StepLocation{}, false
	}
	return loc, true
}
