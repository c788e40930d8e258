package offerform

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cimillas/pro-portal/services/api/internal/domain"
)

const maxNameLength = 90

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	offerURLPattern = regexp.MustCompile(`(?i)^(http://www\.|https://www\.|http://|https://)(([a-z0-9]+([\-.@_a-z0-9]+)*\.[a-z]{2,5})|((25[0-5]|(2[0-4]|1\d|[1-9]|)\d)\.){3}(25[0-5]|(2[0-4]|1\d|[1-9]|)\d))(:[0-9]{1,5})?\S*?$`)
)

// Informations is the first step: what the offer is and where it happens.
type Informations struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	OffererID         string `json:"offererId"`
	VenueID           string `json:"venueId"`
	SubcategoryID     string `json:"subcategoryId"`
	IsEvent           bool   `json:"isEvent"`
	IsDuo             bool   `json:"isDuo"`
	URL               string `json:"url"`
	BookingEmail      string `json:"bookingEmail"`
	WithdrawalDetails string `json:"withdrawalDetails"`
	DurationMinutes   *int   `json:"durationMinutes"`
}

func (Informations) Kind() Kind { return KindInformations }

func (v Informations) Validate(*domain.Offer) FieldErrors {
	errs := FieldErrors{}
	name := strings.TrimSpace(v.Name)
	switch {
	case name == "":
		errs.add("name", "Veuillez renseigner un titre")
	case utf8.RuneCountInString(name) > maxNameLength:
		errs.add("name", "Le titre de l’offre doit faire au maximum 90 caractères")
	}
	if v.SubcategoryID == "" {
		errs.add("subcategoryId", "Veuillez sélectionner une sous-catégorie")
	}
	if v.VenueID == "" {
		errs.add("venueId", "Veuillez sélectionner un lieu")
	}
	if v.BookingEmail != "" && !emailPattern.MatchString(v.BookingEmail) {
		errs.add("bookingEmail", "Veuillez renseigner un email valide")
	}
	if v.URL != "" && !offerURLPattern.MatchString(v.URL) {
		errs.add("url", "Veuillez renseigner une URL valide. Ex : https://exemple.com")
	}
	if v.DurationMinutes != nil && *v.DurationMinutes < 0 {
		errs.add("durationMinutes", "La durée doit être positive")
	}
	return errs.orNil()
}

// InitialInformations seeds the form from the draft. Without a draft the
// venue defaults to the one the user picked last.
func InitialInformations(draft *domain.Offer, lastVenueID string) Informations {
	if draft == nil {
		return Informations{VenueID: lastVenueID}
	}
	v := Informations{
		Name:              draft.Name,
		Description:       draft.Description,
		OffererID:         draft.OffererID,
		VenueID:           draft.VenueID,
		SubcategoryID:     draft.SubcategoryID,
		IsEvent:           draft.IsEvent,
		IsDuo:             draft.IsDuo,
		URL:               draft.URL,
		BookingEmail:      draft.BookingEmail,
		WithdrawalDetails: draft.WithdrawalDetails,
	}
	if draft.DurationMinutes != nil {
		d := *draft.DurationMinutes
		v.DurationMinutes = &d
	}
	return v
}
