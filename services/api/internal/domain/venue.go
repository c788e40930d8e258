package domain

// Venue is a place managed by an offerer.
type Venue struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PublicName      string `json:"publicName"`
	DepartementCode string `json:"departementCode"`
	IsVirtual       bool   `json:"isVirtual"`
	OffererID       string `json:"offererId"`
}

// Offerer is the legal structure owning venues.
type Offerer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Siren string `json:"siren"`
}
