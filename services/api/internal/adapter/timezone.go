package adapter

import (
	"time"
	_ "time/tzdata"
)

const apiDatetimeLayout = "2006-01-02T15:04:05Z"

var departementTimezones = map[string]string{
	"971": "America/Guadeloupe",
	"972": "America/Martinique",
	"973": "America/Cayenne",
	"974": "Indian/Reunion",
	"975": "America/Miquelon",
	"976": "Indian/Mayotte",
	"977": "America/St_Barthelemy",
	"978": "America/Marigot",
	"986": "Pacific/Wallis",
	"987": "Pacific/Tahiti",
	"988": "Pacific/Noumea",
}

const metropolitanTimezone = "Europe/Paris"

// departementLocation returns the timezone of a French departement,
// metropolitan France being the default.
func departementLocation(code string) *time.Location {
	name, ok := departementTimezones[code]
	if !ok {
		name = metropolitanTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// endOfDay moves t to 23:59:59 of its calendar day in the departement.
func endOfDay(t time.Time, departementCode string) time.Time {
	loc := departementLocation(departementCode)
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, loc)
}

func endOfDayUTC(t time.Time, departementCode string) string {
	return formatUTC(endOfDay(t, departementCode))
}

func formatUTC(t time.Time) string {
	return t.UTC().Format(apiDatetimeLayout)
}

func parseAPIDatetime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, apiDatetimeLayout, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
