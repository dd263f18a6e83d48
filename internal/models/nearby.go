package models

// NearbyPlace is one point of interest returned by the nearby enrichment.
type NearbyPlace struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// CategorySummary counts nearby places within one category, for the
// top-categories summary display.
type CategorySummary struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// NearbySummary is the nearby section's payload: raw places plus the top
// categories by descending size.
type NearbySummary struct {
	Places        []NearbyPlace     `json:"places"`
	TopCategories []CategorySummary `json:"topCategories"`
}

// DayHours is one weekday's opening window as produced by the opening-hours
// parser, carried opaquely.
type DayHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// HoursInfo is the hours/contact section's payload.
type HoursInfo struct {
	Weekly  []DayHours `json:"weekly,omitempty"`
	Raw     string     `json:"raw,omitempty"`
	Phone   string     `json:"phone,omitempty"`
	Website string     `json:"website,omitempty"`
}

type Photo struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution,omitempty"`
}
