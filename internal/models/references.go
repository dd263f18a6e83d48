package models

type AgencyReference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Timezone string `json:"timezone"`
	Lang     string `json:"lang"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

func NewAgencyReference(id, name, url, timezone, lang, phone, email string) AgencyReference {
	return AgencyReference{
		ID:       id,
		Name:     name,
		URL:      url,
		Timezone: timezone,
		Lang:     lang,
		Phone:    phone,
		Email:    email,
	}
}

// References carries the agency and route lookups that accompany a stop
// schedule payload.
type References struct {
	Agencies []AgencyReference `json:"agencies"`
	Routes   []RouteInfo       `json:"routes"`
}

// NewEmptyReferences creates a References with initialized empty slices.
func NewEmptyReferences() References {
	return References{
		Agencies: []AgencyReference{},
		Routes:   []RouteInfo{},
	}
}

// RouteByID resolves a route summary from the references block.
func (r References) RouteByID(id string) (RouteInfo, bool) {
	for _, route := range r.Routes {
		if route.ID == id {
			return route, true
		}
	}
	return RouteInfo{}, false
}
