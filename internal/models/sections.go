package models

type SectionName string

const (
	SectionTransit SectionName = "transit"
	SectionHours   SectionName = "hours"
	SectionNearby  SectionName = "nearby"
	SectionPhotos  SectionName = "photos"
)

// SectionNames lists the four detail sections in tier order.
var SectionNames = []SectionName{SectionTransit, SectionHours, SectionNearby, SectionPhotos}

type SectionStatus string

const (
	SectionIdle    SectionStatus = "idle"
	SectionLoading SectionStatus = "loading"
	SectionSuccess SectionStatus = "success"
	SectionError   SectionStatus = "error"
)

// SectionState is the per-section status machine for the currently selected
// point of interest. Data is nil unless Status is SectionSuccess.
type SectionState struct {
	Status SectionStatus `json:"status"`
	Data   any           `json:"data,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// NewIdleSectionState returns the reset state a section takes on every
// selection change.
func NewIdleSectionState() SectionState {
	return SectionState{Status: SectionIdle}
}
