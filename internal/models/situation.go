package models

type Situation string

const (
	SituationApproaching  Situation = "approaching"
	SituationAtStop       Situation = "at_stop"
	SituationBetweenStops Situation = "between_stops"
	SituationUnknown      Situation = "unknown"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type SituationDataSource string

const (
	DataSourceRealTime SituationDataSource = "real_time"
	DataSourceSchedule SituationDataSource = "schedule"
	DataSourceInferred SituationDataSource = "inferred"
)

// VehicleSituation is the classifier's reading of one vehicle's relationship
// to its next and closest stops. It is derived on every read and never
// persisted or written back onto the vehicle record.
type VehicleSituation struct {
	Situation             Situation           `json:"situation"`
	CurrentStopID         string              `json:"currentStopId,omitempty"`
	CurrentStopName       string              `json:"currentStopName,omitempty"`
	CurrentStopTimeOffset *int                `json:"currentStopTimeOffset,omitempty"`
	NextStopID            string              `json:"nextStopId,omitempty"`
	NextStopName          string              `json:"nextStopName,omitempty"`
	NextStopTimeOffset    *int                `json:"nextStopTimeOffset,omitempty"`
	Confidence            Confidence          `json:"confidence"`
	DataSource            SituationDataSource `json:"dataSource"`
	IsRealTime            bool                `json:"isRealTime"`
}
