// Package situation infers a human-meaningful reading of a vehicle's
// position relative to its stops. Classification is a pure function over one
// vehicle record; it never touches the network and is safe to call on every
// render.
package situation

import (
	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/utils"
)

// A vehicle within this many seconds of its closest stop is considered to be
// at the stop.
const atStopThresholdSeconds = 30

// StopNameResolver resolves a stop id to a display name. It may return ""
// when the stop is unknown.
type StopNameResolver func(stopID string) string

// Classify derives the situation for one vehicle. The first matching rule
// wins:
//
//  1. Next and closest stop both known with offsets: same stop means the
//     vehicle is approaching it; different stops mean it is at the closest
//     stop with the next stop still ahead. High confidence either way.
//  2. Next stop with an offset: approaching, medium confidence.
//  3. Next stop without an offset: approaching with no ETA.
//  4. Closest stop only: at the stop when inside the threshold, otherwise
//     between stops. Inferred, medium confidence.
//  5. Nothing usable: unknown, low confidence.
func Classify(vehicle models.VehicleLocation, resolve StopNameResolver) models.VehicleSituation {
	result := models.VehicleSituation{
		Situation:  models.SituationUnknown,
		Confidence: models.ConfidenceLow,
		DataSource: models.DataSourceSchedule,
		IsRealTime: vehicle.Predicted,
	}
	if vehicle.Predicted {
		result.DataSource = models.DataSourceRealTime
	}

	switch {
	case vehicle.NextStopID != "" && vehicle.ClosestStopID != "" &&
		vehicle.NextStopTimeOffset != nil && vehicle.ClosestStopTimeOffset != nil:
		result.Confidence = models.ConfidenceHigh
		if vehicle.NextStopID == vehicle.ClosestStopID {
			result.Situation = models.SituationApproaching
			result.NextStopID = vehicle.NextStopID
			result.NextStopName = resolveStopName(resolve, vehicle.NextStopID)
			result.NextStopTimeOffset = copyOffset(vehicle.NextStopTimeOffset)
		} else {
			result.Situation = models.SituationAtStop
			result.CurrentStopID = vehicle.ClosestStopID
			result.CurrentStopName = resolveStopName(resolve, vehicle.ClosestStopID)
			result.CurrentStopTimeOffset = copyOffset(vehicle.ClosestStopTimeOffset)
			result.NextStopID = vehicle.NextStopID
			result.NextStopName = resolveStopName(resolve, vehicle.NextStopID)
			result.NextStopTimeOffset = copyOffset(vehicle.NextStopTimeOffset)
		}

	case vehicle.NextStopID != "" && vehicle.NextStopTimeOffset != nil:
		result.Situation = models.SituationApproaching
		result.Confidence = models.ConfidenceMedium
		result.NextStopID = vehicle.NextStopID
		result.NextStopName = resolveStopName(resolve, vehicle.NextStopID)
		result.NextStopTimeOffset = copyOffset(vehicle.NextStopTimeOffset)

	case vehicle.NextStopID != "":
		// No ETA, but the destination is still worth displaying.
		result.Situation = models.SituationApproaching
		result.Confidence = models.ConfidenceMedium
		result.NextStopID = vehicle.NextStopID
		result.NextStopName = resolveStopName(resolve, vehicle.NextStopID)

	case vehicle.ClosestStopID != "":
		result.Confidence = models.ConfidenceMedium
		if !vehicle.Predicted {
			result.DataSource = models.DataSourceInferred
		}
		result.CurrentStopID = vehicle.ClosestStopID
		result.CurrentStopName = resolveStopName(resolve, vehicle.ClosestStopID)
		result.CurrentStopTimeOffset = copyOffset(vehicle.ClosestStopTimeOffset)

		offset := 0
		if vehicle.ClosestStopTimeOffset != nil {
			offset = *vehicle.ClosestStopTimeOffset
		}
		if abs(offset) < atStopThresholdSeconds {
			result.Situation = models.SituationAtStop
		} else {
			result.Situation = models.SituationBetweenStops
		}
	}

	return result
}

func resolveStopName(resolve StopNameResolver, stopID string) string {
	if resolve != nil {
		if name := resolve(stopID); name != "" {
			return name
		}
	}
	return "Stop " + utils.BareCodeID(stopID)
}

func copyOffset(offset *int) *int {
	if offset == nil {
		return nil
	}
	v := *offset
	return &v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
