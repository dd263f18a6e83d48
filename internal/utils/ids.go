package utils

import (
	"fmt"
	"strings"

	"github.com/jamespfennell/gtfs"

	"transitview.onebusaway.org/internal/models"
)

// ExtractCodeID extracts the `code_id` from a string in the format `{agency_id}_{code_id}`.
func ExtractCodeID(combinedID string) (string, error) {
	parts := strings.SplitN(combinedID, "_", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid format: %s", combinedID)
	}
	return parts[1], nil
}

// ExtractAgencyIDAndCodeID extracts both `agency_id` and `code_id` from a string in the format `{agency_id}_{code_id}`.
func ExtractAgencyIDAndCodeID(combinedID string) (string, string, error) {
	parts := strings.SplitN(combinedID, "_", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid format: %s", combinedID)
	}
	return parts[0], parts[1], nil
}

// FormCombinedID forms a combined ID in the format `{agency_id}_{code_id}` using the given `agencyID` and `codeID`.
func FormCombinedID(agencyID, codeID string) string {
	if codeID == "" || agencyID == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s", agencyID, codeID)
}

// BareCodeID strips the agency qualifier when present, so callers may pass
// either `{agency_id}_{code_id}` or a bare provider id.
func BareCodeID(id string) string {
	if code, err := ExtractCodeID(id); err == nil {
		return code
	}
	return id
}

// MapWheelchairBoarding converts GTFS wheelchair boarding values to the view-model format
func MapWheelchairBoarding(wheelchairBoarding gtfs.WheelchairBoarding) string {
	switch wheelchairBoarding {
	case gtfs.WheelchairBoarding_Possible:
		return "ACCESSIBLE"
	case gtfs.WheelchairBoarding_NotPossible:
		return "NOT_ACCESSIBLE"
	default:
		return models.UnknownValue
	}
}
