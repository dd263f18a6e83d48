package models

// Common constants used across the engine
const (
	// UnknownValue is the fallback value when data is unavailable or lookup fails
	UnknownValue = "UNKNOWN"
)
