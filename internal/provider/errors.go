package provider

import "errors"

// Error taxonomy for provider results. Callers distinguish "the provider is
// unreachable" from "the provider answered and the thing does not exist" from
// "the payload could not be decoded". A discarded late result is not an
// error and has no sentinel.
var (
	ErrRouteNotFound       = errors.New("route not found")
	ErrStopNotFound        = errors.New("stop not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrParseFailure        = errors.New("malformed schedule payload")
)
