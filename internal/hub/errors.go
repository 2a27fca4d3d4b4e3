package hub

import "fmt"

// ValidationError reports bad caller input. It is the only error SearchImages
// returns; everything provider-side is absorbed into ProviderResult.Error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConfigurationError reports a missing or rejected provider credential,
// either at client construction or as an upstream 401/403.
type ConfigurationError struct {
	Provider Provider
	Message  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// RateLimitError reports upstream throttling (HTTP 429). No retry is
// attempted here; retry policy belongs to the caller.
type RateLimitError struct {
	Provider Provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded", e.Provider.DisplayName())
}

// ProviderError wraps any other transport or HTTP failure from one provider.
type ProviderError struct {
	Provider Provider
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("failed to fetch images from %s: %v", e.Provider.DisplayName(), e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
