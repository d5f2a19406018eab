package errors

import "fmt"

// HTTPError is a non-2xx response from a model provider.
type HTTPError struct {
	StatusCode int
	Message    string
	Provider   string
}

// Transient reports whether the provider may answer differently later:
// request timeouts, rate limits and server errors.
func (e *HTTPError) Transient() bool {
	return e.StatusCode == 408 || e.StatusCode == 429 || e.StatusCode >= 500
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// JSONParseError indicates a model answer that did not contain the
// expected JSON document.
type JSONParseError struct {
	// Input is the raw model output, possibly truncated.
	Input   string
	Message string
}

// Error implements the error interface.
func (e *JSONParseError) Error() string {
	return fmt.Sprintf("JSON parse error: %s", e.Message)
}

// EmptyResponseError is a model answer with no text, or with no choices.
type EmptyResponseError struct {
	Operation string
}

func (e *EmptyResponseError) Error() string {
	return "empty response for " + e.Operation
}

// TimeoutError is a single model call that ran past its own limit while the
// caller was still waiting.
type TimeoutError struct {
	Operation string
	Duration  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: model call exceeded %s", e.Operation, e.Duration)
}
