// Package errors classifies failures of model calls and retries the
// transient ones.
//
// Every error reaching the generator is sorted into one of three
// categories:
//   - Transient: rate limits, timeouts, 5xx responses. Retried with backoff.
//   - Permanent: authentication, bad configuration, cancelled contexts.
//   - InvalidOutput: the model answered but the answer is unusable.
//
// Only transient errors are retried. Data-quality problems inside a
// well-formed answer are not errors at all; Repair handles them.
package errors

import (
	"errors"
	"fmt"
)

// Category says what the generator does with a failed model call.
type Category int

const (
	CategoryTransient Category = iota
	CategoryPermanent
	CategoryInvalidOutput
)

var categoryNames = [...]string{
	CategoryTransient:     "transient",
	CategoryPermanent:     "permanent",
	CategoryInvalidOutput: "invalid_output",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// MarshalText lets a Category appear by name in JSON bodies and log fields.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// CategorizedError is the final error of a retried model call.
type CategorizedError struct {
	Err      error
	Category Category

	// Attempts is the number of calls made before giving up.
	Attempts int

	// Context names the operation or the reason retrying stopped.
	Context string
}

func (e *CategorizedError) Error() string {
	msg := fmt.Sprintf("%s (category: %s, attempts: %d)", e.Err, e.Category, e.Attempts)
	if e.Context == "" {
		return msg
	}
	return e.Context + ": " + msg
}

func (e *CategorizedError) Unwrap() error { return e.Err }

func categorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{Err: err, Category: category, Context: context}
}

// Transient marks err as worth retrying.
func Transient(err error, context string) *CategorizedError {
	return categorized(err, CategoryTransient, context)
}

// Permanent marks err as final.
func Permanent(err error, context string) *CategorizedError {
	return categorized(err, CategoryPermanent, context)
}

// InvalidOutput marks an unusable model answer.
func InvalidOutput(err error, context string) *CategorizedError {
	return categorized(err, CategoryInvalidOutput, context)
}

// Categorize determines how an error should be handled.
// Unknown errors are permanent.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Transient() {
			return CategoryTransient
		}
		return CategoryPermanent
	}

	var jsonErr *JSONParseError
	if errors.As(err, &jsonErr) {
		return CategoryInvalidOutput
	}

	var emptyErr *EmptyResponseError
	if errors.As(err, &emptyErr) {
		return CategoryInvalidOutput
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return CategoryTransient
	}

	// Everything else, including the caller's own cancellation or deadline,
	// is final.
	return CategoryPermanent
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}

// IsInvalidOutput reports whether the model's answer was unusable.
func IsInvalidOutput(err error) bool {
	return Categorize(err) == CategoryInvalidOutput
}
