package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBatch is matched by every batch validation failure.
	ErrInvalidBatch = errors.New("invalid batch")

	// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCorruptEntry is returned when a cached body is not a usable snapshot.
	ErrCorruptEntry = errors.New("cache: corrupt entry")

	// ErrInternal reports an orchestration defect; no partial result exists.
	ErrInternal = errors.New("internal resolver error")

	ErrNotFound = errors.New("location not found")
	ErrUpstream = errors.New("upstream error")
	ErrNetwork  = errors.New("network error")
)

// InvalidBatchError rejects a whole request before any I/O.
type InvalidBatchError struct {
	Reason string
}

func (e *InvalidBatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidBatch, e.Reason)
}

func (e *InvalidBatchError) Is(target error) bool {
	return target == ErrInvalidBatch
}

// FetchErrorKind classifies upstream failures.
type FetchErrorKind uint8

const (
	FetchNotFound FetchErrorKind = iota + 1
	FetchUpstream
	FetchNetwork
)

// FetchError is the typed failure produced by a Provider. Message is what the
// caller sees in the failure record.
type FetchError struct {
	Kind     FetchErrorKind
	Location string
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case FetchNotFound:
		return target == ErrNotFound
	case FetchUpstream:
		return target == ErrUpstream
	case FetchNetwork:
		return target == ErrNetwork
	}
	return false
}

func NotFoundError(location string) *FetchError {
	return &FetchError{
		Kind:     FetchNotFound,
		Location: location,
		Message:  fmt.Sprintf("Location not found or invalid: %s", location),
	}
}

func StatusError(location string, status int) *FetchError {
	return &FetchError{
		Kind:     FetchUpstream,
		Location: location,
		Message:  fmt.Sprintf("API error for %s: Status %d", location, status),
	}
}

func NoConditionsError(location string) *FetchError {
	return &FetchError{
		Kind:     FetchUpstream,
		Location: location,
		Message:  fmt.Sprintf("No current weather conditions found for %s", location),
	}
}

func MalformedPayloadError(location string, err error) *FetchError {
	return &FetchError{
		Kind:     FetchUpstream,
		Location: location,
		Message:  fmt.Sprintf("API error for %s: malformed response", location),
		Err:      err,
	}
}

func NetworkError(location string, err error) *FetchError {
	return &FetchError{
		Kind:     FetchNetwork,
		Location: location,
		Message:  fmt.Sprintf("Failed to fetch weather data for %s from external API", location),
		Err:      err,
	}
}
