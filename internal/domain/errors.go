package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure that crosses a component boundary.
// Adapters and the extraction backend never let raw library errors escape;
// they are classified here before reaching the orchestrator.
type ErrorKind string

const (
	KindNoResults           ErrorKind = "no_results"
	KindPlatformUnavailable ErrorKind = "platform_unavailable"
	KindRateLimited         ErrorKind = "rate_limited"
	KindExtractionFailed    ErrorKind = "extraction_failed"
	KindDownloadFailed      ErrorKind = "download_failed"
	KindTranscodeFailed     ErrorKind = "transcode_failed"
)

// ErrEmptyPlatformOrder is returned when a resolver is built with no platforms.
var ErrEmptyPlatformOrder = errors.New("platform order is empty")

// UnknownPlatformError reports a platform tag outside the known set.
type UnknownPlatformError struct {
	Platform Platform
}

func (e *UnknownPlatformError) Error() string {
	return fmt.Sprintf("unknown platform: %s", e.Platform)
}

// DuplicatePlatformError reports a platform listed twice in a PlatformOrder.
type DuplicatePlatformError struct {
	Platform Platform
}

func (e *DuplicatePlatformError) Error() string {
	return fmt.Sprintf("platform listed twice in order: %s", e.Platform)
}

// PlatformError is a classified failure attributed to one platform.
type PlatformError struct {
	Platform Platform
	Kind     ErrorKind
	Err      error // underlying cause, may be nil for NoResults
}

func (e *PlatformError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Platform, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Platform, e.Kind, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewPlatformError builds a classified platform failure.
func NewPlatformError(platform Platform, kind ErrorKind, err error) *PlatformError {
	return &PlatformError{Platform: platform, Kind: kind, Err: err}
}

// ClassifyAdapterError maps any error produced by an adapter call to a
// classified PlatformError. Already-classified errors pass through with
// their platform corrected if unset; everything else, including timeouts and
// cancelled contexts, counts as the platform being unavailable so a single
// misbehaving adapter can never abort a resolution run.
func ClassifyAdapterError(platform Platform, err error) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) {
		if pe.Platform == "" {
			pe.Platform = platform
		}
		return pe
	}
	return NewPlatformError(platform, KindPlatformUnavailable, err)
}

// WrapKind wraps err under the given kind unless the chain already carries
// a classification, which then wins.
func WrapKind(platform Platform, kind ErrorKind, err error) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	return NewPlatformError(platform, kind, err)
}

// ExhaustedError is the aggregate failure returned when every platform in
// the order was tried and none produced a candidate. It carries one
// classified failure per platform, in probe order, for diagnostics.
type ExhaustedError struct {
	Failures []*PlatformError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s=%s", f.Platform, f.Kind))
	}
	return fmt.Sprintf("all platforms exhausted: %s", strings.Join(parts, ", "))
}

// FailureFor returns the recorded failure for a platform, or nil.
func (e *ExhaustedError) FailureFor(platform Platform) *PlatformError {
	for _, f := range e.Failures {
		if f.Platform == platform {
			return f
		}
	}
	return nil
}

// IsExhausted reports whether err is an all-platforms-exhausted failure.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// KindOf extracts the error kind from a classified error chain, or "" when
// the error carries no classification.
func KindOf(err error) ErrorKind {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
