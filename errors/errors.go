// Package errors defines custom error types for wallpaper_changer
package errors

import (
	"errors"
	"fmt"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
)

// Application error types
var (
	ErrUnsupportedPlatform = errors.New("unsupported operating system")
	ErrFetchFailed         = errors.New("failed to fetch image")
	ErrNotDirectImage      = errors.New("not a direct image link")
	ErrNotImage            = errors.New("downloaded content is not an image")
	ErrPoolEmpty           = errors.New("no images available")
	ErrApplyFailed         = errors.New("failed to set wallpaper")
	ErrTriggerRegistration = errors.New("failed to register recurring trigger")
	ErrAPIRequest          = errors.New("API request failed")
	ErrInvalidResponse     = errors.New("invalid API response")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrFileOperation       = errors.New("file operation failed")
	ErrCommandFailed       = errors.New("command failed")
	ErrValidation          = errors.New("validation failed")
	ErrStateStore          = errors.New("state store operation failed")
)

// Re-exported so callers importing this package as "errors" keep the stdlib helpers.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrValidation
}

// APIError represents an API-related error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e APIError) Error() string {
	return fmt.Sprintf("API error at %s: status %d - %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e APIError) Unwrap() error {
	return ErrAPIRequest
}

// FetchError is the failed outcome of a single fetch attempt.
type FetchError struct {
	Subreddit string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("error downloading image from r/%s: %v", e.Subreddit, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// CommandError carries the stderr of a failed external command
type CommandError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// NewValidationError creates a new validation error
func NewValidationError(field, value, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewAPIError creates a new API error
func NewAPIError(endpoint string, statusCode int, message string) error {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewFetchError wraps the cause of a failed fetch attempt
func NewFetchError(subreddit string, err error) error {
	return &FetchError{Subreddit: subreddit, Err: err}
}

// ExitCode maps an error returned from a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return constants.ExitOK
	case errors.Is(err, ErrUnsupportedPlatform):
		return constants.ExitUnsupportedPlatform
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidConfig):
		return constants.ExitInvalidInput
	case errors.Is(err, ErrApplyFailed):
		return constants.ExitApplyFailure
	case errors.Is(err, ErrTriggerRegistration):
		return constants.ExitTriggerFailure
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrPoolEmpty):
		return constants.ExitFetchFailure
	default:
		return constants.ExitGeneric
	}
}
