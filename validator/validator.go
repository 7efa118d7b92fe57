// Package validator provides input validation functions
package validator

import (
	"regexp"
	"strconv"

	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

var (
	subredditPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_]{1,20}$`)
	taskNamePattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Validator provides validation methods
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateInterval validates the change interval in seconds
func (v *Validator) ValidateInterval(value int) error {
	if value <= 0 {
		return errors.NewValidationError("interval", strconv.Itoa(value), "must be a positive number of seconds")
	}
	return nil
}

// ValidateSubreddit validates a subreddit name
func (v *Validator) ValidateSubreddit(value string) error {
	if !subredditPattern.MatchString(value) {
		return errors.NewValidationError("subreddit", value, "must be 2-21 letters, digits or underscores")
	}
	return nil
}

// ValidateResolution validates a minimum resolution
func (v *Validator) ValidateResolution(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.NewValidationError("min_resolution", strconv.Itoa(width)+"x"+strconv.Itoa(height), "width and height must be positive")
	}
	return nil
}

// ValidateImageLimit validates the maximum pool size
func (v *Validator) ValidateImageLimit(value int) error {
	if value <= 0 {
		return errors.NewValidationError("image_limit", strconv.Itoa(value), "must be positive")
	}
	return nil
}

// ValidateTaskName validates the scheduler task name
func (v *Validator) ValidateTaskName(value string) error {
	if !taskNamePattern.MatchString(value) {
		return errors.NewValidationError("task_name", value, "must start with a letter or digit and contain only letters, digits, '.', '_' or '-'")
	}
	return nil
}
