package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors - raised before any sampling begins
	ErrConfiguration     = errors.New("invalid configuration")
	ErrUnknownStreamRole = fmt.Errorf("%w: unknown random stream role", ErrConfiguration)
	ErrUnknownSinkFormat = fmt.Errorf("%w: unknown sink format", ErrConfiguration)

	// Generation invariant violations - fatal, never retried
	ErrDegenerateDistribution = errors.New("degenerate trait distribution")
	ErrMissingExposureWindow  = errors.New("missing exposure window")
)

// Error constructors with context

// NewConfigurationError reports an invalid parameter together with the
// offending value so the caller can correct the configuration.
func NewConfigurationError(param string, value any, reason string) error {
	return fmt.Errorf("%w: %s=%v: %s", ErrConfiguration, param, value, reason)
}

// NewDegenerateDistributionError reports a trait vector whose population
// standard deviation is too small to standardize.
func NewDegenerateDistributionError(trait string, std float64) error {
	return fmt.Errorf("%w: trait %s has population std %g", ErrDegenerateDistribution, trait, std)
}

// NewMissingExposureWindowError reports a user with fewer completed weeks
// than the exposure window requires.
func NewMissingExposureWindowError(userID int, have, want int) error {
	return fmt.Errorf("%w: user %d has %d of %d exposure weeks", ErrMissingExposureWindow, userID, have, want)
}

// NewValidationError reports a failed invariant on an assembled artifact.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsDegenerateDistribution(err error) bool {
	return errors.Is(err, ErrDegenerateDistribution)
}

func IsMissingExposureWindow(err error) bool {
	return errors.Is(err, ErrMissingExposureWindow)
}
