package submission

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("wallet is not connected")

	// ErrUnsupportedFeature is returned for submissions that reference an
	// external token URI. That path has no registration flow yet.
	ErrUnsupportedFeature = errors.New("external token uri submissions are not supported yet")

	ErrSubmissionInFlight = errors.New("a submission is already in flight")
)

// ValidationError names the first form field that broke a rule.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Rule)
}

type UploadError struct {
	Cause error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Cause)
}

func (e *UploadError) Unwrap() error { return e.Cause }

// RegistrationError is a failed registration. Assets uploaded earlier in the
// same submission stay in storage.
type RegistrationError struct {
	Cause error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed: %v", e.Cause)
}

func (e *RegistrationError) Unwrap() error { return e.Cause }
