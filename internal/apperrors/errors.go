package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the compliance core. Callers branch on these with
// errors.Is instead of inspecting message strings.
var (
	// ErrValidation marks malformed human input. It is never silently corrected.
	ErrValidation = errors.New("validation error")

	// ErrDuplicate marks an attempt to create a rule whose text already exists
	// as an active rule (exact match), or an unconfirmed semantic near-duplicate.
	ErrDuplicate = errors.New("duplicate rule")

	// ErrNotFound marks a reference to a nonexistent rule or submission.
	ErrNotFound = errors.New("not found")

	// ErrCollaborator marks a failure of an external collaborator (generation,
	// advisory review, embedding backend). Whether it is fatal depends on the
	// collaborator: generation failures are, advisory/index failures are not.
	ErrCollaborator = errors.New("collaborator failure")
)

func Validationf(format string, args ...interface{}) error {
	return wrapf(ErrValidation, format, args...)
}

func Duplicatef(format string, args ...interface{}) error {
	return wrapf(ErrDuplicate, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return wrapf(ErrNotFound, format, args...)
}

func Collaboratorf(format string, args ...interface{}) error {
	return wrapf(ErrCollaborator, format, args...)
}

func wrapf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
