package blog

import "errors"

var (
	// ErrNotFound is returned by read paths where revealing existence is fine.
	ErrNotFound = errors.New("blog not found")

	// ErrNotFoundOrUnauthorized is returned by mutation paths. Missing and
	// foreign-owned blogs are deliberately indistinguishable so non-owners
	// cannot probe for existence.
	ErrNotFoundOrUnauthorized = errors.New("blog not found or unauthorized")

	// ErrNoDraft is returned by draft lookups when the author has none.
	ErrNoDraft = errors.New("no draft found")

	// ErrDraftExists is returned when a status change would give an author a
	// second draft.
	ErrDraftExists = errors.New("author already has a draft")
)

// ValidationError names the field that violated a presence or length bound.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
