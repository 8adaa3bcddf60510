package domain

import "errors"

var (
	// ErrIntegrationNotFound is returned when an integration id does not
	// resolve to a stored configuration.
	ErrIntegrationNotFound = errors.New("integration not found")

	// ErrInvalidMapping marks a mapping document rejected at save time.
	ErrInvalidMapping = errors.New("invalid mapping configuration")

	// ErrUnsupportedSourceKind marks a source kind outside the closed set.
	ErrUnsupportedSourceKind = errors.New("unsupported source kind")

	// ErrNoAttributionTarget is returned when a new note would have no
	// system actor to be attributed to. This is a precondition violation,
	// not missing optional data, and fails the event loudly.
	ErrNoAttributionTarget = errors.New("no attribution target for new note")
)
