package aimage

import "errors"

var (
	// ErrEmptyPayload is returned when an upload carries no bytes
	ErrEmptyPayload = errors.New("empty payload")
	// ErrUnsupportedMediaType is returned when the declared media type is not allowed
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrIdentifierCollision is returned when a generated identifier is already taken
	ErrIdentifierCollision = errors.New("identifier collision")
	// ErrNotFound is returned when no image exists for an identifier
	ErrNotFound = errors.New("not found")
	// ErrDeleteFailed is returned when an image is still present after removal
	ErrDeleteFailed = errors.New("delete failed")
	// ErrInvalidIdentifier is returned when an identifier is not 32 hex characters
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrUnauthorized is returned when credentials are missing or wrong
	ErrUnauthorized = errors.New("unauthorized")
)
