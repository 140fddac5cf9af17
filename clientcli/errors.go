package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrConfigRequired   = errors.New("config is required")
)

// Errors for input validation.
var (
	ErrNoIDs     = errors.New("no image ids provided")
	ErrNoPaths   = errors.New("no paths provided")
	ErrEmptyID   = errors.New("image id is required")
	ErrMissingID = errors.New("server response did not include an image id")
)
