package clientcli

import "errors"

var (
	// ErrProfileNotFound is returned when a named profile is not in the config file.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNoProfiles is returned when the config file holds no profiles.
	ErrNoProfiles = errors.New("no profiles configured")
	// ErrProfileExists is returned when adding a profile whose name is taken.
	ErrProfileExists = errors.New("profile already exists")

	ErrConfigRequired   = errors.New("config is required")
	ErrInvalidEndpoint  = errors.New("endpoint must be an http or https URL")
	ErrInvalidMountRoot = errors.New("mount root must be an absolute path without a trailing slash")
	ErrInvalidTimeout   = errors.New("timeout must not be negative")

	ErrNoPaths   = errors.New("no paths provided")
	ErrEmptyPath = errors.New("path is required")
	ErrEmptyName = errors.New("name is required")
)
