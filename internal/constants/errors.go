package constants

import "errors"

// Session errors.
var (
	ErrNoSession        = errors.New("no session configured, use --session or NIMBUS_SESSION to point at a session file")
	ErrNoToken          = errors.New("no auth token available: set authToken in the session file, pass --token, or run interactively")
	ErrEmptyCatalog     = errors.New("session has an empty service catalog")
	ErrUnsupportedFile  = errors.New("session file must be YAML or JSON")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// Validation errors.
var (
	ErrInvalidPort      = errors.New("invalid port range, use N or N-M")
	ErrInvalidDirection = errors.New("invalid value for --direction")
	ErrAmbiguousTarget  = errors.New("pass either --port or --instance, not both")
	ErrMissingTarget    = errors.New("one of --port or --instance is required")
)
