package contracts

import "errors"

// Common errors for browsing sessions
var (
	// ErrSessionNotFound occurs when a session id is unknown or its TTL expired
	ErrSessionNotFound = errors.New("browse session not found")

	// ErrSessionErrored occurs when an operation needing a fetch targets a session that already failed
	ErrSessionErrored = errors.New("browse session is in errored state")

	// ErrLoadInFlight occurs when a load is requested while another load for the same session is outstanding
	ErrLoadInFlight = errors.New("a page load is already in flight for this session")

	// ErrListRequired occurs when a session is opened without a list title
	ErrListRequired = errors.New("list title is required")
)
