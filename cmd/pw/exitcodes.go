package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file or values)
	ExitDataError   = 3 // Data error (malformed snapshot or roster, validation failure)
	ExitAPIError    = 4 // arXiv unreachable or returned a non-success status
	ExitParseError  = 5 // arXiv returned a body that is not a valid feed
	ExitNoIndex     = 6 // Query index missing or empty; run 'pw fetch' first
)
