package main

// Exit codes
const (
	ExitSuccess     = 0 // All citations verified, nothing flagged
	ExitUnverified  = 1 // At least one unverified or suspicious citation
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config, missing project root)
	ExitDataError   = 3 // Data error (unreadable input file)
)
