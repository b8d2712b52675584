package main

import "time"

// Flag structs decouple cobra from the handlers for testing.

// RunFlags holds options for the run command; the job itself arrives as
// positional arguments.
type RunFlags struct {
	Root     string
	HTMLPath string
	Tick     time.Duration
	Settle   time.Duration
}

// ListFlags holds options for the commands listing.
type ListFlags struct {
	Root string
}

// HistoryFlags holds options for the run-history listing.
type HistoryFlags struct {
	Root  string
	Limit int
}
