// Package core defines the fundamental types and errors for LifeLens.
package core

import "errors"

// Errors shared across the engine
var (
	// Input errors
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidRange = errors.New("invalid date range")

	// Collector errors
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNoData            = errors.New("no data available from any source")

	// Storage errors
	ErrRecordNotFound  = errors.New("record not found")
	ErrSummaryNotFound = errors.New("summary not found")
	ErrMigrationFailed = errors.New("migration failed")

	// Narrative errors
	ErrNarrativeUnavailable = errors.New("narrative service unavailable")
)
