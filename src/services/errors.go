package services

import "errors"

var (
	// ErrParsingFailed wraps any failure to parse an uploaded export.
	ErrParsingFailed = errors.New("parsing failed")
	// ErrIngestionInFlight is returned when a second ingestion is
	// requested for a user while one is still running.
	ErrIngestionInFlight = errors.New("an ingestion is already in progress for this user")
	// ErrNoDataset is returned when a user has not loaded any export yet.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrTransactionNotFound is returned by category updates targeting
	// an unknown transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInsightsUnavailable is returned when the insight backend
	// cannot produce a result.
	ErrInsightsUnavailable = errors.New("insights unavailable")
)
