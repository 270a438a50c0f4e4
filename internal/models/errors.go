package models

import "errors"

// Custom errors
var (
	ErrInsufficientSamples = errors.New("insufficient samples for stat")
	ErrInvalidProbability  = errors.New("probability must be in (0, 1]")
	ErrNoQuotes            = errors.New("no bookmaker quotes supplied")
	ErrMatchNotFinished    = errors.New("match has not finished")
	ErrMatchNotFound       = errors.New("match not found")
	ErrUnsupportedMarket   = errors.New("unsupported market")
	ErrAlreadyVerified     = errors.New("prediction already verified")
	ErrInvalidOutcome      = errors.New("invalid outcome transition")
	ErrNotFound            = errors.New("record not found")
)
