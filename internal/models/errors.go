package models

import "errors"

var (
	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidBar       = errors.New("invalid bar (high < low)")
	ErrInvalidVolume    = errors.New("invalid volume")
	ErrInvalidSession   = errors.New("invalid session name")

	// Input contract violations are fatal for the whole call.
	ErrUnsortedBars       = errors.New("bars are not sorted ascending by timestamp")
	ErrDuplicateTimestamp = errors.New("duplicate bar timestamp")

	// Filter/query errors surface to the caller; no partial matching.
	ErrUnknownSession = errors.New("unknown session name")
	ErrInvalidFilter  = errors.New("invalid filter clause")
	ErrInvalidBucket  = errors.New("bucket minutes must be positive")
)
