package services

import "errors"

// Summary service errors
var (
	ErrNoFiles           = errors.New("no input files")
	ErrTooManyFiles      = errors.New("too many input files")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNilSummary        = errors.New("nil summary")
)
