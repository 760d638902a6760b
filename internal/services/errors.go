package services

import "errors"

var (
	ErrInvalidRange     = errors.New("invalid date range")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingAsOf      = errors.New("as_of date is required when the filename carries no YYYY-MM-DD date")
	ErrInvalidReport    = errors.New("unknown report type")
)
