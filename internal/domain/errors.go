package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidRating   = errors.New("invalid rating")
	ErrProviderFailure = errors.New("provider failure")
)
