package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrNoLocationInput = errors.New("position is not reported by the page")
	ErrHijack          = errors.New("response writer does not support hijacking")
)
