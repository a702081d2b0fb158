package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("admin role required")
	ErrBusy         = errors.New("cleanup already in progress")
	ErrInvalidLink  = errors.New("this link is invalid")
	ErrInvalidInput = errors.New("invalid input")
)
