package models

import "errors"

// Domain errors. The API layer maps these to client-visible status codes;
// everything else surfaces as a server error.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
