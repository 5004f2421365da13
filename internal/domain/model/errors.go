package model

import "errors"

// Sentinel kinds shared by the service and transport layers.
var (
	ErrNotInitialized   = errors.New("not initialized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
