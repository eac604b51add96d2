package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("binder.unsupported_media_type")
	ErrFailedToParseJSON    = errors.New("binder.invalid_json")
	ErrMissingContentType   = errors.New("binder.missing_content_type")
	ErrBodyTooLarge         = errors.New("binder.body_too_large")
)
