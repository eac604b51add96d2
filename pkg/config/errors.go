package config

import "errors"

var (
	ErrParsingConfig = errors.New("config.parse_failed")
	ErrInvalidConfig = errors.New("config.invalid")
)
