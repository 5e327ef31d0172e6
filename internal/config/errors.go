package config

import "errors"

// Sentinel kinds for config errors.
var (
	ErrInvalidConfig      = errors.New("invalid config")
	ErrLoadConfig         = errors.New("load config failed")
	ErrUnsupportedBackend = errors.New("unsupported cache backend")
)
