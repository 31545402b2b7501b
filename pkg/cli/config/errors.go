package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidLogLevel  = goerr.New("invalid log level")
	ErrInvalidLogFormat = goerr.New("invalid log format")
	ErrInvalidBackend   = goerr.New("invalid storage backend")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrDuplicateName    = goerr.New("duplicate name")
	ErrMissingName      = goerr.New("name is required")
)
