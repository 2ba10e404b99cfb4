package env

import "errors"

var (
	ErrInvalidPath   = errors.New("env file path is not allowed")
	ErrInvalidFormat = errors.New("env line is not KEY=VALUE")
	ErrEmptyKey      = errors.New("env key is empty")
	ErrInvalidKey    = errors.New("env key is invalid")
	ErrInvalidValue  = errors.New("env value is invalid")
)
