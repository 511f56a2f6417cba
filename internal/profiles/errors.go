package profiles

import "errors"

var (
	ErrNotFound     = errors.New("profile not found")
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidInput = errors.New("invalid input")
)
