package macho

import "errors"

var (
	ErrorFileNotFound      = errors.New("file not found")
	ErrorUnsupportedFormat = errors.New("unsupported container format")
	ErrorCorruptRecord     = errors.New("corrupt load command")
	ErrorTargetNotPresent  = errors.New("target load command not present")
	ErrorInvalidVersion    = errors.New("invalid version")
	ErrorOutOfRange        = errors.New("access out of range")
	ErrorVerifyFailed      = errors.New("patch written but could not be verified")
)
