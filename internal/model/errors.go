package model

import "errors"

// Error kinds returned by the analysis engine. Detailed errors wrap these.
var (
	ErrInputTooShort          = errors.New("input too short")
	ErrInvalidKeyLength       = errors.New("invalid key length")
	ErrDegenerateColumn       = errors.New("degenerate column")
	ErrUndeterminedConfidence = errors.New("undetermined confidence")
	ErrNoCandidates           = errors.New("no key length candidates")
	ErrInvalidKey             = errors.New("invalid key")
)
