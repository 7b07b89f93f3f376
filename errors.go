package main

import "errors"

// Errors returned while reading input, detecting the period and decrypting.
// They are wrapped with the offending values; test with errors.Is.
var (
	ErrInvalidInputChar      = errors.New("invalid input character")
	ErrInputTooLong          = errors.New("input too long")
	ErrPeriodNotFound        = errors.New("period not found")
	ErrDegenerateSlice       = errors.New("slice too short for index of coincidence")
	ErrInvalidCiphertextChar = errors.New("ciphertext character not in key column")
	ErrTextTooShort          = errors.New("text too short for tetragram fitness")
	ErrInvalidKey            = errors.New("invalid key")
	ErrInvalidConfig         = errors.New("invalid config")
	ErrInvalidTable          = errors.New("invalid reference table")
)
