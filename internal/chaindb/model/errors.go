package model

import "errors"

// Error taxonomy shared by every layer of the engine. Lookups asserted by the
// caller (explicit hash, height or id) fail with ErrNotFound; a syntactically
// valid but unknown address string is an empty result, never an error.
var (
	// ErrNotFound reports an absent hash, height, id or address.
	ErrNotFound = errors.New("not found")
	// ErrOutOfRange reports an index outside valid bounds after negative wraparound.
	ErrOutOfRange = errors.New("index out of range")
	// ErrInvalidArgument reports a caller error such as a non-positive segment count.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedInput reports an address string that fails to decode under any known encoding.
	ErrMalformedInput = errors.New("malformed input")
	// ErrDataset reports a missing, corrupt or reorg-invalidated dataset. Fatal for the handle.
	ErrDataset = errors.New("dataset error")
)
