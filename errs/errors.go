// Package errs defines sentinel errors shared across datadist packages.
//
// Callers are expected to match with errors.Is after call sites wrap these
// with additional context via fmt.Errorf("...: %w", err).
package errs

import "errors"

// Header and wire format errors.
var (
	// ErrInvalidHeaderSize indicates a header buffer with the wrong length.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidMagic indicates a header that does not start with the "O2O2" magic.
	ErrInvalidMagic = errors.New("invalid header magic")

	// ErrInvalidHeaderType indicates a header whose type tag does not match the
	// record being parsed.
	ErrInvalidHeaderType = errors.New("invalid header type")

	// ErrFraming indicates a message batch or file record that does not frame a
	// complete SubTimeFrame: short input, trailing messages, or truncated payloads.
	ErrFraming = errors.New("framing error")
)

// Data model errors.
var (
	// ErrInvalidStf indicates an operation on an empty or moved-from SubTimeFrame.
	ErrInvalidStf = errors.New("operation on invalid SubTimeFrame")

	// ErrIDMismatch indicates an attempt to merge SubTimeFrames with different ids.
	ErrIDMismatch = errors.New("SubTimeFrame id mismatch")
)

// Container errors.
var (
	// ErrOutOfRange indicates an index at or beyond the container size.
	ErrOutOfRange = errors.New("index out of range")

	// ErrUnderflow indicates removal from an empty container.
	ErrUnderflow = errors.New("container underflow")
)

// Transport errors.
var (
	// ErrChannelClosed indicates send or receive on a closed transport channel.
	ErrChannelClosed = errors.New("transport channel closed")

	// ErrNoSuchChannel indicates a channel id not present in the registry.
	ErrNoSuchChannel = errors.New("no such transport channel")
)

// File sink errors.
var (
	// ErrReaderInvalid indicates a file reader that hit a framing error earlier
	// and refuses further reads.
	ErrReaderInvalid = errors.New("file reader in failed state")

	// ErrUnknownCompression indicates an unrecognized compression kind.
	ErrUnknownCompression = errors.New("unknown compression kind")
)
