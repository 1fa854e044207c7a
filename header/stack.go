package header

import "github.com/quarklab/datadist/errs"

// StackRecord is implemented by every header type that can be a member of a
// header stack.
type StackRecord interface {
	// Bytes serializes the full record into a fresh byte slice.
	Bytes() []byte
}

// NewStack serializes the given headers into one contiguous header stack.
// Every record except the last is flagged so readers know another header
// follows. The flag is patched into the serialized bytes; the header values
// themselves are not modified.
func NewStack(records ...StackRecord) []byte {
	var stack []byte
	for i, r := range records {
		b := r.Bytes()
		if i < len(records)-1 {
			flags := engine.Uint32(b[8:12]) | FlagsNextHeader
			engine.PutUint32(b[8:12], flags)
		}
		stack = append(stack, b...)
	}

	return stack
}

// WalkStack calls fn for each record of the header stack in data, passing the
// parsed BaseHeader and the full record bytes. Iteration stops after the
// first record without the next-header flag. Trailing bytes past that record
// are ignored.
func WalkStack(data []byte, fn func(base BaseHeader, record []byte) error) error {
	off := 0
	for {
		var base BaseHeader
		if err := base.Parse(data[off:]); err != nil {
			return err
		}

		size := int(base.HeaderSize)
		if size < BaseHeaderSize || off+size > len(data) {
			return errs.ErrInvalidHeaderSize
		}

		if err := fn(base, data[off:off+size]); err != nil {
			return err
		}

		if !base.NextHeader() {
			return nil
		}
		off += size
	}
}
