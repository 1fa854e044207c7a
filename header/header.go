package header

import (
	"github.com/quarklab/datadist/endian"
	"github.com/quarklab/datadist/errs"
)

// Magic is the four-byte tag opening every header record.
const Magic = "O2O2"

// Record sizes in bytes. Layouts are fixed; see the field offset comments on
// the struct definitions.
const (
	BaseHeaderSize         = 32
	DataHeaderSize         = 80
	SubTimeFrameHeaderSize = 96
	HBFrameHeaderSize      = 40
	ProcessingHeaderSize   = 56
)

// FlagsNextHeader marks a header that is followed by another header in the
// same stack.
const FlagsNextHeader uint32 = 0x1

var engine = endian.GetLittleEndianEngine()

// BaseHeader is the fixed-layout prefix of every header record. It is
// self-describing: readers use HeaderSize to advance and Type to dispatch.
type BaseHeader struct {
	HeaderSize    uint32              // byte offset 4-7
	Flags         uint32              // byte offset 8-11
	Version       uint32              // byte offset 12-15
	Type          HeaderType          // byte offset 16-23
	Serialization SerializationMethod // byte offset 24-31
	// magic "O2O2" occupies byte offset 0-3
}

// NewBaseHeader creates a base header for a record of the given total size.
func NewBaseHeader(size uint32, t HeaderType, ser SerializationMethod, version uint32) BaseHeader {
	return BaseHeader{
		HeaderSize:    size,
		Flags:         0,
		Version:       version,
		Type:          t,
		Serialization: ser,
	}
}

// NextHeader reports whether another header follows this one in the stack.
func (h *BaseHeader) NextHeader() bool {
	return h.Flags&FlagsNextHeader != 0
}

// Parse parses a BaseHeader from the first BaseHeaderSize bytes of data.
// The remaining bytes of the record, if any, are not touched.
func (h *BaseHeader) Parse(data []byte) error {
	if len(data) < BaseHeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if string(data[0:4]) != Magic {
		return errs.ErrInvalidMagic
	}

	h.HeaderSize = engine.Uint32(data[4:8])
	h.Flags = engine.Uint32(data[8:12])
	h.Version = engine.Uint32(data[12:16])
	copy(h.Type[:], data[16:24])
	copy(h.Serialization[:], data[24:32])

	return nil
}

// marshalBase writes the base fields into b, which must hold at least
// BaseHeaderSize bytes.
func (h *BaseHeader) marshalBase(b []byte) {
	copy(b[0:4], Magic)
	engine.PutUint32(b[4:8], h.HeaderSize)
	engine.PutUint32(b[8:12], h.Flags)
	engine.PutUint32(b[12:16], h.Version)
	copy(b[16:24], h.Type[:])
	copy(b[24:32], h.Serialization[:])
}

// DataHeader describes one payload: what it is, where it came from, and how
// large it is. It extends BaseHeader with payload identity fields.
type DataHeader struct {
	BaseHeader
	DataDescription      DataDescription     // byte offset 32-47
	DataOrigin           DataOrigin          // byte offset 48-51
	Reserved             uint32              // byte offset 52-55
	PayloadSerialization SerializationMethod // byte offset 56-63
	SubSpecification     uint64              // byte offset 64-71
	PayloadSize          uint64              // byte offset 72-79
}

// NewDataHeader creates a DataHeader for the given payload identity.
func NewDataHeader(desc DataDescription, origin DataOrigin, subSpec uint64, payloadSize uint64) DataHeader {
	return DataHeader{
		BaseHeader:           NewBaseHeader(DataHeaderSize, HeaderTypeData, SerializationMethodNone, 1),
		DataDescription:      desc,
		DataOrigin:           origin,
		PayloadSerialization: SerializationMethodNone,
		SubSpecification:     subSpec,
		PayloadSize:          payloadSize,
	}
}

// Parse parses a DataHeader from data. data must hold exactly DataHeaderSize
// bytes; longer buffers must be sliced by the caller.
func (h *DataHeader) Parse(data []byte) error {
	if len(data) != DataHeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if err := h.BaseHeader.Parse(data); err != nil {
		return err
	}

	h.parseDataFields(data)

	return nil
}

func (h *DataHeader) parseDataFields(data []byte) {
	copy(h.DataDescription[:], data[32:48])
	copy(h.DataOrigin[:], data[48:52])
	h.Reserved = engine.Uint32(data[52:56])
	copy(h.PayloadSerialization[:], data[56:64])
	h.SubSpecification = engine.Uint64(data[64:72])
	h.PayloadSize = engine.Uint64(data[72:80])
}

func (h *DataHeader) marshalDataFields(b []byte) {
	copy(b[32:48], h.DataDescription[:])
	copy(b[48:52], h.DataOrigin[:])
	engine.PutUint32(b[52:56], h.Reserved)
	copy(b[56:64], h.PayloadSerialization[:])
	engine.PutUint64(b[64:72], h.SubSpecification)
	engine.PutUint64(b[72:80], h.PayloadSize)
}

// Bytes serializes the DataHeader into a fresh DataHeaderSize byte slice.
func (h *DataHeader) Bytes() []byte {
	b := make([]byte, DataHeaderSize)
	h.marshalBase(b)
	h.marshalDataFields(b)

	return b
}

// EqualIdentity reports whether two data headers carry the same description,
// origin and payload size. Used to validate file sentinels.
func (h *DataHeader) EqualIdentity(o *DataHeader) bool {
	return h.DataDescription == o.DataDescription &&
		h.DataOrigin == o.DataOrigin &&
		h.PayloadSize == o.PayloadSize
}

// SubTimeFrameHeader is the top-level header of a SubTimeFrame. PayloadSize
// counts the number of equipment entries, not bytes.
type SubTimeFrameHeader struct {
	DataHeader
	ID          uint64 // byte offset 80-87
	MaxHBFrames uint32 // byte offset 88-91
	// byte offset 92-95 reserved
}

// NewSubTimeFrameHeader creates the header of an empty SubTimeFrame with the
// given id.
func NewSubTimeFrameHeader(id uint64) SubTimeFrameHeader {
	h := SubTimeFrameHeader{
		DataHeader: NewDataHeader(DataDescriptionSubTimeFrame, DataOriginFLP, 0, 0),
		ID:         id,
	}
	h.HeaderSize = SubTimeFrameHeaderSize
	h.Type = HeaderTypeSubTimeFrame

	return h
}

// Parse parses a SubTimeFrameHeader from data, which must hold exactly
// SubTimeFrameHeaderSize bytes.
func (h *SubTimeFrameHeader) Parse(data []byte) error {
	if len(data) != SubTimeFrameHeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if err := h.BaseHeader.Parse(data); err != nil {
		return err
	}
	if h.Type != HeaderTypeSubTimeFrame {
		return errs.ErrInvalidHeaderType
	}

	h.parseDataFields(data)
	h.ID = engine.Uint64(data[80:88])
	h.MaxHBFrames = engine.Uint32(data[88:92])

	return nil
}

// Bytes serializes the SubTimeFrameHeader into a fresh byte slice.
func (h *SubTimeFrameHeader) Bytes() []byte {
	b := make([]byte, SubTimeFrameHeaderSize)
	h.marshalBase(b)
	h.marshalDataFields(b)
	engine.PutUint64(b[80:88], h.ID)
	engine.PutUint32(b[88:92], h.MaxHBFrames)

	return b
}
