package header

import "bytes"

// DataDescription names the kind of data a record carries, e.g. "CRUDATA".
// Shorter names are zero padded.
type DataDescription [16]byte

// DataOrigin names the detector or subsystem a record originates from,
// e.g. "FLP". Shorter names are zero padded.
type DataOrigin [4]byte

// HeaderType tags a concrete header record so readers can dispatch without
// knowing the full layout.
type HeaderType [8]byte

// SerializationMethod names the payload encoding of a record.
type SerializationMethod [8]byte

// NewDataDescription builds a description tag from s, truncating to 16 bytes.
func NewDataDescription(s string) DataDescription {
	var d DataDescription
	copy(d[:], s)

	return d
}

// NewDataOrigin builds an origin tag from s, truncating to 4 bytes.
func NewDataOrigin(s string) DataOrigin {
	var o DataOrigin
	copy(o[:], s)

	return o
}

// NewHeaderType builds a header type tag from s, truncating to 8 bytes.
func NewHeaderType(s string) HeaderType {
	var t HeaderType
	copy(t[:], s)

	return t
}

// NewSerializationMethod builds a serialization tag from s, truncating to 8 bytes.
func NewSerializationMethod(s string) SerializationMethod {
	var m SerializationMethod
	copy(m[:], s)

	return m
}

func (d DataDescription) String() string {
	return string(bytes.TrimRight(d[:], "\x00"))
}

func (o DataOrigin) String() string {
	return string(bytes.TrimRight(o[:], "\x00"))
}

func (t HeaderType) String() string {
	return string(bytes.TrimRight(t[:], "\x00"))
}

func (m SerializationMethod) String() string {
	return string(bytes.TrimRight(m[:], "\x00"))
}

// Well-known data descriptions.
var (
	DataDescriptionAny              = NewDataDescription("***")
	DataDescriptionInvalid          = NewDataDescription("!!!INVALID!!!")
	DataDescriptionCruData          = NewDataDescription("CRUDATA")
	DataDescriptionSubTimeFrame     = NewDataDescription("SUBTIMEFRAME")
	DataDescriptionFileSubTimeFrame = NewDataDescription("FILESUBTIMEFRAME")
)

// Well-known data origins.
var (
	DataOriginAny     = NewDataOrigin("***")
	DataOriginInvalid = NewDataOrigin("!!!")
	DataOriginFLP     = NewDataOrigin("FLP")
	DataOriginCRU     = NewDataOrigin("CRU")
	DataOriginTPC     = NewDataOrigin("TPC")
	DataOriginITS     = NewDataOrigin("ITS")
)

// Serialization methods.
var (
	SerializationMethodNone    = NewSerializationMethod("NONE")
	SerializationMethodInvalid = NewSerializationMethod("INVALID")
)

// Header type tags.
var (
	HeaderTypeData         = NewHeaderType("DataHead")
	HeaderTypeSubTimeFrame = NewHeaderType("STFHead")
	HeaderTypeHBFrame      = NewHeaderType("HBFrame")
	HeaderTypeProcessing   = NewHeaderType("DataProc")
)
