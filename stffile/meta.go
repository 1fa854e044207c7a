package stffile

import (
	"time"

	"github.com/quarklab/datadist/endian"
	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
)

// FileFormatVersion is the current STF file format version.
const FileFormatVersion = 1

// MetaSize is the size of the Meta record in bytes.
const MetaSize = 24

// RecordOverhead is the fixed per-STF cost in the file: the file-level
// DataHeader plus the Meta record.
const RecordOverhead = header.DataHeaderSize + MetaSize

var engine = endian.GetLittleEndianEngine()

// Meta describes one STF record in the file. StfSizeInFile counts from the
// start of the file-level DataHeader to the end of the last payload,
// inclusive.
type Meta struct {
	Version       uint64 // byte offset 0-7
	StfSizeInFile uint64 // byte offset 8-15
	WriteTimeMs   uint64 // byte offset 16-23
}

// NewMeta creates a Meta for a record of the given size, stamped with the
// current wall clock.
func NewMeta(stfSizeInFile uint64) Meta {
	return Meta{
		Version:       FileFormatVersion,
		StfSizeInFile: stfSizeInFile,
		WriteTimeMs:   uint64(time.Now().UnixMilli()),
	}
}

// WriteTime returns the record write time.
func (m *Meta) WriteTime() time.Time {
	return time.UnixMilli(int64(m.WriteTimeMs))
}

// Parse parses a Meta from data, which must hold exactly MetaSize bytes.
func (m *Meta) Parse(data []byte) error {
	if len(data) != MetaSize {
		return errs.ErrInvalidHeaderSize
	}

	m.Version = engine.Uint64(data[0:8])
	m.StfSizeInFile = engine.Uint64(data[8:16])
	m.WriteTimeMs = engine.Uint64(data[16:24])

	return nil
}

// Bytes serializes the Meta into a fresh byte slice.
func (m *Meta) Bytes() []byte {
	b := make([]byte, MetaSize)
	engine.PutUint64(b[0:8], m.Version)
	engine.PutUint64(b[8:16], m.StfSizeInFile)
	engine.PutUint64(b[16:24], m.WriteTimeMs)

	return b
}

// NewFileDataHeader builds the file-level sentinel header opening an STF
// record. The SubTimeFrame id rides in the SubSpecification field so file
// round-trips preserve it.
func NewFileDataHeader(stfID uint64) header.DataHeader {
	return header.NewDataHeader(
		header.DataDescriptionFileSubTimeFrame,
		header.DataOriginFLP,
		stfID,
		MetaSize,
	)
}
