package stffile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// SidecarSuffix is appended to the data file name to form the sidecar index
// file name.
const SidecarSuffix = ".stfidx"

// IndexRecordSize is the size of one sidecar index record in bytes.
const IndexRecordSize = 24

// IndexRecord locates and fingerprints one STF record in its data file.
// Offsets and sizes count uncompressed stream bytes.
type IndexRecord struct {
	Offset uint64 // byte offset 0-7
	Size   uint64 // byte offset 8-15
	Digest uint64 // byte offset 16-23, xxhash64 of the record bytes
}

// Parse parses an IndexRecord from data, which must hold exactly
// IndexRecordSize bytes.
func (r *IndexRecord) Parse(data []byte) error {
	if len(data) != IndexRecordSize {
		return fmt.Errorf("sidecar record of %d bytes", len(data))
	}

	r.Offset = engine.Uint64(data[0:8])
	r.Size = engine.Uint64(data[8:16])
	r.Digest = engine.Uint64(data[16:24])

	return nil
}

// Bytes serializes the IndexRecord into a fresh byte slice.
func (r *IndexRecord) Bytes() []byte {
	b := make([]byte, IndexRecordSize)
	engine.PutUint64(b[0:8], r.Offset)
	engine.PutUint64(b[8:16], r.Size)
	engine.PutUint64(b[16:24], r.Digest)

	return b
}

// SidecarWriter appends index records next to a data file.
type SidecarWriter struct {
	f *os.File
}

// NewSidecarWriter creates the sidecar index for the data file at dataPath.
func NewSidecarWriter(dataPath string) (*SidecarWriter, error) {
	f, err := os.OpenFile(dataPath+SidecarSuffix, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open sidecar: %w", err)
	}

	return &SidecarWriter{f: f}, nil
}

// Append writes one index record.
func (w *SidecarWriter) Append(rec IndexRecord) error {
	_, err := w.f.Write(rec.Bytes())
	return err
}

// Close closes the sidecar file.
func (w *SidecarWriter) Close() error {
	return w.f.Close()
}

// ReadSidecar loads the sidecar index of the data file at dataPath. A
// missing sidecar is not an error; it yields a nil slice.
func ReadSidecar(dataPath string) ([]IndexRecord, error) {
	f, err := os.Open(dataPath + SidecarSuffix)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}
	defer f.Close()

	var recs []IndexRecord
	buf := make([]byte, IndexRecordSize)
	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			if errors.Is(err, io.EOF) {
				return recs, nil
			}
			// a torn trailing record is dropped, the index stays usable
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return recs, nil
			}

			return nil, err
		}

		var rec IndexRecord
		if err := rec.Parse(buf); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}
