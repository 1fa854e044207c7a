package stffile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/quarklab/datadist/compress"
	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
)

// Reader reads SubTimeFrame records from one file, sequentially. The codec
// is derived from the file name suffix.
//
// The first framing error latches: the reader closes its file and refuses
// further reads. A clean end of file surfaces as io.EOF.
type Reader struct {
	path string
	f    *os.File
	comp io.ReadCloser
	r    *bufio.Reader

	pos      uint64 // logical (uncompressed) stream position
	fileSize uint64 // raw file size; a remaining-bytes bound for uncompressed files
	kind     compress.Kind

	index []IndexRecord // sidecar records, nil when absent
	nrec  int           // records read so far

	valid bool
}

// OpenReader opens the STF file at path for sequential reading. A sidecar
// index, when present, is loaded for integrity verification.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open STF file: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	kind := compress.KindForPath(path)
	comp, err := compress.NewStreamReader(kind, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	index, err := ReadSidecar(path)
	if err != nil {
		// a damaged sidecar only disables verification
		index = nil
	}

	return &Reader{
		path:     path,
		f:        f,
		comp:     comp,
		r:        bufio.NewReaderSize(comp, WriterBufferSize),
		fileSize: uint64(st.Size()),
		kind:     kind,
		index:    index,
		valid:    true,
	}, nil
}

// Path returns the file path this reader is bound to.
func (r *Reader) Path() string {
	return r.path
}

// fail latches the failed state and closes the file.
func (r *Reader) fail(err error) error {
	r.valid = false
	r.closeStreams()

	return err
}

// Read reads the next SubTimeFrame record. The rebuilt SubTimeFrame carries
// channelID as its allocation hint. A clean end of file returns io.EOF; any
// framing mismatch marks the reader unusable and returns an error wrapping
// errs.ErrFraming.
func (r *Reader) Read(channelID int) (*stf.SubTimeFrame, error) {
	if !r.valid {
		return nil, errs.ErrReaderInvalid
	}

	start := r.pos
	digest := xxhash.New()

	hdrBuf := make([]byte, header.DataHeaderSize)
	if _, err := io.ReadFull(r.r, hdrBuf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, r.fail(fmt.Errorf("file header: %v: %w", err, errs.ErrFraming))
	}
	_, _ = digest.Write(hdrBuf)

	var fileHdr header.DataHeader
	if err := fileHdr.Parse(hdrBuf); err != nil {
		return nil, r.fail(fmt.Errorf("file header: %v: %w", err, errs.ErrFraming))
	}

	sentinel := NewFileDataHeader(fileHdr.SubSpecification)
	if !fileHdr.EqualIdentity(&sentinel) {
		return nil, r.fail(fmt.Errorf("unexpected record sentinel %s/%s: %w",
			fileHdr.DataDescription, fileHdr.DataOrigin, errs.ErrFraming))
	}

	metaBuf := make([]byte, MetaSize)
	if _, err := io.ReadFull(r.r, metaBuf); err != nil {
		return nil, r.fail(fmt.Errorf("record meta: %v: %w", err, errs.ErrFraming))
	}
	_, _ = digest.Write(metaBuf)

	var meta Meta
	if err := meta.Parse(metaBuf); err != nil {
		return nil, r.fail(fmt.Errorf("record meta: %v: %w", err, errs.ErrFraming))
	}

	if meta.StfSizeInFile < RecordOverhead {
		return nil, r.fail(fmt.Errorf("record size %d below overhead: %w",
			meta.StfSizeInFile, errs.ErrFraming))
	}

	// remaining-bytes bound; only meaningful without a compression envelope
	if r.kind == compress.KindNone && start+meta.StfSizeInFile > r.fileSize {
		return nil, r.fail(fmt.Errorf("record of %d bytes exceeds file end: %w",
			meta.StfSizeInFile, errs.ErrFraming))
	}

	s := stf.New(channelID, fileHdr.SubSpecification)

	dataSize := meta.StfSizeInFile - RecordOverhead
	consumed := uint64(0)
	for consumed < dataSize {
		if dataSize-consumed < header.DataHeaderSize {
			return nil, r.fail(fmt.Errorf("torn block header: %w", errs.ErrFraming))
		}

		if _, err := io.ReadFull(r.r, hdrBuf); err != nil {
			return nil, r.fail(fmt.Errorf("block header: %v: %w", err, errs.ErrFraming))
		}
		_, _ = digest.Write(hdrBuf)

		var blkHdr header.DataHeader
		if err := blkHdr.Parse(hdrBuf); err != nil {
			return nil, r.fail(fmt.Errorf("block header: %v: %w", err, errs.ErrFraming))
		}
		consumed += header.DataHeaderSize

		if dataSize-consumed < blkHdr.PayloadSize {
			return nil, r.fail(fmt.Errorf("block payload of %d bytes exceeds record: %w",
				blkHdr.PayloadSize, errs.ErrFraming))
		}

		msg := transport.NewMessage(int(blkHdr.PayloadSize))
		if _, err := io.ReadFull(r.r, msg.Data()); err != nil {
			return nil, r.fail(fmt.Errorf("block payload: %v: %w", err, errs.ErrFraming))
		}
		_, _ = digest.Write(msg.Data())
		consumed += blkHdr.PayloadSize

		eq := header.EquipmentIdentifierFromDataHeader(&blkHdr)
		if err := s.AddHBFrame(eq, msg); err != nil {
			return nil, r.fail(err)
		}
	}

	if r.nrec < len(r.index) {
		rec := r.index[r.nrec]
		if rec.Offset != start || rec.Size != meta.StfSizeInFile || rec.Digest != digest.Sum64() {
			return nil, r.fail(fmt.Errorf("record digest mismatch at offset %d: %w",
				start, errs.ErrFraming))
		}
	}

	r.pos = start + meta.StfSizeInFile
	r.nrec++

	return s, nil
}

func (r *Reader) closeStreams() {
	if r.comp != nil {
		r.comp.Close()
		r.comp = nil
	}
	if r.f != nil {
		r.f.Close()
		r.f = nil
	}
}

// Close closes the reader.
func (r *Reader) Close() error {
	r.valid = false
	r.closeStreams()

	return nil
}
