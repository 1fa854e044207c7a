package stffile

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/quarklab/datadist/compress"
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/stf"
)

// Writer I/O discipline: a large user-mode buffer backs the stream, and
// small writes are fed to it in sub-kilobyte chunks. Writes of at least the
// buffer size bypass the buffer entirely.
const (
	// WriterBufferSize is the user-mode stream buffer size.
	WriterBufferSize = 256 << 10 // 256 KiB

	// WriterChunkSize bounds individual buffered writes. Feeding the buffer
	// in small chunks avoids the pathological small-write behavior of
	// buffered streams straddling the buffer boundary.
	WriterChunkSize = 512
)

// Writer appends SubTimeFrame records to one file. It is a ConstVisitor
// over the STF hierarchy: writing never consumes the SubTimeFrame.
//
// A writer is bound to a single file; rotation creates a new Writer. The
// first write error latches: subsequent writes fail with the same error and
// the file is left as it was.
type Writer struct {
	path string
	f    *os.File
	comp io.WriteCloser
	buf  *bufio.Writer

	size uint64 // logical (uncompressed) bytes written
	err  error

	sidecar *SidecarWriter

	// per-write block collection, cleared after every Write
	blockHeaders []header.DataHeader
	blocks       [][]byte
}

var _ stf.ConstVisitor = (*Writer)(nil)

// NewWriter creates (or appends to) the STF file at path, compressed with
// the given codec kind. The codec suffix must already be part of path.
func NewWriter(path string, kind compress.Kind) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open STF file: %w", err)
	}

	comp, err := compress.NewStreamWriter(kind, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	sidecar, err := NewSidecarWriter(path)
	if err != nil {
		comp.Close()
		f.Close()
		return nil, err
	}

	return &Writer{
		path:    path,
		f:       f,
		comp:    comp,
		buf:     bufio.NewWriterSize(comp, WriterBufferSize),
		sidecar: sidecar,
	}, nil
}

// Path returns the file path this writer is bound to.
func (w *Writer) Path() string {
	return w.path
}

// Size returns the logical stream size written so far, before compression.
func (w *Writer) Size() uint64 {
	return w.size
}

// VisitSubTimeFrameConst traverses the equipments in container order.
func (w *Writer) VisitSubTimeFrameConst(s *stf.SubTimeFrame) error {
	return s.ForEachEquipment(func(e *stf.EquipmentHBFrames) error {
		return e.AcceptConst(w)
	})
}

// VisitEquipmentConst collects one block per heartbeat frame, headed by the
// equipment identity.
func (w *Writer) VisitEquipmentConst(e *stf.EquipmentHBFrames) error {
	eqHdr := e.Header()
	for _, frame := range e.Frames() {
		w.blockHeaders = append(w.blockHeaders, header.NewDataHeader(
			eqHdr.DataDescription,
			eqHdr.DataOrigin,
			eqHdr.SubSpecification,
			frame.Size(),
		))
		w.blocks = append(w.blocks, frame.Data())
	}

	return nil
}

// recordSize computes stfSizeInFile for the collected blocks.
func (w *Writer) recordSize() uint64 {
	size := uint64(RecordOverhead)
	size += uint64(len(w.blocks)) * header.DataHeaderSize
	for _, blk := range w.blocks {
		size += uint64(len(blk))
	}

	return size
}

// Write appends one SubTimeFrame record and flushes the stream. It returns
// the record size in bytes. The SubTimeFrame is not consumed.
func (w *Writer) Write(s *stf.SubTimeFrame) (uint64, error) {
	if w.err != nil {
		return 0, w.err
	}

	defer func() {
		// block headers and payload pointers must not linger
		w.blockHeaders = w.blockHeaders[:0]
		w.blocks = w.blocks[:0]
	}()

	if err := s.AcceptConst(w); err != nil {
		return 0, err
	}

	stfSize := w.recordSize()
	fileHdr := NewFileDataHeader(s.ID())
	meta := NewMeta(stfSize)

	start := w.size
	digest := xxhash.New()

	emit := func(p []byte) {
		if w.err != nil {
			return
		}
		_, _ = digest.Write(p)
		w.err = w.bufferedWrite(p)
	}

	emit(fileHdr.Bytes())
	emit(meta.Bytes())
	for i := range w.blocks {
		emit(w.blockHeaders[i].Bytes())
		emit(w.blocks[i])
	}

	if w.err == nil {
		w.err = w.buf.Flush()
	}
	if w.err != nil {
		return 0, fmt.Errorf("writing STF record: %w", w.err)
	}

	w.size = start + stfSize

	if err := w.sidecar.Append(IndexRecord{Offset: start, Size: stfSize, Digest: digest.Sum64()}); err != nil {
		// the data file is intact; the index just loses this entry
		return stfSize, fmt.Errorf("sidecar append: %w", err)
	}

	return stfSize, nil
}

// bufferedWrite routes p through the stream buffer, bypassing it for writes
// of at least the buffer size.
func (w *Writer) bufferedWrite(p []byte) error {
	if len(p) >= WriterBufferSize {
		if err := w.buf.Flush(); err != nil {
			return err
		}

		_, err := w.comp.Write(p)

		return err
	}

	for len(p) > 0 {
		n := len(p)
		if n > WriterChunkSize {
			n = WriterChunkSize
		}
		if _, err := w.buf.Write(p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}

	return nil
}

// Close flushes and closes the file and its sidecar index.
func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	compErr := w.comp.Close()
	fileErr := w.f.Close()
	sidecarErr := w.sidecar.Close()

	for _, err := range []error{flushErr, compErr, fileErr, sidecarErr} {
		if err != nil {
			return err
		}
	}

	return nil
}
