// Package readout defines the record the readout process prefixes to every
// batch of heartbeat frames it forwards to the builder.
package readout

import (
	"github.com/quarklab/datadist/endian"
	"github.com/quarklab/datadist/errs"
)

// HeaderSize is the size of the readout batch header in bytes.
const HeaderSize = 16

var engine = endian.GetLittleEndianEngine()

// SubTimeframeHeader prefixes a readout batch: the first message of every
// batch carries this record, the remaining messages are the heartbeat
// frames of one link for one time frame.
type SubTimeframeHeader struct {
	TimeframeID  uint64 // byte offset 0-7
	LinkID       uint32 // byte offset 8-11
	HBFrameCount uint32 // byte offset 12-15
}

// NewSubTimeframeHeader creates a readout header for the given time frame
// and link.
func NewSubTimeframeHeader(tfID uint64, linkID uint32, frameCount uint32) SubTimeframeHeader {
	return SubTimeframeHeader{
		TimeframeID:  tfID,
		LinkID:       linkID,
		HBFrameCount: frameCount,
	}
}

// Parse parses the header from data, which must hold exactly HeaderSize bytes.
func (h *SubTimeframeHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.TimeframeID = engine.Uint64(data[0:8])
	h.LinkID = engine.Uint32(data[8:12])
	h.HBFrameCount = engine.Uint32(data[12:16])

	return nil
}

// Bytes serializes the header into a fresh byte slice.
func (h *SubTimeframeHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine.PutUint64(b[0:8], h.TimeframeID)
	engine.PutUint32(b[8:12], h.LinkID)
	engine.PutUint32(b[12:16], h.HBFrameCount)

	return b
}
