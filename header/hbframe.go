package header

import "github.com/quarklab/datadist/errs"

// HBFrameHeader carries the heartbeat-frame ordinal of a payload within its
// equipment. It is attached alongside the DataHeader when adapting frames
// for downstream processing.
type HBFrameHeader struct {
	BaseHeader
	HBFrameID uint32 // byte offset 32-35
	// byte offset 36-39 reserved
}

// NewHBFrameHeader creates a heartbeat-frame header with the given ordinal.
func NewHBFrameHeader(id uint32) HBFrameHeader {
	return HBFrameHeader{
		BaseHeader: NewBaseHeader(HBFrameHeaderSize, HeaderTypeHBFrame, SerializationMethodNone, 1),
		HBFrameID:  id,
	}
}

// Parse parses an HBFrameHeader from data, which must hold exactly
// HBFrameHeaderSize bytes.
func (h *HBFrameHeader) Parse(data []byte) error {
	if len(data) != HBFrameHeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if err := h.BaseHeader.Parse(data); err != nil {
		return err
	}
	if h.Type != HeaderTypeHBFrame {
		return errs.ErrInvalidHeaderType
	}

	h.HBFrameID = engine.Uint32(data[32:36])

	return nil
}

// Bytes serializes the HBFrameHeader into a fresh byte slice.
func (h *HBFrameHeader) Bytes() []byte {
	b := make([]byte, HBFrameHeaderSize)
	h.marshalBase(b)
	engine.PutUint32(b[32:36], h.HBFrameID)

	return b
}

// ProcessingHeader carries the timeslice assignment for the downstream
// processing framework. The adapter advances the timeslice id by a
// configured step per emitted (header stack, payload) pair.
type ProcessingHeader struct {
	BaseHeader
	TimesliceID    uint64 // byte offset 32-39
	Duration       uint64 // byte offset 40-47
	CreationTimeMs uint64 // byte offset 48-55
}

// NewProcessingHeader creates a processing header for the given timeslice.
func NewProcessingHeader(timesliceID uint64) ProcessingHeader {
	return ProcessingHeader{
		BaseHeader:  NewBaseHeader(ProcessingHeaderSize, HeaderTypeProcessing, SerializationMethodNone, 1),
		TimesliceID: timesliceID,
	}
}

// Parse parses a ProcessingHeader from data, which must hold exactly
// ProcessingHeaderSize bytes.
func (h *ProcessingHeader) Parse(data []byte) error {
	if len(data) != ProcessingHeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if err := h.BaseHeader.Parse(data); err != nil {
		return err
	}
	if h.Type != HeaderTypeProcessing {
		return errs.ErrInvalidHeaderType
	}

	h.TimesliceID = engine.Uint64(data[32:40])
	h.Duration = engine.Uint64(data[40:48])
	h.CreationTimeMs = engine.Uint64(data[48:56])

	return nil
}

// Bytes serializes the ProcessingHeader into a fresh byte slice.
func (h *ProcessingHeader) Bytes() []byte {
	b := make([]byte, ProcessingHeaderSize)
	h.marshalBase(b)
	engine.PutUint64(b[32:40], h.TimesliceID)
	engine.PutUint64(b[40:48], h.Duration)
	engine.PutUint64(b[48:56], h.CreationTimeMs)

	return b
}
