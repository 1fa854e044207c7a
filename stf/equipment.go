package stf

import (
	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/transport"
)

// EquipmentHBFrames holds the ordered heartbeat frames of one equipment
// within a SubTimeFrame. The equipment header's PayloadSize always equals
// the number of frames; every mutation maintains that invariant.
type EquipmentHBFrames struct {
	hdr       header.DataHeader
	populated bool
	frames    []*transport.Message
}

// NewEquipmentHBFrames creates an empty frame collection for the given
// equipment.
func NewEquipmentHBFrames(eq header.EquipmentIdentifier) *EquipmentHBFrames {
	return &EquipmentHBFrames{
		hdr:       header.NewDataHeader(eq.Description, eq.Origin, eq.SubSpecification, 0),
		populated: true,
	}
}

// NewEquipmentFromHeader adopts a deserialized equipment header. The frame
// count recorded in the header is restored as frames are added.
func NewEquipmentFromHeader(hdr header.DataHeader) *EquipmentHBFrames {
	hdr.PayloadSize = 0
	return &EquipmentHBFrames{hdr: hdr, populated: true}
}

// Valid reports whether the collection still owns its header, i.e. has not
// been consumed by a serializer.
func (e *EquipmentHBFrames) Valid() bool {
	return e.populated
}

// Header returns the equipment header.
func (e *EquipmentHBFrames) Header() *header.DataHeader {
	return &e.hdr
}

// EquipmentIdentifier returns the identity of this equipment.
func (e *EquipmentHBFrames) EquipmentIdentifier() header.EquipmentIdentifier {
	return header.EquipmentIdentifierFromDataHeader(&e.hdr)
}

// AddHBFrame appends one heartbeat frame.
func (e *EquipmentHBFrames) AddHBFrame(msg *transport.Message) error {
	if !e.populated {
		return errs.ErrInvalidStf
	}

	e.frames = append(e.frames, msg)
	e.hdr.PayloadSize = uint64(len(e.frames))

	return nil
}

// AddHBFrames appends a sequence of heartbeat frames, taking ownership of
// the slice contents.
func (e *EquipmentHBFrames) AddHBFrames(msgs []*transport.Message) error {
	if !e.populated {
		return errs.ErrInvalidStf
	}

	e.frames = append(e.frames, msgs...)
	e.hdr.PayloadSize = uint64(len(e.frames))

	return nil
}

// Frames returns the frames in arrival order. The returned slice is owned
// by the collection.
func (e *EquipmentHBFrames) Frames() []*transport.Message {
	return e.frames
}

// FrameCount returns the number of heartbeat frames.
func (e *EquipmentHBFrames) FrameCount() int {
	return len(e.frames)
}

// DataSize sums the payload bytes across all frames.
func (e *EquipmentHBFrames) DataSize() uint64 {
	var size uint64
	for _, f := range e.frames {
		size += f.Size()
	}

	return size
}

// Take moves the header and frames out, leaving the collection in the
// consumed state. Used by serializers and adapters.
func (e *EquipmentHBFrames) Take() (header.DataHeader, []*transport.Message) {
	hdr := e.hdr
	frames := e.frames

	e.populated = false
	e.frames = nil

	return hdr, frames
}

// Accept dispatches the mutating visitor on this equipment.
func (e *EquipmentHBFrames) Accept(v Visitor) error {
	return v.VisitEquipment(e)
}

// AcceptConst dispatches the read-only visitor on this equipment.
func (e *EquipmentHBFrames) AcceptConst(v ConstVisitor) error {
	return v.VisitEquipmentConst(e)
}
