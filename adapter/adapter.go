// Package adapter flattens SubTimeFrames into the (header stack, payload)
// pairs the downstream processing framework consumes.
//
// For the heartbeat frame at index j of equipment e, the header stack is
// DataHeader(e, payload size), HBFrameHeader(j), ProcessingHeader(timeslice).
// The timeslice id is seeded with a start time and advances by a configured
// step per emitted pair, so every pair carries a distinct, monotonically
// increasing timeslice. Equipments flatten in EquipmentIdentifier sort
// order, and the source SubTimeFrame is consumed.
package adapter

import (
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
)

// Adapter converts SubTimeFrames into flat header-stack/payload vectors.
// Not safe for concurrent use; the timeslice sequence is per adapter.
type Adapter struct {
	timeslice uint64
	step      uint64

	stacks   [][]byte
	payloads []*transport.Message
}

var _ stf.Visitor = (*Adapter)(nil)

// New creates an adapter whose timeslice ids start at startTime and advance
// by step per emitted pair.
func New(startTime, step uint64) *Adapter {
	return &Adapter{timeslice: startTime, step: step}
}

// VisitSubTimeFrame traverses the equipments in container order and
// releases the SubTimeFrame header.
func (a *Adapter) VisitSubTimeFrame(s *stf.SubTimeFrame) error {
	if _, err := s.TakeHeader(); err != nil {
		return err
	}

	return s.ForEachEquipment(func(e *stf.EquipmentHBFrames) error {
		return e.Accept(a)
	})
}

// VisitEquipment emits one (header stack, payload) pair per heartbeat
// frame, advancing the timeslice id by the configured step per pair.
func (a *Adapter) VisitEquipment(e *stf.EquipmentHBFrames) error {
	eqHdr, frames := e.Take()

	for j, frame := range frames {
		dataHdr := header.NewDataHeader(
			eqHdr.DataDescription,
			eqHdr.DataOrigin,
			eqHdr.SubSpecification,
			frame.Size(),
		)
		hbfHdr := header.NewHBFrameHeader(uint32(j))
		procHdr := header.NewProcessingHeader(a.timeslice)
		a.timeslice += a.step

		a.stacks = append(a.stacks, header.NewStack(&dataHdr, &hbfHdr, &procHdr))
		a.payloads = append(a.payloads, frame)
	}

	return nil
}

// Adapt consumes s and returns the parallel header-stack and payload
// vectors. Both have one entry per heartbeat frame.
func (a *Adapter) Adapt(s *stf.SubTimeFrame) ([][]byte, []*transport.Message, error) {
	a.stacks = nil
	a.payloads = nil

	if err := s.Accept(a); err != nil {
		a.stacks, a.payloads = nil, nil
		return nil, nil, err
	}
	s.Invalidate()

	stacks := a.stacks
	payloads := a.payloads
	a.stacks, a.payloads = nil, nil

	return stacks, payloads, nil
}
