package wire

import (
	"fmt"

	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
)

// InterleavedSerializer sends a SubTimeFrame as one batch with equipment
// headers interleaved between their frames.
type InterleavedSerializer struct {
	ch   transport.Channel
	msgs transport.Batch
}

var _ stf.Visitor = (*InterleavedSerializer)(nil)

// NewInterleavedSerializer creates a serializer bound to ch.
func NewInterleavedSerializer(ch transport.Channel) *InterleavedSerializer {
	return &InterleavedSerializer{ch: ch}
}

// VisitSubTimeFrame appends the SubTimeFrame header message and traverses
// the equipments in container order.
func (sz *InterleavedSerializer) VisitSubTimeFrame(s *stf.SubTimeFrame) error {
	hdr, err := s.TakeHeader()
	if err != nil {
		return err
	}

	sz.msgs = append(sz.msgs, transport.NewMessageFromBytes(hdr.Bytes()))

	return s.ForEachEquipment(func(e *stf.EquipmentHBFrames) error {
		return e.Accept(sz)
	})
}

// VisitEquipment appends the equipment header message followed by its frames.
func (sz *InterleavedSerializer) VisitEquipment(e *stf.EquipmentHBFrames) error {
	hdr, frames := e.Take()

	sz.msgs = append(sz.msgs, transport.NewMessageFromBytes(hdr.Bytes()))
	sz.msgs = append(sz.msgs, frames...)

	return nil
}

// Serialize sends s on the bound channel. On success s is empty; the batch
// ownership moves to the channel.
func (sz *InterleavedSerializer) Serialize(s *stf.SubTimeFrame) error {
	sz.msgs = make(transport.Batch, 0, 1+2*s.EquipmentCount())

	if err := s.Accept(sz); err != nil {
		sz.msgs = nil
		return err
	}
	s.Invalidate()

	batch := sz.msgs
	sz.msgs = nil

	return sz.ch.Send(batch)
}

// InterleavedDeserializer rebuilds SubTimeFrames from interleaved batches.
type InterleavedDeserializer struct {
	ch        transport.Channel
	channelID int
}

// NewInterleavedDeserializer creates a deserializer bound to ch. Rebuilt
// SubTimeFrames carry channelID as their allocation hint.
func NewInterleavedDeserializer(ch transport.Channel, channelID int) *InterleavedDeserializer {
	return &InterleavedDeserializer{ch: ch, channelID: channelID}
}

// Deserialize receives the next batch and rebuilds its SubTimeFrame.
func (dz *InterleavedDeserializer) Deserialize() (*stf.SubTimeFrame, error) {
	batch, err := dz.ch.Receive()
	if err != nil {
		return nil, err
	}

	return dz.DeserializeBatch(batch)
}

// DeserializeBatch rebuilds a SubTimeFrame from an already received batch.
// The batch must be consumed exactly; residual messages are a framing error.
func (dz *InterleavedDeserializer) DeserializeBatch(batch transport.Batch) (*stf.SubTimeFrame, error) {
	if len(batch) < 1 {
		return nil, fmt.Errorf("empty batch: %w", errs.ErrFraming)
	}

	var stfHdr header.SubTimeFrameHeader
	if err := stfHdr.Parse(batch[0].Data()); err != nil {
		return nil, fmt.Errorf("SubTimeFrame header: %w", err)
	}

	equipCount := stfHdr.PayloadSize
	s := stf.NewFromHeader(stfHdr, dz.channelID)

	iter := 1
	for i := uint64(0); i < equipCount; i++ {
		if iter >= len(batch) {
			return nil, fmt.Errorf("missing equipment header %d: %w", i, errs.ErrFraming)
		}

		var eqHdr header.DataHeader
		if err := eqHdr.Parse(batch[iter].Data()); err != nil {
			return nil, fmt.Errorf("equipment header %d: %w", i, err)
		}
		iter++

		frameCount := int(eqHdr.PayloadSize)
		if iter+frameCount > len(batch) {
			return nil, fmt.Errorf("missing frames of equipment %d: %w", i, errs.ErrFraming)
		}

		e := stf.NewEquipmentFromHeader(eqHdr)
		if err := e.AddHBFrames(batch[iter : iter+frameCount]); err != nil {
			return nil, err
		}
		iter += frameCount

		if err := s.AddEquipment(e); err != nil {
			return nil, fmt.Errorf("%v: %w", err, errs.ErrFraming)
		}
	}

	if iter != len(batch) {
		return nil, fmt.Errorf("%d residual messages: %w", len(batch)-iter, errs.ErrFraming)
	}

	return s, nil
}
