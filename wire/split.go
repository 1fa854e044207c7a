package wire

import (
	"fmt"

	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
)

// SplitSerializer sends a SubTimeFrame as two batches: all headers first,
// then all frames. A SubTimeFrame without equipments sends only the headers
// batch.
type SplitSerializer struct {
	ch      transport.Channel
	headers transport.Batch
	data    transport.Batch
}

var _ stf.Visitor = (*SplitSerializer)(nil)

// NewSplitSerializer creates a serializer bound to ch.
func NewSplitSerializer(ch transport.Channel) *SplitSerializer {
	return &SplitSerializer{ch: ch}
}

// VisitSubTimeFrame appends the SubTimeFrame header to the headers batch and
// traverses the equipments in container order.
func (sz *SplitSerializer) VisitSubTimeFrame(s *stf.SubTimeFrame) error {
	hdr, err := s.TakeHeader()
	if err != nil {
		return err
	}

	sz.headers = append(sz.headers, transport.NewMessageFromBytes(hdr.Bytes()))

	return s.ForEachEquipment(func(e *stf.EquipmentHBFrames) error {
		return e.Accept(sz)
	})
}

// VisitEquipment appends the equipment header to the headers batch and its
// frames to the data batch.
func (sz *SplitSerializer) VisitEquipment(e *stf.EquipmentHBFrames) error {
	hdr, frames := e.Take()

	sz.headers = append(sz.headers, transport.NewMessageFromBytes(hdr.Bytes()))
	sz.data = append(sz.data, frames...)

	return nil
}

// Serialize sends s on the bound channel. On success s is empty.
func (sz *SplitSerializer) Serialize(s *stf.SubTimeFrame) error {
	sz.headers = make(transport.Batch, 0, 1+s.EquipmentCount())
	sz.data = nil

	if err := s.Accept(sz); err != nil {
		sz.headers, sz.data = nil, nil
		return err
	}
	s.Invalidate()

	headers := sz.headers
	data := sz.data
	sz.headers, sz.data = nil, nil

	sendData := len(headers) > 1

	if err := sz.ch.Send(headers); err != nil {
		return err
	}
	if sendData {
		return sz.ch.Send(data)
	}

	return nil
}

// SplitDeserializer rebuilds SubTimeFrames from split header/data batches.
type SplitDeserializer struct {
	ch        transport.Channel
	channelID int
}

// NewSplitDeserializer creates a deserializer bound to ch. Rebuilt
// SubTimeFrames carry channelID as their allocation hint.
func NewSplitDeserializer(ch transport.Channel, channelID int) *SplitDeserializer {
	return &SplitDeserializer{ch: ch, channelID: channelID}
}

// Deserialize receives the headers batch, then the data batch when
// equipments are present, and rebuilds the SubTimeFrame.
func (dz *SplitDeserializer) Deserialize() (*stf.SubTimeFrame, error) {
	headers, err := dz.ch.Receive()
	if err != nil {
		return nil, err
	}

	var data transport.Batch
	if len(headers) > 1 {
		if data, err = dz.ch.Receive(); err != nil {
			return nil, err
		}
	}

	return dz.DeserializeBatches(headers, data)
}

// DeserializeBatches rebuilds a SubTimeFrame from already received batches.
// Both batches must be consumed exactly; residual messages in either are a
// framing error.
func (dz *SplitDeserializer) DeserializeBatches(headers, data transport.Batch) (*stf.SubTimeFrame, error) {
	if len(headers) < 1 {
		return nil, fmt.Errorf("empty headers batch: %w", errs.ErrFraming)
	}

	var stfHdr header.SubTimeFrameHeader
	if err := stfHdr.Parse(headers[0].Data()); err != nil {
		return nil, fmt.Errorf("SubTimeFrame header: %w", err)
	}

	equipCount := stfHdr.PayloadSize
	if uint64(len(headers)-1) != equipCount {
		return nil, fmt.Errorf("header batch of %d for %d equipments: %w",
			len(headers), equipCount, errs.ErrFraming)
	}

	s := stf.NewFromHeader(stfHdr, dz.channelID)

	dataIter := 0
	for i := uint64(0); i < equipCount; i++ {
		var eqHdr header.DataHeader
		if err := eqHdr.Parse(headers[1+i].Data()); err != nil {
			return nil, fmt.Errorf("equipment header %d: %w", i, err)
		}

		frameCount := int(eqHdr.PayloadSize)
		if dataIter+frameCount > len(data) {
			return nil, fmt.Errorf("missing frames of equipment %d: %w", i, errs.ErrFraming)
		}

		e := stf.NewEquipmentFromHeader(eqHdr)
		if err := e.AddHBFrames(data[dataIter : dataIter+frameCount]); err != nil {
			return nil, err
		}
		dataIter += frameCount

		if err := s.AddEquipment(e); err != nil {
			return nil, fmt.Errorf("%v: %w", err, errs.ErrFraming)
		}
	}

	if dataIter != len(data) {
		return nil, fmt.Errorf("%d residual data messages: %w", len(data)-dataIter, errs.ErrFraming)
	}

	return s, nil
}
