package stf

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/readout"
	"github.com/quarklab/datadist/transport"
)

// ID identifies a (Sub)TimeFrame. Ids are assigned by the readout and are
// dense and monotonic within one run.
type ID = uint64

// SubTimeFrame groups the heartbeat frames of all equipments of one builder
// node for one time-frame interval.
//
// The header's PayloadSize always equals the number of equipment entries.
// An instance is either populated (header present) or consumed/moved-from;
// public mutations reject the consumed state with errs.ErrInvalidStf.
type SubTimeFrame struct {
	hdr       header.SubTimeFrameHeader
	populated bool

	// equipment identity -> frames; iteration always in key sort order
	data map[header.EquipmentIdentifier]*EquipmentHBFrames

	// channel used to allocate header messages, an ownership hint for the
	// transport
	channelID int
}

// New creates an empty SubTimeFrame with the given id. channelID names the
// transport channel header messages are allocated on.
func New(channelID int, id ID) *SubTimeFrame {
	return &SubTimeFrame{
		hdr:       header.NewSubTimeFrameHeader(id),
		populated: true,
		data:      make(map[header.EquipmentIdentifier]*EquipmentHBFrames),
		channelID: channelID,
	}
}

// NewFromHeader adopts a deserialized SubTimeFrame header. The equipment
// count recorded in the header is restored as equipments are added.
func NewFromHeader(hdr header.SubTimeFrameHeader, channelID int) *SubTimeFrame {
	hdr.PayloadSize = 0
	return &SubTimeFrame{
		hdr:       hdr,
		populated: true,
		data:      make(map[header.EquipmentIdentifier]*EquipmentHBFrames),
		channelID: channelID,
	}
}

// Valid reports whether the SubTimeFrame is populated, i.e. not consumed.
func (s *SubTimeFrame) Valid() bool {
	return s.populated
}

// ID returns the time-frame id.
func (s *SubTimeFrame) ID() ID {
	return s.hdr.ID
}

// Header returns the SubTimeFrame header.
func (s *SubTimeFrame) Header() *header.SubTimeFrameHeader {
	return &s.hdr
}

// ChannelID returns the transport channel hint this SubTimeFrame was
// created with.
func (s *SubTimeFrame) ChannelID() int {
	return s.channelID
}

// EquipmentCount returns the number of equipment entries.
func (s *SubTimeFrame) EquipmentCount() int {
	return len(s.data)
}

// AddHBFrame appends one heartbeat frame to the given equipment, creating
// the equipment entry when absent.
func (s *SubTimeFrame) AddHBFrame(eq header.EquipmentIdentifier, msg *transport.Message) error {
	if !s.populated {
		return errs.ErrInvalidStf
	}

	e, ok := s.data[eq]
	if !ok {
		e = NewEquipmentHBFrames(eq)
		s.data[eq] = e
		s.hdr.PayloadSize = uint64(len(s.data))
	}

	return e.AddHBFrame(msg)
}

// AddHBFrames bulk-moves a readout batch in. The equipment identity is
// derived from the readout header's link id.
func (s *SubTimeFrame) AddHBFrames(rh readout.SubTimeframeHeader, msgs []*transport.Message) error {
	if !s.populated {
		return errs.ErrInvalidStf
	}

	eq := header.NewEquipmentIdentifier(
		header.DataDescriptionCruData,
		header.DataOriginCRU,
		uint64(rh.LinkID),
	)

	e, ok := s.data[eq]
	if !ok {
		e = NewEquipmentHBFrames(eq)
		s.data[eq] = e
		s.hdr.PayloadSize = uint64(len(s.data))
	}

	return e.AddHBFrames(msgs)
}

// addEquipment inserts a complete equipment entry. Used by deserializers,
// the file reader and MergeFrom. Returns false if the identity is already
// present; the entry is not inserted in that case.
func (s *SubTimeFrame) addEquipment(e *EquipmentHBFrames) bool {
	eq := e.EquipmentIdentifier()
	if _, ok := s.data[eq]; ok {
		return false
	}

	s.data[eq] = e
	s.hdr.PayloadSize = uint64(len(s.data))

	return true
}

// AddEquipment inserts a complete equipment entry, preserving the equipment
// count invariant. Inserting a duplicate identity is an error.
func (s *SubTimeFrame) AddEquipment(e *EquipmentHBFrames) error {
	if !s.populated {
		return errs.ErrInvalidStf
	}
	if !s.addEquipment(e) {
		return fmt.Errorf("equipment %s already present", e.EquipmentIdentifier())
	}

	return nil
}

// dupEquipmentWarn limits the duplicate-equipment warning to the first
// occurrence per process; see MergeFrom.
var dupEquipmentWarn sync.Once

// MergeFrom adopts all equipment data of o, which must carry the same id.
// A duplicate equipment identity keeps the already-present entry and skips
// the incoming one; the first such occurrence per process is logged.
// o is left in the consumed state.
func (s *SubTimeFrame) MergeFrom(o *SubTimeFrame) error {
	if !s.populated || !o.populated {
		return errs.ErrInvalidStf
	}
	if s.hdr.ID != o.hdr.ID {
		return errs.ErrIDMismatch
	}

	for _, eq := range o.EquipmentIdentifiers() {
		e := o.data[eq]
		if s.addEquipment(e) {
			// adopted; detach from the source so Invalidate does not release it
			delete(o.data, eq)
		} else {
			dupEquipmentWarn.Do(func() {
				slog.Warn("equipment already present, skipping", "equipment", eq.String(), "stf", s.hdr.ID)
			})
		}
	}

	o.Invalidate()

	return nil
}

// DataSize sums payload bytes across all equipments and frames.
func (s *SubTimeFrame) DataSize() uint64 {
	var size uint64
	for _, e := range s.data {
		size += e.DataSize()
	}

	return size
}

// EquipmentIdentifiers returns all equipment identities in sort order.
func (s *SubTimeFrame) EquipmentIdentifiers() []header.EquipmentIdentifier {
	keys := make([]header.EquipmentIdentifier, 0, len(s.data))
	for eq := range s.data {
		keys = append(keys, eq)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	return keys
}

// Equipment returns the frame collection of the given identity, or nil.
func (s *SubTimeFrame) Equipment(eq header.EquipmentIdentifier) *EquipmentHBFrames {
	return s.data[eq]
}

// ForEachEquipment calls fn for every equipment in EquipmentIdentifier sort
// order. This is the only iteration order the container exposes; it fixes
// serialization and on-disk ordering.
func (s *SubTimeFrame) ForEachEquipment(fn func(e *EquipmentHBFrames) error) error {
	for _, eq := range s.EquipmentIdentifiers() {
		if err := fn(s.data[eq]); err != nil {
			return err
		}
	}

	return nil
}

// TakeHeader moves the header out, leaving the SubTimeFrame consumed except
// for its equipment map, which the caller is expected to drain. Used by
// serializers.
func (s *SubTimeFrame) TakeHeader() (header.SubTimeFrameHeader, error) {
	if !s.populated {
		return header.SubTimeFrameHeader{}, errs.ErrInvalidStf
	}

	s.populated = false

	return s.hdr, nil
}

// Invalidate releases the header and drops all equipment entries, leaving
// the moved-from state. Dropping entries releases their messages.
func (s *SubTimeFrame) Invalidate() {
	s.populated = false
	for _, e := range s.data {
		_, frames := e.Take()
		for _, f := range frames {
			f.Release()
		}
	}
	s.data = make(map[header.EquipmentIdentifier]*EquipmentHBFrames)
	s.hdr.PayloadSize = 0
}

// removeEquipment detaches an equipment entry. Used by the splitter.
func (s *SubTimeFrame) removeEquipment(eq header.EquipmentIdentifier) *EquipmentHBFrames {
	e, ok := s.data[eq]
	if !ok {
		return nil
	}

	delete(s.data, eq)
	s.hdr.PayloadSize = uint64(len(s.data))

	return e
}

// Accept dispatches the mutating visitor on this SubTimeFrame.
func (s *SubTimeFrame) Accept(v Visitor) error {
	return v.VisitSubTimeFrame(s)
}

// AcceptConst dispatches the read-only visitor on this SubTimeFrame.
func (s *SubTimeFrame) AcceptConst(v ConstVisitor) error {
	return v.VisitSubTimeFrameConst(s)
}
