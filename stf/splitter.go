package stf

import (
	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
)

// DataIdentifierSplitter extracts all equipments matching a
// (description, origin) pattern out of a SubTimeFrame into a new one with
// the same id. Either pattern component may be the Any wildcard.
//
// The source keeps the equipments that did not match; matched equipments
// move to the result.
type DataIdentifierSplitter struct{}

// Split moves every equipment of s selected by id into a new SubTimeFrame.
func (DataIdentifierSplitter) Split(s *SubTimeFrame, id header.DataIdentifier, channelID int) (*SubTimeFrame, error) {
	if !s.Valid() {
		return nil, errs.ErrInvalidStf
	}

	out := New(channelID, s.ID())

	for _, eq := range s.EquipmentIdentifiers() {
		if !id.Matches(eq) {
			continue
		}
		if e := s.removeEquipment(eq); e != nil {
			out.data[eq] = e
		}
	}
	out.hdr.PayloadSize = uint64(len(out.data))

	return out, nil
}
