package header

import (
	"bytes"
	"fmt"
)

// EquipmentIdentifier uniquely names a readout source by its data
// description, origin and sub-specification.
//
// The total order is lexicographic on (Description, SubSpecification,
// Origin). Ordering defines the serialization and on-disk layout of
// equipments within a SubTimeFrame.
type EquipmentIdentifier struct {
	Description      DataDescription
	Origin           DataOrigin
	SubSpecification uint64
}

// NewEquipmentIdentifier creates an identifier from its three components.
func NewEquipmentIdentifier(desc DataDescription, origin DataOrigin, subSpec uint64) EquipmentIdentifier {
	return EquipmentIdentifier{
		Description:      desc,
		Origin:           origin,
		SubSpecification: subSpec,
	}
}

// EquipmentIdentifierFromDataHeader derives the identifier of the equipment
// a data header belongs to.
func EquipmentIdentifierFromDataHeader(h *DataHeader) EquipmentIdentifier {
	return EquipmentIdentifier{
		Description:      h.DataDescription,
		Origin:           h.DataOrigin,
		SubSpecification: h.SubSpecification,
	}
}

// Less reports whether e orders before o.
func (e EquipmentIdentifier) Less(o EquipmentIdentifier) bool {
	if c := bytes.Compare(e.Description[:], o.Description[:]); c != 0 {
		return c < 0
	}
	if e.SubSpecification != o.SubSpecification {
		return e.SubSpecification < o.SubSpecification
	}

	return bytes.Compare(e.Origin[:], o.Origin[:]) < 0
}

// String formats the identifier for logs.
func (e EquipmentIdentifier) String() string {
	return fmt.Sprintf("%s/%s/%d", e.Description, e.Origin, e.SubSpecification)
}

// DataIdentifier is a (description, origin) match pattern. Either component
// may be the Any wildcard.
type DataIdentifier struct {
	Description DataDescription
	Origin      DataOrigin
}

// NewDataIdentifier creates a match pattern from a description and origin.
func NewDataIdentifier(desc DataDescription, origin DataOrigin) DataIdentifier {
	return DataIdentifier{Description: desc, Origin: origin}
}

// Matches reports whether the pattern selects the given equipment.
func (d DataIdentifier) Matches(e EquipmentIdentifier) bool {
	if d.Description != DataDescriptionAny && d.Description != e.Description {
		return false
	}
	if d.Origin != DataOriginAny && d.Origin != e.Origin {
		return false
	}

	return true
}
