package stf

// Visitor is the mutating visitor over the SubTimeFrame hierarchy, used by
// serializers that consume the visited objects.
//
// A visitor is accepted by the SubTimeFrame first; its VisitSubTimeFrame
// implementation traverses the equipments via ForEachEquipment, which fixes
// iteration to EquipmentIdentifier sort order.
type Visitor interface {
	VisitSubTimeFrame(s *SubTimeFrame) error
	VisitEquipment(e *EquipmentHBFrames) error
}

// ConstVisitor is the read-only visitor over the SubTimeFrame hierarchy,
// used by the file writer. Implementations must not mutate the visited
// objects.
type ConstVisitor interface {
	VisitSubTimeFrameConst(s *SubTimeFrame) error
	VisitEquipmentConst(e *EquipmentHBFrames) error
}
