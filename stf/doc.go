// Package stf implements the SubTimeFrame data model: a hierarchical
// container grouping heartbeat frames by equipment identity under a shared
// time-frame id.
//
// SubTimeFrames are move-only: exactly one pipeline stage owns an instance
// at any moment, and ownership transfers through queues. Serializers and
// writers traverse the hierarchy through the Visitor / ConstVisitor
// interface pair; iteration order over equipments is always
// EquipmentIdentifier sort order and is defined by the container, never by
// the visitor.
package stf
