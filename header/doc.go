// Package header implements the self-describing header records shared by the
// datadist wire and file formats.
//
// Every record starts with a fixed 32-byte BaseHeader carrying its own size,
// a type tag, the serialization method and a version. Headers chain into
// header stacks: a contiguous sequence of BaseHeader-derived records, each
// flagged when another header follows, walked by successive size advances.
//
// All integers are little-endian. Layouts are frozen; the only permitted
// evolution is the monotonically increasing version field.
package header
