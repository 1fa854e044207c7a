// Package stffile implements the self-describing, append-only SubTimeFrame
// file format.
//
// A file is a sequence of STF records. Each record is a file-level
// DataHeader sentinel, a fixed Meta block carrying the record size, and one
// (DataHeader, payload) block pair per heartbeat frame in equipment order.
// All integers are little-endian with no padding between records.
//
// Alongside every file the writer maintains a sidecar index
// ("<name>.stfidx") of (offset, size, xxhash64) records, one per STF, which
// readers use to verify record integrity opportunistically.
package stffile
