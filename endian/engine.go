// Package endian provides byte order utilities for the datadist wire and
// file formats.
//
// All datadist headers, file records and sidecar index entries are
// little-endian by contract. The package combines ByteOrder and
// AppendByteOrder from encoding/binary into a single EndianEngine interface
// so codecs can both patch fixed offsets and append to growing buffers with
// one engine value.
//
// # Thread Safety
//
// The returned EndianEngine instances are immutable and stateless; all
// functions are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations.
//
// The interface is satisfied by binary.LittleEndian and binary.BigEndian,
// keeping it fully compatible with standard library code.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine. This is the byte
// order of every on-wire and on-disk datadist structure.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine. Provided for tooling
// that inspects foreign byte streams; datadist formats never use it.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian, i.e.
// whether header bytes can be reinterpreted in place without byte swapping.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}
