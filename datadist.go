// Package datadist implements the data distribution core of a detector
// readout pipeline: heartbeat-aligned readout fragments from many front-end
// links are assembled into time-ordered SubTimeFrames, optionally persisted
// to disk, fanned out to a pool of processing nodes, and reassembled into
// full TimeFrames there.
//
// # Package Structure
//
//   - header: self-describing header records and header stacks
//   - stf: the SubTimeFrame container with visitor traversal
//   - wire: SubTimeFrame <-> message batch serialization (two layouts)
//   - stffile: the append-only on-disk SubTimeFrame format
//   - extentvec: a stable-address growable sequence
//   - transport: the message transport contract and an in-process pipe
//   - pipeline: the builder, sender and TimeFrame builder devices
//   - adapter: flattening SubTimeFrames for the downstream framework
//   - compress: stream codecs for the compressed file sink option
//   - readout: the readout batch header
//
// # Basic Usage
//
// Building a SubTimeFrame and writing it to a file:
//
//	s := stf.New(0, 42)
//	eq := header.NewEquipmentIdentifier(header.DataDescriptionCruData, header.DataOriginCRU, 7)
//	_ = s.AddHBFrame(eq, transport.NewMessageFromBytes(payload))
//
//	w, _ := stffile.NewWriter("000000", compress.KindNone)
//	_, _ = w.Write(s)
//	_ = w.Close()
//
// Sending it downstream instead:
//
//	serializer := wire.NewSerializer(wire.LayoutInterleaved, channel)
//	_ = serializer.Serialize(s) // s is consumed
package datadist
