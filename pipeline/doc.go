// Package pipeline wires the devices of the data distribution core: the
// SubTimeFrame builder, the sender with its round-robin scheduler, and the
// TimeFrame builder on the receiving side.
//
// Stages are connected by blocking FIFOs; SubTimeFrames move through them
// by ownership transfer, with exactly one stage owning an instance at any
// moment. Shutdown is leaves-first: input channels close, then each queue
// stops in pipeline order, and every stage drains its queue before exiting.
package pipeline
