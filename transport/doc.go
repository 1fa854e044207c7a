// Package transport defines the message transport contract the pipeline is
// built against, and an in-process implementation of it.
//
// The real deployment sits on a zero-copy message transport; this package
// records the parts of its contract the core relies on: messages own their
// payload for their whole lifetime, batches preserve message boundaries, and
// channels deliver whole batches in order. The Pipe implementation provides
// the same semantics inside one process for devices and tests.
package transport
