// Package wire converts SubTimeFrames to and from transport message batches.
//
// Two layouts exist. The interleaved layout sends one batch of the form
// [stfHeader, eq1Header, eq1Frame..., eq2Header, eq2Frame..., ...]. The
// split layout sends a headers batch [stfHeader, eq1Header, eq2Header, ...]
// followed by a data batch with all frames; a SubTimeFrame without
// equipments sends only the headers batch.
//
// Serializers consume their input: after a successful Serialize the source
// SubTimeFrame is empty. Deserializers must consume the received batches
// exactly; any residual or short input is a framing error and yields no
// SubTimeFrame.
package wire
