package transport

import "github.com/quarklab/datadist/internal/pool"

// Message is one transport message: a payload buffer that carries its own
// lifetime. A message belongs to exactly one owner at a time; ownership
// moves with the message through queues and channels.
type Message struct {
	buf *pool.ByteBuffer // nil when the payload is caller-provided
	b   []byte
}

// NewMessage allocates a message with a zeroed payload of the given size.
// The payload buffer comes from the message pool; call Release when the
// message is dropped outside the normal send path.
func NewMessage(size int) *Message {
	bb := pool.GetMessageBuffer()
	bb.SetLength(size)

	b := bb.Bytes()
	for i := range b {
		b[i] = 0
	}

	return &Message{buf: bb, b: b}
}

// NewMessageFromBytes wraps an existing payload without copying. The caller
// must not reuse b afterwards.
func NewMessageFromBytes(b []byte) *Message {
	return &Message{b: b}
}

// Data returns the payload bytes.
func (m *Message) Data() []byte {
	return m.b
}

// Size returns the payload size in bytes.
func (m *Message) Size() uint64 {
	return uint64(len(m.b))
}

// Release returns the payload buffer to the pool. The message must not be
// used afterwards. Releasing an unpooled message is a no-op.
func (m *Message) Release() {
	if m.buf != nil {
		pool.PutMessageBuffer(m.buf)
		m.buf = nil
	}
	m.b = nil
}

// Batch is an ordered sequence of messages delivered as one transport unit.
type Batch []*Message
