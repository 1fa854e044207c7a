// Package pool provides pooled byte buffers in two size classes: the message
// class backs transport message payloads, and the larger staging class is
// available for bulk buffers.
package pool

import (
	"io"
	"sync"
)

// Default sizes for the two pooled buffer classes: transport message
// payloads and staging buffers.
const (
	MessageBufferDefaultSize  = 1024 * 8         // 8KiB
	MessageBufferMaxThreshold = 1024 * 1024      // 1MiB
	StagingBufferDefaultSize  = 1024 * 256       // 256KiB
	StagingBufferMaxThreshold = 1024 * 1024 * 16 // 16MiB
)

// ByteBuffer is a growable byte slice with explicit length control.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// SetLength sets the length of the buffer to n, growing the allocation when
// the capacity is insufficient.
func (bb *ByteBuffer) SetLength(n int) {
	if n <= cap(bb.B) {
		bb.B = bb.B[:n]
		return
	}

	grown := make([]byte, n)
	copy(grown, bb.B)
	bb.B = grown
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally. A maximum size threshold avoids retaining
// overly large buffers that would lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the
// specified default capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	messageDefaultPool = NewByteBufferPool(MessageBufferDefaultSize, MessageBufferMaxThreshold)
	stagingDefaultPool = NewByteBufferPool(StagingBufferDefaultSize, StagingBufferMaxThreshold)
)

// GetMessageBuffer retrieves a ByteBuffer from the default message pool.
func GetMessageBuffer() *ByteBuffer {
	return messageDefaultPool.Get()
}

// PutMessageBuffer returns a ByteBuffer to the default message pool.
func PutMessageBuffer(bb *ByteBuffer) {
	messageDefaultPool.Put(bb)
}

// GetStagingBuffer retrieves a ByteBuffer from the default staging pool.
func GetStagingBuffer() *ByteBuffer {
	return stagingDefaultPool.Get()
}

// PutStagingBuffer returns a ByteBuffer to the default staging pool.
func PutStagingBuffer(bb *ByteBuffer) {
	stagingDefaultPool.Put(bb)
}
