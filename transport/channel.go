package transport

import (
	"sync"

	"github.com/quarklab/datadist/errs"
)

// Channel moves message batches between pipeline stages or processes.
// Implementations must preserve batch boundaries and batch order.
type Channel interface {
	// NewMessage allocates a message suitable for sending on this channel.
	NewMessage(size int) *Message

	// Send delivers one batch. It blocks while the channel is full and
	// returns errs.ErrChannelClosed once the channel is closed.
	Send(batch Batch) error

	// Receive blocks for the next batch. After Close, buffered batches are
	// still delivered; afterwards Receive returns errs.ErrChannelClosed.
	Receive() (Batch, error)

	// Close closes the channel. Safe to call more than once.
	Close() error
}

// Pipe is an in-process Channel backed by a buffered Go channel. It stands
// in for the zero-copy transport in tests and single-process deployments.
type Pipe struct {
	ch   chan Batch
	done chan struct{}
	once sync.Once
}

var _ Channel = (*Pipe)(nil)

// NewPipe creates a pipe buffering up to capacity batches.
func NewPipe(capacity int) *Pipe {
	return &Pipe{
		ch:   make(chan Batch, capacity),
		done: make(chan struct{}),
	}
}

// NewMessage allocates a message for sending on this pipe.
func (p *Pipe) NewMessage(size int) *Message {
	return NewMessage(size)
}

// Send delivers one batch, blocking while the pipe is full.
func (p *Pipe) Send(batch Batch) error {
	// a closed pipe must refuse the batch even when buffer space is free
	select {
	case <-p.done:
		return errs.ErrChannelClosed
	default:
	}

	select {
	case p.ch <- batch:
		return nil
	case <-p.done:
		return errs.ErrChannelClosed
	}
}

// Receive blocks for the next batch. Batches buffered before Close are still
// delivered.
func (p *Pipe) Receive() (Batch, error) {
	select {
	case b := <-p.ch:
		return b, nil
	case <-p.done:
		// drain anything buffered before the close
		select {
		case b := <-p.ch:
			return b, nil
		default:
			return nil, errs.ErrChannelClosed
		}
	}
}

// Close closes the pipe and wakes all blocked senders and receivers.
func (p *Pipe) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
