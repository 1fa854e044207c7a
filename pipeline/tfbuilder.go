package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/internal/queue"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
	"github.com/quarklab/datadist/wire"
)

// TfBuilderConfig configures the TimeFrame builder device.
type TfBuilderConfig struct {
	// FlpCount is the number of builder nodes contributing SubTimeFrames.
	FlpCount int

	// Layout selects the serialization layout of the inputs.
	Layout wire.Layout

	// InputChannelID is the allocation hint stamped on received
	// SubTimeFrames.
	InputChannelID int
}

// TfBuilder reassembles full TimeFrames: one input goroutine per builder
// node deserializes SubTimeFrames, and parts sharing an id merge until all
// contributions arrived. Complete TimeFrames surface on Queue.
type TfBuilder struct {
	cfg    TfBuilderConfig
	inputs []transport.Channel

	qTf *queue.Fifo[*stf.SubTimeFrame]

	mu      sync.Mutex
	pending map[uint64]*pendingTf

	running atomic.Bool
	inputWg sync.WaitGroup

	log *slog.Logger
}

type pendingTf struct {
	tf    *stf.SubTimeFrame
	parts int
}

// NewTfBuilder creates a TimeFrame builder with one input channel per
// builder node. len(inputs) must equal cfg.FlpCount.
func NewTfBuilder(cfg TfBuilderConfig, inputs []transport.Channel) (*TfBuilder, error) {
	if cfg.FlpCount < 1 {
		return nil, fmt.Errorf("flp-node-count %d out of range", cfg.FlpCount)
	}
	if len(inputs) != cfg.FlpCount {
		return nil, fmt.Errorf("%d input channels for flp-node-count %d", len(inputs), cfg.FlpCount)
	}

	return &TfBuilder{
		cfg:     cfg,
		inputs:  inputs,
		qTf:     queue.NewFifo[*stf.SubTimeFrame](),
		pending: make(map[uint64]*pendingTf),
		log:     slog.Default().With("component", "tf-builder"),
	}, nil
}

// Queue returns the queue complete TimeFrames are pushed to.
func (b *TfBuilder) Queue() *queue.Fifo[*stf.SubTimeFrame] {
	return b.qTf
}

// Start launches the input stages.
func (b *TfBuilder) Start() {
	b.running.Store(true)

	for idx, ch := range b.inputs {
		b.inputWg.Add(1)
		go b.inputLoop(idx, ch)
	}
}

// Stop shuts the device down. TimeFrames still missing contributions are
// dropped.
func (b *TfBuilder) Stop() {
	b.running.Store(false)

	for _, ch := range b.inputs {
		ch.Close()
	}
	b.inputWg.Wait()

	b.qTf.Stop()

	b.mu.Lock()
	for id, p := range b.pending {
		p.tf.Invalidate()
		delete(b.pending, id)
	}
	b.mu.Unlock()

	b.log.Info("TimeFrame builder terminated")
}

func (b *TfBuilder) inputLoop(idx int, ch transport.Channel) {
	defer b.inputWg.Done()

	deserializer := wire.NewDeserializer(b.cfg.Layout, ch, b.cfg.InputChannelID)

	for b.running.Load() {
		next, err := deserializer.Deserialize()
		if err != nil {
			if b.running.Load() && !errors.Is(err, errs.ErrChannelClosed) {
				b.log.Error("error while receiving a SubTimeFrame, exiting", "flp", idx, "err", err)
			}

			return
		}

		b.addPart(next)
	}
}

// addPart merges one SubTimeFrame contribution, completing the TimeFrame
// once every builder node delivered its part.
func (b *TfBuilder) addPart(part *stf.SubTimeFrame) {
	id := part.ID()

	b.mu.Lock()

	p, ok := b.pending[id]
	if !ok {
		p = &pendingTf{tf: part}
		b.pending[id] = p
	} else {
		if err := p.tf.MergeFrom(part); err != nil {
			b.log.Error("merging SubTimeFrame failed", "tf", id, "err", err)
		}
	}
	p.parts++

	var complete *stf.SubTimeFrame
	if p.parts == b.cfg.FlpCount {
		complete = p.tf
		delete(b.pending, id)
	}

	b.mu.Unlock()

	if complete != nil {
		b.qTf.Push(complete)
	}
}
