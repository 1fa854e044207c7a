package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/internal/queue"
	"github.com/quarklab/datadist/readout"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
	"github.com/quarklab/datadist/wire"
)

// CRU count bounds: one input thread runs per readout link channel.
const (
	MinCruCount = 1
	MaxCruCount = 32
)

// BuilderConfig configures the SubTimeFrame builder device.
type BuilderConfig struct {
	// CruCount is the number of readout input channels, in [1, 32].
	CruCount int

	// Layout selects the output serialization layout.
	Layout wire.Layout

	// OutputChannelID is the allocation hint stamped on assembled
	// SubTimeFrames.
	OutputChannelID int

	// Sink configures the optional persistence stage.
	Sink SinkConfig
}

// StfBuilder assembles readout batches into SubTimeFrames and sends them
// downstream: one input goroutine per readout channel feeds the builder
// queue, the optional file sink persists, and the output goroutine
// serializes.
type StfBuilder struct {
	cfg    BuilderConfig
	inputs []transport.Channel
	output transport.Channel

	qBuilt *queue.Fifo[*stf.SubTimeFrame]
	qOut   *queue.Fifo[*stf.SubTimeFrame]
	sink   *FileSink

	running  atomic.Bool
	inputWg  sync.WaitGroup
	outputWg sync.WaitGroup

	log *slog.Logger
}

// NewStfBuilder creates a builder device reading from the given input
// channels and sending on output. len(inputs) must equal cfg.CruCount.
func NewStfBuilder(cfg BuilderConfig, inputs []transport.Channel, output transport.Channel) (*StfBuilder, error) {
	if cfg.CruCount < MinCruCount || cfg.CruCount > MaxCruCount {
		return nil, fmt.Errorf("cru-count %d out of range [%d, %d]", cfg.CruCount, MinCruCount, MaxCruCount)
	}
	if len(inputs) != cfg.CruCount {
		return nil, fmt.Errorf("%d input channels for cru-count %d", len(inputs), cfg.CruCount)
	}

	b := &StfBuilder{
		cfg:    cfg,
		inputs: inputs,
		output: output,
		qBuilt: queue.NewFifo[*stf.SubTimeFrame](),
		qOut:   queue.NewFifo[*stf.SubTimeFrame](),
		log:    slog.Default().With("component", "stf-builder"),
	}

	sink, err := NewFileSink(cfg.Sink, b.qBuilt, b.qOut)
	if err != nil {
		return nil, err
	}
	b.sink = sink

	return b, nil
}

// outQueue returns the queue the output stage consumes: the sink output
// when the sink runs, the builder queue when it is bypassed.
func (b *StfBuilder) outQueue() *queue.Fifo[*stf.SubTimeFrame] {
	if b.sink.Enabled() {
		return b.qOut
	}

	return b.qBuilt
}

// Start launches the input, sink and output stages.
func (b *StfBuilder) Start() {
	b.running.Store(true)

	if b.sink.Enabled() {
		b.sink.Start()
	}

	b.outputWg.Add(1)
	go b.outputLoop()

	for idx, ch := range b.inputs {
		b.inputWg.Add(1)
		go b.inputLoop(idx, ch)
	}
}

// Stop shuts the device down leaves-first: input channels close and their
// goroutines drain, then each queue stops in pipeline order. SubTimeFrames
// still being assembled are dropped.
func (b *StfBuilder) Stop() {
	b.running.Store(false)

	for _, ch := range b.inputs {
		ch.Close()
	}
	b.inputWg.Wait()

	b.qBuilt.Stop()
	if b.sink.Enabled() {
		b.sink.Stop()
	}
	b.qOut.Stop()
	b.outputWg.Wait()

	b.log.Info("builder terminated")
}

// inputLoop receives readout batches from one channel, accumulating frames
// into the SubTimeFrame of the current id and completing it when the id
// advances.
func (b *StfBuilder) inputLoop(idx int, ch transport.Channel) {
	defer b.inputWg.Done()

	var current *stf.SubTimeFrame

	for b.running.Load() {
		batch, err := ch.Receive()
		if err != nil {
			if b.running.Load() && !errors.Is(err, errs.ErrChannelClosed) {
				b.log.Error("input receive failed", "input", idx, "err", err)
			}

			return
		}

		if len(batch) < 1 {
			continue
		}

		var rh readout.SubTimeframeHeader
		if err := rh.Parse(batch[0].Data()); err != nil {
			b.log.Error("bad readout header, dropping batch", "input", idx, "err", err)
			continue
		}

		if current != nil && current.ID() != rh.TimeframeID {
			b.qBuilt.Push(current)
			current = nil
		}
		if current == nil {
			current = stf.New(b.cfg.OutputChannelID, rh.TimeframeID)
		}

		if err := current.AddHBFrames(rh, batch[1:]); err != nil {
			b.log.Error("adding HB frames failed", "input", idx, "err", err)
		}
	}
}

// outputLoop serializes completed SubTimeFrames onto the output channel.
func (b *StfBuilder) outputLoop() {
	defer b.outputWg.Done()

	serializer := wire.NewSerializer(b.cfg.Layout, b.output)
	q := b.outQueue()

	for {
		next, ok := q.Pop()
		if !ok {
			break
		}

		if err := serializer.Serialize(next); err != nil {
			if b.running.Load() {
				b.log.Error("send failed", "stf", next.ID(), "err", err)
			} else {
				b.log.Info("send failed during shutdown", "stf", next.ID(), "err", err)
			}

			break
		}
	}

	b.log.Info("exiting output loop")
}
