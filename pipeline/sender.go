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

// SenderConfig configures the SubTimeFrame sender device.
type SenderConfig struct {
	// EpnCount is the number of destination nodes.
	EpnCount int

	// SendSlots bounds the number of SubTimeFrames in flight across all
	// destinations.
	SendSlots int

	// Layout selects the serialization layout on both sides.
	Layout wire.Layout

	// InputChannelID is the allocation hint stamped on received
	// SubTimeFrames.
	InputChannelID int
}

// StfSender receives SubTimeFrames from a builder and fans them out to the
// destination nodes: round-robin on the id, bounded by the global send-slot
// pool.
//
// Ordering: SubTimeFrames sharing a destination leave in scheduler order;
// between destinations no order is implied.
type StfSender struct {
	cfg     SenderConfig
	input   transport.Channel
	outputs []transport.Channel

	qIn   *queue.Fifo[*stf.SubTimeFrame]
	qEpn  []*queue.Fifo[*stf.SubTimeFrame]
	slots *queue.SendSlots

	running     atomic.Bool
	inputWg     sync.WaitGroup
	schedulerWg sync.WaitGroup
	senderWg    sync.WaitGroup

	log *slog.Logger
}

// NewStfSender creates a sender device with one output channel per
// destination. len(outputs) must equal cfg.EpnCount.
func NewStfSender(cfg SenderConfig, input transport.Channel, outputs []transport.Channel) (*StfSender, error) {
	if cfg.EpnCount < 1 {
		return nil, fmt.Errorf("epn-node-count %d out of range", cfg.EpnCount)
	}
	if len(outputs) != cfg.EpnCount {
		return nil, fmt.Errorf("%d output channels for epn-node-count %d", len(outputs), cfg.EpnCount)
	}
	if cfg.SendSlots < 1 {
		return nil, fmt.Errorf("send slot count %d out of range", cfg.SendSlots)
	}

	s := &StfSender{
		cfg:     cfg,
		input:   input,
		outputs: outputs,
		qIn:     queue.NewFifo[*stf.SubTimeFrame](),
		slots:   queue.NewSendSlots(cfg.SendSlots),
		log:     slog.Default().With("component", "stf-sender"),
	}
	for i := 0; i < cfg.EpnCount; i++ {
		s.qEpn = append(s.qEpn, queue.NewFifo[*stf.SubTimeFrame]())
	}

	return s, nil
}

// Start launches the input, scheduler and per-destination sender stages.
func (s *StfSender) Start() {
	s.running.Store(true)

	for i := range s.outputs {
		s.senderWg.Add(1)
		go s.senderLoop(uint64(i))
	}

	s.schedulerWg.Add(1)
	go s.schedulerLoop()

	s.inputWg.Add(1)
	go s.inputLoop()
}

// Stop shuts the device down: the input channel closes, the input queue
// stops and the scheduler drains, then the destination queues stop and the
// senders drain.
func (s *StfSender) Stop() {
	s.running.Store(false)

	s.input.Close()
	s.inputWg.Wait()

	s.qIn.Stop()
	s.schedulerWg.Wait()

	for _, q := range s.qEpn {
		q.Stop()
	}
	s.senderWg.Wait()

	s.log.Info("sender terminated")
}

// inputLoop deserializes incoming SubTimeFrames and feeds the scheduler.
func (s *StfSender) inputLoop() {
	defer s.inputWg.Done()

	deserializer := wire.NewDeserializer(s.cfg.Layout, s.input, s.cfg.InputChannelID)

	for s.running.Load() {
		next, err := deserializer.Deserialize()
		if err != nil {
			if errors.Is(err, errs.ErrChannelClosed) {
				return
			}

			s.log.Error("error while receiving a SubTimeFrame, exiting", "err", err)

			return
		}

		s.qIn.Push(next)
	}
}

// schedulerLoop assigns each SubTimeFrame its destination (id modulo the
// destination count) after taking a send slot.
func (s *StfSender) schedulerLoop() {
	defer s.schedulerWg.Done()

	for {
		next, ok := s.qIn.Pop()
		if !ok {
			break
		}

		if !s.slots.Acquire(s.running.Load) {
			// shutting down; the in-hand SubTimeFrame is dropped
			next.Invalidate()
			break
		}

		target := next.ID() % uint64(s.cfg.EpnCount)
		s.qEpn[target].Push(next)
	}

	s.log.Info("exiting scheduler loop")
}

// senderLoop serializes SubTimeFrames of one destination, releasing a send
// slot after every completed send.
func (s *StfSender) senderLoop(epnIdx uint64) {
	defer s.senderWg.Done()

	serializer := wire.NewSerializer(s.cfg.Layout, s.outputs[epnIdx])

	for {
		next, ok := s.qEpn[epnIdx].Pop()
		if !ok {
			break
		}

		if err := serializer.Serialize(next); err != nil {
			if s.running.Load() {
				s.log.Error("send failed", "epn", epnIdx, "stf", next.ID(), "err", err)
			} else {
				s.log.Info("send failed during shutdown", "epn", epnIdx, "stf", next.ID(), "err", err)
			}

			break
		}

		s.slots.Release()
	}

	s.log.Info("exiting sender loop", "epn", epnIdx)
}
