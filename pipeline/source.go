package pipeline

import (
	"log/slog"
	"math/rand"
	"sync"

	"github.com/quarklab/datadist/readout"
	"github.com/quarklab/datadist/transport"
)

// ReadoutSourceConfig configures the synthetic readout generator.
type ReadoutSourceConfig struct {
	// StfCount is the number of time frames to emit per link, 0 for
	// unbounded.
	StfCount uint64

	// FramesPerStf is the number of heartbeat frames per batch.
	FramesPerStf int

	// FrameSize is the payload size of each generated frame.
	FrameSize int

	// Seed makes the generated payloads reproducible.
	Seed int64
}

// ReadoutSource generates synthetic readout batches, one goroutine per
// link channel. It stands in for the readout processes when exercising the
// pipeline without detector hardware.
type ReadoutSource struct {
	cfg   ReadoutSourceConfig
	links []transport.Channel

	wg  sync.WaitGroup
	log *slog.Logger
}

// NewReadoutSource creates a generator feeding the given link channels.
func NewReadoutSource(cfg ReadoutSourceConfig, links []transport.Channel) *ReadoutSource {
	if cfg.FramesPerStf < 1 {
		cfg.FramesPerStf = 1
	}
	if cfg.FrameSize < 1 {
		cfg.FrameSize = 1
	}

	return &ReadoutSource{
		cfg:   cfg,
		links: links,
		log:   slog.Default().With("component", "readout-source"),
	}
}

// Start launches one generator goroutine per link.
func (s *ReadoutSource) Start() {
	for idx, ch := range s.links {
		s.wg.Add(1)
		go s.generate(uint32(idx), ch)
	}
}

// Wait blocks until all generators emitted their batches and closed their
// channels.
func (s *ReadoutSource) Wait() {
	s.wg.Wait()
}

func (s *ReadoutSource) generate(linkID uint32, ch transport.Channel) {
	defer s.wg.Done()
	defer ch.Close()

	rng := rand.New(rand.NewSource(s.cfg.Seed + int64(linkID)))

	for tfID := uint64(0); s.cfg.StfCount == 0 || tfID < s.cfg.StfCount; tfID++ {
		rh := readout.NewSubTimeframeHeader(tfID, linkID, uint32(s.cfg.FramesPerStf))

		batch := make(transport.Batch, 0, 1+s.cfg.FramesPerStf)
		batch = append(batch, transport.NewMessageFromBytes(rh.Bytes()))

		for i := 0; i < s.cfg.FramesPerStf; i++ {
			msg := ch.NewMessage(s.cfg.FrameSize)
			rng.Read(msg.Data())
			batch = append(batch, msg)
		}

		if err := ch.Send(batch); err != nil {
			return
		}
	}

	s.log.Info("readout source done", "link", linkID, "stfs", s.cfg.StfCount)
}
