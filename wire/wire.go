package wire

import (
	"fmt"

	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
)

// Layout selects the message layout of a serializer pair.
type Layout int

const (
	// LayoutInterleaved interleaves equipment headers and frames in one batch.
	LayoutInterleaved Layout = iota + 1
	// LayoutSplit sends a headers batch and a data batch.
	LayoutSplit
)

// String returns the configuration name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutInterleaved:
		return "interleaved"
	case LayoutSplit:
		return "split"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses a configuration value into a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "interleaved":
		return LayoutInterleaved, nil
	case "split":
		return LayoutSplit, nil
	default:
		return 0, fmt.Errorf("unknown serialization layout %q", s)
	}
}

// Serializer converts SubTimeFrames into transport batches and sends them.
// Implementations are single-use per Serialize call but reusable across
// calls; they are not safe for concurrent use.
type Serializer interface {
	// Serialize sends s on the bound channel. On success s is empty.
	Serialize(s *stf.SubTimeFrame) error
}

// Deserializer receives transport batches and rebuilds SubTimeFrames.
type Deserializer interface {
	// Deserialize receives the next SubTimeFrame from the bound channel.
	// A framing error yields a nil SubTimeFrame.
	Deserialize() (*stf.SubTimeFrame, error)
}

// NewSerializer creates a serializer of the given layout bound to ch.
func NewSerializer(l Layout, ch transport.Channel) Serializer {
	switch l {
	case LayoutSplit:
		return NewSplitSerializer(ch)
	default:
		return NewInterleavedSerializer(ch)
	}
}

// NewDeserializer creates a deserializer of the given layout bound to ch.
// Rebuilt SubTimeFrames carry channelID as their allocation hint.
func NewDeserializer(l Layout, ch transport.Channel, channelID int) Deserializer {
	switch l {
	case LayoutSplit:
		return NewSplitDeserializer(ch, channelID)
	default:
		return NewInterleavedDeserializer(ch, channelID)
	}
}
