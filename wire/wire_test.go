package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarklab/datadist/errs"
	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
)

func buildStf(t *testing.T, id uint64, payloads map[uint64][][]byte) *stf.SubTimeFrame {
	t.Helper()

	s := stf.New(0, id)
	for link, frames := range payloads {
		eq := header.NewEquipmentIdentifier(header.DataDescriptionCruData, header.DataOriginCRU, link)
		for _, p := range frames {
			require.NoError(t, s.AddHBFrame(eq, transport.NewMessageFromBytes(p)))
		}
	}

	return s
}

func requireSemanticallyEqual(t *testing.T, got *stf.SubTimeFrame, id uint64, payloads map[uint64][][]byte) {
	t.Helper()

	require.NotNil(t, got)
	require.Equal(t, id, got.ID())
	require.Equal(t, len(payloads), got.EquipmentCount())

	for link, frames := range payloads {
		eq := header.NewEquipmentIdentifier(header.DataDescriptionCruData, header.DataOriginCRU, link)
		e := got.Equipment(eq)
		require.NotNil(t, e, "missing equipment link %d", link)
		require.Equal(t, len(frames), e.FrameCount())
		for i, want := range frames {
			require.Equal(t, want, e.Frames()[i].Data())
		}
	}
}

func TestEmptyStfRoundTripInterleaved(t *testing.T) {
	ch := transport.NewPipe(4)
	sz := NewInterleavedSerializer(ch)
	dz := NewInterleavedDeserializer(ch, 0)

	s := stf.New(0, 42)
	require.NoError(t, sz.Serialize(s))
	require.False(t, s.Valid())

	got, err := dz.Deserialize()
	require.NoError(t, err)
	require.Equal(t, uint64(42), got.ID())
	require.Equal(t, 0, got.EquipmentCount())
}

func TestInterleavedRoundTrip(t *testing.T) {
	payloads := map[uint64][][]byte{
		3: {{0xde, 0xad}, {0xbe}},
		7: {{0x01}, {0x02, 0x02}, {0x03, 0x03, 0x03}},
	}

	ch := transport.NewPipe(4)
	sz := NewInterleavedSerializer(ch)
	dz := NewInterleavedDeserializer(ch, 0)

	require.NoError(t, sz.Serialize(buildStf(t, 13, payloads)))

	got, err := dz.Deserialize()
	require.NoError(t, err)
	requireSemanticallyEqual(t, got, 13, payloads)
}

func TestInterleavedBatchShape(t *testing.T) {
	payloads := map[uint64][][]byte{
		7: {{0x01}, {0x02, 0x02}},
	}

	ch := transport.NewPipe(4)
	require.NoError(t, NewInterleavedSerializer(ch).Serialize(buildStf(t, 1, payloads)))

	batch, err := ch.Receive()
	require.NoError(t, err)
	// stf header, equipment header, two frames
	require.Len(t, batch, 4)
}

func TestSplitRoundTripSingleEquipment(t *testing.T) {
	payloads := map[uint64][][]byte{
		7: {{0x01}, {0x02, 0x02}, {0x03, 0x03, 0x03}},
	}

	ch := transport.NewPipe(4)
	require.NoError(t, NewSplitSerializer(ch).Serialize(buildStf(t, 5, payloads)))

	headers, err := ch.Receive()
	require.NoError(t, err)
	require.Len(t, headers, 2)

	data, err := ch.Receive()
	require.NoError(t, err)
	require.Len(t, data, 3)

	got, err := NewSplitDeserializer(ch, 0).DeserializeBatches(headers, data)
	require.NoError(t, err)
	requireSemanticallyEqual(t, got, 5, payloads)
}

func TestSplitEmptyStfSendsOnlyHeaders(t *testing.T) {
	ch := transport.NewPipe(4)
	require.NoError(t, NewSplitSerializer(ch).Serialize(stf.New(0, 42)))

	headers, err := ch.Receive()
	require.NoError(t, err)
	require.Len(t, headers, 1)

	ch.Close()
	_, err = ch.Receive()
	require.ErrorIs(t, err, errs.ErrChannelClosed)
}

func TestSplitEndToEnd(t *testing.T) {
	payloads := map[uint64][][]byte{
		1: {{0x10}},
		2: {{0x20}, {0x21}},
	}

	ch := transport.NewPipe(4)
	sz := NewSplitSerializer(ch)
	dz := NewSplitDeserializer(ch, 0)

	require.NoError(t, sz.Serialize(buildStf(t, 99, payloads)))

	got, err := dz.Deserialize()
	require.NoError(t, err)
	requireSemanticallyEqual(t, got, 99, payloads)
}

func TestInterleavedFramingErrors(t *testing.T) {
	t.Run("residual messages", func(t *testing.T) {
		ch := transport.NewPipe(4)
		require.NoError(t, NewInterleavedSerializer(ch).Serialize(stf.New(0, 1)))

		batch, err := ch.Receive()
		require.NoError(t, err)
		batch = append(batch, transport.NewMessageFromBytes([]byte{0xff}))

		got, err := NewInterleavedDeserializer(ch, 0).DeserializeBatch(batch)
		require.ErrorIs(t, err, errs.ErrFraming)
		require.Nil(t, got)
	})

	t.Run("missing frames", func(t *testing.T) {
		payloads := map[uint64][][]byte{7: {{0x01}, {0x02}}}
		ch := transport.NewPipe(4)
		require.NoError(t, NewInterleavedSerializer(ch).Serialize(buildStf(t, 1, payloads)))

		batch, err := ch.Receive()
		require.NoError(t, err)

		got, err := NewInterleavedDeserializer(ch, 0).DeserializeBatch(batch[:len(batch)-1])
		require.ErrorIs(t, err, errs.ErrFraming)
		require.Nil(t, got)
	})

	t.Run("empty batch", func(t *testing.T) {
		got, err := NewInterleavedDeserializer(transport.NewPipe(1), 0).DeserializeBatch(nil)
		require.ErrorIs(t, err, errs.ErrFraming)
		require.Nil(t, got)
	})
}

func TestSplitFramingErrors(t *testing.T) {
	payloads := map[uint64][][]byte{7: {{0x01}, {0x02}}}

	serialize := func(t *testing.T) (transport.Batch, transport.Batch) {
		ch := transport.NewPipe(4)
		require.NoError(t, NewSplitSerializer(ch).Serialize(buildStf(t, 1, payloads)))
		headers, err := ch.Receive()
		require.NoError(t, err)
		data, err := ch.Receive()
		require.NoError(t, err)

		return headers, data
	}

	t.Run("residual data", func(t *testing.T) {
		headers, data := serialize(t)
		data = append(data, transport.NewMessageFromBytes([]byte{0xff}))

		got, err := NewSplitDeserializer(transport.NewPipe(1), 0).DeserializeBatches(headers, data)
		require.ErrorIs(t, err, errs.ErrFraming)
		require.Nil(t, got)
	})

	t.Run("missing equipment header", func(t *testing.T) {
		headers, data := serialize(t)

		got, err := NewSplitDeserializer(transport.NewPipe(1), 0).DeserializeBatches(headers[:1], data)
		require.ErrorIs(t, err, errs.ErrFraming)
		require.Nil(t, got)
	})

	t.Run("missing data", func(t *testing.T) {
		headers, data := serialize(t)

		got, err := NewSplitDeserializer(transport.NewPipe(1), 0).DeserializeBatches(headers, data[:1])
		require.ErrorIs(t, err, errs.ErrFraming)
		require.Nil(t, got)
	})
}

func TestLayoutSelection(t *testing.T) {
	l, err := ParseLayout("interleaved")
	require.NoError(t, err)
	require.Equal(t, LayoutInterleaved, l)

	l, err = ParseLayout("split")
	require.NoError(t, err)
	require.Equal(t, LayoutSplit, l)

	_, err = ParseLayout("bogus")
	require.Error(t, err)

	ch := transport.NewPipe(1)
	require.IsType(t, &InterleavedSerializer{}, NewSerializer(LayoutInterleaved, ch))
	require.IsType(t, &SplitSerializer{}, NewSerializer(LayoutSplit, ch))
	require.IsType(t, &InterleavedDeserializer{}, NewDeserializer(LayoutInterleaved, ch, 0))
	require.IsType(t, &SplitDeserializer{}, NewDeserializer(LayoutSplit, ch, 0))
}
