package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarklab/datadist/header"
	"github.com/quarklab/datadist/stf"
	"github.com/quarklab/datadist/transport"
)

func buildStf(t *testing.T) *stf.SubTimeFrame {
	t.Helper()

	s := stf.New(0, 5)
	eqA := header.NewEquipmentIdentifier(header.DataDescriptionCruData, header.DataOriginCRU, 1)
	eqB := header.NewEquipmentIdentifier(header.DataDescriptionCruData, header.DataOriginCRU, 2)

	require.NoError(t, s.AddHBFrame(eqA, transport.NewMessageFromBytes([]byte{0x0a})))
	require.NoError(t, s.AddHBFrame(eqA, transport.NewMessageFromBytes([]byte{0x0b, 0x0b})))
	require.NoError(t, s.AddHBFrame(eqB, transport.NewMessageFromBytes([]byte{0x0c})))

	return s
}

func TestAdaptFlattensInOrder(t *testing.T) {
	a := New(1000, 10)

	stacks, payloads, err := a.Adapt(buildStf(t))
	require.NoError(t, err)
	require.Len(t, stacks, 3)
	require.Len(t, payloads, 3)

	// equipment order is identifier sort order, frames keep arrival order
	require.Equal(t, []byte{0x0a}, payloads[0].Data())
	require.Equal(t, []byte{0x0b, 0x0b}, payloads[1].Data())
	require.Equal(t, []byte{0x0c}, payloads[2].Data())
}

func TestAdaptHeaderStacks(t *testing.T) {
	a := New(1000, 10)

	stacks, payloads, err := a.Adapt(buildStf(t))
	require.NoError(t, err)

	wantHbf := []uint32{0, 1, 0} // frame ordinal restarts per equipment
	wantSub := []uint64{1, 1, 2}
	// the timeslice advances by one step per emitted pair
	wantTimeslice := []uint64{1000, 1010, 1020}

	for i, stack := range stacks {
		var types []header.HeaderType
		var records [][]byte
		require.NoError(t, header.WalkStack(stack, func(base header.BaseHeader, record []byte) error {
			types = append(types, base.Type)
			records = append(records, record)

			return nil
		}))

		require.Equal(t, []header.HeaderType{
			header.HeaderTypeData,
			header.HeaderTypeHBFrame,
			header.HeaderTypeProcessing,
		}, types)

		var dh header.DataHeader
		require.NoError(t, dh.Parse(records[0]))
		require.Equal(t, header.DataDescriptionCruData, dh.DataDescription)
		require.Equal(t, header.DataOriginCRU, dh.DataOrigin)
		require.Equal(t, wantSub[i], dh.SubSpecification)
		require.Equal(t, payloads[i].Size(), dh.PayloadSize)

		var hbf header.HBFrameHeader
		require.NoError(t, hbf.Parse(records[1]))
		require.Equal(t, wantHbf[i], hbf.HBFrameID)

		var ph header.ProcessingHeader
		require.NoError(t, ph.Parse(records[2]))
		require.Equal(t, wantTimeslice[i], ph.TimesliceID)
	}
}

func TestAdaptAdvancesTimeslicePerPair(t *testing.T) {
	a := New(100, 7)

	timeslices := func(stacks [][]byte) []uint64 {
		var ids []uint64
		for _, stack := range stacks {
			var ph header.ProcessingHeader
			require.NoError(t, header.WalkStack(stack, func(base header.BaseHeader, record []byte) error {
				if base.Type == header.HeaderTypeProcessing {
					return ph.Parse(record)
				}

				return nil
			}))
			ids = append(ids, ph.TimesliceID)
		}

		return ids
	}

	// every pair of a three-frame SubTimeFrame gets a distinct,
	// monotonically increasing timeslice
	stacks, _, err := a.Adapt(buildStf(t))
	require.NoError(t, err)
	require.Equal(t, []uint64{100, 107, 114}, timeslices(stacks))

	// the sequence continues across SubTimeFrames
	stacks, _, err = a.Adapt(buildStf(t))
	require.NoError(t, err)
	require.Equal(t, []uint64{121, 128, 135}, timeslices(stacks))
}

func TestAdaptConsumesSource(t *testing.T) {
	a := New(0, 1)

	s := buildStf(t)
	_, _, err := a.Adapt(s)
	require.NoError(t, err)
	require.False(t, s.Valid())
	require.Equal(t, 0, s.EquipmentCount())
}
