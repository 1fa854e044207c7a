package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	b := make([]byte, 8)
	engine.PutUint64(b, 0x0102030405060708)
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, b)
	require.Equal(t, uint64(0x0102030405060708), engine.Uint64(b))

	appended := engine.AppendUint32(nil, 0xdeadbeef)
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, appended)
}

func TestCheckEndianness(t *testing.T) {
	order := CheckEndianness()
	require.Contains(t, []binary.ByteOrder{binary.LittleEndian, binary.BigEndian}, order)
	require.Equal(t, order == binary.LittleEndian, IsNativeLittleEndian())
}

func TestBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	b := make([]byte, 4)
	engine.PutUint32(b, 0x01020304)
	require.Equal(t, []byte{1, 2, 3, 4}, b)
}
