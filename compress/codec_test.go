package compress

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarklab/datadist/errs"
)

func TestStreamRoundTrip(t *testing.T) {
	payload := make([]byte, 1<<16)
	rand.New(rand.NewSource(1)).Read(payload[:1<<15])
	// second half stays zero so every codec has something to compress

	for _, kind := range []Kind{KindNone, KindZstd, KindLZ4, KindS2} {
		t.Run(kind.String(), func(t *testing.T) {
			var buf bytes.Buffer

			w, err := NewStreamWriter(kind, &buf)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewStreamReader(kind, bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.Equal(t, payload, got)
		})
	}
}

func TestKindNames(t *testing.T) {
	for _, tc := range []struct {
		name   string
		kind   Kind
		suffix string
	}{
		{"none", KindNone, ""},
		{"zstd", KindZstd, ".zst"},
		{"lz4", KindLZ4, ".lz4"},
		{"s2", KindS2, ".s2"},
	} {
		kind, err := ParseKind(tc.name)
		require.NoError(t, err)
		require.Equal(t, tc.kind, kind)
		require.Equal(t, tc.name, kind.String())
		require.Equal(t, tc.suffix, kind.Suffix())
	}

	kind, err := ParseKind("")
	require.NoError(t, err)
	require.Equal(t, KindNone, kind)

	_, err = ParseKind("gzip")
	require.ErrorIs(t, err, errs.ErrUnknownCompression)
}

func TestKindForPath(t *testing.T) {
	require.Equal(t, KindZstd, KindForPath("dir/000001.zst"))
	require.Equal(t, KindLZ4, KindForPath("000001.lz4"))
	require.Equal(t, KindS2, KindForPath("000001.s2"))
	require.Equal(t, KindNone, KindForPath("000001"))
}
