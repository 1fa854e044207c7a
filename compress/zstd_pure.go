//go:build !cgo

package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// Pure-Go Zstandard streams via klauspost/compress. Selected when cgo is
// unavailable; the cgo build uses the libzstd binding instead.

func newZstdStreamWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func newZstdStreamReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	return zstdReadCloser{dec}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}
