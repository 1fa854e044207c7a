//go:build cgo

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// Zstandard streams via the libzstd binding. Faster than the pure-Go
// implementation for the large sequential streams the file sink produces.

const zstdCgoLevel = 3

func newZstdStreamWriter(w io.Writer) (io.WriteCloser, error) {
	return gozstd.NewWriterLevel(w, zstdCgoLevel), nil
}

func newZstdStreamReader(r io.Reader) (io.ReadCloser, error) {
	return gozstdReadCloser{gozstd.NewReader(r)}, nil
}

type gozstdReadCloser struct {
	*gozstd.Reader
}

func (g gozstdReadCloser) Close() error {
	g.Reader.Release()
	return nil
}
