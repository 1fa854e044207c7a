package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

func newLZ4StreamWriter(w io.Writer) io.WriteCloser {
	return lz4.NewWriter(w)
}

func newLZ4StreamReader(r io.Reader) io.ReadCloser {
	return io.NopCloser(lz4.NewReader(r))
}
