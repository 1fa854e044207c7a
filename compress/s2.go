package compress

import (
	"io"

	"github.com/klauspost/compress/s2"
)

func newS2StreamWriter(w io.Writer) io.WriteCloser {
	return s2.NewWriter(w)
}

func newS2StreamReader(r io.Reader) io.ReadCloser {
	return io.NopCloser(s2.NewReader(r))
}
