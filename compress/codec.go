// Package compress provides the stream codecs behind the compressed file
// sink option.
//
// Compression wraps the whole file stream: the on-disk SubTimeFrame record
// layout inside the envelope is unchanged, and readers select the codec by
// the file name suffix. The default kind None keeps files bit-exact to the
// uncompressed format.
package compress

import (
	"io"
	"strings"

	"github.com/quarklab/datadist/errs"
)

// Kind selects a stream codec.
type Kind uint8

const (
	// KindNone writes the stream unmodified.
	KindNone Kind = iota
	// KindZstd uses Zstandard. Best ratio of the supported codecs.
	KindZstd
	// KindLZ4 uses LZ4. Fastest decompression.
	KindLZ4
	// KindS2 uses S2, the Snappy-compatible high-throughput codec.
	KindS2
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindZstd:
		return "zstd"
	case KindLZ4:
		return "lz4"
	case KindS2:
		return "s2"
	default:
		return "unknown"
	}
}

// Suffix returns the file name suffix of the kind, empty for KindNone.
func (k Kind) Suffix() string {
	switch k {
	case KindZstd:
		return ".zst"
	case KindLZ4:
		return ".lz4"
	case KindS2:
		return ".s2"
	default:
		return ""
	}
}

// ParseKind parses a configuration value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "none":
		return KindNone, nil
	case "zstd":
		return KindZstd, nil
	case "lz4":
		return KindLZ4, nil
	case "s2":
		return KindS2, nil
	default:
		return KindNone, errs.ErrUnknownCompression
	}
}

// KindForPath derives the codec of an existing file from its name suffix.
func KindForPath(path string) Kind {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return KindZstd
	case strings.HasSuffix(path, ".lz4"):
		return KindLZ4
	case strings.HasSuffix(path, ".s2"):
		return KindS2
	default:
		return KindNone
	}
}

// NewStreamWriter wraps w with the compressing writer of the given kind.
// The returned writer must be closed to flush the codec frame; closing it
// does not close w.
func NewStreamWriter(k Kind, w io.Writer) (io.WriteCloser, error) {
	switch k {
	case KindNone:
		return nopWriteCloser{w}, nil
	case KindZstd:
		return newZstdStreamWriter(w)
	case KindLZ4:
		return newLZ4StreamWriter(w), nil
	case KindS2:
		return newS2StreamWriter(w), nil
	default:
		return nil, errs.ErrUnknownCompression
	}
}

// NewStreamReader wraps r with the decompressing reader of the given kind.
func NewStreamReader(k Kind, r io.Reader) (io.ReadCloser, error) {
	switch k {
	case KindNone:
		return io.NopCloser(r), nil
	case KindZstd:
		return newZstdStreamReader(r)
	case KindLZ4:
		return newLZ4StreamReader(r), nil
	case KindS2:
		return newS2StreamReader(r), nil
	default:
		return nil, errs.ErrUnknownCompression
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
