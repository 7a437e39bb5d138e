package storage

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// Compression is the container format wrapping a CSV stream.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression sniffs the magic bytes at the head of br without
// consuming them.
func DetectCompression(br *bufio.Reader) Compression {
	head, _ := br.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// decompress wraps r in the matching decoder. The returned closer releases
// decoder state and must be called by the caller.
func decompress(r io.Reader) (io.Reader, func() error, error) {
	br := bufio.NewReader(r)
	noop := func() error { return nil }

	switch DetectCompression(br) {
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, noop, fmt.Errorf("gzip: open stream: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, noop, fmt.Errorf("xz: open stream: %w", err)
		}
		return xr, noop, nil
	default:
		return br, noop, nil
	}
}
