package httpclient

import (
	"bytes"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// DecodeBody undoes the Content-Encoding of raw. The raw bytes are returned
// unchanged for unknown encodings or when decoding fails.
func DecodeBody(raw []byte, contentEncoding string) []byte {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))
	if encoding == "" || encoding == "identity" || len(raw) == 0 {
		return raw
	}

	decoded, err := decode(raw, encoding)
	if err != nil {
		return raw
	}
	return decoded
}

func decode(raw []byte, encoding string) ([]byte, error) {
	switch encoding {
	case "gzip", "x-gzip":
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case "deflate":
		// Servers disagree on zlib-wrapped vs raw deflate.
		if reader, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer reader.Close()
			if out, err := io.ReadAll(reader); err == nil {
				return out, nil
			}
		}
		reader := flate.NewReader(bytes.NewReader(raw))
		defer reader.Close()
		return io.ReadAll(reader)
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	case "zstd":
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		return decoder.DecodeAll(raw, nil)
	default:
		return nil, NewValidationError("content-encoding", encoding, "unsupported encoding")
	}
}
