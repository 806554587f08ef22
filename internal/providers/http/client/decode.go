package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// maxBodySize caps a body, before and after decoding
const maxBodySize = 64 << 20

// ErrBodyTooLarge is returned when a body exceeds the size cap
var ErrBodyTooLarge = errors.New("response body too large")

// decodeBody reads body and undoes a single Content-Encoding. Decoded
// responses lose their Content-Encoding and Content-Length headers so the
// raw dump stays self-consistent. Unknown or stacked encodings pass
// through untouched. Bodies larger than limit fail with ErrBodyTooLarge
// rather than being cut short.
func decodeBody(header http.Header, body io.Reader, limit int64) ([]byte, error) {
	data, err := readLimited(body, limit)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	encoding := strings.ToLower(strings.TrimSpace(header.Get("Content-Encoding")))
	if encoding == "" || encoding == "identity" || len(data) == 0 {
		return data, nil
	}

	var decoded []byte
	switch encoding {
	case "gzip", "x-gzip":
		decoded, err = gunzip(data, limit)
	case "deflate":
		decoded, err = inflate(data, limit)
	case "zstd":
		decoded, err = unzstd(data, limit)
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", encoding, err)
	}

	header.Del("Content-Encoding")
	header.Del("Content-Length")
	return decoded, nil
}

// readLimited reads all of r, failing once more than limit bytes arrive
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, limit)
	}
	return data, nil
}

func gunzip(data []byte, limit int64) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return readLimited(r, limit)
}

// inflate accepts both zlib wrapped and raw deflate streams; servers use
// either for "deflate".
func inflate(data []byte, limit int64) ([]byte, error) {
	if r, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
		defer r.Close()
		out, err := readLimited(r, limit)
		if err == nil || errors.Is(err, ErrBodyTooLarge) {
			return out, err
		}
	}

	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return readLimited(r, limit)
}

func unzstd(data []byte, limit int64) ([]byte, error) {
	d, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(maxBodySize))
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return readLimited(d, limit)
}
