package client

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plain = "the quick brown fox jumps over the lazy dog"

func TestDecodeBody(t *testing.T) {
	var zl bytes.Buffer
	zw := zlib.NewWriter(&zl)
	_, _ = zw.Write([]byte(plain))
	require.NoError(t, zw.Close())

	var fl bytes.Buffer
	fw, err := flate.NewWriter(&fl, flate.DefaultCompression)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(plain))
	require.NoError(t, fw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zs := enc.EncodeAll([]byte(plain), nil)
	require.NoError(t, enc.Close())

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"identity", "", []byte(plain)},
		{"deflate zlib", "deflate", zl.Bytes()},
		{"deflate raw", "deflate", fl.Bytes()},
		{"zstd", "zstd", zs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{"Content-Length": {"42"}}
			if tt.encoding != "" {
				header.Set("Content-Encoding", tt.encoding)
			}

			out, err := decodeBody(header, bytes.NewReader(tt.body), maxBodySize)
			require.NoError(t, err)
			assert.Equal(t, plain, string(out))
			assert.Empty(t, header.Get("Content-Encoding"))
			if tt.encoding != "" {
				assert.Empty(t, header.Get("Content-Length"))
			}
		})
	}
}

func TestDecodeBodyPassesUnknownEncodings(t *testing.T) {
	for _, encoding := range []string{"br", "gzip, br"} {
		header := http.Header{"Content-Encoding": {encoding}}
		out, err := decodeBody(header, bytes.NewReader([]byte("opaque")), maxBodySize)
		require.NoError(t, err)
		assert.Equal(t, "opaque", string(out))
		assert.Equal(t, encoding, header.Get("Content-Encoding"))
	}
}

func TestDecodeBodyRejectsCorruptGzip(t *testing.T) {
	header := http.Header{"Content-Encoding": {"gzip"}}
	_, err := decodeBody(header, bytes.NewReader([]byte("not gzip")), maxBodySize)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode gzip body")
}

func TestDecodeBodyRejectsOversizedBodies(t *testing.T) {
	_, err := decodeBody(http.Header{}, bytes.NewReader([]byte(plain)), 16)
	require.ErrorIs(t, err, ErrBodyTooLarge)

	out, err := decodeBody(http.Header{}, bytes.NewReader([]byte(plain)), int64(len(plain)))
	require.NoError(t, err)
	assert.Equal(t, plain, string(out))
}

func TestDecodeBodyRejectsOversizedDecodedBodies(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(bytes.Repeat([]byte("a"), 4096))
	require.NoError(t, zw.Close())
	require.Less(t, buf.Len(), 1024)

	header := http.Header{"Content-Encoding": {"deflate"}}
	_, err := decodeBody(header, bytes.NewReader(buf.Bytes()), 1024)
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Equal(t, "deflate", header.Get("Content-Encoding"))
}
