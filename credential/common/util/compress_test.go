package util

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"simple string", []byte("Hello, World!")},
		{"empty data", []byte{}},
		{"large data", bytes.Repeat([]byte("This is a test string for compression. "), 1000)},
		{"unicode data", []byte("Hello 世界! Привет! こんにちは!")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := Compress(tt.input)
			require.NoError(t, err)
			assert.NotEmpty(t, compressed)

			decompressed, err := Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, len(tt.input), len(decompressed))
			assert.True(t, bytes.Equal(tt.input, decompressed))
		})
	}
}

func TestDecompress(t *testing.T) {
	t.Run("not gzip", func(t *testing.T) {
		_, err := Decompress([]byte("plain text"))
		assert.Error(t, err)
	})

	t.Run("output above the limit", func(t *testing.T) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, err := gz.Write(make([]byte, MaxDecompressedSize+1))
		require.NoError(t, err)
		require.NoError(t, gz.Close())

		_, err = Decompress(buf.Bytes())
		assert.ErrorIs(t, err, ErrTooLarge)
	})
}

func TestDecompressFromBase64URL(t *testing.T) {
	raw := []byte{0x01, 0x80, 0xff}

	t.Run("unpadded", func(t *testing.T) {
		encoded, err := CompressToBase64URL(raw)
		require.NoError(t, err)

		out, err := DecompressFromBase64URL(encoded)
		require.NoError(t, err)
		assert.Equal(t, raw, out)
	})

	t.Run("padded", func(t *testing.T) {
		compressed, err := Compress(raw)
		require.NoError(t, err)

		out, err := DecompressFromBase64URL(base64.URLEncoding.EncodeToString(compressed))
		require.NoError(t, err)
		assert.Equal(t, raw, out)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		_, err := DecompressFromBase64URL("not+base64url/")
		assert.ErrorContains(t, err, "invalid base64url encoding")
	})
}
