package util

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// MaxDecompressedSize bounds the output of Decompress. Status lists are far smaller.
const MaxDecompressedSize = 16 << 20

// ErrTooLarge is returned when data exceeds its size bound.
var ErrTooLarge = errors.New("data too large")

// Compress gzips data at the best compression level.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gz.Write(data); err != nil {
		return nil, errors.Wrap(err, "gzip write")
	}
	if err := gz.Close(); err != nil {
		return nil, errors.Wrap(err, "gzip close")
	}
	return buf.Bytes(), nil
}

// Decompress gunzips data, reading at most MaxDecompressedSize bytes.
func Decompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "invalid gzip data")
	}
	defer gz.Close()

	out, err := ReadLimited(gz, MaxDecompressedSize)
	if err != nil {
		return nil, errors.Wrap(err, "gzip read")
	}
	return out, nil
}

// CompressToBase64URL gzips data and encodes it as unpadded base64url.
func CompressToBase64URL(data []byte) (string, error) {
	compressed, err := Compress(data)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(compressed), nil
}

// DecompressFromBase64URL reverses CompressToBase64URL. Padded input is accepted.
func DecompressFromBase64URL(data string) ([]byte, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return nil, errors.Wrap(err, "invalid base64url data")
	}
	return Decompress(compressed)
}
