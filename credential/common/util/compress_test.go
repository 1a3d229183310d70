package util

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     {},
		"bitstring": make([]byte, 16*1024),
		"text":      bytes.Repeat([]byte("status list "), 100),
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			compressed, err := Compress(input)
			require.NoError(t, err)
			out, err := Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, input, append([]byte{}, out...))

			url, err := CompressToBase64URL(input)
			require.NoError(t, err)
			assert.NotContains(t, url, "=")
			out, err = DecompressFromBase64URL(url)
			require.NoError(t, err)
			assert.Equal(t, input, append([]byte{}, out...))

			padded := base64.URLEncoding.EncodeToString(compressed)
			out, err = DecompressFromBase64URL(padded)
			require.NoError(t, err)
			assert.Equal(t, input, append([]byte{}, out...))
		})
	}
}

func TestDecompressErrors(t *testing.T) {
	_, err := Decompress([]byte("not gzip"))
	assert.Error(t, err)

	_, err = DecompressFromBase64URL("%%%")
	assert.Error(t, err)

	_, err = DecompressFromBase64URL("H4sI+/")
	assert.Error(t, err)
}

func TestDecompressLimit(t *testing.T) {
	compressed, err := Compress(make([]byte, MaxDecompressedSize+1))
	require.NoError(t, err)

	_, err = Decompress(compressed)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSplitJSONObj(t *testing.T) {
	picked, rest := SplitJSONObj(JSONMap{"id": "did:example:1", "name": "Alice"}, "id", "missing")
	assert.Equal(t, JSONMap{"id": "did:example:1"}, picked)
	assert.Equal(t, JSONMap{"name": "Alice"}, rest)
}

func TestOneOrMany(t *testing.T) {
	identity := func(s string) interface{} { return s }
	assert.Nil(t, OneOrMany([]string{}, identity))
	assert.Equal(t, "a", OneOrMany([]string{"a"}, identity))
	assert.Equal(t, []interface{}{"a", "b"}, OneOrMany([]string{"a", "b"}, identity))
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(bytes.NewReader([]byte("abcd")), 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	_, err = ReadLimited(bytes.NewReader([]byte("abcde")), 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}
