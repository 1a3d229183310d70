package contexts

import (
	"maps"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonmap"
)

func TestContextLoader_HasAndGet(t *testing.T) {
	supplied := Contexts{
		"https://example.com/a": {"@context": map[string]interface{}{"a": "https://example.com/vocab#a"}},
		"https://example.com/b": {"@context": map[string]interface{}{"b": "https://example.com/vocab#b"}},
	}
	loader := NewContextLoader(supplied)

	for url, doc := range supplied {
		assert.True(t, loader.Has(url))
		assert.Equal(t, doc, loader.Get(url))
	}

	assert.False(t, loader.Has("https://example.com/missing"))
	assert.Nil(t, loader.Get("https://example.com/missing"))
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, loader.URLs())
}

func TestContextLoader_LaterSourceWins(t *testing.T) {
	first := Contexts{"https://example.com/a": {"@context": map[string]interface{}{"v": "1"}}}
	second := Contexts{"https://example.com/a": {"@context": map[string]interface{}{"v": "2"}}}

	loader := NewContextLoader(first, second)
	assert.Equal(t, second["https://example.com/a"], loader.Get("https://example.com/a"))
}

func TestContextLoader_IsolatedFromSources(t *testing.T) {
	source := Contexts{"https://example.com/a": {"@context": map[string]interface{}{"v": "1"}}}
	loader := NewContextLoader(source)

	source["https://example.com/a"]["@context"].(map[string]interface{})["v"] = "changed"
	source["https://example.com/b"] = jsonmap.JSONMap{}

	got := loader.Get("https://example.com/a")
	assert.Equal(t, "1", got["@context"].(map[string]interface{})["v"])
	assert.False(t, loader.Has("https://example.com/b"))

	got["@context"] = "mutated"
	assert.NotEqual(t, "mutated", loader.Get("https://example.com/a")["@context"])
}

func TestFromSeq(t *testing.T) {
	m := map[string]jsonmap.JSONMap{
		"https://example.com/a": {"@context": map[string]interface{}{}},
	}
	loader := NewContextLoader(FromSeq(maps.All(m)))
	assert.True(t, loader.Has("https://example.com/a"))
}

func TestDefault(t *testing.T) {
	loader := NewContextLoader(Default())

	for _, url := range []string{
		CredentialsV1, DIDV1, Ed25519Suite2018, Ed25519Suite2020,
		Secp256k1Suite, JWSSuite2020, BbsV1, StatusList2021,
	} {
		require.True(t, loader.Has(url), url)
		assert.NotNil(t, loader.Get(url)["@context"], url)
	}

	credentials := loader.Get(CredentialsV1)
	ctx, ok := jsonmap.AsObject(credentials["@context"])
	require.True(t, ok)
	assert.Equal(t, true, ctx["@protected"])
	assert.Contains(t, ctx, "VerifiableCredential")
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.jsonld")
	require.NoError(t, os.WriteFile(good, []byte(`{"@context": {"name": "http://schema.org/name"}}`), 0600))
	bad := filepath.Join(dir, "bad.jsonld")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name": "x"}`), 0600))

	loaded, err := LoadFiles(map[string]string{"https://example.com/good": good})
	require.NoError(t, err)
	assert.Contains(t, loaded, "https://example.com/good")

	_, err = LoadFiles(map[string]string{"https://example.com/bad": bad})
	assert.Error(t, err)

	_, err = LoadFiles(map[string]string{"https://example.com/missing": filepath.Join(dir, "missing.jsonld")})
	assert.Error(t, err)
}

func TestContextLoader_LoadDocument(t *testing.T) {
	loader := NewContextLoader(Default())

	remote, err := loader.LoadDocument(CredentialsV1)
	require.NoError(t, err)
	assert.Equal(t, CredentialsV1, remote.DocumentURL)
	doc, ok := remote.Document.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, doc, "@context")

	_, err = loader.LoadDocument("https://example.com/unknown")
	assert.Error(t, err)
}
