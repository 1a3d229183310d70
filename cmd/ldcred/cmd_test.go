package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/jsonld/contexts"
)

type testCLI struct {
	t      *testing.T
	dir    string
	config string
}

func newTestCLI(t *testing.T) *testCLI {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ldcred.toml")
	content := "log_level = \"warn\"\n\n" +
		"[resolver]\nmethods = [\"key\"]\n\n" +
		"[keystore]\nprovider = \"bolt\"\npath = \"" + filepath.ToSlash(filepath.Join(dir, "keys.db")) + "\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return &testCLI{t: t, dir: dir, config: configPath}
}

func (c *testCLI) run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", c.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *testCLI) mustRun(args ...string) string {
	out, err := c.run(args...)
	require.NoError(c.t, err, strings.Join(args, " "))
	return out
}

func (c *testCLI) file(name string, v interface{}) string {
	raw, err := json.Marshal(v)
	require.NoError(c.t, err)
	path := filepath.Join(c.dir, name)
	require.NoError(c.t, os.WriteFile(path, raw, 0o600))
	return path
}

func (c *testCLI) createKey(keyType string) string {
	var generated struct {
		DID string `json:"did"`
	}
	require.NoError(c.t, json.Unmarshal([]byte(c.mustRun("key", "create", "--type", keyType)), &generated))
	require.NotEmpty(c.t, generated.DID)
	return generated.DID
}

func TestContextsCmd(t *testing.T) {
	cli := newTestCLI(t)
	out := cli.mustRun("contexts")
	assert.Contains(t, out, contexts.CredentialsV1)
	assert.Contains(t, out, contexts.Ed25519Suite2018)
}

func TestKeyCmd(t *testing.T) {
	cli := newTestCLI(t)
	did := cli.createKey("secp256k1")
	assert.True(t, strings.HasPrefix(did, "did:key:zQ3s"))

	out := cli.mustRun("key", "list")
	assert.Contains(t, out, did)

	_, err := cli.run("key", "create", "--type", "rsa")
	assert.Error(t, err)
}

func TestCredentialAndPresentationCmds(t *testing.T) {
	cli := newTestCLI(t)
	issuer := cli.createKey("ed25519")
	holder := cli.createKey("ed25519")

	unsigned := cli.file("unsigned.json", map[string]interface{}{
		"@context": []interface{}{
			contexts.CredentialsV1,
			map[string]interface{}{"name": "https://schema.org/name"},
		},
		"type":              []string{"VerifiableCredential"},
		"issuer":            issuer,
		"credentialSubject": map[string]interface{}{"id": holder, "name": "Alice"},
	})

	signedOut := cli.mustRun("credential", "issue", "--in", unsigned)
	var signed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(signedOut), &signed))
	require.Contains(t, signed, "proof")

	signedPath := filepath.Join(cli.dir, "signed.json")
	require.NoError(t, os.WriteFile(signedPath, []byte(signedOut), 0o600))
	assert.Equal(t, "credential verified\n", cli.mustRun("credential", "verify", "--in", signedPath))

	signed["credentialSubject"].(map[string]interface{})["name"] = "Mallory"
	_, err := cli.run("credential", "verify", "--in", cli.file("tampered.json", signed))
	assert.Error(t, err)

	var original map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(signedOut), &original))
	presentation := cli.file("presentation.json", map[string]interface{}{
		"holder":               holder,
		"verifiableCredential": []interface{}{original},
	})

	presented := cli.mustRun("presentation", "create", "--in", presentation, "--challenge", "abc")
	presentedPath := filepath.Join(cli.dir, "presented.json")
	require.NoError(t, os.WriteFile(presentedPath, []byte(presented), 0o600))

	assert.Equal(t, "presentation verified\n", cli.mustRun("presentation", "verify", "--in", presentedPath, "--challenge", "abc"))
	_, err = cli.run("presentation", "verify", "--in", presentedPath, "--challenge", "other")
	assert.Error(t, err)
}

func TestIssueWithUnknownIssuer(t *testing.T) {
	cli := newTestCLI(t)
	unsigned := cli.file("unsigned.json", map[string]interface{}{
		"@context":          []interface{}{contexts.CredentialsV1},
		"type":              []string{"VerifiableCredential"},
		"issuer":            "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK",
		"credentialSubject": map[string]interface{}{"id": "did:example:subject"},
	})

	_, err := cli.run("credential", "issue", "--in", unsigned)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key_not_found")
}

func TestReadDocumentFromStdin(t *testing.T) {
	cli := newTestCLI(t)
	issuer := cli.createKey("ed25519")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(`{
		"@context": ["https://www.w3.org/2018/credentials/v1"],
		"type": ["VerifiableCredential"],
		"issuer": "` + issuer + `",
		"credentialSubject": {"id": "did:example:subject"}
	}`))
	cmd.SetArgs([]string{"--config", cli.config, "credential", "issue"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"proof"`)
}
