package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	bolt, err := NewBoltDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"bolt":   bolt,
		"memory": NewMemoryDB(),
	}

	for name, db := range stores {
		t.Run(name, func(t *testing.T) {
			t.Cleanup(func() {
				_ = db.Close()
			})

			// create a name space and a message in it
			namespace := MakeNamespace("keys", "ed25519")
			assert.Equal(t, "keys-ed25519", namespace)

			kid1 := "did:key:z6Mk1#z6Mk1"
			k1Bytes, err := json.Marshal(map[string]string{"type": "Ed25519"})
			require.NoError(t, err)
			require.NoError(t, db.Write(namespace, kid1, k1Bytes))

			// get it back
			got, err := db.Read(namespace, kid1)
			require.NoError(t, err)
			assert.JSONEq(t, string(k1Bytes), string(got))

			// get a value from a namespace that doesn't exist
			res, err := db.Read("bad", "worse")
			assert.NoError(t, err)
			assert.Empty(t, res)

			// get a value that doesn't exist in the namespace
			noValue, err := db.Read(namespace, "missing")
			assert.NoError(t, err)
			assert.Empty(t, noValue)

			kid2 := "did:key:z6Mk2#z6Mk2"
			require.NoError(t, db.Write(namespace, kid2, []byte(`{}`)))

			all, err := db.ReadAll(namespace)
			require.NoError(t, err)
			assert.Len(t, all, 2)
			assert.Contains(t, all, kid1)
			assert.Contains(t, all, kid2)

			require.NoError(t, db.Delete(namespace, kid1))
			all, err = db.ReadAll(namespace)
			require.NoError(t, err)
			assert.Len(t, all, 1)

			assert.Error(t, db.Delete("bad", kid1))
		})
	}
}
