package kms

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-ld-credential-sdk/credential/common/crypto"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/model"
	"github.com/pilacorp/go-ld-credential-sdk/credential/common/storage"
)

func TestLocalKeyManager_Keys(t *testing.T) {
	ctx := context.Background()
	km := NewLocalKeyManager(storage.NewMemoryDB())

	for _, keyType := range []model.KeyType{model.KeyTypeEd25519, model.KeyTypeSecp256k1, model.KeyTypeP256} {
		t.Run(string(keyType), func(t *testing.T) {
			key, err := km.CreateKey(ctx, keyType)
			require.NoError(t, err)
			assert.Equal(t, key.PublicKeyHex, key.Kid)

			got, err := km.GetKey(ctx, key.Kid)
			require.NoError(t, err)
			assert.Equal(t, key, got)

			signer, err := km.Signer(ctx, key.Kid)
			require.NoError(t, err)
			assert.Equal(t, key.Kid, signer.KeyID())

			sig, err := signer.Sign(ctx, []byte("payload"))
			require.NoError(t, err)
			assert.NoError(t, crypto.Verify(signer.PublicKey(), []byte("payload"), sig))

			require.NoError(t, km.DeleteKey(ctx, key.Kid))
			_, err = km.GetKey(ctx, key.Kid)
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestLocalKeyManager_ImportKey(t *testing.T) {
	ctx := context.Background()
	km := NewLocalKeyManager(storage.NewMemoryDB())

	priv, err := hex.DecodeString("c6f8cf675b77523c3d3157d322b3c7c4cc14874f290407398361be1a4c1ed7d0")
	require.NoError(t, err)

	key, err := km.ImportKey(ctx, model.KeyTypeSecp256k1, priv)
	require.NoError(t, err)
	assert.Len(t, key.PublicKeyHex, 66)

	_, err = km.ImportKey(ctx, model.KeyTypeSecp256k1, priv[:10])
	assert.Error(t, err)
}

func TestLocalSigner_BBS(t *testing.T) {
	ctx := context.Background()
	km := NewLocalKeyManager(storage.NewMemoryDB())

	key, err := km.CreateKey(ctx, model.KeyTypeBls12381G2)
	require.NoError(t, err)

	signer, err := km.Signer(ctx, key.Kid)
	require.NoError(t, err)
	multi, ok := signer.(MultiMessageSigner)
	require.True(t, ok)

	messages := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	sig, err := multi.SignMessages(ctx, messages)
	require.NoError(t, err)
	assert.NoError(t, crypto.VerifyBBS(signer.PublicKey().Raw, messages, sig))

	edKey, err := km.CreateKey(ctx, model.KeyTypeEd25519)
	require.NoError(t, err)
	edSigner, err := km.Signer(ctx, edKey.Kid)
	require.NoError(t, err)
	_, err = edSigner.(MultiMessageSigner).SignMessages(ctx, messages)
	assert.Error(t, err)
}

func TestLocalKeyManager_Identifiers(t *testing.T) {
	ctx := context.Background()
	km := NewLocalKeyManager(storage.NewMemoryDB())

	_, err := km.GetIdentifier(ctx, "did:key:missing")
	assert.ErrorIs(t, err, ErrIdentifierNotFound)
	assert.Error(t, km.SaveIdentifier(ctx, Identifier{}))

	identifier := Identifier{
		DID:             "did:key:z6Mk",
		Provider:        "did:key",
		ControllerKeyID: "abcd",
		Keys:            []Key{{Kid: "abcd", Type: model.KeyTypeEd25519, PublicKeyHex: "abcd"}},
	}
	require.NoError(t, km.SaveIdentifier(ctx, identifier))

	got, err := km.GetIdentifier(ctx, identifier.DID)
	require.NoError(t, err)
	assert.Equal(t, identifier, *got)

	all, err := km.ListIdentifiers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Identifier{identifier}, all)
}
