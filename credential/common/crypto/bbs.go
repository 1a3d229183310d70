package crypto

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/kmscrypto/crypto/primitive/bbs12381g2pub"
)

// SignBBS signs each message as a separate BBS+ message with a BLS12-381 private key.
func SignBBS(privateKey []byte, messages [][]byte) ([]byte, error) {
	signature, err := bbs12381g2pub.New().Sign(messages, privateKey)
	if err != nil {
		return nil, fmt.Errorf("bbs: sign error: %w", err)
	}
	return signature, nil
}

// VerifyBBS verifies a BBS+ signature over the full message list.
func VerifyBBS(publicKey []byte, messages [][]byte, signature []byte) error {
	if err := bbs12381g2pub.New().Verify(messages, signature, publicKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
