package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
)

// ErrInvalidInputLength marks a malformed key or signature, as opposed to a
// well-formed signature that does not verify.
var ErrInvalidInputLength = errors.New("invalid input length")

// VerifySignature checks a detached Ed25519 signature over message.
// Lengths are checked before the primitive is called.
func VerifySignature(message, signature, publicKey []byte) (bool, error) {
	if len(signature) != SignatureSize {
		return false, fmt.Errorf("%w: signature must be %d bytes (got %d)", ErrInvalidInputLength, SignatureSize, len(signature))
	}
	if len(publicKey) != PublicKeySize {
		return false, fmt.Errorf("%w: public key must be %d bytes (got %d)", ErrInvalidInputLength, PublicKeySize, len(publicKey))
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature), nil
}
