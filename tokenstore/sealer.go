package tokenstore

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var errSealedValueCorrupt = errors.New("sealed value is corrupt")

// sealer encrypts small values under a key derived from a passphrase.
// Layout of a sealed value: base64url(salt | nonce | secretbox).
type sealer struct {
	passphrase []byte
}

func newSealer(passphrase string) *sealer {
	return &sealer{passphrase: []byte(passphrase)}
}

func (s *sealer) deriveKey(salt []byte) *[keyLength]byte {
	var key [keyLength]byte
	copy(key[:], argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, keyLength))
	return &key
}

func (s *sealer) seal(plaintext []byte) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltLength+nonceLength+len(plaintext)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, plaintext, &nonce, s.deriveKey(salt))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *sealer) open(sealed string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < saltLength+nonceLength+secretbox.Overhead {
		return nil, errSealedValueCorrupt
	}

	salt := raw[:saltLength]
	var nonce [nonceLength]byte
	copy(nonce[:], raw[saltLength:saltLength+nonceLength])

	plaintext, ok := secretbox.Open(nil, raw[saltLength+nonceLength:], &nonce, s.deriveKey(salt))
	if !ok {
		return nil, errSealedValueCorrupt
	}
	return plaintext, nil
}
