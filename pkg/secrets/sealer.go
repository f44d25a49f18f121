// Package secrets seals small credential blobs at rest with NaCl secretbox.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrOpen is returned when a sealed value cannot be authenticated with the key
var ErrOpen = errors.New("secrets: cannot open sealed value")

// Sealer encrypts and authenticates values with a key derived from a passphrase
type Sealer struct {
	key [32]byte
}

// NewSealer derives a 32-byte key from passphrase with SHA-256
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("secrets: empty passphrase")
	}
	return &Sealer{key: sha256.Sum256([]byte(passphrase))}, nil
}

// Seal encrypts plaintext and returns base64(nonce || box)
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("secrets: read nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrOpen
	}
	return plain, nil
}

// SealJSON marshals v and seals the result
func (s *Sealer) SealJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("secrets: marshal: %w", err)
	}
	return s.Seal(b)
}

// OpenJSON opens sealed and unmarshals it into dest
func (s *Sealer) OpenJSON(sealed string, dest any) error {
	plain, err := s.Open(sealed)
	if err != nil {
		return err
	}
	return json.Unmarshal(plain, dest)
}
