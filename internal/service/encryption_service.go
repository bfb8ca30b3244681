package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// fieldKeyInfo is the HKDF context for the column-sealing key. Changing it
// makes every stored ciphertext unreadable.
const fieldKeyInfo = "merchant-wallet-engine/v1/field-encryption"

var errShortCiphertext = errors.New("sealed value shorter than its nonce")

// AESEncryptionService seals bank account numbers and holder names with
// AES-256-GCM under a key derived from the configured master key.
type AESEncryptionService struct {
	aead cipher.AEAD
}

// NewAESEncryptionService takes the master key as 64 hex characters.
func NewAESEncryptionService(hexKey string) (*AESEncryptionService, error) {
	master, err := hex.DecodeString(hexKey)
	if err != nil || len(master) != 32 {
		return nil, fmt.Errorf("master key must be 32 hex-encoded bytes")
	}

	dataKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(fieldKeyInfo)), dataKey); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESEncryptionService{aead: aead}, nil
}

// Encrypt returns hex(nonce || sealed). Each call draws a fresh nonce.
func (s *AESEncryptionService) Encrypt(plaintext string) (string, error) {
	out := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	return hex.EncodeToString(s.aead.Seal(out, out, []byte(plaintext), nil)), nil
}

func (s *AESEncryptionService) Decrypt(sealed string) (string, error) {
	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("sealed value is not hex: %w", err)
	}
	n := s.aead.NonceSize()
	if len(raw) < n {
		return "", errShortCiphertext
	}
	plain, err := s.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plain), nil
}
