// Package crypto implementa el cifrado reversible en reposo (AES-256-GCM) de
// credenciales que la plataforma debe reenviar a sistemas externos.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/jhoicas/crm-portal-api/internal/application/ports"
)

var _ ports.SecretCipher = (*AESCipher)(nil)

// hkdfInfo separa el uso de la llave derivada; cambiarlo invalida todo lo cifrado.
const hkdfInfo = "crm-portal/credentials/v1"

// ErrMalformed texto cifrado corrupto, truncado o cifrado con otra llave.
var ErrMalformed = errors.New("crypto: texto cifrado inválido")

// AESCipher cifra con AES-256-GCM usando una llave derivada por HKDF-SHA256.
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher deriva la llave desde secret (APP_ENCRYPTION_KEY).
func NewAESCipher(secret string) (*AESCipher, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("crypto: APP_ENCRYPTION_KEY debe tener al menos 16 caracteres")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("crypto: derivar llave: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: crear bloque AES: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: crear GCM: %w", err)
	}
	return &AESCipher{aead: aead}, nil
}

// Encrypt devuelve base64(nonce || ciphertext). Texto vacío se mantiene vacío.
func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generar nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt revierte Encrypt.
func (c *AESCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformed
	}
	ns := c.aead.NonceSize()
	if len(raw) <= ns {
		return "", ErrMalformed
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrMalformed
	}
	return string(plain), nil
}
