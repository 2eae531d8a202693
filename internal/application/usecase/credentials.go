package usecase

import (
	"fmt"

	"github.com/jhoicas/crm-portal-api/internal/application/ports"
	"golang.org/x/crypto/bcrypt"
)

// sealPassword devuelve el hash bcrypt (login local) y la copia cifrada reversible
// que se reenvía a los sistemas externos.
func sealPassword(c ports.SecretCipher, plain string) (hash, sealed string, err error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	sealed, err = c.Encrypt(plain)
	if err != nil {
		return "", "", fmt.Errorf("cifrar copia de contraseña: %w", err)
	}
	return string(h), sealed, nil
}
