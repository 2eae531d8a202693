package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/internal/infrastructure/crypto"
)

func TestAESCipher_IdaYVuelta(t *testing.T) {
	c, err := crypto.NewAESCipher("una-llave-suficientemente-larga")
	require.NoError(t, err)

	enc, err := c.Encrypt("S3creta!")
	require.NoError(t, err)
	assert.NotContains(t, enc, "S3creta")

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "S3creta!", dec)
}

func TestAESCipher_NonceAleatorio(t *testing.T) {
	c, err := crypto.NewAESCipher("una-llave-suficientemente-larga")
	require.NoError(t, err)

	a, _ := c.Encrypt("igual")
	b, _ := c.Encrypt("igual")
	assert.NotEqual(t, a, b)
}

func TestAESCipher_OtraLlaveFalla(t *testing.T) {
	c1, _ := crypto.NewAESCipher("llave-numero-uno-0000")
	c2, _ := crypto.NewAESCipher("llave-numero-dos-0000")

	enc, err := c1.Encrypt("dato")
	require.NoError(t, err)

	_, err = c2.Decrypt(enc)
	assert.ErrorIs(t, err, crypto.ErrMalformed)

	_, err = c1.Decrypt("%%no-base64%%")
	assert.ErrorIs(t, err, crypto.ErrMalformed)
}

func TestAESCipher_VacioYLlaveCorta(t *testing.T) {
	c, err := crypto.NewAESCipher("una-llave-suficientemente-larga")
	require.NoError(t, err)

	enc, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, enc)

	_, err = crypto.NewAESCipher("corta")
	assert.Error(t, err)
}
