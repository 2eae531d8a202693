package ports

// SecretCipher cifrado reversible para secretos que deben reenviarse a terceros
// (copias de contraseñas, credenciales por acceso, llaves de proyecto).
// El texto cifrado es opaco y autocontenido (incluye nonce).
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
