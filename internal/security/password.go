package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

// GeneratePassword derives a fresh salt and the argon2id hash of password.
// Hash and salt are stored in separate credential columns so verification
// can recompute the hash with the stored salt.
func GeneratePassword(password string) (hash, salt string, err error) {
	rawSalt := make([]byte, argonSaltLen)
	if _, err := rand.Read(rawSalt); err != nil {
		return "", "", err
	}
	rawHash := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return base64.RawStdEncoding.EncodeToString(rawHash),
		base64.RawStdEncoding.EncodeToString(rawSalt), nil
}

// VerifyPassword recomputes the argon2id hash of password with the stored
// salt and compares it to the stored hash in constant time.
func VerifyPassword(storedHash, storedSalt, password string) (bool, error) {
	rawSalt, err := base64.RawStdEncoding.DecodeString(storedSalt)
	if err != nil {
		return false, err
	}
	expected, err := base64.RawStdEncoding.DecodeString(storedHash)
	if err != nil {
		return false, err
	}
	actual := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}
