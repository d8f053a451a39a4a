package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Credentials holds the single accepted username and an argon2id hash of its
// password. The plaintext is not retained.
type Credentials struct {
	username string
	salt     []byte
	hash     []byte
}

// NewCredentials hashes password for later comparison.
func NewCredentials(username, password string) (*Credentials, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("auth: username and password must be set")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("auth: salt: %w", err)
	}
	return &Credentials{
		username: username,
		salt:     salt,
		hash:     hashPassword(password, salt),
	}, nil
}

// Verify reports whether username and password match exactly.
func (c *Credentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := subtle.ConstantTimeCompare(hashPassword(password, c.salt), c.hash) == 1
	return userOK && passOK
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}
