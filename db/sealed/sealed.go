// Package sealed wraps a db.Database so that every Put/Get tagged
// db.SensitivityMax is transparently encrypted at rest with Argon2id key
// derivation and AES-256-GCM, the private-key-grade path required by
// NonceAndKeys.
package sealed

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"runtime"

	"golang.org/x/crypto/argon2"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/db"
)

const (
	argon2Time    = 4
	argon2Memory  = 256 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
	aesNonceLen   = 12
)

// Store decorates an underlying db.Database, sealing values written at
// db.SensitivityMax behind a passphrase-derived key before they reach
// the inner store.
type Store struct {
	inner      db.Database
	passphrase []byte
}

func Wrap(inner db.Database, passphrase []byte) *Store {
	return &Store{inner: inner, passphrase: passphrase}
}

// ClearBytes zeros a byte slice in place, defeating compiler elision via
// runtime.KeepAlive.
func ClearBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

func (s *Store) Put(key, value []byte, sensitivity db.Sensitivity) error {
	if sensitivity != db.SensitivityMax {
		return s.inner.Put(key, value, sensitivity)
	}
	sealed, err := seal(value, s.passphrase)
	if err != nil {
		return err
	}
	return s.inner.Put(key, sealed, sensitivity)
}

func (s *Store) Get(key []byte, sensitivity db.Sensitivity) ([]byte, error) {
	raw, err := s.inner.Get(key, sensitivity)
	if err != nil {
		return nil, err
	}
	if sensitivity != db.SensitivityMax {
		return raw, nil
	}
	return unseal(raw, s.passphrase)
}

func (s *Store) Delete(key []byte) error         { return s.inner.Delete(key) }
func (s *Store) StartTransaction() error         { return s.inner.StartTransaction() }
func (s *Store) EndTransaction() error           { return s.inner.EndTransaction() }

// seal encodes [salt(16)][nonce(12)][ciphertext+tag] using a key derived
// from passphrase with Argon2id.
func seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, bridgeerr.New(bridgeerr.NotInitialized, "cannot generate salt", err)
	}
	key := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.NotInitialized, "cannot create cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.NotInitialized, "cannot create GCM", err)
	}
	nonce := make([]byte, aesNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, bridgeerr.New(bridgeerr.NotInitialized, "cannot generate nonce", err)
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, argon2SaltLen+aesNonceLen+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

func unseal(data, passphrase []byte) ([]byte, error) {
	minLen := argon2SaltLen + aesNonceLen
	if len(data) < minLen {
		return nil, bridgeerr.Decodef(nil, "sealed value too short: %d bytes", len(data))
	}
	salt := data[:argon2SaltLen]
	nonce := data[argon2SaltLen : argon2SaltLen+aesNonceLen]
	ciphertext := data[argon2SaltLen+aesNonceLen:]

	key := argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	defer ClearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.NotInitialized, "cannot create cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.NotInitialized, "cannot create GCM", err)
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, bridgeerr.Unauthorizedf("wrong passphrase or corrupted sealed value")
	}
	return plaintext, nil
}
