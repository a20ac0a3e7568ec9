// Package secrets stores poster authorization tokens in the OS credential
// vault. Secrets never touch the plaintext bounty registry.
package secrets

import (
	"github.com/zalando/go-keyring"

	"github.com/hiveline/bounty/internal/debug"
)

// ServiceName is the fixed vault service name all bounty secrets live under.
const ServiceName = "bounty-poster"

type Store struct {
	service string
}

func New() *Store {
	return &Store{service: ServiceName}
}

// Store upserts the secret for an account. Setting an existing account
// replaces its value.
func (s *Store) Store(account, secret string) error {
	return keyring.Set(s.service, account, secret)
}

// Read returns the secret for an account. Any backend error, including a
// missing entry, reads as absent.
func (s *Store) Read(account string) (string, bool) {
	secret, err := keyring.Get(s.service, account)
	if err != nil {
		debug.Logf("keychain read failed for %s: %v\n", account, err)
		return "", false
	}
	return secret, true
}

// Delete removes the secret for an account. Best effort: errors (entry
// already gone, vault unavailable) are swallowed so cleanup never blocks on
// a missing secret.
func (s *Store) Delete(account string) {
	if err := keyring.Delete(s.service, account); err != nil {
		debug.Logf("keychain delete failed for %s: %v\n", account, err)
	}
}
