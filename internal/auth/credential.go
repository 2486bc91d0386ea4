// ABOUTME: Deterministic credential derivation for bot identities.
// ABOUTME: Slaves derive sha256(secret+identity+secret)[:20]; the master uses a fixed credential.

package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// CredentialLength is the number of hex characters kept from the digest.
const CredentialLength = 20

// DeriveCredential returns the credential for a slave identity. The result
// depends only on secret and identity, so a restarted process re-derives
// the same value without persisting it.
func DeriveCredential(secret, identity string) string {
	sum := sha256.Sum256([]byte(secret + identity + secret))
	return hex.EncodeToString(sum[:])[:CredentialLength]
}

// Credentials resolves the credential for any identity in the fleet.
type Credentials struct {
	masterIdentity   string
	masterCredential string
	sharedSecret     string
}

// NewCredentials creates a resolver for the given master and shared secret.
func NewCredentials(masterIdentity, masterCredential, sharedSecret string) *Credentials {
	return &Credentials{
		masterIdentity:   masterIdentity,
		masterCredential: masterCredential,
		sharedSecret:     sharedSecret,
	}
}

// For returns the credential to use when logging in as identity.
func (c *Credentials) For(identity string) string {
	if identity == c.masterIdentity {
		return c.masterCredential
	}
	return DeriveCredential(c.sharedSecret, identity)
}
