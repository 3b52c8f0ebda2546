package identity

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"medichart/internal/snapshot"
	derrors "medichart/pkg/domain-errors"
)

// CredentialStore keeps bcrypt password hashes keyed by lowercased email,
// persisted through the snapshot store like every other collection.
type CredentialStore struct {
	mu     sync.RWMutex
	snaps  snapshot.Store
	hashes map[string]string
}

func NewCredentialStore(ctx context.Context, snaps snapshot.Store) (*CredentialStore, error) {
	c := &CredentialStore{snaps: snaps, hashes: make(map[string]string)}
	blob, ok, err := snaps.Load(ctx, snapshot.KeyCredentials)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeUnavailable, "load credentials")
	}
	if ok {
		if err := json.Unmarshal(blob, &c.hashes); err != nil {
			return nil, derrors.Wrap(err, derrors.CodeInternal, "corrupt credentials snapshot")
		}
	}
	return c, nil
}

// SetPassword hashes and stores the password for the email, replacing any
// previous hash.
func (c *CredentialStore) SetPassword(ctx context.Context, email, password string) error {
	if len(password) < 8 {
		return derrors.New(derrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "hash password")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[normalizeEmail(email)] = string(hash)
	return c.flush(ctx)
}

// Verify reports whether the password matches the stored hash for the email.
func (c *CredentialStore) Verify(email, password string) bool {
	c.mu.RLock()
	hash, ok := c.hashes[normalizeEmail(email)]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RemovePassword drops the credential, if any. Called when a user is
// deleted so the email can be reused.
func (c *CredentialStore) RemovePassword(ctx context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.hashes[normalizeEmail(email)]; !ok {
		return nil
	}
	delete(c.hashes, normalizeEmail(email))
	return c.flush(ctx)
}

func (c *CredentialStore) flush(ctx context.Context) error {
	blob, err := json.Marshal(c.hashes)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "encode credentials")
	}
	if err := c.snaps.Save(ctx, snapshot.KeyCredentials, blob); err != nil {
		return derrors.Wrap(err, derrors.CodeUnavailable, "persist credentials")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
