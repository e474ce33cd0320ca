package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/coreybb/menuorders/models"
)

// DefaultSeedUsers is the fixed set of accounts loaded at startup.
var DefaultSeedUsers = map[string]string{
	"alice": "password123",
}

// CredentialStore maps usernames to bcrypt password hashes.
// It is built once and never mutated, so it is safe for concurrent reads.
type CredentialStore struct {
	users map[string]models.User
}

// NewCredentialStore hashes every seed password with the given bcrypt cost.
// A cost of zero uses bcrypt.DefaultCost.
func NewCredentialStore(seed map[string]string, cost int) (*CredentialStore, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	users := make(map[string]models.User, len(seed))
	for username, password := range seed {
		if username == "" {
			return nil, fmt.Errorf("seed user with empty username")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
		}
		users[username] = models.User{
			Username:       username,
			HashedPassword: string(hash),
		}
	}
	return &CredentialStore{users: users}, nil
}

// Lookup returns the credential record for username.
func (s *CredentialStore) Lookup(username string) (models.User, bool) {
	user, ok := s.users[username]
	return user, ok
}

func (s *CredentialStore) Exists(username string) bool {
	_, ok := s.users[username]
	return ok
}

func verifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
