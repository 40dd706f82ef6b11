package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Read-only; useful for CI and one-off non-interactive runs.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve() (*Account, error) {
	username := os.Getenv("IGCOMMENTS_USERNAME")
	password := os.Getenv("IGCOMMENTS_PASSWORD")

	if username == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Username:     username,
		Password:     password,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists() bool {
	return os.Getenv("IGCOMMENTS_USERNAME") != "" && os.Getenv("IGCOMMENTS_PASSWORD") != ""
}
