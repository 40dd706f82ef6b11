package auth

import "sync"

// MockStore implements CredentialStore in memory for testing
type MockStore struct {
	account *Account
	mu      sync.RWMutex

	// Failure injection
	StoreErr    error
	RetrieveErr error
	DeleteErr   error
}

// NewMockStore creates a new in-memory credential store
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Store saves the account in memory
func (m *MockStore) Store(account *Account) error {
	if m.StoreErr != nil {
		return m.StoreErr
	}
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *account
	m.account = &copied
	return nil
}

// Retrieve returns the stored account
func (m *MockStore) Retrieve() (*Account, error) {
	if m.RetrieveErr != nil {
		return nil, m.RetrieveErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.account == nil {
		return nil, ErrCredentialsNotFound
	}
	copied := *m.account
	return &copied, nil
}

// Delete removes the stored account
func (m *MockStore) Delete() error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.account == nil {
		return ErrCredentialsNotFound
	}
	m.account = nil
	return nil
}

// Exists checks if an account is stored
func (m *MockStore) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account != nil
}
