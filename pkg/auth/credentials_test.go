package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	primary := NewMockStore()
	m := &Manager{stores: []CredentialStore{primary}}

	require.NoError(t, m.Store(&Account{Username: "someone", Password: "hunter2"}))
	assert.True(t, m.Exists())

	account, err := m.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "someone", account.Username)
	assert.Equal(t, "hunter2", account.Password)
	assert.False(t, account.LastModified.IsZero())
}

func TestManagerRejectsIncompleteAccount(t *testing.T) {
	m := &Manager{stores: []CredentialStore{NewMockStore()}}

	assert.ErrorIs(t, m.Store(nil), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Account{Username: "someone"}), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Account{Password: "hunter2"}), ErrInvalidCredentials)
}

func TestManagerFallsBackOnStoreFailure(t *testing.T) {
	broken := NewMockStore()
	broken.StoreErr = errors.New("keychain locked")
	working := NewMockStore()
	m := &Manager{stores: []CredentialStore{broken, working}}

	require.NoError(t, m.Store(&Account{Username: "someone", Password: "hunter2"}))
	assert.True(t, working.Exists())
}

func TestManagerRetrieveFallsThrough(t *testing.T) {
	empty := NewMockStore()
	holding := NewMockStore()
	require.NoError(t, holding.Store(&Account{Username: "someone", Password: "hunter2"}))
	m := &Manager{stores: []CredentialStore{empty, holding}}

	account, err := m.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "someone", account.Username)
}

func TestManagerRetrieveNotFound(t *testing.T) {
	m := &Manager{stores: []CredentialStore{NewMockStore()}}

	_, err := m.Retrieve()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerDeleteClearsAllStores(t *testing.T) {
	first := NewMockStore()
	second := NewMockStore()
	account := &Account{Username: "someone", Password: "hunter2"}
	require.NoError(t, first.Store(account))
	require.NoError(t, second.Store(account))
	m := &Manager{stores: []CredentialStore{first, second}}

	require.NoError(t, m.Delete())
	assert.False(t, first.Exists())
	assert.False(t, second.Exists())
	assert.False(t, m.Exists())
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	_, err := store.Retrieve()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.False(t, store.Exists())

	t.Setenv("IGCOMMENTS_USERNAME", "someone")
	t.Setenv("IGCOMMENTS_PASSWORD", "hunter2")

	account, err := store.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "someone", account.Username)
	assert.Equal(t, "hunter2", account.Password)
	assert.True(t, store.Exists())

	// The environment is read-only
	assert.ErrorIs(t, store.Store(account), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete(), ErrStoreUnavailable)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("IGCOMMENTS_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(&Account{Username: "someone", Password: "hunter2"}))
	assert.True(t, store.Exists())

	// A second instance with the same passphrase can decrypt
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	account, err := reopened.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "someone", account.Username)
	assert.Equal(t, "hunter2", account.Password)

	require.NoError(t, store.Delete())
	assert.False(t, store.Exists())
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv("IGCOMMENTS_PASSPHRASE", "right")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Username: "someone", Password: "hunter2"}))

	t.Setenv("IGCOMMENTS_PASSPHRASE", "wrong")
	tampered, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = tampered.Retrieve()
	assert.Error(t, err)
}
