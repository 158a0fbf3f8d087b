package auth_test

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/fivetwenty-io/tevo/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errKeyringLocked = errors.New("keyring locked")

type lockedKeyring struct {
	keyring.Keyring
}

func (lockedKeyring) Get(string) (keyring.Item, error) {
	return keyring.Item{}, errKeyringLocked
}

// MockStore for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(profile string) (auth.Credentials, error) {
	args := m.Called(profile)

	return args.Get(0).(auth.Credentials), args.Error(1)
}

func (m *MockStore) Save(profile string, creds auth.Credentials) error {
	return m.Called(profile, creds).Error(0)
}

func (m *MockStore) Delete(profile string) error {
	return m.Called(profile).Error(0)
}

func TestKeyringStore_SaveLoadDelete(t *testing.T) {
	t.Parallel()

	store := auth.NewKeyringStoreWith(keyring.NewArrayKeyring(nil))

	_, err := store.Load("default")
	require.ErrorIs(t, err, auth.ErrCredentialsNotFound)

	err = store.Save("default", auth.Credentials{Token: "tok", Secret: "sec"})
	require.NoError(t, err)

	creds, err := store.Load("")
	require.NoError(t, err)
	assert.Equal(t, auth.Credentials{Token: "tok", Secret: "sec"}, creds)

	require.NoError(t, store.Delete("default"))
	require.NoError(t, store.Delete("default"))

	_, err = store.Load("default")
	require.ErrorIs(t, err, auth.ErrCredentialsNotFound)
}

func TestKeyringStore_SaveRejectsIncomplete(t *testing.T) {
	t.Parallel()

	store := auth.NewKeyringStoreWith(keyring.NewArrayKeyring(nil))

	require.ErrorIs(t, store.Save("p", auth.Credentials{Secret: "s"}), auth.ErrEmptyToken)
	require.ErrorIs(t, store.Save("p", auth.Credentials{Token: "t"}), auth.ErrEmptySecret)
}

func TestKeyringStore_ProfilesAreIsolated(t *testing.T) {
	t.Parallel()

	store := auth.NewKeyringStoreWith(keyring.NewArrayKeyring(nil))

	require.NoError(t, store.Save("sandbox", auth.Credentials{Token: "sandbox-token", Secret: "s1"}))
	require.NoError(t, store.Save("production", auth.Credentials{Token: "prod-token", Secret: "s2"}))

	sandbox, err := store.Load("sandbox")
	require.NoError(t, err)
	assert.Equal(t, "sandbox-token", sandbox.Token)

	production, err := store.Load("production")
	require.NoError(t, err)
	assert.Equal(t, "prod-token", production.Token)
}

func TestNewKeyringStore_UsesOpener(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)

	restore := auth.SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		assert.Equal(t, "tevo-cli", cfg.ServiceName)

		return ring, nil
	})
	defer restore()

	store, err := auth.NewKeyringStore()
	require.NoError(t, err)
	require.NoError(t, store.Save("default", auth.Credentials{Token: "t", Secret: "s"}))

	items, err := ring.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"profile:default"}, items)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	store := auth.NewKeyringStoreWith(keyring.NewArrayKeyring(nil))
	require.NoError(t, store.Save("default", auth.Credentials{Token: "stored-token", Secret: "stored-secret"}))

	tests := []struct {
		name     string
		store    auth.CredentialStore
		profile  string
		explicit auth.Credentials
		expected auth.Credentials
	}{
		{
			name:     "explicit pair wins",
			store:    store,
			profile:  "default",
			explicit: auth.Credentials{Token: "t", Secret: "s"},
			expected: auth.Credentials{Token: "t", Secret: "s"},
		},
		{
			name:     "missing secret filled from store",
			store:    store,
			profile:  "default",
			explicit: auth.Credentials{Token: "t"},
			expected: auth.Credentials{Token: "t", Secret: "stored-secret"},
		},
		{
			name:     "nothing explicit",
			store:    store,
			profile:  "default",
			expected: auth.Credentials{Token: "stored-token", Secret: "stored-secret"},
		},
		{
			name:     "unknown profile leaves input alone",
			store:    store,
			profile:  "other",
			explicit: auth.Credentials{Token: "t"},
			expected: auth.Credentials{Token: "t"},
		},
		{
			name:     "no store",
			explicit: auth.Credentials{Token: "t"},
			expected: auth.Credentials{Token: "t"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := auth.Resolve(tt.store, tt.profile, tt.explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolve_PropagatesStoreFailure(t *testing.T) {
	t.Parallel()

	store := auth.NewKeyringStoreWith(lockedKeyring{})

	_, err := auth.Resolve(store, "default", auth.Credentials{})
	require.ErrorIs(t, err, errKeyringLocked)
}

func TestResolve_ConsultsStoreOnlyWhenIncomplete(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	store.On("Load", "sandbox").Return(auth.Credentials{Token: "stored", Secret: "stored-secret"}, nil).Once()

	got, err := auth.Resolve(store, "sandbox", auth.Credentials{Token: "explicit"})
	require.NoError(t, err)
	assert.Equal(t, auth.Credentials{Token: "explicit", Secret: "stored-secret"}, got)

	got, err = auth.Resolve(store, "sandbox", auth.Credentials{Token: "t", Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, auth.Credentials{Token: "t", Secret: "s"}, got)

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "Load", 1)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
