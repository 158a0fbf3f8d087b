package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
	"github.com/fivetwenty-io/tevo/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrCredentialsNotFound = errors.New("no stored credentials for profile")
)

// Credentials is the API credential pair of one profile.
type Credentials struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// Complete reports whether both halves are present.
func (c Credentials) Complete() bool {
	return c.Token != "" && c.Secret != ""
}

// CredentialStore persists credentials per profile.
type CredentialStore interface {
	Load(profile string) (Credentials, error)
	Save(profile string, creds Credentials) error
	Delete(profile string) error
}

// openKeyring can be replaced in tests.
var openKeyring = keyring.Open

// SetOpenKeyring swaps the keyring opener and returns a restore function.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn

	return func() { openKeyring = original }
}

// KeyringStore keeps credentials in the OS keychain, falling back to an
// encrypted file when no native backend is available.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the keyring for the tevo service.
func NewKeyringStore() (*KeyringStore, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}

	return &KeyringStore{ring: ring}, nil
}

// NewKeyringStoreWith wraps an already opened keyring.
func NewKeyringStoreWith(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func keyringConfig() keyring.Config {
	cfg := keyring.Config{
		ServiceName: constants.KeyringService,
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.FileDir = filepath.Join(home, ".tevo", "keyring")
	}

	cfg.FilePasswordFunc = func(prompt string) (string, error) {
		if password := os.Getenv("TEVO_KEYRING_PASSWORD"); password != "" {
			return password, nil
		}

		return keyring.TerminalPrompt(prompt)
	}

	return cfg
}

func profileKey(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = constants.DefaultProfile
	}

	return "profile:" + profile
}

// Load implements CredentialStore.
func (s *KeyringStore) Load(profile string) (Credentials, error) {
	item, err := s.ring.Get(profileKey(profile))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Credentials{}, fmt.Errorf("%w: %s", ErrCredentialsNotFound, profile)
		}

		return Credentials{}, fmt.Errorf("reading keyring: %w", err)
	}

	var creds Credentials

	err = json.Unmarshal(item.Data, &creds)
	if err != nil {
		return Credentials{}, fmt.Errorf("decoding stored credentials: %w", err)
	}

	return creds, nil
}

// Save implements CredentialStore.
func (s *KeyringStore) Save(profile string, creds Credentials) error {
	if creds.Token == "" {
		return ErrEmptyToken
	}

	if creds.Secret == "" {
		return ErrEmptySecret
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	err = s.ring.Set(keyring.Item{
		Key:         profileKey(profile),
		Data:        data,
		Label:       "Ticket Evolution API credentials",
		Description: "tevo " + profileKey(profile),
	})
	if err != nil {
		return fmt.Errorf("writing keyring: %w", err)
	}

	return nil
}

// Delete implements CredentialStore. Deleting a missing profile is not an error.
func (s *KeyringStore) Delete(profile string) error {
	err := s.ring.Remove(profileKey(profile))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing keyring entry: %w", err)
	}

	return nil
}

// Resolve fills missing halves of explicit from the store. Explicit values
// always win.
func Resolve(store CredentialStore, profile string, explicit Credentials) (Credentials, error) {
	if explicit.Complete() || store == nil {
		return explicit, nil
	}

	stored, err := store.Load(profile)
	if err != nil {
		if errors.Is(err, ErrCredentialsNotFound) {
			return explicit, nil
		}

		return explicit, err
	}

	if explicit.Token == "" {
		explicit.Token = stored.Token
	}

	if explicit.Secret == "" {
		explicit.Secret = stored.Secret
	}

	return explicit, nil
}
