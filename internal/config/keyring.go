package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service name akops stores secrets under.
const KeyringService = "akops"

// Secret fields that may live in the keyring.
const (
	FieldAccessKey = "access_key"
	FieldToken     = "token"
)

// Keyring is the subset of the OS keyring akops uses.
type Keyring interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type systemKeyring struct{}

// SystemKeyring returns the platform keyring (Keychain, Secret Service, Credential Manager).
func SystemKeyring() Keyring { return systemKeyring{} }

func (systemKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

func (systemKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

func (systemKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

func keyringUser(profile, field string) string {
	return profile + "/" + field
}

// LookupSecret reads a stored secret. A missing entry is not an error.
func LookupSecret(kr Keyring, profile, field string) (string, error) {
	v, err := kr.Get(KeyringService, keyringUser(profile, field))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s for profile %s from keyring: %w", field, profile, err)
	}
	return v, nil
}

// StoreSecret writes a secret for a profile.
func StoreSecret(kr Keyring, profile, field, value string) error {
	if err := kr.Set(KeyringService, keyringUser(profile, field), value); err != nil {
		return fmt.Errorf("failed to store %s for profile %s in keyring: %w", field, profile, err)
	}
	return nil
}

// DeleteSecret removes a stored secret. A missing entry is not an error.
func DeleteSecret(kr Keyring, profile, field string) error {
	err := kr.Delete(KeyringService, keyringUser(profile, field))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s for profile %s from keyring: %w", field, profile, err)
	}
	return nil
}
