// File: /services/token_store.go
package services

import (
	"fmt"
	"strings"

	"trailcraft-api/repositories"
)

// TokenSettingKey is the settings key of the saved bearer token.
const TokenSettingKey = "jwt_token"

// TokenStore persists the user's bearer token between sessions.
type TokenStore struct {
	settings repositories.SettingRepository
}

func NewTokenStore(settings repositories.SettingRepository) *TokenStore {
	return &TokenStore{settings: settings}
}

// Get returns the saved token, or "" when none is stored.
func (s *TokenStore) Get() (string, error) {
	token, ok, err := s.settings.Get(TokenSettingKey)
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Set validates the token structure before saving it.
func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if err := ValidateTokenStructure(token); err != nil {
		return err
	}
	if err := s.settings.Set(TokenSettingKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear forgets the saved token.
func (s *TokenStore) Clear() error {
	if err := s.settings.Delete(TokenSettingKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Resolve prefers an explicit token and falls back to the saved one.
func (s *TokenStore) Resolve(explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit, nil
	}
	return s.Get()
}
