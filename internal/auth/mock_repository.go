package auth

import (
	"context"
	"sync"

	"github.com/purple-water/accounting/internal/user"
)

// MockTwoFactorRepository keeps secrets in memory and mirrors the 2FA flag
// into the user mock.
type MockTwoFactorRepository struct {
	mu      sync.Mutex
	secrets map[string]string
	users   *user.MockRepository
	Err     error
}

func NewMockTwoFactorRepository(users *user.MockRepository) *MockTwoFactorRepository {
	return &MockTwoFactorRepository{secrets: make(map[string]string), users: users}
}

func (m *MockTwoFactorRepository) SaveTwoFactorSecret(_ context.Context, userID, secret string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[userID] = secret
	return nil
}

func (m *MockTwoFactorRepository) GetTwoFactorSecret(_ context.Context, userID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	secret, ok := m.secrets[userID]
	if !ok {
		return "", ErrNoTwoFactorSecret
	}
	return secret, nil
}

func (m *MockTwoFactorRepository) EnableTwoFactor(_ context.Context, userID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.users.SetTwoFactorEnabled(userID, true)
	return nil
}

func (m *MockTwoFactorRepository) DisableTwoFactor(_ context.Context, userID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	delete(m.secrets, userID)
	m.mu.Unlock()
	m.users.SetTwoFactorEnabled(userID, false)
	return nil
}
