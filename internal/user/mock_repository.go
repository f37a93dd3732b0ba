package user

import (
	"context"
	"sync"
	"time"
)

// MockRepository keeps users in memory. It is shared by the user and auth tests.
type MockRepository struct {
	mu    sync.RWMutex
	users map[string]*User
	Err   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[string]*User)}
}

func (m *MockRepository) CreateUser(_ context.Context, user *User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailAlreadyExists
		}
		if u.Login == user.Login {
			return ErrLoginAlreadyExists
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockRepository) GetUserByID(_ context.Context, id string) (*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) GetUserByLoginOrEmail(_ context.Context, loginOrEmail string) (*User, error) {
	return m.UserExistsByLoginOrEmail(context.Background(), loginOrEmail, loginOrEmail)
}

func (m *MockRepository) UserExistsByLoginOrEmail(_ context.Context, login, email string) (*User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Login == login || u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

// SetTwoFactorEnabled flips the flag the way the auth repository does in the database.
func (m *MockRepository) SetTwoFactorEnabled(userID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.TwoFactorEnabled = enabled
	}
}
