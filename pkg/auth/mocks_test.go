package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionProvider is a mock implementation of SessionProvider.
type MockSessionProvider struct {
	mock.Mock
}

func (m *MockSessionProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionProvider) SignUp(ctx context.Context, email, password string, metadata Metadata) (*Session, error) {
	args := m.Called(ctx, email, password, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionProvider) OAuthURL(ctx context.Context, provider, redirectTo string, params map[string]string) (string, error) {
	args := m.Called(ctx, provider, redirectTo, params)
	return args.String(0), args.Error(1)
}

func (m *MockSessionProvider) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSessionProvider) Session(ctx context.Context) (*Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockSessionProvider) User(ctx context.Context) (*User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockSessionProvider) OnChange(cb func(ChangeEvent)) func() {
	args := m.Called(cb)
	if fn, ok := args.Get(0).(func()); ok {
		return fn
	}
	return func() {}
}

// MockProfileStore is a mock implementation of ProfileStore.
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) UpsertProfile(ctx context.Context, userID uuid.UUID, data ProfileData) error {
	args := m.Called(ctx, userID, data)
	return args.Error(0)
}

// MockProfileCache is a mock implementation of LineProfileCache.
type MockProfileCache struct {
	mock.Mock
}

func (m *MockProfileCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
