// nolint: funlen
package user_test

import (
	"context"
	"errors"
	"mowitajm/user"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock User Repository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserRepository) AllUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id string, role user.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hashed, plain string) error {
	args := m.Called(hashed, plain)
	return args.Error(0)
}

// TEST Register
func TestRegister(t *testing.T) {
	t.Run("should register a regular user with a hashed password", func(t *testing.T) {
		r := new(MockUserRepository)
		h := new(MockPasswordHasher)
		uc := user.NewUsecase(r, h)
		expected := user.User{
			DisplayName:  "Arvid",
			Email:        "arvid@mail.com",
			PasswordHash: "hashed-secret",
			Role:         user.RoleUser,
		}
		created := expected
		created.ID = "u-1"

		h.On("Hash", "secret123").Return("hashed-secret", nil).Once()
		r.On("CreateUser", mock.Anything, expected).Return(created, nil).Once()

		got, err := uc.Register(context.Background(), " Arvid ", "Arvid@Mail.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "u-1", got.ID)
		h.AssertExpectations(t)
		r.AssertExpectations(t)
	})

	tests := []struct {
		name        string
		displayName string
		email       string
		password    string
		wantErr     error
	}{
		{"short display name", "A", "a@mail.com", "secret123", user.ErrInvalidDisplayName},
		{"empty email", "Arvid", "", "secret123", user.ErrInvalidEmail},
		{"malformed email", "Arvid", "not-an-email", "secret123", user.ErrInvalidEmail},
		{"short password", "Arvid", "a@mail.com", "short", user.ErrInvalidPassword},
		{"password over 72 bytes", "Anna", "anna@mail.com", strings.Repeat("å", 40), user.ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run("should fail on "+tt.name, func(t *testing.T) {
			r := new(MockUserRepository)
			h := new(MockPasswordHasher)
			uc := user.NewUsecase(r, h)

			_, err := uc.Register(context.Background(), tt.displayName, tt.email, tt.password)

			assert.Equal(t, tt.wantErr, err)
			h.AssertNotCalled(t, "Hash", mock.Anything)
			r.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}

	t.Run("should surface duplicate emails", func(t *testing.T) {
		r := new(MockUserRepository)
		h := new(MockPasswordHasher)
		uc := user.NewUsecase(r, h)
		h.On("Hash", "secret123").Return("hashed", nil).Once()
		r.On("CreateUser", mock.Anything, mock.Anything).Return(user.User{}, user.ErrEmailAlreadyExists).Once()

		_, err := uc.Register(context.Background(), "Arvid", "arvid@mail.com", "secret123")

		assert.Equal(t, user.ErrEmailAlreadyExists, err)
	})
}

// TEST ListUsers
func TestListUsers(t *testing.T) {
	r := new(MockUserRepository)
	h := new(MockPasswordHasher)
	uc := user.NewUsecase(r, h)

	t.Run("should return list of users", func(t *testing.T) {
		users := []user.User{
			{ID: "u-1", DisplayName: "Arvid", Email: "arvid@mail.com"},
			{ID: "u-2", DisplayName: "Benjamin", Email: "benjamin@mail.com"},
		}

		r.On("AllUsers", mock.Anything).Return(users, nil).Once()

		result, err := uc.ListUsers(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, users, result)
		r.AssertExpectations(t)
	})
}

func TestSetRole(t *testing.T) {
	t.Run("should promote a user to admin", func(t *testing.T) {
		r := new(MockUserRepository)
		uc := user.NewUsecase(r, new(MockPasswordHasher))
		r.On("GetByEmail", mock.Anything, "admin@mail.com").Return(user.User{ID: "u-9", Role: user.RoleUser}, nil).Once()
		r.On("UpdateRole", mock.Anything, "u-9", user.RoleAdmin).Return(nil).Once()

		err := uc.SetRole(context.Background(), "admin@mail.com", user.RoleAdmin)

		assert.NoError(t, err)
		r.AssertExpectations(t)
	})

	t.Run("should skip the update when the role is unchanged", func(t *testing.T) {
		r := new(MockUserRepository)
		uc := user.NewUsecase(r, new(MockPasswordHasher))
		r.On("GetByEmail", mock.Anything, "admin@mail.com").Return(user.User{ID: "u-9", Role: user.RoleAdmin}, nil).Once()

		err := uc.SetRole(context.Background(), "admin@mail.com", user.RoleAdmin)

		assert.NoError(t, err)
		r.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should reject unknown roles", func(t *testing.T) {
		r := new(MockUserRepository)
		uc := user.NewUsecase(r, new(MockPasswordHasher))

		err := uc.SetRole(context.Background(), "admin@mail.com", user.Role("Owner"))

		assert.Equal(t, user.ErrInvalidRole, err)
	})
}

func TestIdentityManager(t *testing.T) {
	t.Run("should resolve nil for anonymous principals", func(t *testing.T) {
		r := new(MockUserRepository)
		uc := user.NewUsecase(r, new(MockPasswordHasher))

		u, err := uc.GetUser(context.Background(), user.Principal{})

		assert.NoError(t, err)
		assert.Nil(t, u)
		r.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("should resolve nil for unknown users", func(t *testing.T) {
		r := new(MockUserRepository)
		uc := user.NewUsecase(r, new(MockPasswordHasher))
		r.On("GetByID", mock.Anything, "gone").Return(user.User{}, user.ErrUserNotFound).Once()

		u, err := uc.GetUser(context.Background(), user.Principal{UserID: "gone"})

		assert.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("should propagate storage errors", func(t *testing.T) {
		r := new(MockUserRepository)
		uc := user.NewUsecase(r, new(MockPasswordHasher))
		r.On("GetByID", mock.Anything, "u-1").Return(user.User{}, errors.New("db down")).Once()

		_, err := uc.GetUser(context.Background(), user.Principal{UserID: "u-1"})

		assert.EqualError(t, err, "db down")
	})

	t.Run("should report role membership", func(t *testing.T) {
		uc := user.NewUsecase(new(MockUserRepository), new(MockPasswordHasher))
		admin := &user.User{Role: user.RoleAdmin}

		isAdmin, err := uc.IsInRole(context.Background(), admin, user.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, isAdmin)

		isUser, err := uc.IsInRole(context.Background(), admin, user.RoleUser)
		require.NoError(t, err)
		assert.False(t, isUser)
	})
}
