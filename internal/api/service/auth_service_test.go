package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"titledb/internal/api/models"
	"titledb/internal/api/repository"
	"titledb/internal/api/service"
	"titledb/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- MOCKS ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpsertPending(ctx context.Context, username, email, codeHash string, expiresAt time.Time) (*models.User, error) {
	args := m.Called(ctx, username, email, codeHash, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockConfirmationStore struct {
	mock.Mock
}

func (m *MockConfirmationStore) Put(ctx context.Context, username string, ttl time.Duration) error {
	args := m.Called(ctx, username, ttl)
	return args.Error(0)
}

func (m *MockConfirmationStore) Alive(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockConfirmationStore) Drop(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

// --- SETUP ---

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       strings.Repeat("s", 32),
		AccessTokenTTL:  time.Hour,
		ConfirmationTTL: 24 * time.Hour,
	}
}

func newAuthService() (service.AuthService, *MockUserRepository, *MockConfirmationStore, *MockMailer) {
	userRepo := new(MockUserRepository)
	codes := new(MockConfirmationStore)
	mail := new(MockMailer)
	svc := service.NewAuthService(userRepo, codes, mail, testConfig())
	return svc, userRepo, codes, mail
}

// --- TESTS ---

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, userRepo, codes, mail := newAuthService()

		pending := &models.User{Username: "alice", Email: "alice@example.com"}
		userRepo.On("UpsertPending", mock.Anything, "alice", "alice@example.com", mock.Anything, mock.Anything).
			Return(pending, nil).Once()
		codes.On("Put", mock.Anything, "alice", 24*time.Hour).Return(nil).Once()
		mail.On("Send", "alice@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "confirmation code")
		})).Return(nil).Once()

		user, err := svc.Signup(ctx, "alice", "alice@example.com")
		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		userRepo.AssertExpectations(t)
		codes.AssertExpectations(t)
		mail.AssertExpectations(t)
	})

	t.Run("ReservedUsername", func(t *testing.T) {
		svc, userRepo, _, _ := newAuthService()

		_, err := svc.Signup(ctx, "me", "me@example.com")
		assert.ErrorIs(t, err, service.ErrInvalidInput)
		userRepo.AssertNotCalled(t, "UpsertPending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		svc, userRepo, _, _ := newAuthService()

		userRepo.On("UpsertPending", mock.Anything, "bob", "other@example.com", mock.Anything, mock.Anything).
			Return(nil, repository.ErrUsernameTaken).Once()

		_, err := svc.Signup(ctx, "bob", "other@example.com")
		assert.ErrorIs(t, err, service.ErrNameInUse)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		svc, userRepo, _, _ := newAuthService()

		userRepo.On("UpsertPending", mock.Anything, "newname", "taken@example.com", mock.Anything, mock.Anything).
			Return(nil, repository.ErrEmailTaken).Once()

		_, err := svc.Signup(ctx, "newname", "taken@example.com")
		assert.ErrorIs(t, err, service.ErrEmailInUse)
	})

	t.Run("RetryReissuesCode", func(t *testing.T) {
		// A second signup with the same pending pair succeeds and mails
		// a new code rather than reporting a conflict.
		svc, userRepo, codes, mail := newAuthService()

		pending := &models.User{Username: "carol", Email: "carol@example.com"}
		userRepo.On("UpsertPending", mock.Anything, "carol", "carol@example.com", mock.Anything, mock.Anything).
			Return(pending, nil).Twice()
		codes.On("Put", mock.Anything, "carol", 24*time.Hour).Return(nil).Twice()
		mail.On("Send", "carol@example.com", mock.Anything, mock.Anything).Return(nil).Twice()

		_, err := svc.Signup(ctx, "carol", "carol@example.com")
		assert.NoError(t, err)
		_, err = svc.Signup(ctx, "carol", "carol@example.com")
		assert.NoError(t, err)
		mail.AssertExpectations(t)
	})
}

func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()

	hash := func(code string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		return string(h)
	}
	future := time.Now().Add(time.Hour)

	t.Run("Success", func(t *testing.T) {
		svc, userRepo, codes, _ := newAuthService()

		user := &models.User{
			ID:               "user-id-1",
			Username:         "alice",
			ConfirmationHash: hash("123456"),
			CodeExpiresAt:    &future,
		}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		codes.On("Alive", mock.Anything, "alice").Return(true, nil).Once()
		userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.IsActive && u.ConfirmationHash == "" && u.CodeExpiresAt == nil
		})).Return(nil).Once()
		codes.On("Drop", mock.Anything, "alice").Return(nil).Once()

		token, err := svc.Verify(ctx, "alice", "123456")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := svc.ValidateToken(token)
		assert.NoError(t, err)
		assert.Equal(t, "user-id-1", claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		userRepo.AssertExpectations(t)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		svc, userRepo, _, _ := newAuthService()

		userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound).Once()

		_, err := svc.Verify(ctx, "ghost", "123456")
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("WrongCode", func(t *testing.T) {
		svc, userRepo, codes, _ := newAuthService()

		user := &models.User{
			Username:         "alice",
			ConfirmationHash: hash("123456"),
			CodeExpiresAt:    &future,
		}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		codes.On("Alive", mock.Anything, "alice").Return(true, nil).Once()

		_, err := svc.Verify(ctx, "alice", "654321")
		assert.ErrorIs(t, err, service.ErrInvalidCode)
		// The account must stay inactive after a failed attempt.
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("ExpiredByTimestamp", func(t *testing.T) {
		svc, userRepo, _, _ := newAuthService()

		past := time.Now().Add(-time.Hour)
		user := &models.User{
			Username:         "alice",
			ConfirmationHash: hash("123456"),
			CodeExpiresAt:    &past,
		}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()

		_, err := svc.Verify(ctx, "alice", "123456")
		assert.ErrorIs(t, err, service.ErrCodeExpired)
	})

	t.Run("ExpiredInStore", func(t *testing.T) {
		svc, userRepo, codes, _ := newAuthService()

		user := &models.User{
			Username:         "alice",
			ConfirmationHash: hash("123456"),
			CodeExpiresAt:    &future,
		}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()
		codes.On("Alive", mock.Anything, "alice").Return(false, nil).Once()

		_, err := svc.Verify(ctx, "alice", "123456")
		assert.ErrorIs(t, err, service.ErrCodeExpired)
	})

	t.Run("NoPendingCode", func(t *testing.T) {
		svc, userRepo, _, _ := newAuthService()

		user := &models.User{Username: "alice", IsActive: true}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil).Once()

		_, err := svc.Verify(ctx, "alice", "123456")
		assert.ErrorIs(t, err, service.ErrInvalidCode)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc, _, _, _ := newAuthService()

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
