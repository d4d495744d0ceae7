package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"titledb/internal/api/dto"
	"titledb/internal/api/handler"
	"titledb/internal/api/models"
	"titledb/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICE ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Verify(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

// --- SETUP ---

func setupAuthRouter(mockService *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	h := handler.NewAuthHandler(mockService)

	rg := r.Group("/api/v1")
	h.RegisterRoutes(rg)
	return r
}

// --- TESTS ---

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAuthService)
		r := setupAuthRouter(mockService)

		mockService.On("Signup", mock.Anything, "alice", "alice@example.com").
			Return(&models.User{Username: "alice", Email: "alice@example.com"}, nil).Once()

		body, _ := json.Marshal(dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.SignupResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, "alice", response.Username)
		assert.Equal(t, "alice@example.com", response.Email)
	})

	t.Run("UsernameConflict", func(t *testing.T) {
		mockService := new(MockAuthService)
		r := setupAuthRouter(mockService)

		mockService.On("Signup", mock.Anything, "alice", "other@example.com").
			Return(nil, service.ErrNameInUse).Once()

		body, _ := json.Marshal(dto.SignupRequest{Username: "alice", Email: "other@example.com"})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ReservedUsername", func(t *testing.T) {
		mockService := new(MockAuthService)
		r := setupAuthRouter(mockService)

		mockService.On("Signup", mock.Anything, "me", "me@example.com").
			Return(nil, service.ErrInvalidInput).Once()

		body, _ := json.Marshal(dto.SignupRequest{Username: "me", Email: "me@example.com"})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingEmail", func(t *testing.T) {
		mockService := new(MockAuthService)
		r := setupAuthRouter(mockService)

		req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBufferString(`{"username":"alice"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Token(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAuthService)
		r := setupAuthRouter(mockService)

		mockService.On("Verify", mock.Anything, "alice", "123456").
			Return("signed.jwt.token", nil).Once()

		body, _ := json.Marshal(dto.TokenRequest{Username: "alice", ConfirmationCode: "123456"})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.TokenResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, "signed.jwt.token", response.Token)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		mockService := new(MockAuthService)
		r := setupAuthRouter(mockService)

		mockService.On("Verify", mock.Anything, "ghost", "123456").
			Return("", service.ErrUserNotFound).Once()

		body, _ := json.Marshal(dto.TokenRequest{Username: "ghost", ConfirmationCode: "123456"})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("WrongCode", func(t *testing.T) {
		mockService := new(MockAuthService)
		r := setupAuthRouter(mockService)

		mockService.On("Verify", mock.Anything, "alice", "000000").
			Return("", service.ErrInvalidCode).Once()

		body, _ := json.Marshal(dto.TokenRequest{Username: "alice", ConfirmationCode: "000000"})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
