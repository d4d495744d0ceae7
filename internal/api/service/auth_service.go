package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"titledb/internal/api/models"
	"titledb/internal/api/repository"
	"titledb/internal/api/validate"
	"titledb/internal/config"
	"titledb/internal/mailer"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNameInUse    = errors.New("username already in use")
	ErrEmailInUse   = errors.New("email already in use")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidCode  = errors.New("invalid confirmation code")
	ErrCodeExpired  = errors.New("confirmation code has expired")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidInput = errors.New("invalid input")
)

// Claims is the session token payload.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Signup registers a pending account and mails it a confirmation
	// code. Retrying with the same (username, email) pair reissues the
	// code instead of failing.
	Signup(ctx context.Context, username, email string) (*models.User, error)

	// Verify exchanges a confirmation code for a bearer token and
	// activates the account.
	Verify(ctx context.Context, username, code string) (string, error)

	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo repository.UserRepository
	codes    repository.ConfirmationStore
	mail     mailer.Mailer

	jwtSecret      string
	accessTokenTTL time.Duration
	codeTTL        time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes repository.ConfirmationStore,
	mail mailer.Mailer,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		codes:          codes,
		mail:           mail,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		codeTTL:        cfg.ConfirmationTTL,
	}
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if err := validate.Username(username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validate.Email(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	code, err := generateConfirmationCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.codeTTL)
	user, err := s.userRepo.UpsertPending(ctx, username, email, string(hash), expiresAt)
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		return nil, ErrNameInUse
	case errors.Is(err, repository.ErrEmailTaken):
		return nil, ErrEmailInUse
	case err != nil:
		return nil, err
	}

	// A fresh code invalidates anything issued before it.
	if err := s.codes.Put(ctx, username, s.codeTTL); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Your confirmation code is %s. It expires in %s.", code, s.codeTTL)
	if err := s.mail.Send(user.Email, "TitleDB confirmation code", body); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) Verify(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.ConfirmationHash == "" {
		return "", ErrInvalidCode
	}
	if user.CodeExpiresAt == nil || time.Now().After(*user.CodeExpiresAt) {
		return "", ErrCodeExpired
	}
	alive, err := s.codes.Alive(ctx, username)
	if err != nil {
		return "", err
	}
	if !alive {
		return "", ErrCodeExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ConfirmationHash), []byte(code)) != nil {
		return "", ErrInvalidCode
	}

	user.IsActive = true
	user.ConfirmationHash = ""
	user.CodeExpiresAt = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}
	// The hash is already gone; a stale Redis key can't verify anything.
	_ = s.codes.Drop(ctx, username)

	return s.issueToken(user)
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// generateConfirmationCode returns six random digits.
func generateConfirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
