package service

import (
	"context"
	"errors"
	"fmt"

	"titledb/internal/api/dto"
	"titledb/internal/api/models"
	"titledb/internal/api/permissions"
	"titledb/internal/api/repository"
	"titledb/internal/api/validate"

	"gorm.io/gorm"
)

var ErrRoleChangeForbidden = errors.New("only an admin may change a role")

type UserService interface {
	// Me / UpdateMe serve the self-service profile.
	Me(ctx context.Context, ident permissions.Identity) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, ident permissions.Identity, in dto.UpdateUserDTO) (*dto.UserResponse, error)

	// Admin-side management.
	Create(ctx context.Context, in dto.CreateUserDTO) (*dto.UserResponse, error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, ident permissions.Identity, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedUserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Me(ctx context.Context, ident permissions.Identity) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, ident.Username)
	if err != nil {
		return nil, err
	}
	return dto.UserFromModel(user), nil
}

func (s *userService) UpdateMe(ctx context.Context, ident permissions.Identity, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	// Self-promotion guard: a role field in a self-edit is rejected
	// outright unless the caller is already an admin.
	if in.Role != nil && !permissions.IsAdmin(ident) {
		return nil, ErrRoleChangeForbidden
	}
	return s.Update(ctx, ident, ident.Username, in)
}

// Create is the admin path: the account is active immediately, no
// confirmation flow.
func (s *userService) Create(ctx context.Context, in dto.CreateUserDTO) (*dto.UserResponse, error) {
	if err := validate.Username(in.Username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validate.Email(in.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case repository.IsUniqueViolationOn(err, "email"):
			return nil, ErrEmailInUse
		case repository.IsUniqueViolation(err):
			return nil, ErrNameInUse
		default:
			return nil, err
		}
	}
	return dto.UserFromModel(user), nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return dto.UserFromModel(user), nil
}

func (s *userService) Update(ctx context.Context, ident permissions.Identity, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		if err := validate.Email(*in.Email); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil {
		if !permissions.IsAdmin(ident) {
			return nil, ErrRoleChangeForbidden
		}
		if err := validate.Role(*in.Role); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		user.Role = *in.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return dto.UserFromModel(user), nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.userRepo.Delete(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, *dto.UserFromModel(&user))
	}
	return dto.NewPaginatedUserResponse(responses, int(total), page, pageSize), nil
}

func (s *userService) findUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
