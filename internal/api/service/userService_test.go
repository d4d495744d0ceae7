package service_test

import (
	"context"
	"testing"

	"titledb/internal/api/dto"
	"titledb/internal/api/models"
	"titledb/internal/api/permissions"
	"titledb/internal/api/service"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestUserService_UpdateMe(t *testing.T) {
	ctx := context.Background()

	t.Run("ProfileEdit", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		stored := &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
		userRepo.On("FindByUsername", mock.Anything, "alice").Return(stored, nil).Once()
		userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Bio == "reads a lot"
		})).Return(nil).Once()

		bio := "reads a lot"
		ident := permissions.Identity{Username: "alice", Role: models.RoleUser}
		resp, err := svc.UpdateMe(ctx, ident, dto.UpdateUserDTO{Bio: &bio})
		assert.NoError(t, err)
		assert.Equal(t, "reads a lot", resp.Bio)
	})

	t.Run("SelfPromotionRejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		role := models.RoleAdmin
		ident := permissions.Identity{Username: "alice", Role: models.RoleUser}
		_, err := svc.UpdateMe(ctx, ident, dto.UpdateUserDTO{Role: &role})
		assert.ErrorIs(t, err, service.ErrRoleChangeForbidden)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("AdminCanChangeRole", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		stored := &models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser}
		userRepo.On("FindByUsername", mock.Anything, "bob").Return(stored, nil).Once()
		userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Role == models.RoleModerator
		})).Return(nil).Once()

		role := models.RoleModerator
		admin := permissions.Identity{Username: "root", Role: models.RoleAdmin}
		resp, err := svc.Update(ctx, admin, "bob", dto.UpdateUserDTO{Role: &role})
		assert.NoError(t, err)
		assert.Equal(t, models.RoleModerator, resp.Role)
	})

	t.Run("SuperuserCountsAsAdmin", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		stored := &models.User{Username: "bob", Email: "bob@example.com", Role: models.RoleUser}
		userRepo.On("FindByUsername", mock.Anything, "bob").Return(stored, nil).Once()
		userRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

		role := models.RoleModerator
		super := permissions.Identity{Username: "root", Role: models.RoleUser, IsSuperuser: true}
		_, err := svc.Update(ctx, super, "bob", dto.UpdateUserDTO{Role: &role})
		assert.NoError(t, err)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		stored := &models.User{Username: "bob", Role: models.RoleUser}
		userRepo.On("FindByUsername", mock.Anything, "bob").Return(stored, nil).Once()

		role := "wizard"
		admin := permissions.Identity{Username: "root", Role: models.RoleAdmin}
		_, err := svc.Update(ctx, admin, "bob", dto.UpdateUserDTO{Role: &role})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("ActiveImmediately", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.IsActive && u.Role == models.RoleUser
		})).Return(nil).Once()

		resp, err := svc.Create(ctx, dto.CreateUserDTO{Username: "dave", Email: "dave@example.com"})
		assert.NoError(t, err)
		assert.Equal(t, "dave", resp.Username)
		userRepo.AssertExpectations(t)
	})

	t.Run("ReservedUsername", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		_, err := svc.Create(ctx, dto.CreateUserDTO{Username: "me", Email: "me@example.com"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("UsernameConflict", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		userRepo.On("Create", mock.Anything, mock.Anything).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}).Once()

		_, err := svc.Create(ctx, dto.CreateUserDTO{Username: "dave", Email: "dave@example.com"})
		assert.ErrorIs(t, err, service.ErrNameInUse)
	})

	t.Run("EmailConflict", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := service.NewUserService(userRepo)

		userRepo.On("Create", mock.Anything, mock.Anything).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}).Once()

		_, err := svc.Create(ctx, dto.CreateUserDTO{Username: "dave", Email: "taken@example.com"})
		assert.ErrorIs(t, err, service.ErrEmailInUse)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	svc := service.NewUserService(userRepo)

	userRepo.On("Delete", mock.Anything, "ghost").Return(gorm.ErrRecordNotFound).Once()

	err := svc.Delete(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
