package permissions_test

import (
	"testing"

	"titledb/internal/api/models"
	"titledb/internal/api/permissions"

	"github.com/stretchr/testify/assert"
)

func TestIsAdmin(t *testing.T) {
	assert.True(t, permissions.IsAdmin(permissions.Identity{Role: models.RoleAdmin}))
	assert.True(t, permissions.IsAdmin(permissions.Identity{Role: models.RoleUser, IsSuperuser: true}))
	assert.False(t, permissions.IsAdmin(permissions.Identity{Role: models.RoleModerator}))
	assert.False(t, permissions.IsAdmin(permissions.Identity{Role: models.RoleUser}))
}

func TestCanModerate(t *testing.T) {
	assert.True(t, permissions.CanModerate(permissions.Identity{Role: models.RoleModerator}))
	assert.True(t, permissions.CanModerate(permissions.Identity{Role: models.RoleAdmin}))
	assert.True(t, permissions.CanModerate(permissions.Identity{IsSuperuser: true}))
	assert.False(t, permissions.CanModerate(permissions.Identity{Role: models.RoleUser}))
}

func TestCanEditObject(t *testing.T) {
	author := permissions.Identity{ID: "u-1", Role: models.RoleUser}
	stranger := permissions.Identity{ID: "u-2", Role: models.RoleUser}
	moderator := permissions.Identity{ID: "u-3", Role: models.RoleModerator}

	assert.True(t, permissions.CanEditObject(author, "u-1"))
	assert.False(t, permissions.CanEditObject(stranger, "u-1"))
	assert.True(t, permissions.CanEditObject(moderator, "u-1"))
}

func TestFromUser(t *testing.T) {
	u := &models.User{
		ID:          "abc",
		Username:    "carol",
		Role:        models.RoleModerator,
		IsSuperuser: false,
	}
	id := permissions.FromUser(u)
	assert.Equal(t, "abc", id.ID)
	assert.Equal(t, "carol", id.Username)
	assert.Equal(t, models.RoleModerator, id.Role)
	assert.False(t, id.IsSuperuser)
}
