// Package permissions is the single place role checks live.
// Handlers and services receive an Identity explicitly; nothing reads
// the current user out of ambient state.
package permissions

import "titledb/internal/api/models"

// Identity is the authenticated caller as loaded from the users table
// on every request.
type Identity struct {
	ID          string
	Username    string
	Role        string
	IsSuperuser bool
}

func FromUser(u *models.User) Identity {
	return Identity{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsSuperuser: u.IsSuperuser,
	}
}

// IsAdmin unions the role field with the superuser flag. Every admin
// check in the codebase goes through here.
func IsAdmin(id Identity) bool {
	return id.Role == models.RoleAdmin || id.IsSuperuser
}

func IsModerator(id Identity) bool {
	return id.Role == models.RoleModerator
}

// CanModerate reports whether the caller may edit or delete other
// users' reviews and comments.
func CanModerate(id Identity) bool {
	return IsAdmin(id) || IsModerator(id)
}

func IsAuthor(id Identity, authorID string) bool {
	return id.ID == authorID
}

// CanEditObject applies the author-or-staff rule for reviews and comments.
func CanEditObject(id Identity, authorID string) bool {
	return IsAuthor(id, authorID) || CanModerate(id)
}
