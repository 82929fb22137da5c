package models

// Identity is the caller resolved from a request credential.
// A nil *Identity means the caller is anonymous.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Owns reports whether the caller is the given user.
func (i *Identity) Owns(userID string) bool {
	return i != nil && i.UserID == userID
}
