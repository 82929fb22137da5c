package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is a registered shop account. Password holds the bcrypt hash.
type User struct {
	ID               string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	FirstName        string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName         string     `gorm:"type:varchar(100);not null" json:"lastName"`
	Role             Role       `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	ResetToken       *string    `gorm:"type:varchar(128);index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// PublicUser is the user shape returned by the API.
type PublicUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// DisplayName is the name stamped onto reviews at write time.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
