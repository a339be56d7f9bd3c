package domain

import "time"

// User represents a registered journal author.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the view of a user that is safe to return to clients.
type PublicUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Public strips credentials from the user.
func (u *User) Public() PublicUser {
	if u == nil {
		return PublicUser{}
	}
	return PublicUser{FullName: u.FullName, Email: u.Email}
}
