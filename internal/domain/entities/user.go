package entities

import "strings"

// User is a signed-in account of the identity provider
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// NewUser creates a user, deriving a display name from the email when none is given
func NewUser(id, email, displayName string) *User {
	if strings.TrimSpace(displayName) == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	return &User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
	}
}
