package model

import "time"

// User is a stored account. Students may carry a parent link.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	ClassID      string    `json:"class_id,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the session-facing view of the user.
func (u *User) Principal() *Principal {
	return &Principal{
		UID:     u.UID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		ClassID: u.ClassID,
	}
}

// Principal is an authenticated identity plus its resolved application role.
// It is also the body of the verify-token response.
type Principal struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	ClassID string `json:"class_id,omitempty"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Role     Role   `json:"role" binding:"required,oneof=student teacher parent"`
	ClassID  string `json:"class_id" binding:"omitempty,max=64"`
	ParentID string `json:"parent_id" binding:"omitempty,max=64"`

	// UID pins the profile to an external provider's user id. It is never bound from requests.
	UID string `json:"-"`
}

// LoginRequest carries sign-in credentials for the local identity provider.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=1,max=128"`
}

// LoginResponse is returned after a successful sign in.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"user"`
}

// UpdateProfileRequest edits the only mutable profile field.
type UpdateProfileRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=2,max=100"`
}
