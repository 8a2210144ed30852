package auth

// SignUpRequest represents the request to create an account
type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=255"`
}

// SignInRequest represents the request to sign in with email and password
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
