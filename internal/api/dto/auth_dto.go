package dto

// Data Transfer Objects for the signup/confirmation flow

// SignupRequest: payload for user registration. No password: the
// account is claimed by proving control of the email.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Username string `json:"username" binding:"required,max=150"`
}

// SignupResponse echoes the registered pair back to the caller.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload exchanging a confirmation code for a session token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse: the bearer credential
type TokenResponse struct {
	Token string `json:"token"`
}
