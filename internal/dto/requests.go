package dto

// PhoneRequest carries the phone a verification code is requested for
type PhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RegisterRequest represents a registration request.
// Phone and email are checked by the service so that a malformed value is
// echoed back in the field error body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest represents a login request. ID is an email or a phone number.
type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}
