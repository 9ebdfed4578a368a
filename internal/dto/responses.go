package dto

import "time"

// VerificationCodeResponse returns an issued verification code
type VerificationCodeResponse struct {
	Code string `json:"code"`
}

// AccessTokenResponse represents an issued bearer token
type AccessTokenResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// UserInformationResponse represents an account profile
type UserInformationResponse struct {
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// FieldErrorResponse echoes the offending phone and email values.
// A field is null when it was not at fault.
type FieldErrorResponse struct {
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
