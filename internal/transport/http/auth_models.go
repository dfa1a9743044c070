package http

// OTPRequest asks for a verification code before sign-up.
type OTPRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

// RegisterRequest carries the sign-up fields plus the mailed code.
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"hunter2!"`
	OTP      string `json:"otp" example:"123456"`
	FullName string `json:"fullName" example:"Jane Doe"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"hunter2!"`
}

// AuthUser is the sanitized identity returned by auth endpoints.
type AuthUser struct {
	Email    string  `json:"email" example:"user@example.com"`
	FullName *string `json:"fullName,omitempty" example:"Jane Doe"`
}
