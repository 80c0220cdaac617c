package auth

import "time"

// CredentialsRequest: тело sign-in / sign-up
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse: ответ на успешную авторизацию
type SessionResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Created     bool   `json:"created"` // account was created by this call
}

// SessionInfoResponse: GET /v1/auth/session
type SessionInfoResponse struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	Email         string     `json:"email,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Session is a verified access token.
type Session struct {
	UserID    string
	Email     string
	TokenID   string // jti
	ExpiresAt time.Time
}

// SessionEvent is passed to OnSessionChange listeners.
type SessionEvent string

const (
	SessionSignedIn  SessionEvent = "SIGNED_IN"
	SessionSignedOut SessionEvent = "SIGNED_OUT"
)

// ErrorResponse: формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
