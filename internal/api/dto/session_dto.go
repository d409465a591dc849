package dto

import "time"

// SessionRequest opens a dashboard session for a role.
type SessionRequest struct {
	Role  string `json:"role"`
	Actor string `json:"actor"`
}

// SessionResponse response.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	Actor     string    `json:"actor"`
}
