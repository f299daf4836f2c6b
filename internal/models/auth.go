package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/school-gateway/pkg/binex"
)

// BackendUser is the profile returned by the backend login task.
type BackendUser struct {
	ID        binex.Text `json:"id"`
	Username  binex.Text `json:"username"`
	Name      binex.Text `json:"name"`
	Role      binex.Text `json:"role"`
	StudentID binex.Text `json:"student_id"`
	Class     binex.Text `json:"class"`
	Section   binex.Text `json:"section"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	StudentID string   `json:"student_id,omitempty"`
	Class     string   `json:"class,omitempty"`
	Section   string   `json:"section,omitempty"`
}

// LoginResponse returns the gateway session token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims is the payload of gateway access tokens.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	Name      string   `json:"name"`
	StudentID string   `json:"student_id,omitempty"`
	Class     string   `json:"class,omitempty"`
	Section   string   `json:"section,omitempty"`
	jwt.RegisteredClaims
}
