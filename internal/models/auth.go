package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload issued by the session service.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
