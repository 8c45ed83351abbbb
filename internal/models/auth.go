package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role gates operator endpoints.
type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleOperator   Role = "OPERATOR"
)

// JWTClaims is the access token payload issued by the identity provider.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

