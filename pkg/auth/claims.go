package auth

import (
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.MemberRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
type AccessTokenClaims struct {
	UserID uuid.UUID        `json:"user_id"`
	Email  string           `json:"email,omitempty"`
	Role   enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
