package auth

import (
	"time"

	"github.com/mybglist/mybglist-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// v4.local tokens are encrypted, so clients cannot read them.
type AccessClaims struct {
	UserID string        `json:"user_id"`
	Email  string        `json:"email"`
	Roles  []domain.Role `json:"roles"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// HasRole applies the same role hierarchy as domain.User.HasRole.
func (c *AccessClaims) HasRole(role domain.Role) bool {
	u := domain.User{Roles: c.Roles}
	return u.HasRole(role)
}
