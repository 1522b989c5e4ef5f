package utils

import (
	"errors"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/golang-jwt/jwt"
)

// IdentityClaims are the claims minted by the auth provider for a session.
type IdentityClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Admin bool   `json:"admin,omitempty"`
	jwt.StandardClaims
}

// GenerateToken creates an HS256 token for the identity
func GenerateToken(id models.Identity, secret string, ttl time.Duration) (string, error) {
	claims := IdentityClaims{
		UID:   id.UID,
		Email: id.Email,
		Name:  id.Name,
		Admin: id.Admin,
		StandardClaims: jwt.StandardClaims{
			Subject:   id.UID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken validates a token and returns the identity it carries
func ValidateToken(tokenString, secret string) (models.Identity, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Identity{}, err
	}
	if !token.Valid {
		return models.Identity{}, errors.New("invalid token")
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return models.Identity{}, errors.New("invalid user ID in token")
	}
	return models.Identity{
		UID:   uid,
		Email: claims.Email,
		Name:  claims.Name,
		Admin: claims.Admin,
	}, nil
}
