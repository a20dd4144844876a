package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gameion/internal/model"
)

// AuthService issues and validates host display tokens. When no host
// key is configured the service is disabled and host endpoints are
// open, which matches local/dev deployments where the display runs on
// the same network as the phones.
type AuthService struct {
	hostKey   string
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(hostKey, jwtSecret string) *AuthService {
	return &AuthService{
		hostKey:   hostKey,
		jwtSecret: []byte(jwtSecret),
	}
}

// Enabled reports whether host authentication is required.
func (s *AuthService) Enabled() bool {
	return s.hostKey != ""
}

// LoginHost validates the shared key and returns a host token.
func (s *AuthService) LoginHost(key string) (*model.HostLoginResponse, error) {
	if !s.Enabled() || key != s.hostKey {
		return nil, ErrInvalidKey
	}

	hostID := "host_" + uuid.New().String()[:8]

	claims := &model.HostClaims{
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.HostLoginResponse{
		Token:  tokenString,
		HostID: hostID,
	}, nil
}

// ValidateHostToken validates a host JWT and returns its claims.
func (s *AuthService) ValidateHostToken(tokenString string) (*model.HostClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.HostClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidHostJWT
	}

	claims, ok := token.Claims.(*model.HostClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidHostJWT
	}
	return claims, nil
}
