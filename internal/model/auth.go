package model

import "github.com/golang-jwt/jwt/v5"

// HostClaims are JWT claims identifying an authenticated display.
type HostClaims struct {
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

// HostLoginRequest is the request body for POST /v1/auth/host.
type HostLoginRequest struct {
	Key string `json:"key"`
}

// HostLoginResponse is returned after a successful host login.
type HostLoginResponse struct {
	Token  string `json:"token"`
	HostID string `json:"hostId"`
}
