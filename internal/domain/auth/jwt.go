// Package auth verifies bearer tokens issued by the identity provider.
// Token issuance and credential checks live outside this service; movement
// recording only needs a trusted actor identity to stamp onto journal rows.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "stockgrid/internal/core/context"
)

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret string
	Issuer string
	Leeway time.Duration
}

// DefaultJWTConfig returns default verification settings.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret: secret,
		Issuer: "stockgrid",
		Leeway: 30 * time.Second,
	}
}

// Claims represents accepted token claims.
type Claims struct {
	jwt.RegisteredClaims
	ActorID string   `json:"uid"`
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

// JWTVerifier validates tokens and extracts the actor identity.
type JWTVerifier struct {
	config JWTConfig
}

// NewJWTVerifier creates a new verifier.
func NewJWTVerifier(config JWTConfig) *JWTVerifier {
	return &JWTVerifier{config: config}
}

// Verify parses and validates a token, returning the actor it identifies.
func (s *JWTVerifier) Verify(tokenString string) (*appctx.ActorContext, error) {
	opts := []jwt.ParserOption{
		jwt.WithLeeway(s.config.Leeway),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	actorID := claims.ActorID
	if actorID == "" {
		actorID = claims.Subject
	}
	if actorID == "" {
		return nil, fmt.Errorf("token carries no actor identity")
	}

	return &appctx.ActorContext{
		ActorID: actorID,
		Name:    claims.Name,
		Email:   claims.Email,
		Roles:   claims.Roles,
	}, nil
}
