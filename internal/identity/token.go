// Package identity authenticates users and issues the access tokens the
// actor middleware consumes. Credentials live beside the domain snapshots
// but in their own key, so wiping clinical data never wipes logins.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medichart/pkg/domain"
	derrors "medichart/pkg/domain-errors"
	"medichart/pkg/requestcontext"
)

// Claims carries the resolved identity inside the access token.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 access tokens.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl}
}

func (s *TokenService) Generate(actor requestcontext.ActorInfo, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name:  actor.Name,
		Email: actor.Email,
		Role:  actor.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(actor.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "medichart",
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", derrors.Wrap(err, derrors.CodeInternal, "sign token")
	}
	return signed, nil
}

// Validate checks the token and returns the actor it identifies. Satisfies
// the actor middleware's TokenValidator.
func (s *TokenService) Validate(tokenString string) (requestcontext.ActorInfo, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return requestcontext.ActorInfo{}, derrors.New(derrors.CodeUnauthorized, "token has expired")
		}
		return requestcontext.ActorInfo{}, derrors.New(derrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return requestcontext.ActorInfo{}, derrors.New(derrors.CodeUnauthorized, "invalid token claims")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return requestcontext.ActorInfo{}, derrors.New(derrors.CodeUnauthorized, "invalid token role")
	}
	return requestcontext.ActorInfo{
		ID:    domain.UserID(claims.Subject),
		Name:  claims.Name,
		Email: claims.Email,
		Role:  role,
	}, nil
}
