package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carries the user identity in issued tokens
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	TeamNumber  string `json:"team,omitempty"`
	jwt.RegisteredClaims
}

// JWTValidator issues and validates HMAC-signed bearer tokens
type JWTValidator struct {
	config *config.AuthConfig
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{config: cfg}
}

// IssueToken creates a signed token for a user
func (v *JWTValidator) IssueToken(user *domain.User) (string, error) {
	if v.config.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret not configured")
	}

	now := time.Now()
	claims := &Claims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TeamNumber:  user.TeamNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    v.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.config.TokenTTLDuration())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(v.config.JWTSecret))
}

// ValidateToken validates a token and returns the user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	claims := &Claims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.JWTSecret), nil
	},
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	if v.config.AllowedEmailDomain != "" &&
		!strings.HasSuffix(strings.ToLower(claims.Email), "@"+v.config.AllowedEmailDomain) {
		return nil, fmt.Errorf("%w: email outside allowed domain", ErrInvalidToken)
	}

	role := domain.UserRole(claims.Role)
	if !role.IsValid() {
		role = domain.RoleStandard
	}

	userCtx := &UserContext{
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
		Role:        role,
		TeamNumber:  claims.TeamNumber,
	}

	if uid, err := uuid.Parse(claims.Subject); err == nil {
		userCtx.UserID = uid
	}
	// Fall back to a stable ID derived from the email
	if userCtx.UserID == uuid.Nil && userCtx.Email != "" {
		userCtx.UserID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(userCtx.Email))
	}

	return userCtx, nil
}
