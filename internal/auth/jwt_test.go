package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:          "test-secret-at-least-32-characters",
		Issuer:             "pipeline-api",
		TokenTTL:           3600,
		AllowedEmailDomain: "geoconinc.com",
	}
}

func testUser() *domain.User {
	u := &domain.User{
		Email:       "dana.reyes@geoconinc.com",
		DisplayName: "Dana Reyes",
		Role:        domain.RoleProjectManager,
		TeamNumber:  "02",
	}
	u.ID = uuid.New()
	return u
}

func TestIssueAndValidateToken(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())
	user := testUser()

	token, err := validator.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, "Dana Reyes", userCtx.DisplayName)
	assert.Equal(t, domain.RoleProjectManager, userCtx.Role)
	assert.Equal(t, "02", userCtx.TeamNumber)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())
	token, err := validator.IssueToken(testUser())
	require.NoError(t, err)

	other := testAuthConfig()
	other.JWTSecret = "a-completely-different-signing-secret"
	_, err = auth.NewJWTValidator(other).ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTL = -60
	validator := auth.NewJWTValidator(cfg)

	token, err := validator.IssueToken(testUser())
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	issuing := testAuthConfig()
	issuing.Issuer = "somewhere-else"
	token, err := auth.NewJWTValidator(issuing).IssueToken(testUser())
	require.NoError(t, err)

	_, err = auth.NewJWTValidator(testAuthConfig()).ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateTokenOutsideEmailDomain(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())
	user := testUser()
	user.Email = "dana@contractor.example.com"

	token, err := validator.IssueToken(user)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = ""
	_, err := auth.NewJWTValidator(cfg).IssueToken(testUser())
	assert.Error(t, err)
}

func TestUnknownRoleFallsBackToStandard(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())
	user := testUser()
	user.Role = domain.UserRole("director_emeritus")

	token, err := validator.IssueToken(user)
	require.NoError(t, err)

	userCtx, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStandard, userCtx.Role)
}

func TestTokenTTLDuration(t *testing.T) {
	cfg := testAuthConfig()
	assert.Equal(t, time.Hour, cfg.TokenTTLDuration())
}
