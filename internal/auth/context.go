package auth

import (
	"context"
	"strings"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
	TeamNumber  string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsAdmin checks if the user has the admin role
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// IsProjectManager checks if the user has the project manager role
func (u *UserContext) IsProjectManager() bool {
	return u.Role == domain.RoleProjectManager
}

// CanViewAnalytics checks if the user can view the analytics report
func (u *UserContext) CanViewAnalytics() bool {
	return u.Role == domain.RoleAdmin || u.Role == domain.RoleAnalytics
}

// GetDisplayNameInitials returns initials from the display name (e.g., "John Doe" -> "JD")
func (u *UserContext) GetDisplayNameInitials() string {
	if u.DisplayName == "" {
		return ""
	}
	parts := strings.Fields(u.DisplayName)
	initials := ""
	for _, part := range parts {
		if len(part) > 0 {
			initials += strings.ToUpper(string(part[0]))
		}
	}
	return initials
}
