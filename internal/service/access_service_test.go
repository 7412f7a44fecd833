package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

func user(role domain.UserRole, name, email string) *auth.UserContext {
	return &auth.UserContext{UserID: uuid.New(), DisplayName: name, Email: email, Role: role}
}

func TestEditRights(t *testing.T) {
	svc := service.NewAccessService(&config.DirectoryConfig{})

	proposal := &domain.Proposal{
		ProjectManager: "Dana Reyes",
		CreatedBy:      "sam.ortiz@geoconinc.com",
	}

	assert.True(t, svc.CanEditProposal(user(domain.RoleAdmin, "Alex Admin", "alex@geoconinc.com"), proposal))
	assert.True(t, svc.CanEditProposal(user(domain.RoleStandard, "dana reyes", "d@geoconinc.com"), proposal), "PM match is case-insensitive")
	assert.True(t, svc.CanEditProposal(user(domain.RoleStandard, "Sam Ortiz", "Sam.Ortiz@geoconinc.com"), proposal), "creator match is by email")
	assert.False(t, svc.CanEditProposal(user(domain.RoleStandard, "Chris Moss", "chris@geoconinc.com"), proposal))
	assert.False(t, svc.CanEditProposal(nil, proposal))

	project := &domain.Project{ProjectManager: "Dana Reyes"}
	assert.True(t, svc.CanEditProject(user(domain.RoleProjectManager, "Dana Reyes", "d@geoconinc.com"), project))
	assert.False(t, svc.CanEditProject(user(domain.RoleProjectManager, "Chris Moss", "c@geoconinc.com"), project))
}

func TestViewRights(t *testing.T) {
	svc := service.NewAccessService(&config.DirectoryConfig{})

	anyone := user(domain.RoleStandard, "Pat Quinn", "pat@geoconinc.com")
	assert.True(t, svc.CanViewProposal(anyone, &domain.Proposal{}))
	assert.True(t, svc.CanViewProject(anyone, &domain.Project{}))
	assert.False(t, svc.CanViewProposal(nil, &domain.Proposal{}))
}

func TestAnalyticsAccess(t *testing.T) {
	svc := service.NewAccessService(&config.DirectoryConfig{
		AnalyticsUsers: []string{"Pat Quinn"},
	})

	assert.True(t, svc.CanViewAnalytics(user(domain.RoleAdmin, "Alex Admin", "a@geoconinc.com")))
	assert.True(t, svc.CanViewAnalytics(user(domain.RoleAnalytics, "Robin Vo", "r@geoconinc.com")))
	assert.True(t, svc.CanViewAnalytics(user(domain.RoleStandard, "pat quinn", "p@geoconinc.com")), "allowlist is case-insensitive")
	assert.False(t, svc.CanViewAnalytics(user(domain.RoleStandard, "Robin Vo", "r@geoconinc.com")))
	assert.False(t, svc.CanViewAnalytics(nil))
}
