package service

import (
	"strings"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
)

// AccessService decides per-record visibility and edit rights. Every
// authenticated user can view everything; edit rights are limited to
// admins, the record's project manager, and the record's creator.
type AccessService struct {
	cfg *config.DirectoryConfig
}

// NewAccessService creates a new AccessService
func NewAccessService(cfg *config.DirectoryConfig) *AccessService {
	return &AccessService{cfg: cfg}
}

// CanViewProposal reports whether the user may see a proposal.
func (s *AccessService) CanViewProposal(userCtx *auth.UserContext, _ *domain.Proposal) bool {
	return userCtx != nil
}

// CanViewProject reports whether the user may see a project.
func (s *AccessService) CanViewProject(userCtx *auth.UserContext, _ *domain.Project) bool {
	return userCtx != nil
}

// CanEditProposal reports whether the user may change a proposal.
func (s *AccessService) CanEditProposal(userCtx *auth.UserContext, proposal *domain.Proposal) bool {
	if userCtx == nil {
		return false
	}
	if userCtx.IsAdmin() {
		return true
	}
	if strings.EqualFold(userCtx.DisplayName, proposal.ProjectManager) {
		return true
	}
	return strings.EqualFold(userCtx.Email, proposal.CreatedBy)
}

// CanEditProject reports whether the user may change a project.
func (s *AccessService) CanEditProject(userCtx *auth.UserContext, project *domain.Project) bool {
	if userCtx == nil {
		return false
	}
	if userCtx.IsAdmin() {
		return true
	}
	return strings.EqualFold(userCtx.DisplayName, project.ProjectManager)
}

// CanViewAnalytics reports whether the user may open the analytics report.
// Admins always can; everyone else must be on the analytics allowlist or
// carry the analytics role.
func (s *AccessService) CanViewAnalytics(userCtx *auth.UserContext) bool {
	if userCtx == nil {
		return false
	}
	if userCtx.IsAdmin() || userCtx.CanViewAnalytics() {
		return true
	}
	for _, name := range s.cfg.AnalyticsUsers {
		if strings.EqualFold(name, userCtx.DisplayName) {
			return true
		}
	}
	return false
}
