package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/mapper"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Proposal service errors
var (
	ErrProposalNotFound      = errors.New("proposal not found")
	ErrProposalAlreadyLost   = errors.New("proposal is already lost")
	ErrProposalEditForbidden = errors.New("user may not edit this proposal")
)

// AutoApprovedBy is recorded as the legal approver when a won proposal
// skips legal review.
const AutoApprovedBy = "Auto-approved (No legal review required)"

// ProposalService handles the proposal lifecycle from creation through
// loss or conversion into a project.
type ProposalService struct {
	db           *gorm.DB
	proposalRepo *repository.ProposalRepository
	projectRepo  *repository.ProjectRepository
	numberSvc    *NumberSequenceService
	analyticsSvc *AnalyticsService
	notifier     *NotifierService
	audit        *AuditService
	access       *AccessService
	directory    *config.DirectoryConfig
	fileStorage  storage.Storage
	logger       *zap.Logger
}

// NewProposalService creates a new ProposalService instance
func NewProposalService(
	db *gorm.DB,
	proposalRepo *repository.ProposalRepository,
	projectRepo *repository.ProjectRepository,
	numberSvc *NumberSequenceService,
	analyticsSvc *AnalyticsService,
	notifier *NotifierService,
	audit *AuditService,
	access *AccessService,
	directory *config.DirectoryConfig,
	fileStorage storage.Storage,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{
		db:           db,
		proposalRepo: proposalRepo,
		projectRepo:  projectRepo,
		numberSvc:    numberSvc,
		analyticsSvc: analyticsSvc,
		notifier:     notifier,
		audit:        audit,
		access:       access,
		directory:    directory,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

// Create creates a new proposal and assigns its number
func (s *ProposalService) Create(ctx context.Context, req *domain.CreateProposalRequest) (*domain.ProposalDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if !req.Office.IsValid() {
		return nil, fmt.Errorf("%w: unknown office %q", ErrInvalidInput, req.Office)
	}
	if !req.ProposalType.IsValid() {
		return nil, fmt.Errorf("%w: unknown proposal type %q", ErrInvalidInput, req.ProposalType)
	}
	if !req.ServiceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown service type %q", ErrInvalidInput, req.ServiceType)
	}
	if req.Fee < 0 {
		return nil, fmt.Errorf("%w: fee cannot be negative", ErrInvalidInput)
	}

	number, err := s.numberSvc.GenerateProposalNumber(ctx, req.Office, req.ProposalType, req.ServiceType)
	if err != nil {
		return nil, err
	}

	proposal := &domain.Proposal{
		ProposalNumber:   number,
		Office:           req.Office,
		ProposalType:     req.ProposalType,
		ServiceType:      req.ServiceType,
		ProjectName:      req.ProjectName,
		ClientName:       req.ClientName,
		ContactName:      req.ContactName,
		ContactEmail:     req.ContactEmail,
		Fee:              req.Fee,
		Status:           domain.ProposalStatusPending,
		ProjectManager:   req.ProjectManager,
		NeedsLegalReview: req.NeedsLegalReview,
		COINeeded:        req.COINeeded,
		CreatedBy:        userCtx.Email,
		Notes:            req.Notes,
	}

	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, fmt.Errorf("%w: failed to create proposal: %v", ErrStorage, err)
	}

	s.logger.Info("proposal created",
		zap.String("proposalNumber", proposal.ProposalNumber),
		zap.String("office", string(proposal.Office)),
		zap.Float64("fee", proposal.Fee))

	// Side effects are best-effort and never fail the create
	if err := s.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsNewProposal, domain.AnalyticsUpdatePayload{
		Office:         proposal.Office,
		ProjectManager: proposal.ProjectManager,
		Fee:            proposal.Fee,
	}); err != nil {
		s.logger.Warn("failed to update analytics after create", zap.Error(err))
	}
	s.audit.RecordActivity(ctx, "proposal_created", "proposal", proposal.ProposalNumber, userCtx.DisplayName,
		fmt.Sprintf("Proposal %s created for %s", proposal.ProposalNumber, proposal.ClientName))

	dto := s.toDTO(ctx, proposal)
	return &dto, nil
}

// GetByID returns a single proposal
func (s *ProposalService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	dto := s.toDTO(ctx, proposal)
	return &dto, nil
}

// GetByNumber returns a single proposal looked up by its number
func (s *ProposalService) GetByNumber(ctx context.Context, number string) (*domain.ProposalDTO, error) {
	proposal, err := s.proposalRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	dto := s.toDTO(ctx, proposal)
	return &dto, nil
}

// List returns a page of proposals matching the filter
func (s *ProposalService) List(ctx context.Context, filter repository.ProposalFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	proposals, total, err := s.proposalRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	dtos := make([]domain.ProposalDTO, len(proposals))
	for i := range proposals {
		dtos[i] = s.toDTO(ctx, &proposals[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update edits a pending proposal's details. Number, office, and type
// fields are immutable once assigned.
func (s *ProposalService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProposalRequest) (*domain.ProposalDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.Status != domain.ProposalStatusPending {
		return nil, fmt.Errorf("%w: cannot edit a %s proposal", ErrInvalidTransition, proposal.Status)
	}
	if !s.access.CanEditProposal(userCtx, proposal) {
		return nil, ErrProposalEditForbidden
	}

	if req.ProjectName != nil {
		proposal.ProjectName = *req.ProjectName
	}
	if req.ClientName != nil {
		proposal.ClientName = *req.ClientName
	}
	if req.ContactName != nil {
		proposal.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		proposal.ContactEmail = *req.ContactEmail
	}
	if req.Fee != nil {
		if *req.Fee < 0 {
			return nil, fmt.Errorf("%w: fee cannot be negative", ErrInvalidInput)
		}
		proposal.Fee = *req.Fee
	}
	if req.ProjectManager != nil {
		proposal.ProjectManager = *req.ProjectManager
	}
	if req.NeedsLegalReview != nil {
		proposal.NeedsLegalReview = *req.NeedsLegalReview
	}
	if req.COINeeded != nil {
		proposal.COINeeded = *req.COINeeded
	}
	if req.Notes != nil {
		proposal.Notes = *req.Notes
	}

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("%w: failed to update proposal: %v", ErrStorage, err)
	}

	s.audit.RecordActivity(ctx, "proposal_updated", "proposal", proposal.ProposalNumber, userCtx.DisplayName,
		fmt.Sprintf("Proposal %s updated", proposal.ProposalNumber))

	dto := s.toDTO(ctx, proposal)
	return &dto, nil
}

// MarkSent records that the proposal went out to the client. Re-sending
// overwrites the previous sent stamp; the latest send wins.
func (s *ProposalService) MarkSent(ctx context.Context, id uuid.UUID) (*domain.ProposalDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.Status != domain.ProposalStatusPending {
		return nil, fmt.Errorf("%w: cannot send a %s proposal", ErrInvalidTransition, proposal.Status)
	}

	now := time.Now()
	proposal.ProposalSent = true
	proposal.ProposalSentDate = &now
	proposal.ProposalSentBy = userCtx.DisplayName

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("%w: failed to mark proposal sent: %v", ErrStorage, err)
	}

	s.notifier.NotifyProposalSent(ctx, proposal, userCtx.DisplayName)
	s.audit.RecordActivity(ctx, "proposal_sent", "proposal", proposal.ProposalNumber, userCtx.DisplayName,
		fmt.Sprintf("Proposal %s sent to %s", proposal.ProposalNumber, proposal.ClientName))

	dto := s.toDTO(ctx, proposal)
	return &dto, nil
}

// MarkLost closes a pending proposal as lost with a reason
func (s *ProposalService) MarkLost(ctx context.Context, id uuid.UUID, req *domain.MarkLostRequest) (*domain.ProposalDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if req.Reason == "" {
		return nil, fmt.Errorf("%w: lost reason is required", ErrInvalidInput)
	}

	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	switch proposal.Status {
	case domain.ProposalStatusLost:
		return nil, ErrProposalAlreadyLost
	case domain.ProposalStatusConverted:
		return nil, ErrProposalAlreadyConverted
	}

	now := time.Now()
	proposal.Status = domain.ProposalStatusLost
	proposal.LostDate = &now
	proposal.LostReason = req.Reason

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("%w: failed to mark proposal lost: %v", ErrStorage, err)
	}

	s.logger.Info("proposal lost",
		zap.String("proposalNumber", proposal.ProposalNumber),
		zap.String("reason", req.Reason))
	s.audit.RecordActivity(ctx, "proposal_lost", "proposal", proposal.ProposalNumber, userCtx.DisplayName,
		fmt.Sprintf("Proposal %s marked lost: %s", proposal.ProposalNumber, req.Reason))

	dto := s.toDTO(ctx, proposal)
	return &dto, nil
}

// MarkWon converts a pending proposal into a project. The proposal update,
// project creation, legal seeding, and compliance records are written in
// one transaction; notifications and analytics run afterwards and cannot
// undo the win.
func (s *ProposalService) MarkWon(ctx context.Context, id uuid.UUID, req *domain.MarkWonRequest) (*domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	switch proposal.Status {
	case domain.ProposalStatusLost:
		return nil, fmt.Errorf("%w: cannot win a lost proposal", ErrInvalidTransition)
	case domain.ProposalStatusConverted:
		return nil, ErrProposalAlreadyConverted
	}

	// Win-time overrides fall back to the proposal's values
	projectManager := proposal.ProjectManager
	if req.ProjectManager != "" {
		projectManager = req.ProjectManager
	}
	needsLegal := proposal.NeedsLegalReview
	if req.NeedsLegalReview != nil {
		needsLegal = *req.NeedsLegalReview
	}
	coiNeeded := proposal.COINeeded
	if req.COINeeded != nil {
		coiNeeded = *req.COINeeded
	}

	teamNumber := s.directory.TeamNumberFor(projectManager)
	projectNumber, err := s.numberSvc.GenerateProjectNumber(ctx, teamNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	project := &domain.Project{
		ProjectNumber:    projectNumber,
		ProposalNumber:   proposal.ProposalNumber,
		Office:           proposal.Office,
		ProjectName:      proposal.ProjectName,
		ClientName:       proposal.ClientName,
		Fee:              proposal.Fee,
		ProjectManager:   projectManager,
		TeamNumber:       teamNumber,
		NeedsLegalReview: needsLegal,
		COINeeded:        coiNeeded,
		WonDate:          &now,
		WonBy:            userCtx.DisplayName,
		CreatedBy:        userCtx.Email,
	}

	// Initial status: legal review gates activation; a new project is
	// never active.
	if needsLegal {
		project.Status = domain.ProjectStatusPendingLegal
		status := domain.LegalStatusNewRequest
		project.LegalStatus = &status
	} else {
		project.Status = domain.ProjectStatusPendingInfo
		signed := true
		project.LegalSigned = &signed
		project.LegalApprovedDate = &now
		project.LegalApprovedBy = AutoApprovedBy
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		proposal.Status = domain.ProposalStatusConverted
		proposal.WonDate = &now
		proposal.WonBy = userCtx.DisplayName
		proposal.ProjectNumber = projectNumber
		if req.Notes != "" {
			if proposal.Notes != "" {
				proposal.Notes = proposal.Notes + "\n\n" + req.Notes
			} else {
				proposal.Notes = req.Notes
			}
		}
		if err := tx.Save(proposal).Error; err != nil {
			return fmt.Errorf("failed to update proposal: %w", err)
		}

		if needsLegal {
			event := &domain.LegalStatusEvent{
				ProjectID: project.ID,
				Status:    domain.LegalStatusNewRequest,
				ChangedBy: userCtx.DisplayName,
				Notes:     "Legal review requested at win",
			}
			if err := tx.Create(event).Error; err != nil {
				return fmt.Errorf("failed to seed legal history: %w", err)
			}
		}

		// No legal review means the contract is already executed; file it
		// with the department straight away.
		if !needsLegal {
			contract := &domain.ExecutedContract{
				ProjectNumber: projectNumber,
				DeptStatus:    domain.ContractUnfiled,
				AutoGenerated: true,
			}
			if err := tx.Create(contract).Error; err != nil {
				return fmt.Errorf("failed to create contract record: %w", err)
			}
		}

		if coiNeeded {
			insurance := &domain.InsuranceRequest{
				ProjectNumber: projectNumber,
				DeptStatus:    domain.InsuranceNewRequest,
				AutoGenerated: true,
			}
			if err := tx.Create(insurance).Error; err != nil {
				return fmt.Errorf("failed to create insurance request: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.logger.Info("proposal won",
		zap.String("proposalNumber", proposal.ProposalNumber),
		zap.String("projectNumber", projectNumber),
		zap.Bool("needsLegalReview", needsLegal))

	// Post-commit side effects are best-effort
	if needsLegal {
		s.notifier.NotifyLegalRequest(ctx, project, userCtx.DisplayName)
	} else {
		s.notifier.NotifyInfoRequested(ctx, project)
	}
	s.notifier.NotifyProjectCreated(ctx, project, userCtx.DisplayName)

	if err := s.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsProposalWon, domain.AnalyticsUpdatePayload{
		Office:         proposal.Office,
		ProjectManager: projectManager,
		Fee:            proposal.Fee,
	}); err != nil {
		s.logger.Warn("failed to update analytics after win", zap.Error(err))
	}
	s.audit.RecordActivity(ctx, "proposal_won", "proposal", proposal.ProposalNumber, userCtx.DisplayName,
		fmt.Sprintf("Proposal %s won, project %s created", proposal.ProposalNumber, projectNumber))

	dto := mapper.ToProjectDTO(project)
	dto.CanEdit = s.access.CanEditProject(userCtx, project)
	return &dto, nil
}

// Delete removes a proposal. Proposals that have been converted keep their
// project, so deletion is blocked while the project exists; delete the
// project first to revert the proposal.
func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID, req *domain.DeleteRequest) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProposalNotFound
		}
		return fmt.Errorf("failed to get proposal: %w", err)
	}

	_, err = s.projectRepo.GetByProposalNumber(ctx, proposal.ProposalNumber)
	if err == nil {
		return ErrProjectExistsForProposal
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for project: %w", err)
	}

	var blobPaths []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.audit.SnapshotDeletionTx(tx, "proposal", proposal.ProposalNumber, userCtx.DisplayName, req.Note, proposal); err != nil {
			return err
		}
		paths, err := deleteEntityFilesTx(tx, "proposal", proposal.ProposalNumber)
		if err != nil {
			return err
		}
		blobPaths = paths
		return tx.Delete(&domain.Proposal{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	cleanupBlobs(ctx, s.fileStorage, s.logger, blobPaths)

	s.logger.Info("proposal deleted",
		zap.String("proposalNumber", proposal.ProposalNumber),
		zap.String("deletedBy", userCtx.DisplayName))
	s.audit.RecordActivity(ctx, "proposal_deleted", "proposal", proposal.ProposalNumber, userCtx.DisplayName,
		fmt.Sprintf("Proposal %s deleted", proposal.ProposalNumber))

	return nil
}

func (s *ProposalService) toDTO(ctx context.Context, proposal *domain.Proposal) domain.ProposalDTO {
	dto := mapper.ToProposalDTO(proposal)
	if userCtx, ok := auth.FromContext(ctx); ok {
		dto.CanEdit = s.access.CanEditProposal(userCtx, proposal)
	}
	return dto
}
