package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/mapper"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Project service errors
var (
	ErrProjectNotFound        = errors.New("project not found")
	ErrProjectNotInLegal      = errors.New("project is not in legal review")
	ErrProjectNotPendingInfo  = errors.New("project is not awaiting additional info")
	ErrProjectNotActive       = errors.New("project is not active")
	ErrNotSignedReasonMissing = errors.New("not_signed requires a reason")
)

// ProjectService handles projects from creation at win time through
// legal review, activation, and completion.
type ProjectService struct {
	db           *gorm.DB
	projectRepo  *repository.ProjectRepository
	proposalRepo *repository.ProposalRepository
	legalRepo    *repository.LegalHistoryRepository
	analyticsSvc *AnalyticsService
	notifier     *NotifierService
	audit        *AuditService
	access       *AccessService
	fileStorage  storage.Storage
	logger       *zap.Logger
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(
	db *gorm.DB,
	projectRepo *repository.ProjectRepository,
	proposalRepo *repository.ProposalRepository,
	legalRepo *repository.LegalHistoryRepository,
	analyticsSvc *AnalyticsService,
	notifier *NotifierService,
	audit *AuditService,
	access *AccessService,
	fileStorage storage.Storage,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		db:           db,
		projectRepo:  projectRepo,
		proposalRepo: proposalRepo,
		legalRepo:    legalRepo,
		analyticsSvc: analyticsSvc,
		notifier:     notifier,
		audit:        audit,
		access:       access,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

// GetByID returns a single project
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	dto := s.toDTO(ctx, project)
	return &dto, nil
}

// GetByNumber returns a single project looked up by its number
func (s *ProjectService) GetByNumber(ctx context.Context, number string) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	dto := s.toDTO(ctx, project)
	return &dto, nil
}

// List returns a page of projects matching the filter
func (s *ProjectService) List(ctx context.Context, filter repository.ProjectFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	projects, total, err := s.projectRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = s.toDTO(ctx, &projects[i])
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

// UpdateLegalStatus moves a contract through the legal review queue. Most
// statuses just record the queue position; signed and not_signed resolve
// the review and change the project itself.
func (s *ProjectService) UpdateLegalStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateLegalStatusRequest) (*domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown legal status %q", ErrInvalidInput, req.Status)
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if project.Status != domain.ProjectStatusPendingLegal {
		return nil, ErrProjectNotInLegal
	}
	if project.LegalStatus != nil && project.LegalStatus.IsTerminal() {
		return nil, ErrLegalReviewComplete
	}
	if req.Status == domain.LegalStatusNotSigned && req.NotSignedReason == "" {
		return nil, ErrNotSignedReasonMissing
	}

	oldStatus := project.LegalStatus
	now := time.Now()
	status := req.Status
	project.LegalStatus = &status

	switch req.Status {
	case domain.LegalStatusSigned:
		signed := true
		project.LegalSigned = &signed
		project.LegalApprovedDate = &now
		project.LegalApprovedBy = userCtx.DisplayName
		project.Status = domain.ProjectStatusPendingInfo
	case domain.LegalStatusNotSigned:
		signed := false
		project.LegalSigned = &signed
		project.NotSignedReason = req.NotSignedReason
		project.Status = domain.ProjectStatusDead
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		event := &domain.LegalStatusEvent{
			ProjectID: project.ID,
			Status:    req.Status,
			OldStatus: oldStatus,
			ChangedBy: userCtx.DisplayName,
			Notes:     req.Notes,
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record legal event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.logger.Info("legal status updated",
		zap.String("projectNumber", project.ProjectNumber),
		zap.String("status", string(req.Status)))

	// Post-commit notifications are best-effort
	switch req.Status {
	case domain.LegalStatusQuestionsToPM:
		s.notifier.NotifyQuestionsToPM(ctx, project, req.Notes, userCtx.DisplayName)
	case domain.LegalStatusSigned:
		s.notifier.NotifyLegalUpdate(ctx, project, req.Status, userCtx.DisplayName)
		s.notifier.NotifyInfoRequested(ctx, project)
	default:
		s.notifier.NotifyLegalUpdate(ctx, project, req.Status, userCtx.DisplayName)
	}
	s.audit.RecordActivity(ctx, "legal_status_updated", "project", project.ProjectNumber, userCtx.DisplayName,
		fmt.Sprintf("Project %s legal status set to %s", project.ProjectNumber, req.Status))

	dto := s.toDTO(ctx, project)
	return &dto, nil
}

// GetLegalHistory returns the full legal review trail for a project
func (s *ProjectService) GetLegalHistory(ctx context.Context, id uuid.UUID) ([]domain.LegalStatusEventDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	events, err := s.legalRepo.GetByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get legal history: %w", err)
	}

	dtos := make([]domain.LegalStatusEventDTO, len(events))
	for i := range events {
		dtos[i] = mapper.ToLegalStatusEventDTO(&events[i])
	}
	return dtos, nil
}

// GetLegalQueue returns the legal team's open work queue. Projects whose
// review resolved (signed or not_signed) drop out of the queue.
func (s *ProjectService) GetLegalQueue(ctx context.Context) (*domain.LegalQueueDTO, error) {
	projects, err := s.projectRepo.ListInLegalReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list legal queue: %w", err)
	}

	queue := &domain.LegalQueueDTO{
		Projects:     []domain.ProjectDTO{},
		StatusCounts: make(map[domain.LegalStatus]int),
	}
	for i := range projects {
		status := projects[i].LegalStatus
		if status == nil || status.IsTerminal() {
			continue
		}
		queue.Projects = append(queue.Projects, s.toDTO(ctx, &projects[i]))
		queue.StatusCounts[*status]++
		queue.OpenCount++
	}
	return queue, nil
}

// SubmitAdditionalInfo accepts the admin setup form. Action "save_draft"
// stores the form without changing status; "submit" finalizes the project
// and marks it completed.
func (s *ProjectService) SubmitAdditionalInfo(ctx context.Context, id uuid.UUID, req *domain.SubmitProjectInfoRequest) (*domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if req.Action != "submit" && req.Action != "save_draft" {
		return nil, fmt.Errorf("%w: action must be submit or save_draft", ErrInvalidInput)
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if project.Status != domain.ProjectStatusPendingInfo {
		return nil, ErrProjectNotPendingInfo
	}

	adminInfo, err := json.Marshal(req.AdminInfo)
	if err != nil {
		return nil, fmt.Errorf("%w: admin info is not serializable", ErrInvalidInput)
	}

	now := time.Now()
	project.AdminInfo = string(adminInfo)

	if req.Action == "save_draft" {
		project.InfoDraftSavedAt = &now
		project.InfoDraftSavedBy = userCtx.DisplayName
	} else {
		project.InfoSubmittedAt = &now
		project.InfoSubmittedBy = userCtx.DisplayName
		project.Status = domain.ProjectStatusCompleted
		project.CompletionDate = &now
		project.CompletedBy = userCtx.DisplayName
		project.ERPUpdated = true
		project.PowerAutomateTriggered = true
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("%w: failed to save project info: %v", ErrStorage, err)
	}

	if req.Action == "submit" {
		s.logger.Info("project setup submitted",
			zap.String("projectNumber", project.ProjectNumber),
			zap.String("submittedBy", userCtx.DisplayName))
		if err := s.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsProjectCompleted, domain.AnalyticsUpdatePayload{
			Office:         project.Office,
			ProjectManager: project.ProjectManager,
			Fee:            project.Fee,
		}); err != nil {
			s.logger.Warn("failed to update analytics after completion", zap.Error(err))
		}
		s.audit.RecordActivity(ctx, "project_setup_submitted", "project", project.ProjectNumber, userCtx.DisplayName,
			fmt.Sprintf("Project %s setup submitted and completed", project.ProjectNumber))
	} else {
		s.audit.RecordActivity(ctx, "project_info_draft_saved", "project", project.ProjectNumber, userCtx.DisplayName,
			fmt.Sprintf("Project %s setup draft saved", project.ProjectNumber))
	}

	dto := s.toDTO(ctx, project)
	return &dto, nil
}

// MarkComplete closes out a project directly, bypassing the setup form.
// Allowed while the project is active or still waiting on setup info.
func (s *ProjectService) MarkComplete(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if project.Status != domain.ProjectStatusActive && project.Status != domain.ProjectStatusPendingInfo {
		return nil, ErrProjectNotActive
	}

	now := time.Now()
	project.Status = domain.ProjectStatusCompleted
	project.CompletionDate = &now
	project.CompletedBy = userCtx.DisplayName

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("%w: failed to complete project: %v", ErrStorage, err)
	}

	s.logger.Info("project completed",
		zap.String("projectNumber", project.ProjectNumber))

	if err := s.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsProjectCompleted, domain.AnalyticsUpdatePayload{
		Office:         project.Office,
		ProjectManager: project.ProjectManager,
		Fee:            project.Fee,
	}); err != nil {
		s.logger.Warn("failed to update analytics after completion", zap.Error(err))
	}
	s.audit.RecordActivity(ctx, "project_completed", "project", project.ProjectNumber, userCtx.DisplayName,
		fmt.Sprintf("Project %s completed", project.ProjectNumber))

	dto := s.toDTO(ctx, project)
	return &dto, nil
}

// Delete removes a project and reverts its proposal to pending, clearing
// the win so the proposal can be decided again.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID, req *domain.DeleteRequest) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}

	proposal, err := s.proposalRepo.GetByNumber(ctx, project.ProposalNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to get proposal: %w", err)
	}

	var blobPaths []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.audit.SnapshotDeletionTx(tx, "project", project.ProjectNumber, userCtx.DisplayName, req.Note, project); err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&domain.LegalStatusEvent{}).Error; err != nil {
			return fmt.Errorf("failed to delete legal history: %w", err)
		}
		if err := tx.Where("project_number = ?", project.ProjectNumber).Delete(&domain.ExecutedContract{}).Error; err != nil {
			return fmt.Errorf("failed to delete contract records: %w", err)
		}
		if err := tx.Where("project_number = ?", project.ProjectNumber).Delete(&domain.InsuranceRequest{}).Error; err != nil {
			return fmt.Errorf("failed to delete insurance requests: %w", err)
		}
		paths, err := deleteEntityFilesTx(tx, "project", project.ProjectNumber)
		if err != nil {
			return err
		}
		blobPaths = paths

		if proposal != nil {
			proposal.Status = domain.ProposalStatusPending
			proposal.ProjectNumber = ""
			proposal.WonDate = nil
			proposal.WonBy = ""
			if err := tx.Save(proposal).Error; err != nil {
				return fmt.Errorf("failed to revert proposal: %w", err)
			}
		}

		return tx.Delete(&domain.Project{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	cleanupBlobs(ctx, s.fileStorage, s.logger, blobPaths)

	s.logger.Info("project deleted",
		zap.String("projectNumber", project.ProjectNumber),
		zap.String("proposalNumber", project.ProposalNumber),
		zap.String("deletedBy", userCtx.DisplayName))
	s.audit.RecordActivity(ctx, "project_deleted", "project", project.ProjectNumber, userCtx.DisplayName,
		fmt.Sprintf("Project %s deleted, proposal %s reverted to pending", project.ProjectNumber, project.ProposalNumber))

	return nil
}

func (s *ProjectService) toDTO(ctx context.Context, project *domain.Project) domain.ProjectDTO {
	dto := mapper.ToProjectDTO(project)
	if userCtx, ok := auth.FromContext(ctx); ok {
		dto.CanEdit = s.access.CanEditProject(userCtx, project)
	}
	return dto
}
