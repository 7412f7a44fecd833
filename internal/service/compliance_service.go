package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/mapper"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Compliance service errors
var (
	ErrContractNotFound       = errors.New("contract record not found")
	ErrContractAlreadyFiled   = errors.New("contract is already filed")
	ErrInsuranceNotFound      = errors.New("insurance request not found")
	ErrInsuranceAlreadyIssued = errors.New("insurance certificate already issued")
	ErrSubRequestNotFound     = errors.New("sub request not found")
	ErrPWDirQuestionNotFound  = errors.New("question not found")
)

// ComplianceService handles the admin-side records that trail a won
// project: executed contract filing, certificates of insurance,
// subcontractor agreement requests, and prevailing wage questions.
type ComplianceService struct {
	contractRepo  *repository.ExecutedContractRepository
	insuranceRepo *repository.InsuranceRequestRepository
	subRepo       *repository.SubRequestRepository
	pwDirRepo     *repository.PWDirQuestionRepository
	projectRepo   *repository.ProjectRepository
	notifier      *NotifierService
	audit         *AuditService
	logger        *zap.Logger
}

// NewComplianceService creates a new ComplianceService
func NewComplianceService(
	contractRepo *repository.ExecutedContractRepository,
	insuranceRepo *repository.InsuranceRequestRepository,
	subRepo *repository.SubRequestRepository,
	pwDirRepo *repository.PWDirQuestionRepository,
	projectRepo *repository.ProjectRepository,
	notifier *NotifierService,
	audit *AuditService,
	logger *zap.Logger,
) *ComplianceService {
	return &ComplianceService{
		contractRepo:  contractRepo,
		insuranceRepo: insuranceRepo,
		subRepo:       subRepo,
		pwDirRepo:     pwDirRepo,
		projectRepo:   projectRepo,
		notifier:      notifier,
		audit:         audit,
		logger:        logger,
	}
}

// ListContracts returns contract records filtered by filing status
func (s *ComplianceService) ListContracts(ctx context.Context, status domain.ContractDeptStatus) ([]domain.ExecutedContractDTO, error) {
	contracts, err := s.contractRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	dtos := make([]domain.ExecutedContractDTO, len(contracts))
	for i := range contracts {
		dtos[i] = mapper.ToExecutedContractDTO(&contracts[i])
	}
	return dtos, nil
}

// FileContract marks an executed contract as filed, optionally attaching
// the uploaded contract document.
func (s *ComplianceService) FileContract(ctx context.Context, id uuid.UUID, fileID *uuid.UUID, notes string) (*domain.ExecutedContractDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	if contract.DeptStatus == domain.ContractFiled {
		return nil, ErrContractAlreadyFiled
	}

	now := time.Now()
	contract.DeptStatus = domain.ContractFiled
	contract.FiledDate = &now
	contract.FiledBy = userCtx.DisplayName
	contract.FileID = fileID
	if notes != "" {
		contract.Notes = notes
	}

	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("%w: failed to file contract: %v", ErrStorage, err)
	}

	s.audit.RecordActivity(ctx, "contract_filed", "project", contract.ProjectNumber, userCtx.DisplayName,
		fmt.Sprintf("Executed contract filed for %s", contract.ProjectNumber))

	dto := mapper.ToExecutedContractDTO(contract)
	return &dto, nil
}

// ListInsuranceRequests returns COI requests filtered by status
func (s *ComplianceService) ListInsuranceRequests(ctx context.Context, status domain.InsuranceDeptStatus) ([]domain.InsuranceRequestDTO, error) {
	requests, err := s.insuranceRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance requests: %w", err)
	}
	dtos := make([]domain.InsuranceRequestDTO, len(requests))
	for i := range requests {
		dtos[i] = mapper.ToInsuranceRequestDTO(&requests[i])
	}
	return dtos, nil
}

// IssueInsurance marks a COI request as issued and notifies the project
// manager.
func (s *ComplianceService) IssueInsurance(ctx context.Context, id uuid.UUID, holder string, fileID *uuid.UUID, notes string) (*domain.InsuranceRequestDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	request, err := s.insuranceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInsuranceNotFound
		}
		return nil, fmt.Errorf("failed to get insurance request: %w", err)
	}

	if request.DeptStatus == domain.InsuranceIssued {
		return nil, ErrInsuranceAlreadyIssued
	}

	now := time.Now()
	request.DeptStatus = domain.InsuranceIssued
	request.IssuedDate = &now
	request.IssuedBy = userCtx.DisplayName
	request.FileID = fileID
	if holder != "" {
		request.Holder = holder
	}
	if notes != "" {
		request.Notes = notes
	}

	if err := s.insuranceRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("%w: failed to issue insurance: %v", ErrStorage, err)
	}

	if project, err := s.projectRepo.GetByNumber(ctx, request.ProjectNumber); err == nil {
		s.notifier.NotifyInsuranceIssued(ctx, project, userCtx.DisplayName)
	}
	s.audit.RecordActivity(ctx, "insurance_issued", "project", request.ProjectNumber, userCtx.DisplayName,
		fmt.Sprintf("COI issued for %s", request.ProjectNumber))

	dto := mapper.ToInsuranceRequestDTO(request)
	return &dto, nil
}

// CreateSubRequest opens a subcontractor agreement request
func (s *ComplianceService) CreateSubRequest(ctx context.Context, req *domain.CreateSubRequestRequest) (*domain.SubRequestDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	request := &domain.SubRequest{
		ProjectNumber: req.ProjectNumber,
		Subcontractor: req.Subcontractor,
		DeptStatus:    "new_request",
		RequestedBy:   userCtx.DisplayName,
		Notes:         req.Notes,
	}
	if err := s.subRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("%w: failed to create sub request: %v", ErrStorage, err)
	}

	dto := mapper.ToSubRequestDTO(request)
	return &dto, nil
}

// UpdateSubRequest edits a subcontractor agreement request
func (s *ComplianceService) UpdateSubRequest(ctx context.Context, id uuid.UUID, req *domain.UpdateSubRequestRequest) (*domain.SubRequestDTO, error) {
	request, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubRequestNotFound
		}
		return nil, fmt.Errorf("failed to get sub request: %w", err)
	}

	if req.DeptStatus != nil {
		request.DeptStatus = *req.DeptStatus
	}
	if req.Notes != nil {
		request.Notes = *req.Notes
	}

	if err := s.subRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("%w: failed to update sub request: %v", ErrStorage, err)
	}

	dto := mapper.ToSubRequestDTO(request)
	return &dto, nil
}

// ListSubRequests returns sub requests filtered by department status
func (s *ComplianceService) ListSubRequests(ctx context.Context, deptStatus string) ([]domain.SubRequestDTO, error) {
	requests, err := s.subRepo.List(ctx, deptStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub requests: %w", err)
	}
	dtos := make([]domain.SubRequestDTO, len(requests))
	for i := range requests {
		dtos[i] = mapper.ToSubRequestDTO(&requests[i])
	}
	return dtos, nil
}

// CreatePWDirQuestion records a prevailing wage / DIR registration question
func (s *ComplianceService) CreatePWDirQuestion(ctx context.Context, req *domain.CreatePWDirQuestionRequest) (*domain.PWDirQuestionDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	question := &domain.PWDirQuestion{
		ProjectNumber: req.ProjectNumber,
		Question:      req.Question,
		DeptStatus:    "incomplete",
		AskedBy:       userCtx.DisplayName,
	}
	if err := s.pwDirRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("%w: failed to create question: %v", ErrStorage, err)
	}

	dto := mapper.ToPWDirQuestionDTO(question)
	return &dto, nil
}

// UpdatePWDirQuestion answers or re-statuses a question
func (s *ComplianceService) UpdatePWDirQuestion(ctx context.Context, id uuid.UUID, req *domain.UpdatePWDirQuestionRequest) (*domain.PWDirQuestionDTO, error) {
	question, err := s.pwDirRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPWDirQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Answer != nil {
		question.Answer = *req.Answer
		if question.DeptStatus == "incomplete" {
			question.DeptStatus = "complete"
		}
	}
	if req.DeptStatus != nil {
		question.DeptStatus = *req.DeptStatus
	}

	if err := s.pwDirRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("%w: failed to update question: %v", ErrStorage, err)
	}

	dto := mapper.ToPWDirQuestionDTO(question)
	return &dto, nil
}

// ListPWDirQuestions returns questions filtered by department status
func (s *ComplianceService) ListPWDirQuestions(ctx context.Context, deptStatus string) ([]domain.PWDirQuestionDTO, error) {
	questions, err := s.pwDirRepo.List(ctx, deptStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	dtos := make([]domain.PWDirQuestionDTO, len(questions))
	for i := range questions {
		dtos[i] = mapper.ToPWDirQuestionDTO(&questions[i])
	}
	return dtos, nil
}
