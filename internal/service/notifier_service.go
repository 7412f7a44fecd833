package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotifierService delivers emails and in-app notifications for lifecycle
// events. Delivery is strictly fire-and-forget: every method logs failures
// and returns nothing, so a notification problem can never fail the
// transition that triggered it.
type NotifierService struct {
	cfg              *config.NotifyConfig
	emailLogRepo     *repository.EmailLogRepository
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	logger           *zap.Logger
}

// NewNotifierService creates a new NotifierService
func NewNotifierService(
	cfg *config.NotifyConfig,
	emailLogRepo *repository.EmailLogRepository,
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *NotifierService {
	return &NotifierService{
		cfg:              cfg,
		emailLogRepo:     emailLogRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// NotifyLegalRequest tells the legal department that a new project needs
// contract review.
func (s *NotifierService) NotifyLegalRequest(ctx context.Context, project *domain.Project, requestedBy string) {
	subject := fmt.Sprintf("New legal review request: %s", project.ProjectNumber)
	s.sendEmail(ctx, "legal_request", s.cfg.LegalDeptEmail, subject, project.ProjectNumber, requestedBy)
	for _, addr := range s.cfg.LegalTeamEmails {
		s.sendEmail(ctx, "legal_request", addr, subject, project.ProjectNumber, requestedBy)
		s.createForEmail(ctx, addr, domain.NotificationLegalRequest,
			"New legal review request",
			fmt.Sprintf("Project %s (%s) is awaiting contract review.", project.ProjectNumber, project.ClientName),
			"project", project.ProjectNumber)
	}
}

// NotifyLegalUpdate tells the project manager that legal moved their
// contract to a new status.
func (s *NotifierService) NotifyLegalUpdate(ctx context.Context, project *domain.Project, status domain.LegalStatus, changedBy string) {
	pmAddr := s.cfg.PMEmail(project.ProjectManager)
	subject := fmt.Sprintf("Legal status update for %s: %s", project.ProjectNumber, status)
	s.sendEmail(ctx, "legal_update", pmAddr, subject, project.ProjectNumber, changedBy)
	s.createForEmail(ctx, pmAddr, domain.NotificationLegalUpdate,
		"Legal status updated",
		fmt.Sprintf("Project %s moved to %s.", project.ProjectNumber, status),
		"project", project.ProjectNumber)
}

// NotifyQuestionsToPM tells the project manager that legal has questions
// about their contract.
func (s *NotifierService) NotifyQuestionsToPM(ctx context.Context, project *domain.Project, notes, changedBy string) {
	pmAddr := s.cfg.PMEmail(project.ProjectManager)
	subject := fmt.Sprintf("Legal has questions about %s", project.ProjectNumber)
	s.sendEmail(ctx, "questions_to_pm", pmAddr, subject, project.ProjectNumber, changedBy)
	message := fmt.Sprintf("Legal has questions about project %s.", project.ProjectNumber)
	if notes != "" {
		message = fmt.Sprintf("Legal has questions about project %s: %s", project.ProjectNumber, notes)
	}
	s.createForEmail(ctx, pmAddr, domain.NotificationLegalUpdate,
		"Questions from legal", message, "project", project.ProjectNumber)
}

// NotifyProjectCreated tells the project manager that their proposal was
// won and a project now exists.
func (s *NotifierService) NotifyProjectCreated(ctx context.Context, project *domain.Project, wonBy string) {
	pmAddr := s.cfg.PMEmail(project.ProjectManager)
	subject := fmt.Sprintf("Proposal won: project %s created", project.ProjectNumber)
	s.sendEmail(ctx, "project_created", pmAddr, subject, project.ProjectNumber, wonBy)
	s.createForEmail(ctx, pmAddr, domain.NotificationProjectCreated,
		"Project created",
		fmt.Sprintf("Proposal %s was won. Project %s is ready for setup.", project.ProposalNumber, project.ProjectNumber),
		"project", project.ProjectNumber)
}

// NotifyInfoRequested tells the project manager that their project needs
// additional setup information before it can go active.
func (s *NotifierService) NotifyInfoRequested(ctx context.Context, project *domain.Project) {
	pmAddr := s.cfg.PMEmail(project.ProjectManager)
	subject := fmt.Sprintf("Additional info needed for %s", project.ProjectNumber)
	s.sendEmail(ctx, "info_requested", pmAddr, subject, project.ProjectNumber, "")
	s.createForEmail(ctx, pmAddr, domain.NotificationInfoRequested,
		"Additional info needed",
		fmt.Sprintf("Project %s needs admin setup information before activation.", project.ProjectNumber),
		"project", project.ProjectNumber)
}

// NotifyProposalSent records the outbound proposal email to the client
// contact. Clients have no portal account, so there is no in-app side.
func (s *NotifierService) NotifyProposalSent(ctx context.Context, proposal *domain.Proposal, sentBy string) {
	subject := fmt.Sprintf("Proposal: %s", proposal.ProjectName)
	s.sendEmail(ctx, "proposal_sent", proposal.ContactEmail, subject, proposal.ProposalNumber, sentBy)
}

// NotifyFollowUpReminder reminds a project manager about a proposal that
// was sent and has had no decision for a while.
func (s *NotifierService) NotifyFollowUpReminder(ctx context.Context, proposal *domain.Proposal) {
	pmAddr := s.cfg.PMEmail(proposal.ProjectManager)
	subject := fmt.Sprintf("Follow up on proposal %s", proposal.ProposalNumber)
	s.sendEmail(ctx, "follow_up_reminder", pmAddr, subject, proposal.ProposalNumber, "")
	s.createForEmail(ctx, pmAddr, domain.NotificationFollowUpReminder,
		"Proposal follow-up",
		fmt.Sprintf("Proposal %s for %s is still awaiting a client decision.", proposal.ProposalNumber, proposal.ClientName),
		"proposal", proposal.ProposalNumber)
}

// NotifyInsuranceIssued tells the project manager that a certificate of
// insurance was issued for their project.
func (s *NotifierService) NotifyInsuranceIssued(ctx context.Context, project *domain.Project, issuedBy string) {
	pmAddr := s.cfg.PMEmail(project.ProjectManager)
	subject := fmt.Sprintf("COI issued for %s", project.ProjectNumber)
	s.sendEmail(ctx, "insurance_issued", pmAddr, subject, project.ProjectNumber, issuedBy)
	s.createForEmail(ctx, pmAddr, domain.NotificationInsuranceIssued,
		"Insurance certificate issued",
		fmt.Sprintf("A certificate of insurance was issued for project %s.", project.ProjectNumber),
		"project", project.ProjectNumber)
}

// sendEmail records the outbound message in the email log and trims the log
// to its configured cap. Actual SMTP delivery is handled downstream by the
// mail gateway watching this table.
func (s *NotifierService) sendEmail(ctx context.Context, emailType, recipient, subject, relatedNumber, sentBy string) {
	log := &domain.EmailLog{
		EmailType:     emailType,
		Recipient:     recipient,
		Subject:       subject,
		RelatedNumber: relatedNumber,
		SentBy:        sentBy,
	}
	if err := s.emailLogRepo.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record outbound email",
			zap.String("emailType", emailType),
			zap.String("recipient", recipient),
			zap.Error(err))
		return
	}
	if s.cfg.EmailLogCap > 0 {
		if err := s.emailLogRepo.TrimToCap(ctx, s.cfg.EmailLogCap); err != nil {
			s.logger.Warn("failed to trim email log", zap.Error(err))
		}
	}
}

// createForEmail creates an in-app notification for the user behind an
// email address, skipping silently when no account exists yet.
func (s *NotifierService) createForEmail(ctx context.Context, email string, notificationType domain.NotificationType, title, message, entityType, entityNumber string) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to resolve notification recipient",
				zap.String("email", email),
				zap.Error(err))
		}
		return
	}

	notification := &domain.Notification{
		UserID:       user.ID,
		Type:         string(notificationType),
		Title:        title,
		Message:      message,
		EntityType:   entityType,
		EntityNumber: entityNumber,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification",
			zap.String("email", email),
			zap.String("type", string(notificationType)),
			zap.Error(err))
	}
}
