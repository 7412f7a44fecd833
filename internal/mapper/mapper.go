package mapper

import (
	"time"

	"github.com/geocon-eng/pipeline-api/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToProposalDTO converts Proposal to ProposalDTO. CanEdit is decided by the
// caller from the requesting user's context.
func ToProposalDTO(proposal *domain.Proposal) domain.ProposalDTO {
	return domain.ProposalDTO{
		ID:               proposal.ID,
		ProposalNumber:   proposal.ProposalNumber,
		Office:           proposal.Office,
		ProposalType:     proposal.ProposalType,
		ServiceType:      proposal.ServiceType,
		ProjectName:      proposal.ProjectName,
		ClientName:       proposal.ClientName,
		ContactName:      proposal.ContactName,
		ContactEmail:     proposal.ContactEmail,
		Fee:              proposal.Fee,
		Status:           proposal.Status,
		ProjectManager:   proposal.ProjectManager,
		NeedsLegalReview: proposal.NeedsLegalReview,
		COINeeded:        proposal.COINeeded,
		ProposalSent:     proposal.ProposalSent,
		ProposalSentDate: formatTimePtr(proposal.ProposalSentDate),
		ProposalSentBy:   proposal.ProposalSentBy,
		LostDate:         formatTimePtr(proposal.LostDate),
		LostReason:       proposal.LostReason,
		WonDate:          formatTimePtr(proposal.WonDate),
		WonBy:            proposal.WonBy,
		ProjectNumber:    proposal.ProjectNumber,
		CreatedBy:        proposal.CreatedBy,
		Notes:            proposal.Notes,
		CreatedAt:        formatTime(proposal.CreatedAt),
		UpdatedAt:        formatTime(proposal.UpdatedAt),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	return domain.ProjectDTO{
		ID:                     project.ID,
		ProjectNumber:          project.ProjectNumber,
		ProposalNumber:         project.ProposalNumber,
		Status:                 project.Status,
		Office:                 project.Office,
		ProjectName:            project.ProjectName,
		ClientName:             project.ClientName,
		Fee:                    project.Fee,
		ProjectManager:         project.ProjectManager,
		TeamNumber:             project.TeamNumber,
		NeedsLegalReview:       project.NeedsLegalReview,
		LegalStatus:            project.LegalStatus,
		LegalSigned:            project.LegalSigned,
		LegalApprovedDate:      formatTimePtr(project.LegalApprovedDate),
		LegalApprovedBy:        project.LegalApprovedBy,
		NotSignedReason:        project.NotSignedReason,
		COINeeded:              project.COINeeded,
		WonDate:                formatTimePtr(project.WonDate),
		WonBy:                  project.WonBy,
		AdminInfo:              project.AdminInfo,
		InfoDraftSavedAt:       formatTimePtr(project.InfoDraftSavedAt),
		InfoDraftSavedBy:       project.InfoDraftSavedBy,
		InfoSubmittedAt:        formatTimePtr(project.InfoSubmittedAt),
		InfoSubmittedBy:        project.InfoSubmittedBy,
		CompletionDate:         formatTimePtr(project.CompletionDate),
		CompletedBy:            project.CompletedBy,
		ERPUpdated:             project.ERPUpdated,
		PowerAutomateTriggered: project.PowerAutomateTriggered,
		CreatedBy:              project.CreatedBy,
		CreatedAt:              formatTime(project.CreatedAt),
		UpdatedAt:              formatTime(project.UpdatedAt),
	}
}

// ToLegalStatusEventDTO converts LegalStatusEvent to LegalStatusEventDTO
func ToLegalStatusEventDTO(event *domain.LegalStatusEvent) domain.LegalStatusEventDTO {
	return domain.LegalStatusEventDTO{
		ID:        event.ID,
		ProjectID: event.ProjectID,
		Status:    event.Status,
		OldStatus: event.OldStatus,
		ChangedBy: event.ChangedBy,
		Notes:     event.Notes,
		ChangedAt: formatTime(event.CreatedAt),
	}
}

// ToExecutedContractDTO converts ExecutedContract to ExecutedContractDTO
func ToExecutedContractDTO(contract *domain.ExecutedContract) domain.ExecutedContractDTO {
	return domain.ExecutedContractDTO{
		ID:            contract.ID,
		ProjectNumber: contract.ProjectNumber,
		DeptStatus:    contract.DeptStatus,
		AutoGenerated: contract.AutoGenerated,
		FiledDate:     formatTimePtr(contract.FiledDate),
		FiledBy:       contract.FiledBy,
		FileID:        contract.FileID,
		Notes:         contract.Notes,
		CreatedAt:     formatTime(contract.CreatedAt),
	}
}

// ToInsuranceRequestDTO converts InsuranceRequest to InsuranceRequestDTO
func ToInsuranceRequestDTO(request *domain.InsuranceRequest) domain.InsuranceRequestDTO {
	return domain.InsuranceRequestDTO{
		ID:            request.ID,
		ProjectNumber: request.ProjectNumber,
		DeptStatus:    request.DeptStatus,
		AutoGenerated: request.AutoGenerated,
		IssuedDate:    formatTimePtr(request.IssuedDate),
		IssuedBy:      request.IssuedBy,
		FileID:        request.FileID,
		Holder:        request.Holder,
		Notes:         request.Notes,
		CreatedAt:     formatTime(request.CreatedAt),
	}
}

// ToSubRequestDTO converts SubRequest to SubRequestDTO
func ToSubRequestDTO(request *domain.SubRequest) domain.SubRequestDTO {
	return domain.SubRequestDTO{
		ID:            request.ID,
		ProjectNumber: request.ProjectNumber,
		Subcontractor: request.Subcontractor,
		DeptStatus:    request.DeptStatus,
		RequestedBy:   request.RequestedBy,
		Notes:         request.Notes,
		CreatedAt:     formatTime(request.CreatedAt),
	}
}

// ToPWDirQuestionDTO converts PWDirQuestion to PWDirQuestionDTO
func ToPWDirQuestionDTO(question *domain.PWDirQuestion) domain.PWDirQuestionDTO {
	return domain.PWDirQuestionDTO{
		ID:            question.ID,
		ProjectNumber: question.ProjectNumber,
		Question:      question.Question,
		Answer:        question.Answer,
		DeptStatus:    question.DeptStatus,
		AskedBy:       question.AskedBy,
		CreatedAt:     formatTime(question.CreatedAt),
	}
}

// ToDeletionLogDTO converts DeletionLog to DeletionLogDTO
func ToDeletionLogDTO(log *domain.DeletionLog) domain.DeletionLogDTO {
	return domain.DeletionLogDTO{
		ID:           log.ID,
		EntityType:   log.EntityType,
		EntityNumber: log.EntityNumber,
		DeletedBy:    log.DeletedBy,
		DeletionNote: log.DeletionNote,
		Snapshot:     log.Snapshot,
		DeletedAt:    formatTime(log.CreatedAt),
	}
}

// ToActivityLogDTO converts ActivityLog to ActivityLogDTO
func ToActivityLogDTO(log *domain.ActivityLog) domain.ActivityLogDTO {
	return domain.ActivityLogDTO{
		ID:           log.ID,
		Action:       log.Action,
		EntityType:   log.EntityType,
		EntityNumber: log.EntityNumber,
		Actor:        log.Actor,
		Details:      log.Details,
		CreatedAt:    formatTime(log.CreatedAt),
	}
}

// ToEmailLogDTO converts EmailLog to EmailLogDTO
func ToEmailLogDTO(log *domain.EmailLog) domain.EmailLogDTO {
	return domain.EmailLogDTO{
		ID:            log.ID,
		EmailType:     log.EmailType,
		Recipient:     log.Recipient,
		Subject:       log.Subject,
		RelatedNumber: log.RelatedNumber,
		SentBy:        log.SentBy,
		SentAt:        formatTime(log.CreatedAt),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:           notification.ID,
		Type:         notification.Type,
		Title:        notification.Title,
		Message:      notification.Message,
		EntityType:   notification.EntityType,
		EntityNumber: notification.EntityNumber,
		Read:         notification.Read,
		CreatedAt:    formatTime(notification.CreatedAt),
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		TeamNumber:  user.TeamNumber,
		IsActive:    user.IsActive,
	}
}

// ToFileDTO converts File to FileDTO
func ToFileDTO(file *domain.File) domain.FileDTO {
	return domain.FileDTO{
		ID:           file.ID,
		FileName:     file.FileName,
		ContentType:  file.ContentType,
		Size:         file.Size,
		EntityType:   file.EntityType,
		EntityNumber: file.EntityNumber,
		UploadedBy:   file.UploadedBy,
		CreatedAt:    formatTime(file.CreatedAt),
	}
}
