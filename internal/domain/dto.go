package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Dates are ISO 8601 strings.

type ProposalDTO struct {
	ID               uuid.UUID      `json:"id"`
	ProposalNumber   string         `json:"proposalNumber"`
	Office           OfficeCode     `json:"office"`
	ProposalType     ProposalType   `json:"proposalType"`
	ServiceType      ServiceType    `json:"serviceType"`
	ProjectName      string         `json:"projectName"`
	ClientName       string         `json:"clientName"`
	ContactName      string         `json:"contactName,omitempty"`
	ContactEmail     string         `json:"contactEmail,omitempty"`
	Fee              float64        `json:"fee"`
	Status           ProposalStatus `json:"status"`
	ProjectManager   string         `json:"projectManager,omitempty"`
	NeedsLegalReview bool           `json:"needsLegalReview"`
	COINeeded        bool           `json:"coiNeeded"`
	ProposalSent     bool           `json:"proposalSent"`
	ProposalSentDate *string        `json:"proposalSentDate,omitempty"`
	ProposalSentBy   string         `json:"proposalSentBy,omitempty"`
	LostDate         *string        `json:"lostDate,omitempty"`
	LostReason       string         `json:"lostReason,omitempty"`
	WonDate          *string        `json:"wonDate,omitempty"`
	WonBy            string         `json:"wonBy,omitempty"`
	ProjectNumber    string         `json:"projectNumber,omitempty"`
	CreatedBy        string         `json:"createdBy"`
	Notes            string         `json:"notes,omitempty"`
	CanEdit          bool           `json:"canEdit"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
}

type ProjectDTO struct {
	ID                     uuid.UUID     `json:"id"`
	ProjectNumber          string        `json:"projectNumber"`
	ProposalNumber         string        `json:"proposalNumber"`
	Status                 ProjectStatus `json:"status"`
	Office                 OfficeCode    `json:"office"`
	ProjectName            string        `json:"projectName,omitempty"`
	ClientName             string        `json:"clientName,omitempty"`
	Fee                    float64       `json:"fee"`
	ProjectManager         string        `json:"projectManager,omitempty"`
	TeamNumber             string        `json:"teamNumber,omitempty"`
	NeedsLegalReview       bool          `json:"needsLegalReview"`
	LegalStatus            *LegalStatus  `json:"legalStatus,omitempty"`
	LegalSigned            *bool         `json:"legalSigned,omitempty"`
	LegalApprovedDate      *string       `json:"legalApprovedDate,omitempty"`
	LegalApprovedBy        string        `json:"legalApprovedBy,omitempty"`
	NotSignedReason        string        `json:"notSignedReason,omitempty"`
	COINeeded              bool          `json:"coiNeeded"`
	WonDate                *string       `json:"wonDate,omitempty"`
	WonBy                  string        `json:"wonBy,omitempty"`
	AdminInfo              string        `json:"adminInfo,omitempty"`
	InfoDraftSavedAt       *string       `json:"infoDraftSavedAt,omitempty"`
	InfoDraftSavedBy       string        `json:"infoDraftSavedBy,omitempty"`
	InfoSubmittedAt        *string       `json:"infoSubmittedAt,omitempty"`
	InfoSubmittedBy        string        `json:"infoSubmittedBy,omitempty"`
	CompletionDate         *string       `json:"completionDate,omitempty"`
	CompletedBy            string        `json:"completedBy,omitempty"`
	ERPUpdated             bool          `json:"erpUpdated"`
	PowerAutomateTriggered bool          `json:"powerAutomateTriggered"`
	CreatedBy              string        `json:"createdBy,omitempty"`
	CanEdit                bool          `json:"canEdit"`
	CreatedAt              string        `json:"createdAt"`
	UpdatedAt              string        `json:"updatedAt"`
}

type LegalStatusEventDTO struct {
	ID        uuid.UUID    `json:"id"`
	ProjectID uuid.UUID    `json:"projectId"`
	Status    LegalStatus  `json:"status"`
	OldStatus *LegalStatus `json:"oldStatus,omitempty"`
	ChangedBy string       `json:"changedBy"`
	Notes     string       `json:"notes,omitempty"`
	ChangedAt string       `json:"changedAt"`
}

type ExecutedContractDTO struct {
	ID            uuid.UUID          `json:"id"`
	ProjectNumber string             `json:"projectNumber"`
	DeptStatus    ContractDeptStatus `json:"deptStatus"`
	AutoGenerated bool               `json:"autoGenerated"`
	FiledDate     *string            `json:"filedDate,omitempty"`
	FiledBy       string             `json:"filedBy,omitempty"`
	FileID        *uuid.UUID         `json:"fileId,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     string             `json:"createdAt"`
}

type InsuranceRequestDTO struct {
	ID            uuid.UUID           `json:"id"`
	ProjectNumber string              `json:"projectNumber"`
	DeptStatus    InsuranceDeptStatus `json:"deptStatus"`
	AutoGenerated bool                `json:"autoGenerated"`
	IssuedDate    *string             `json:"issuedDate,omitempty"`
	IssuedBy      string              `json:"issuedBy,omitempty"`
	FileID        *uuid.UUID          `json:"fileId,omitempty"`
	Holder        string              `json:"holder,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     string              `json:"createdAt"`
}

type SubRequestDTO struct {
	ID            uuid.UUID `json:"id"`
	ProjectNumber string    `json:"projectNumber,omitempty"`
	Subcontractor string    `json:"subcontractor"`
	DeptStatus    string    `json:"deptStatus"`
	RequestedBy   string    `json:"requestedBy,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     string    `json:"createdAt"`
}

type PWDirQuestionDTO struct {
	ID            uuid.UUID `json:"id"`
	ProjectNumber string    `json:"projectNumber,omitempty"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer,omitempty"`
	DeptStatus    string    `json:"deptStatus"`
	AskedBy       string    `json:"askedBy,omitempty"`
	CreatedAt     string    `json:"createdAt"`
}

type DeletionLogDTO struct {
	ID           uuid.UUID `json:"id"`
	EntityType   string    `json:"entityType"`
	EntityNumber string    `json:"entityNumber"`
	DeletedBy    string    `json:"deletedBy"`
	DeletionNote string    `json:"deletionNote,omitempty"`
	Snapshot     string    `json:"snapshot"`
	DeletedAt    string    `json:"deletedAt"`
}

type ActivityLogDTO struct {
	ID           uuid.UUID `json:"id"`
	Action       string    `json:"action"`
	EntityType   string    `json:"entityType,omitempty"`
	EntityNumber string    `json:"entityNumber,omitempty"`
	Actor        string    `json:"actor"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    string    `json:"createdAt"`
}

type EmailLogDTO struct {
	ID            uuid.UUID `json:"id"`
	EmailType     string    `json:"emailType"`
	Recipient     string    `json:"recipient"`
	Subject       string    `json:"subject,omitempty"`
	RelatedNumber string    `json:"relatedNumber,omitempty"`
	SentBy        string    `json:"sentBy,omitempty"`
	SentAt        string    `json:"sentAt"`
}

type NotificationDTO struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message,omitempty"`
	EntityType   string    `json:"entityType,omitempty"`
	EntityNumber string    `json:"entityNumber,omitempty"`
	Read         bool      `json:"read"`
	CreatedAt    string    `json:"createdAt"`
}

// UnreadCountDTO wraps the unread notification count
type UnreadCountDTO struct {
	Count int64 `json:"count"`
}

type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        UserRole  `json:"role"`
	TeamNumber  string    `json:"teamNumber,omitempty"`
	IsActive    bool      `json:"isActive"`
}

type FileDTO struct {
	ID           uuid.UUID `json:"id"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType,omitempty"`
	Size         int64     `json:"size"`
	EntityType   string    `json:"entityType,omitempty"`
	EntityNumber string    `json:"entityNumber,omitempty"`
	UploadedBy   string    `json:"uploadedBy,omitempty"`
	CreatedAt    string    `json:"createdAt"`
}

// ErrorResponse represents a simple API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Request DTOs

type CreateProposalRequest struct {
	Office           OfficeCode   `json:"office" validate:"required"`
	ProposalType     ProposalType `json:"proposalType" validate:"required"`
	ServiceType      ServiceType  `json:"serviceType" validate:"required"`
	ProjectName      string       `json:"projectName" validate:"required,max=255"`
	ClientName       string       `json:"clientName" validate:"required,max=255"`
	ContactName      string       `json:"contactName,omitempty" validate:"max=255"`
	ContactEmail     string       `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Fee              float64      `json:"fee" validate:"gte=0"`
	ProjectManager   string       `json:"projectManager,omitempty" validate:"max=255"`
	NeedsLegalReview bool         `json:"needsLegalReview"`
	COINeeded        bool         `json:"coiNeeded"`
	Notes            string       `json:"notes,omitempty"`
}

type UpdateProposalRequest struct {
	ProjectName      *string  `json:"projectName,omitempty" validate:"omitempty,max=255"`
	ClientName       *string  `json:"clientName,omitempty" validate:"omitempty,max=255"`
	ContactName      *string  `json:"contactName,omitempty" validate:"omitempty,max=255"`
	ContactEmail     *string  `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Fee              *float64 `json:"fee,omitempty" validate:"omitempty,gte=0"`
	ProjectManager   *string  `json:"projectManager,omitempty" validate:"omitempty,max=255"`
	NeedsLegalReview *bool    `json:"needsLegalReview,omitempty"`
	COINeeded        *bool    `json:"coiNeeded,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

type MarkLostRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type MarkWonRequest struct {
	// Overrides captured at win time; zero values fall back to the proposal
	ProjectManager   string `json:"projectManager,omitempty" validate:"max=255"`
	NeedsLegalReview *bool  `json:"needsLegalReview,omitempty"`
	COINeeded        *bool  `json:"coiNeeded,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

type DeleteRequest struct {
	Note string `json:"note,omitempty" validate:"max=2000"`
}

type UpdateLegalStatusRequest struct {
	Status          LegalStatus `json:"status" validate:"required"`
	Notes           string      `json:"notes,omitempty" validate:"max=2000"`
	NotSignedReason string      `json:"notSignedReason,omitempty" validate:"max=2000"`
}

type SubmitProjectInfoRequest struct {
	// Action is either "submit" or "save_draft"
	Action    string                 `json:"action" validate:"required,oneof=submit save_draft"`
	AdminInfo map[string]interface{} `json:"adminInfo" validate:"required"`
}

type CreateSubRequestRequest struct {
	ProjectNumber string `json:"projectNumber,omitempty" validate:"max=40"`
	Subcontractor string `json:"subcontractor" validate:"required,max=255"`
	Notes         string `json:"notes,omitempty"`
}

type UpdateSubRequestRequest struct {
	DeptStatus *string `json:"deptStatus,omitempty" validate:"omitempty,max=30"`
	Notes      *string `json:"notes,omitempty"`
}

type CreatePWDirQuestionRequest struct {
	ProjectNumber string `json:"projectNumber,omitempty" validate:"max=40"`
	Question      string `json:"question" validate:"required"`
}

type UpdatePWDirQuestionRequest struct {
	Answer     *string `json:"answer,omitempty"`
	DeptStatus *string `json:"deptStatus,omitempty" validate:"omitempty,max=30"`
}

type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=255"`
}

type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UpdateUserRoleRequest struct {
	Role       UserRole `json:"role" validate:"required"`
	TeamNumber *string  `json:"teamNumber,omitempty" validate:"omitempty,max=4"`
}

// Analytics DTOs

// AnalyticsUpdateAction names the incremental analytics actions
type AnalyticsUpdateAction string

const (
	AnalyticsNewProposal      AnalyticsUpdateAction = "new_proposal"
	AnalyticsProposalWon      AnalyticsUpdateAction = "proposal_won"
	AnalyticsProjectCompleted AnalyticsUpdateAction = "project_completed"
)

// AnalyticsUpdatePayload carries the fields the incremental update needs
type AnalyticsUpdatePayload struct {
	Office         OfficeCode
	ProjectManager string
	Fee            float64
}

type PerformanceDTO struct {
	Total   int     `json:"total"`
	Won     int     `json:"won"`
	Revenue float64 `json:"revenue"`
	WinRate float64 `json:"winRate"`
	AvgFee  float64 `json:"avgFee,omitempty"`
}

type FeeRangeDTO struct {
	All int `json:"all"`
	Won int `json:"won"`
}

type MonthlyAnalyticsDTO struct {
	Month     string  `json:"month"`
	Proposals int     `json:"proposals"`
	Wins      int     `json:"wins"`
	Revenue   float64 `json:"revenue"`
	Completed int     `json:"completed"`
}

type AnalyticsReportDTO struct {
	TotalProposals         int                        `json:"totalProposals"`
	TotalWon               int                        `json:"totalWon"`
	TotalLost              int                        `json:"totalLost"`
	TotalPending           int                        `json:"totalPending"`
	WinRate                float64                    `json:"winRate"`
	TotalRevenue           float64                    `json:"totalRevenue"`
	RevenueByOffice        map[OfficeCode]float64     `json:"revenueByOffice"`
	PMPerformance          map[string]PerformanceDTO  `json:"pmPerformance"`
	ClientPerformance      map[string]PerformanceDTO  `json:"clientPerformance"`
	ProposalTypePerformance map[ProposalType]PerformanceDTO `json:"proposalTypePerformance"`
	ServiceTypePerformance map[ServiceType]PerformanceDTO  `json:"serviceTypePerformance"`
	FeeRanges              map[string]FeeRangeDTO     `json:"feeRanges"`
	AvgTimeToWinDays       float64                    `json:"avgTimeToWinDays"`
	LegalQueue             map[LegalStatus]int        `json:"legalQueue"`
	Monthly                []MonthlyAnalyticsDTO      `json:"monthly"`
}

// LegalQueueDTO is the legal team's work queue view
type LegalQueueDTO struct {
	Projects     []ProjectDTO        `json:"projects"`
	StatusCounts map[LegalStatus]int `json:"statusCounts"`
	OpenCount    int                 `json:"openCount"`
}
