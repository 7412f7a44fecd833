package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns the UUID so inserts work on both postgres and sqlite
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ProposalStatus represents the lifecycle state of a proposal
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusLost      ProposalStatus = "lost"
	ProposalStatusConverted ProposalStatus = "converted_to_project"
)

// IsValid checks if the ProposalStatus is a valid enum value
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusLost, ProposalStatusConverted:
		return true
	}
	return false
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPendingLegal ProjectStatus = "pending_legal"
	ProjectStatusPendingInfo  ProjectStatus = "pending_additional_info"
	ProjectStatusActive       ProjectStatus = "active"
	ProjectStatusCompleted    ProjectStatus = "completed"
	ProjectStatusDead         ProjectStatus = "dead"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPendingLegal, ProjectStatusPendingInfo, ProjectStatusActive,
		ProjectStatusCompleted, ProjectStatusDead:
		return true
	}
	return false
}

// LegalStatus represents where a contract sits in the legal review queue
type LegalStatus string

const (
	LegalStatusNewRequest    LegalStatus = "new_request"
	LegalStatusUnderReview   LegalStatus = "under_review"
	LegalStatusQuestionsToPM LegalStatus = "questions_to_pm"
	LegalStatusEditsToClient LegalStatus = "edits_to_client"
	LegalStatusNegotiating   LegalStatus = "negotiating"
	LegalStatusOnHold        LegalStatus = "on_hold"
	LegalStatusSigned        LegalStatus = "signed"
	LegalStatusNotSigned     LegalStatus = "not_signed"
)

// IsValid checks if the LegalStatus is a valid enum value
func (s LegalStatus) IsValid() bool {
	switch s {
	case LegalStatusNewRequest, LegalStatusUnderReview, LegalStatusQuestionsToPM,
		LegalStatusEditsToClient, LegalStatusNegotiating, LegalStatusOnHold,
		LegalStatusSigned, LegalStatusNotSigned:
		return true
	}
	return false
}

// IsTerminal reports whether the status closes the legal review.
// Only terminal statuses carry project-level side effects.
func (s LegalStatus) IsTerminal() bool {
	return s == LegalStatusSigned || s == LegalStatusNotSigned
}

// OfficeCode identifies a regional office
type OfficeCode string

const (
	OfficeSanDiego     OfficeCode = "SD"
	OfficeOrangeCounty OfficeCode = "OC"
	OfficeMurrieta     OfficeCode = "MU"
	OfficeRedlands     OfficeCode = "RD"
	OfficeLosAngeles   OfficeCode = "LA"
	OfficeEastBay      OfficeCode = "EB"
	OfficeSacramento   OfficeCode = "SA"
	OfficeFairfield    OfficeCode = "FA"
	OfficeCoachella    OfficeCode = "CV"
)

// AllOfficeCodes lists every regional office code
var AllOfficeCodes = []OfficeCode{
	OfficeSanDiego, OfficeOrangeCounty, OfficeMurrieta, OfficeRedlands,
	OfficeLosAngeles, OfficeEastBay, OfficeSacramento, OfficeFairfield,
	OfficeCoachella,
}

// IsValid checks if the OfficeCode is a valid enum value
func (o OfficeCode) IsValid() bool {
	for _, code := range AllOfficeCodes {
		if o == code {
			return true
		}
	}
	return false
}

// ProposalType distinguishes proposals, service agreements, and change orders
type ProposalType string

const (
	ProposalTypeProposal    ProposalType = "P"
	ProposalTypeService     ProposalType = "S"
	ProposalTypeChangeOrder ProposalType = "C"
)

// IsValid checks if the ProposalType is a valid enum value
func (t ProposalType) IsValid() bool {
	switch t {
	case ProposalTypeProposal, ProposalTypeService, ProposalTypeChangeOrder:
		return true
	}
	return false
}

// ServiceType identifies the discipline a proposal covers
type ServiceType string

const (
	ServiceGeotechnical      ServiceType = "GT"
	ServiceEnvironmental     ServiceType = "EV"
	ServiceSpecialInspection ServiceType = "SI"
	ServiceGeoEnvironmental  ServiceType = "GE"
	ServiceGeotechSpecial    ServiceType = "GS"
	ServiceGeoEnvSpecial     ServiceType = "GES"
	ServiceMaterialsTesting  ServiceType = "MT"
)

// IsValid checks if the ServiceType is a valid enum value
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceGeotechnical, ServiceEnvironmental, ServiceSpecialInspection,
		ServiceGeoEnvironmental, ServiceGeotechSpecial, ServiceGeoEnvSpecial,
		ServiceMaterialsTesting:
		return true
	}
	return false
}

// ContractDeptStatus tracks executed contract filing
type ContractDeptStatus string

const (
	ContractUnfiled ContractDeptStatus = "unfiled"
	ContractFiled   ContractDeptStatus = "filed"
)

// InsuranceDeptStatus tracks certificate of insurance requests
type InsuranceDeptStatus string

const (
	InsuranceNewRequest InsuranceDeptStatus = "new_request"
	InsuranceIssued     InsuranceDeptStatus = "issued"
)

// UserRole determines what a user can see and edit
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleProjectManager UserRole = "project_manager"
	RoleAnalytics      UserRole = "analytics"
	RoleStandard       UserRole = "standard"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleAnalytics, RoleStandard:
		return true
	}
	return false
}

// Proposal is a fee proposal sent to a client. Winning one converts it
// into a Project.
type Proposal struct {
	BaseModel
	ProposalNumber string         `gorm:"type:varchar(40);uniqueIndex;not null;column:proposal_number"`
	Office         OfficeCode     `gorm:"type:varchar(4);not null;index"`
	ProposalType   ProposalType   `gorm:"type:varchar(2);not null;column:proposal_type"`
	ServiceType    ServiceType    `gorm:"type:varchar(4);not null;column:service_type"`
	ProjectName    string         `gorm:"type:varchar(255);not null;column:project_name"`
	ClientName     string         `gorm:"type:varchar(255);not null;index;column:client_name"`
	ContactName    string         `gorm:"type:varchar(255);column:contact_name"`
	ContactEmail   string         `gorm:"type:varchar(255);column:contact_email"`
	Fee            float64        `gorm:"not null;default:0"`
	Status         ProposalStatus `gorm:"type:varchar(30);not null;default:'pending';index"`
	ProjectManager string         `gorm:"type:varchar(255);index;column:project_manager"`

	NeedsLegalReview bool `gorm:"not null;default:false;column:needs_legal_review"`
	COINeeded        bool `gorm:"not null;default:false;column:coi_needed"`

	ProposalSent     bool       `gorm:"not null;default:false;column:proposal_sent"`
	ProposalSentDate *time.Time `gorm:"column:proposal_sent_date"`
	ProposalSentBy   string     `gorm:"type:varchar(255);column:proposal_sent_by"`

	LostDate   *time.Time `gorm:"column:lost_date"`
	LostReason string     `gorm:"type:text;column:lost_reason"`

	WonDate       *time.Time `gorm:"column:won_date"`
	WonBy         string     `gorm:"type:varchar(255);column:won_by"`
	ProjectNumber string     `gorm:"type:varchar(40);index;column:project_number"`

	CreatedBy string `gorm:"type:varchar(255);index;column:created_by"`
	Notes     string `gorm:"type:text"`
}

// Project is the execution record created when a proposal is won
type Project struct {
	BaseModel
	ProjectNumber  string        `gorm:"type:varchar(40);uniqueIndex;not null;column:project_number"`
	ProposalNumber string        `gorm:"type:varchar(40);not null;index;column:proposal_number"`
	Status         ProjectStatus `gorm:"type:varchar(40);not null;index"`
	Office         OfficeCode    `gorm:"type:varchar(4);not null;index"`
	ProjectName    string        `gorm:"type:varchar(255);column:project_name"`
	ClientName     string        `gorm:"type:varchar(255);index;column:client_name"`
	Fee            float64       `gorm:"not null;default:0"`
	ProjectManager string        `gorm:"type:varchar(255);index;column:project_manager"`
	TeamNumber     string        `gorm:"type:varchar(4);column:team_number"`

	NeedsLegalReview  bool         `gorm:"not null;default:false;column:needs_legal_review"`
	LegalStatus       *LegalStatus `gorm:"type:varchar(30);index;column:legal_status"`
	LegalSigned       *bool        `gorm:"column:legal_signed"`
	LegalApprovedDate *time.Time   `gorm:"column:legal_approved_date"`
	LegalApprovedBy   string       `gorm:"type:varchar(255);column:legal_approved_by"`
	NotSignedReason   string       `gorm:"type:text;column:not_signed_reason"`

	COINeeded bool       `gorm:"not null;default:false;column:coi_needed"`
	WonDate   *time.Time `gorm:"column:won_date"`
	WonBy     string     `gorm:"type:varchar(255);column:won_by"`

	// AdminInfo holds the administrative intake form as submitted
	// (billing contacts, retainer terms, prevailing wage flags, etc.)
	AdminInfo        string     `gorm:"type:jsonb;column:admin_info"`
	InfoDraftSavedAt *time.Time `gorm:"column:info_draft_saved_at"`
	InfoDraftSavedBy string     `gorm:"type:varchar(255);column:info_draft_saved_by"`
	InfoSubmittedAt  *time.Time `gorm:"column:info_submitted_at"`
	InfoSubmittedBy  string     `gorm:"type:varchar(255);column:info_submitted_by"`

	CompletionDate *time.Time `gorm:"column:completion_date"`
	CompletedBy    string     `gorm:"type:varchar(255);column:completed_by"`

	ERPUpdated             bool `gorm:"not null;default:false;column:erp_updated"`
	PowerAutomateTriggered bool `gorm:"not null;default:false;column:power_automate_triggered"`

	CreatedBy string `gorm:"type:varchar(255);column:created_by"`
}

// LegalStatusEvent records one legal status change. The table is
// append-only; rows are never updated or deleted.
type LegalStatusEvent struct {
	BaseModel
	ProjectID uuid.UUID    `gorm:"type:uuid;not null;index;column:project_id"`
	Project   *Project     `gorm:"foreignKey:ProjectID"`
	Status    LegalStatus  `gorm:"type:varchar(30);not null"`
	OldStatus *LegalStatus `gorm:"type:varchar(30);column:old_status"`
	ChangedBy string       `gorm:"type:varchar(255);column:changed_by"`
	Notes     string       `gorm:"type:text"`
}

// TableName overrides the table name for LegalStatusEvent
func (LegalStatusEvent) TableName() string {
	return "legal_status_history"
}

// ExecutedContract tracks contract filing for a project
type ExecutedContract struct {
	BaseModel
	ProjectNumber string             `gorm:"type:varchar(40);not null;index;column:project_number"`
	DeptStatus    ContractDeptStatus `gorm:"type:varchar(20);not null;default:'unfiled';column:dept_status"`
	AutoGenerated bool               `gorm:"not null;default:false;column:auto_generated"`
	FiledDate     *time.Time         `gorm:"column:filed_date"`
	FiledBy       string             `gorm:"type:varchar(255);column:filed_by"`
	FileID        *uuid.UUID         `gorm:"type:uuid;column:file_id"`
	Notes         string             `gorm:"type:text"`
}

// InsuranceRequest tracks certificate of insurance requests for a project
type InsuranceRequest struct {
	BaseModel
	ProjectNumber string              `gorm:"type:varchar(40);not null;index;column:project_number"`
	DeptStatus    InsuranceDeptStatus `gorm:"type:varchar(20);not null;default:'new_request';column:dept_status"`
	AutoGenerated bool                `gorm:"not null;default:false;column:auto_generated"`
	IssuedDate    *time.Time          `gorm:"column:issued_date"`
	IssuedBy      string              `gorm:"type:varchar(255);column:issued_by"`
	FileID        *uuid.UUID          `gorm:"type:uuid;column:file_id"`
	Holder        string              `gorm:"type:varchar(255)"`
	Notes         string              `gorm:"type:text"`
}

// SubRequest tracks subcontractor agreement requests
type SubRequest struct {
	BaseModel
	ProjectNumber string `gorm:"type:varchar(40);index;column:project_number"`
	Subcontractor string `gorm:"type:varchar(255)"`
	DeptStatus    string `gorm:"type:varchar(30);default:'new_request';column:dept_status"`
	RequestedBy   string `gorm:"type:varchar(255);column:requested_by"`
	Notes         string `gorm:"type:text"`
}

// PWDirQuestion tracks prevailing wage / DIR registration questions
type PWDirQuestion struct {
	BaseModel
	ProjectNumber string `gorm:"type:varchar(40);index;column:project_number"`
	Question      string `gorm:"type:text"`
	Answer        string `gorm:"type:text"`
	DeptStatus    string `gorm:"type:varchar(30);default:'incomplete';column:dept_status"`
	AskedBy       string `gorm:"type:varchar(255);column:asked_by"`
}

// TableName overrides the table name for PWDirQuestion
func (PWDirQuestion) TableName() string {
	return "pw_dir_questions"
}

// NumberSequence tracks counters for generated numbers. Keys are
// "proposal:{office}" for per-office proposal counters and
// "project:global" for the company-wide project counter.
type NumberSequence struct {
	BaseModel
	Key   string `gorm:"type:varchar(40);uniqueIndex;not null"`
	Value int    `gorm:"not null;default:0"`
}

// DeletionLog preserves a snapshot of deleted proposals and projects
type DeletionLog struct {
	BaseModel
	EntityType   string `gorm:"type:varchar(20);not null;index;column:entity_type"`
	EntityNumber string `gorm:"type:varchar(40);not null;index;column:entity_number"`
	DeletedBy    string `gorm:"type:varchar(255);not null;column:deleted_by"`
	DeletionNote string `gorm:"type:text;column:deletion_note"`
	Snapshot     string `gorm:"type:jsonb"`
}

// ActivityLog records user-visible actions on proposals and projects
type ActivityLog struct {
	BaseModel
	Action       string `gorm:"type:varchar(60);not null;index"`
	EntityType   string `gorm:"type:varchar(20);index;column:entity_type"`
	EntityNumber string `gorm:"type:varchar(40);index;column:entity_number"`
	Actor        string `gorm:"type:varchar(255);index"`
	Details      string `gorm:"type:text"`
}

// EmailLog records every outbound notification attempt
type EmailLog struct {
	BaseModel
	EmailType     string `gorm:"type:varchar(40);not null;index;column:email_type"`
	Recipient     string `gorm:"type:varchar(255);not null"`
	Subject       string `gorm:"type:varchar(500)"`
	RelatedNumber string `gorm:"type:varchar(40);index;column:related_number"`
	SentBy        string `gorm:"type:varchar(255);column:sent_by"`
}

// NotificationType categorizes in-app notifications
type NotificationType string

const (
	NotificationLegalRequest     NotificationType = "legal_request"
	NotificationLegalUpdate      NotificationType = "legal_update"
	NotificationProjectCreated   NotificationType = "project_created"
	NotificationInfoRequested    NotificationType = "info_requested"
	NotificationFollowUpReminder NotificationType = "follow_up_reminder"
	NotificationInsuranceIssued  NotificationType = "insurance_issued"
)

// Notification is an in-app notification for a user
type Notification struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;index;column:user_id"`
	Type         string    `gorm:"type:varchar(40);not null"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Message      string    `gorm:"type:text"`
	EntityType   string    `gorm:"type:varchar(20);column:entity_type"`
	EntityNumber string    `gorm:"type:varchar(40);column:entity_number"`
	Read         bool      `gorm:"not null;default:false;index"`
}

// MonthlyAnalytics is the incremental rollup row for one calendar month
type MonthlyAnalytics struct {
	BaseModel
	Month     string  `gorm:"type:varchar(7);uniqueIndex;not null"`
	Proposals int     `gorm:"not null;default:0"`
	Wins      int     `gorm:"not null;default:0"`
	Revenue   float64 `gorm:"not null;default:0"`
	Completed int     `gorm:"not null;default:0"`
}

// OfficeMonthlyAnalytics is the per-office incremental rollup row
type OfficeMonthlyAnalytics struct {
	BaseModel
	Month     string     `gorm:"type:varchar(7);not null;uniqueIndex:idx_office_month"`
	Office    OfficeCode `gorm:"type:varchar(4);not null;uniqueIndex:idx_office_month"`
	Proposals int        `gorm:"not null;default:0"`
	Wins      int        `gorm:"not null;default:0"`
	Revenue   float64    `gorm:"not null;default:0"`
}

// PMAnalytics is the per-project-manager incremental rollup row
type PMAnalytics struct {
	BaseModel
	ProjectManager string  `gorm:"type:varchar(255);uniqueIndex;not null;column:project_manager"`
	Wins           int     `gorm:"not null;default:0"`
	Revenue        float64 `gorm:"not null;default:0"`
}

// TableName overrides the table name for PMAnalytics
func (PMAnalytics) TableName() string {
	return "pm_analytics"
}

// User represents an application user
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	DisplayName string     `gorm:"type:varchar(255);not null;column:display_name"`
	Role        UserRole   `gorm:"type:varchar(30);not null;default:'standard'"`
	TeamNumber  string     `gorm:"type:varchar(4);column:team_number"`
	IsActive    bool       `gorm:"not null;default:true;column:is_active"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

// File represents an uploaded document (executed contracts, COI certificates)
type File struct {
	BaseModel
	FileName     string `gorm:"type:varchar(255);not null;column:file_name"`
	ContentType  string `gorm:"type:varchar(100);column:content_type"`
	Size         int64  `gorm:"not null;default:0"`
	StoragePath  string `gorm:"type:varchar(500);not null;column:storage_path"`
	EntityType   string `gorm:"type:varchar(20);index;column:entity_type"`
	EntityNumber string `gorm:"type:varchar(40);index;column:entity_number"`
	UploadedBy   string `gorm:"type:varchar(255);column:uploaded_by"`
}
