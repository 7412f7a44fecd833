package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/service"
	"github.com/geocon-eng/pipeline-api/internal/storage"
	"github.com/geocon-eng/pipeline-api/internal/testutil"
)

// testEnv wires every service against a fresh in-memory database.
type testEnv struct {
	db *gorm.DB

	proposalRepo     *repository.ProposalRepository
	projectRepo      *repository.ProjectRepository
	legalRepo        *repository.LegalHistoryRepository
	contractRepo     *repository.ExecutedContractRepository
	insuranceRepo    *repository.InsuranceRequestRepository
	notificationRepo *repository.NotificationRepository
	emailLogRepo     *repository.EmailLogRepository
	deletionLogRepo  *repository.DeletionLogRepository
	userRepo         *repository.UserRepository
	analyticsRepo    *repository.AnalyticsRepository
	fileRepo         *repository.FileRepository

	fileStorage storage.Storage

	numberSvc    *service.NumberSequenceService
	analyticsSvc *service.AnalyticsService
	notifier     *service.NotifierService
	audit        *service.AuditService
	access       *service.AccessService
	proposalSvc  *service.ProposalService
	projectSvc   *service.ProjectService
	fileSvc      *service.FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	notifyCfg := &config.NotifyConfig{
		LegalDeptEmail:  "legal@geoconinc.com",
		LegalTeamEmails: []string{"counsel@geoconinc.com"},
		EmailDomain:     "geoconinc.com",
		EmailLogCap:     100,
		ActivityLogCap:  100,
	}
	directoryCfg := &config.DirectoryConfig{
		TeamAssignments: map[string]string{"Dana Reyes": "02"},
		ProjectManagers: []string{"Dana Reyes", "Chris Moss"},
		AnalyticsUsers:  []string{"Pat Quinn"},
	}

	env := &testEnv{
		db:               db,
		proposalRepo:     repository.NewProposalRepository(db),
		projectRepo:      repository.NewProjectRepository(db),
		legalRepo:        repository.NewLegalHistoryRepository(db),
		contractRepo:     repository.NewExecutedContractRepository(db),
		insuranceRepo:    repository.NewInsuranceRequestRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		emailLogRepo:     repository.NewEmailLogRepository(db),
		deletionLogRepo:  repository.NewDeletionLogRepository(db),
		userRepo:         repository.NewUserRepository(db),
		analyticsRepo:    repository.NewAnalyticsRepository(db),
		fileRepo:         repository.NewFileRepository(db),
	}

	fileStorage, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	env.fileStorage = fileStorage

	env.numberSvc = service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), log)
	env.analyticsSvc = service.NewAnalyticsService(env.analyticsRepo, env.proposalRepo, env.projectRepo, log)
	env.notifier = service.NewNotifierService(notifyCfg, env.emailLogRepo, env.notificationRepo, env.userRepo, log)
	env.audit = service.NewAuditService(repository.NewActivityLogRepository(db), env.deletionLogRepo, notifyCfg, log)
	env.access = service.NewAccessService(directoryCfg)
	env.proposalSvc = service.NewProposalService(db, env.proposalRepo, env.projectRepo, env.numberSvc, env.analyticsSvc, env.notifier, env.audit, env.access, directoryCfg, env.fileStorage, log)
	env.projectSvc = service.NewProjectService(db, env.projectRepo, env.proposalRepo, env.legalRepo, env.analyticsSvc, env.notifier, env.audit, env.access, env.fileStorage, log)
	env.fileSvc = service.NewFileService(env.fileRepo, env.proposalRepo, env.projectRepo, env.audit, env.fileStorage, log)

	return env
}

func ctxWithUser(role domain.UserRole, displayName, email string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: displayName,
		Email:       email,
		Role:        role,
	})
}

func adminCtx() context.Context {
	return ctxWithUser(domain.RoleAdmin, "Alex Admin", "alex.admin@geoconinc.com")
}

func pmCtx() context.Context {
	return ctxWithUser(domain.RoleProjectManager, "Dana Reyes", "dana.reyes@geoconinc.com")
}

func (e *testEnv) createProposal(t *testing.T, ctx context.Context, fee float64, needsLegal bool) *domain.ProposalDTO {
	t.Helper()

	dto, err := e.proposalSvc.Create(ctx, &domain.CreateProposalRequest{
		Office:           domain.OfficeSanDiego,
		ProposalType:     domain.ProposalTypeProposal,
		ServiceType:      domain.ServiceGeotechnical,
		ProjectName:      "Harbor Terminal Expansion",
		ClientName:       "Pacific Builders",
		Fee:              fee,
		ProjectManager:   "Dana Reyes",
		NeedsLegalReview: needsLegal,
	})
	require.NoError(t, err)
	return dto
}
