package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/mapper"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"github.com/geocon-eng/pipeline-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrFileNotFound is returned when a file is not found
var ErrFileNotFound = errors.New("file not found")

// FileService handles uploaded documents (executed contracts, COI
// certificates) with entity validation and activity logging
type FileService struct {
	fileRepo     *repository.FileRepository
	proposalRepo *repository.ProposalRepository
	projectRepo  *repository.ProjectRepository
	audit        *AuditService
	storage      storage.Storage
	logger       *zap.Logger
}

// NewFileService creates a new FileService instance
func NewFileService(
	fileRepo *repository.FileRepository,
	proposalRepo *repository.ProposalRepository,
	projectRepo *repository.ProjectRepository,
	audit *AuditService,
	storage storage.Storage,
	logger *zap.Logger,
) *FileService {
	return &FileService{
		fileRepo:     fileRepo,
		proposalRepo: proposalRepo,
		projectRepo:  projectRepo,
		audit:        audit,
		storage:      storage,
		logger:       logger,
	}
}

// UploadToProject uploads a file and attaches it to a project
func (s *FileService) UploadToProject(ctx context.Context, projectNumber, filename, contentType string, data io.Reader) (*domain.FileDTO, error) {
	if _, err := s.projectRepo.GetByNumber(ctx, projectNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return s.uploadFile(ctx, "project", projectNumber, filename, contentType, data)
}

// UploadToProposal uploads a file and attaches it to a proposal
func (s *FileService) UploadToProposal(ctx context.Context, proposalNumber, filename, contentType string, data io.Reader) (*domain.FileDTO, error) {
	if _, err := s.proposalRepo.GetByNumber(ctx, proposalNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return s.uploadFile(ctx, "proposal", proposalNumber, filename, contentType, data)
}

// uploadFile handles the common upload logic
func (s *FileService) uploadFile(ctx context.Context, entityType, entityNumber, filename, contentType string, data io.Reader) (*domain.FileDTO, error) {
	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	file := &domain.File{
		FileName:     filename,
		ContentType:  contentType,
		Size:         size,
		StoragePath:  storagePath,
		EntityType:   entityType,
		EntityNumber: entityNumber,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		file.UploadedBy = userCtx.DisplayName
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// Best effort cleanup so storage doesn't accumulate orphans
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to cleanup file from storage after DB error",
				zap.Error(delErr),
				zap.String("storagePath", storagePath),
			)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.audit.RecordActivity(ctx, "file_uploaded", entityType, entityNumber, file.UploadedBy,
		fmt.Sprintf("File %q uploaded to %s %s", filename, entityType, entityNumber))

	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

// ListByEntity returns the files attached to a proposal or project
func (s *FileService) ListByEntity(ctx context.Context, entityType, entityNumber string) ([]domain.FileDTO, error) {
	files, err := s.fileRepo.ListByEntity(ctx, entityType, entityNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	dtos := make([]domain.FileDTO, len(files))
	for i := range files {
		dtos[i] = mapper.ToFileDTO(&files[i])
	}
	return dtos, nil
}

// GetByID retrieves a file by its ID
func (s *FileService) GetByID(ctx context.Context, id uuid.UUID) (*domain.FileDTO, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	dto := mapper.ToFileDTO(file)
	return &dto, nil
}

// Download retrieves a file's content for download.
// Returns: reader, filename, content-type, error
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrFileNotFound
		}
		return nil, "", "", fmt.Errorf("failed to get file: %w", err)
	}

	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to download file: %w", err)
	}

	return reader, file.FileName, file.ContentType, nil
}

// Delete removes a file from both storage and database
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to get file: %w", err)
	}

	// Delete from storage first; a stale blob is better than a dangling row
	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		s.logger.Warn("failed to delete file from storage",
			zap.Error(err),
			zap.String("storagePath", file.StoragePath),
			zap.String("fileID", id.String()),
		)
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	actor := ""
	if userCtx, ok := auth.FromContext(ctx); ok {
		actor = userCtx.DisplayName
	}
	s.audit.RecordActivity(ctx, "file_deleted", file.EntityType, file.EntityNumber, actor,
		fmt.Sprintf("File %q deleted", file.FileName))

	return nil
}

// deleteEntityFilesTx removes every file row attached to an entity inside
// the caller's transaction and returns the storage paths of the removed
// rows so the blobs can be cleaned up after commit.
func deleteEntityFilesTx(tx *gorm.DB, entityType, entityNumber string) ([]string, error) {
	var files []domain.File
	if err := tx.Where("entity_type = ? AND entity_number = ?", entityType, entityNumber).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	if err := tx.Where("entity_type = ? AND entity_number = ?", entityType, entityNumber).Delete(&domain.File{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete file records: %w", err)
	}
	paths := make([]string, len(files))
	for i := range files {
		paths[i] = files[i].StoragePath
	}
	return paths, nil
}

// cleanupBlobs deletes blobs whose rows are already gone. Failures are
// logged and left behind; a stale blob is better than a failed delete.
func cleanupBlobs(ctx context.Context, store storage.Storage, logger *zap.Logger, paths []string) {
	for _, path := range paths {
		if err := store.Delete(ctx, path); err != nil {
			logger.Warn("failed to delete file from storage",
				zap.Error(err),
				zap.String("storagePath", path),
			)
		}
	}
}
