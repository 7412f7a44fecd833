package repository

import (
	"context"
	"fmt"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for number sequences.
// Per-office proposal counters and the global project counter share one
// table, keyed by sequence key ("proposal:{office}", "project:global").
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically retrieves and increments the sequence for a key.
// Thread-safe: uses SELECT FOR UPDATE inside a transaction so concurrent
// callers never observe the same value. If no sequence exists for the key,
// one is created starting at 1.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, key string) (int, error) {
	var seq domain.NumberSequence
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Key:   key,
				Value: 1,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			nextSeq = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else {
			nextSeq = seq.Value + 1
			if err := tx.Model(&seq).Update("value", nextSeq).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return nextSeq, nil
}

// GetCurrentSequence retrieves the current sequence value without incrementing.
// Returns 0 if no sequence exists for the key.
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, key string) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.Value, nil
}

// SetSequence sets the sequence to a specific value. Used by data
// migrations to account for already-issued numbers. The sequence is only
// ever raised, never reduced.
func (r *NumberSequenceRepository) SetSequence(ctx context.Context, key string, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Key:   key,
				Value: value,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else if value > seq.Value {
			if err := tx.Model(&seq).Update("value", value).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})
}

// ListSequences returns all sequences (useful for debugging/admin)
func (r *NumberSequenceRepository) ListSequences(ctx context.Context) ([]domain.NumberSequence, error) {
	var sequences []domain.NumberSequence
	err := r.db.WithContext(ctx).
		Order("key ASC").
		Find(&sequences).Error
	return sequences, err
}
