package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/mantispro/satinalma/internal/procure/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository issues document numbers from per-(type, year) counter
// rows. The increment happens under SELECT ... FOR UPDATE inside the
// caller's transaction, so two concurrent callers can never draw the same
// number, and an aborted transaction leaks nothing.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next allocates the next number for docType in the current year and
// formats it PREFIX-YYYY-NNN. tx must be an open transaction.
func (r *SequenceRepository) Next(tx *gorm.DB, docType string) (string, error) {
	return r.NextForYear(tx, docType, time.Now().Year())
}

// NextForYear allocates the next number for an explicit (docType, year) pair.
func (r *SequenceRepository) NextForYear(tx *gorm.DB, docType string, year int) (string, error) {
	var seq entity.DocumentSequence
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doc_type = ? AND year = ?", docType, year).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Concurrent first use races on the insert. ON CONFLICT DO NOTHING
		// lets the loser fall through to the locked re-read instead of
		// aborting on the primary key.
		seq = entity.DocumentSequence{DocType: docType, Year: year}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return "", fmt.Errorf("create sequence counter %s/%d: %w", docType, year, err)
		}
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("doc_type = ? AND year = ?", docType, year).
			First(&seq).Error; err != nil {
			return "", fmt.Errorf("lock sequence counter %s/%d: %w", docType, year, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("lock sequence counter %s/%d: %w", docType, year, err)
	}

	seq.LastValue++
	if err := tx.Model(&entity.DocumentSequence{}).
		Where("doc_type = ? AND year = ?", docType, year).
		Update("last_value", seq.LastValue).Error; err != nil {
		return "", fmt.Errorf("advance sequence counter %s/%d: %w", docType, year, err)
	}

	return FormatDocNumber(docType, year, seq.LastValue), nil
}

// FormatDocNumber renders the externally stable PREFIX-YYYY-NNN form.
// NNN is left-padded to three digits and grows past 999 naturally.
func FormatDocNumber(docType string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%03d", docType, year, value)
}
