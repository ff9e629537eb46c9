package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog-service/internal/models"
)

// OutboxRepository persists the append-only sync journal. Sync writes an
// entry per catalog mutation before applying it; the replay worker drains
// anything left PENDING after a crash.
type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Append journals a sync action. The replay key is unique, so appending the
// same action twice (a re-confirmed batch) is a silent no-op and the original
// entry keeps its state.
func (r *OutboxRepository) Append(action *models.SyncAction) error {
	if action.Status == "" {
		action.Status = models.SyncActionPending
	}
	action.CreatedAt = time.Now()

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(action).Error
}

// GetByKey looks up an outbox entry by its replay key.
func (r *OutboxRepository) GetByKey(key string) (*models.SyncAction, error) {
	var action models.SyncAction
	if err := r.db.Where("key = ?", key).First(&action).Error; err != nil {
		return nil, err
	}
	return &action, nil
}

// PendingActions returns up to limit PENDING entries in append order.
func (r *OutboxRepository) PendingActions(limit int) ([]models.SyncAction, error) {
	var actions []models.SyncAction
	err := r.db.Where("status = ?", models.SyncActionPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&actions).Error
	return actions, err
}

// MarkApplied transitions an entry to APPLIED and stamps the apply time.
func (r *OutboxRepository) MarkApplied(key string) error {
	now := time.Now()
	result := r.db.Model(&models.SyncAction{}).
		Where("key = ?", key).
		Updates(map[string]interface{}{
			"status":     models.SyncActionApplied,
			"applied_at": now,
			"last_error": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkFailed records a replay failure in a single statement: the attempt
// counter is incremented in the database, and the entry flips from PENDING to
// FAILED once the incremented count reaches maxAttempts. Safe under
// concurrent sweeps; no read-then-write window.
func (r *OutboxRepository) MarkFailed(key string, cause error, maxAttempts int) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}

	result := r.db.Model(&models.SyncAction{}).
		Where("key = ?", key).
		Updates(failureUpdates(msg, maxAttempts))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// failureUpdates builds the atomic failure transition: one UPDATE carrying
// both the counter increment and the threshold-dependent status.
func failureUpdates(msg string, maxAttempts int) map[string]interface{} {
	return map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
		"status": gorm.Expr(
			"CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END",
			maxAttempts, models.SyncActionFailed, models.SyncActionPending,
		),
		"last_error": msg,
	}
}

// PurgeApplied deletes APPLIED entries older than the retention window.
func (r *OutboxRepository) PurgeApplied(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := r.db.Where("status = ? AND applied_at < ?", models.SyncActionApplied, cutoff).
		Delete(&models.SyncAction{})
	return result.RowsAffected, result.Error
}
