// Package worker drains the sync outbox. The HTTP service applies sync
// actions inline and marks them APPLIED; anything still PENDING after a crash
// or a transient DB failure is replayed here until it lands or exhausts its
// attempts.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

const (
	// TaskOutboxSweep scans for PENDING entries and replays them.
	TaskOutboxSweep = "outbox:sweep"
	// TaskOutboxPurge deletes APPLIED entries past retention.
	TaskOutboxPurge = "outbox:purge"
)

// ReplayHandler replays pending sync outbox entries against the catalog.
type ReplayHandler struct {
	products    *repository.ProductsRepository
	outbox      *repository.OutboxRepository
	batchSize   int
	maxAttempts int
}

func NewReplayHandler(products *repository.ProductsRepository, outbox *repository.OutboxRepository, batchSize, maxAttempts int) *ReplayHandler {
	return &ReplayHandler{
		products:    products,
		outbox:      outbox,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

// HandleSweep replays up to one batch of pending entries. Each entry is
// applied independently; a failure bumps that entry's attempt counter and the
// sweep moves on.
func (h *ReplayHandler) HandleSweep(ctx context.Context, t *asynq.Task) error {
	pending, err := h.outbox.PendingActions(h.batchSize)
	if err != nil {
		return fmt.Errorf("failed to load pending sync actions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	logrus.WithField("count", len(pending)).Info("Replaying pending sync actions")

	for _, action := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := h.apply(action); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"key":    action.Key,
				"action": action.ActionType,
			}).Warn("Sync action replay failed")
			middleware.RecordSyncAction(string(action.ActionType), false)
			if markErr := h.outbox.MarkFailed(action.Key, err, h.maxAttempts); markErr != nil {
				logrus.WithError(markErr).WithField("key", action.Key).Error("Failed to record replay failure")
			}
			continue
		}
		middleware.RecordSyncAction(string(action.ActionType), true)
		if err := h.outbox.MarkApplied(action.Key); err != nil {
			logrus.WithError(err).WithField("key", action.Key).Error("Failed to mark replayed action applied")
		}
	}
	return nil
}

// apply re-executes one journaled action. Replay is idempotent per action
// type: inserts fall back to updates when the product already landed, updates
// and dispositions overwrite to the same end state.
func (h *ReplayHandler) apply(action models.SyncAction) error {
	switch action.ActionType {
	case models.SyncActionInsert, models.SyncActionUpdate:
		return h.applyRowAction(action)
	case models.SyncActionDeactivate:
		return h.applyStatus(action, models.ProductStatusInactive)
	case models.SyncActionDelete:
		return h.applyDelete(action)
	default:
		return fmt.Errorf("unknown sync action type %q", action.ActionType)
	}
}

type rowPayload struct {
	PricelistID string `json:"pricelistId"`
	Name        string `json:"name"`
	MRP         string `json:"mrp"`
	Currency    string `json:"currency"`
}

func (h *ReplayHandler) applyRowAction(action models.SyncAction) error {
	raw, err := json.Marshal(action.Payload)
	if err != nil {
		return fmt.Errorf("corrupt payload: %w", err)
	}
	var payload rowPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("corrupt payload: %w", err)
	}
	mrp, err := decimal.NewFromString(payload.MRP)
	if err != nil {
		return fmt.Errorf("corrupt payload mrp: %w", err)
	}

	updates := map[string]interface{}{
		"pricelist_id": payload.PricelistID,
		"name":         payload.Name,
		"mrp":          mrp,
		"currency":     payload.Currency,
		"status":       models.ProductStatusActive,
	}

	_, err = h.products.UpdateProductBySKU(action.TenantID, action.SKU, updates)
	if err == nil {
		return nil
	}

	if action.ActionType == models.SyncActionInsert {
		// Product never landed; create it from the journaled fields.
		return h.products.CreateProduct(action.TenantID, &models.CatalogProduct{
			SKU:         action.SKU,
			PricelistID: payload.PricelistID,
			Name:        payload.Name,
			MRP:         mrp,
			Currency:    payload.Currency,
			Status:      models.ProductStatusActive,
		})
	}
	return err
}

// applyStatus replays a deactivate disposition. Disposition entries journal
// the product id in the SKU slot.
func (h *ReplayHandler) applyStatus(action models.SyncAction, status models.ProductStatus) error {
	id, err := uuid.Parse(action.SKU)
	if err != nil {
		return fmt.Errorf("disposition entry carries invalid product id %q", action.SKU)
	}
	return h.products.UpdateProductStatus(action.TenantID, id, status)
}

func (h *ReplayHandler) applyDelete(action models.SyncAction) error {
	id, err := uuid.Parse(action.SKU)
	if err != nil {
		return fmt.Errorf("disposition entry carries invalid product id %q", action.SKU)
	}
	applied, failed := h.products.DeleteProducts(action.TenantID, []uuid.UUID{id})
	if applied == 0 && len(failed) > 0 {
		// Already deleted entries count as applied on replay.
		if _, lookupErr := h.products.GetProductByID(action.TenantID, id); lookupErr != nil {
			return nil
		}
		return fmt.Errorf("delete disposition did not apply for %s", action.SKU)
	}
	return nil
}

// HandlePurge removes APPLIED entries older than the retention window.
func (h *ReplayHandler) HandlePurge(ctx context.Context, t *asynq.Task) error {
	purged, err := h.outbox.PurgeApplied(outboxRetention)
	if err != nil {
		return fmt.Errorf("failed to purge applied sync actions: %w", err)
	}
	if purged > 0 {
		logrus.WithField("purged", purged).Info("Purged applied sync actions")
	}
	return nil
}
