package importer

import (
	"catalog-service/internal/models"
)

// CanSync is the sole authorization point before any import row reaches the
// catalog store: sync may proceed iff the batch has no error rows. Warnings
// never block.
func CanSync(summary models.ValidationSummary) bool {
	return summary.ErrorRows == 0
}
