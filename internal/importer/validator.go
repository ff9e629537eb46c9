package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-service/internal/models"
)

// Remark strings for accepted rows.
const (
	remarkWillBeUpdated = "Product will be updated"
	remarkWillBeAdded   = "Product will be added"
)

// Validate checks a single imported row against the static rules and the
// current catalog snapshot, returning a structured verdict. catalog and
// batch are read-only; rowIndex is the candidate's position in batch and is
// excluded from the duplicate check. Validation always completes — row
// content problems become verdict errors, never Go errors.
//
// Rule order matters only for remark composition: the final status is the
// union of all failing rules.
func Validate(row models.ImportedRow, rowIndex int, catalog []models.CatalogProduct, batch []models.ImportedRow) models.ValidationVerdict {
	var errs []string
	var warnings []string

	// Tentative action: update when the business identifier already exists
	// in the catalog, insert otherwise.
	action := models.RowActionInsert
	for i := range catalog {
		if catalog[i].SKU == row.SKU && row.SKU != "" {
			action = models.RowActionUpdate
			break
		}
	}

	// MRP must parse cleanly and be non-negative.
	if !row.MRPValid || row.MRP.IsNegative() {
		errs = append(errs, "MRP must be greater than or equal to 0")
	}

	if !models.IsAllowedCurrency(row.Currency) {
		errs = append(errs, fmt.Sprintf("Currency %q is not supported", row.Currency))
	}

	// Intra-file duplicate: another row sharing both identifiers.
	for i := range batch {
		if i == rowIndex {
			continue
		}
		if batch[i].PricelistID == row.PricelistID && batch[i].SKU == row.SKU {
			errs = append(errs, fmt.Sprintf("Duplicate row for pricelist %q and product %q", row.PricelistID, row.SKU))
			break
		}
	}

	if strings.TrimSpace(row.SKU) == "" {
		errs = append(errs, "Product identifier is required")
	}
	if strings.TrimSpace(row.PricelistID) == "" {
		errs = append(errs, "Pricelist identifier is required")
	}
	if strings.TrimSpace(row.Name) == "" {
		errs = append(errs, "Product name is required")
	}

	// Advisories: never block sync, never change the action.
	if row.MRPValid && row.MRP.IsZero() {
		warnings = append(warnings, "MRP is zero")
	}
	if outOfRange(row.TaxRate1) || outOfRange(row.TaxRate2) {
		warnings = append(warnings, "Tax rate is outside 0-100")
	}

	verdict := models.ValidationVerdict{
		Action:   action,
		Errors:   errs,
		Warnings: warnings,
	}

	switch {
	case len(errs) > 0:
		// Errors force a skip regardless of the tentative action.
		verdict.Status = models.RowStatusError
		verdict.Action = models.RowActionSkip
		verdict.Remark = strings.Join(errs, "; ")
	case len(warnings) > 0:
		verdict.Status = models.RowStatusWarning
		verdict.Remark = strings.Join(warnings, "; ")
	default:
		verdict.Status = models.RowStatusAccepted
		if action == models.RowActionUpdate {
			verdict.Remark = remarkWillBeUpdated
		} else {
			verdict.Remark = remarkWillBeAdded
		}
	}

	return verdict
}

func outOfRange(rate decimal.Decimal) bool {
	return rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100))
}
