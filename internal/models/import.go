package models

import (
	"github.com/shopspring/decimal"
)

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// RowStatus is the validation status of a single imported row
type RowStatus string

const (
	RowStatusAccepted RowStatus = "accepted"
	RowStatusError    RowStatus = "error"
	RowStatusWarning  RowStatus = "warning"
)

// RowAction is the sync action a validated row resolves to
type RowAction string

const (
	RowActionInsert RowAction = "insert"
	RowActionUpdate RowAction = "update"
	RowActionSkip   RowAction = "skip"
)

// ImportedRow is one parsed candidate row from an uploaded pricelist file.
// The parser produces typed fields; a malformed MRP is carried with
// MRPValid=false so the validator can reject it without panicking.
// Rows are immutable once parsed and live only for one import run.
type ImportedRow struct {
	SKU         string          `json:"sku"`
	PricelistID string          `json:"pricelistId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UOMCode     string          `json:"uomCode"`
	UOMValue    string          `json:"uomValue"`
	IsBox       bool            `json:"isBox"`
	IsCombo     bool            `json:"isCombo"`
	TaxRate1    decimal.Decimal `json:"taxRate1"`
	TaxRate2    decimal.Decimal `json:"taxRate2"`
	MRP         decimal.Decimal `json:"mrp"`
	MRPValid    bool            `json:"mrpValid"`
	Currency    string          `json:"currency"`
	Remark      string          `json:"remark"`
	RowNumber   int             `json:"rowNumber"` // 1-based file line, for error reporting
}

// ValidationVerdict is the structured outcome of validating one row.
// Created once per row per validation run and never mutated.
type ValidationVerdict struct {
	Status   RowStatus `json:"status"`
	Action   RowAction `json:"action"`
	Errors   []string  `json:"errors,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
	Remark   string    `json:"remark"`
}

// ValidatedRow pairs an imported row with its verdict and its 0-based
// position in the batch.
type ValidatedRow struct {
	ImportedRow
	RowIndex int               `json:"rowIndex"`
	Verdict  ValidationVerdict `json:"verdict"`
}

// ValidationSummary is the batch-level aggregate driving the review UI and
// the sync gate. Computed once per import run; immutable.
type ValidationSummary struct {
	TotalRows       int              `json:"totalRows"`
	AcceptedRows    int              `json:"acceptedRows"`
	ErrorRows       int              `json:"errorRows"`
	WarningRows     int              `json:"warningRows"`
	InsertCount     int              `json:"insertCount"`
	UpdateCount     int              `json:"updateCount"`
	SkipCount       int              `json:"skipCount"`
	MissingProducts []CatalogProduct `json:"missingProducts"`
	Rows            []ValidatedRow   `json:"rows"`
}

// ImportRowError represents a sync-time failure for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SyncResult is the outcome of a confirmed sync: accepted rows applied to
// the catalog best-effort, one entry per failure.
type SyncResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	CreatedCount int              `json:"createdCount"`
	UpdatedCount int              `json:"updatedCount"`
	SkippedCount int              `json:"skippedCount"`
	FailedCount  int              `json:"failedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
	UpdatedIDs   []string         `json:"updatedIds,omitempty"`
	ProcessingMs int64            `json:"processingMs"`
}

// MissingProductAction is the disposition applied to catalog products absent
// from an import batch. Only mutating dispositions are accepted server-side;
// show/hide are purely client display choices.
type MissingProductAction string

const (
	MissingProductDeactivate MissingProductAction = "deactivate"
	MissingProductDelete     MissingProductAction = "delete"
)

// MissingProductsRequest applies a disposition to missing products
type MissingProductsRequest struct {
	Action     MissingProductAction `json:"action" binding:"required"`
	ProductIDs []string             `json:"productIds" binding:"required,min=1"`
}

// MissingProductsResult reports how many products a disposition touched
type MissingProductsResult struct {
	Success      bool     `json:"success"`
	Action       string   `json:"action"`
	AppliedCount int      `json:"appliedCount"`
	FailedIDs    []string `json:"failedIds,omitempty"`
}

// ValidationSummaryResponse wraps a summary with the sync gate verdict so
// the client does not re-derive it.
type ValidationSummaryResponse struct {
	Success bool               `json:"success"`
	CanSync bool               `json:"canSync"`
	Data    *ValidationSummary `json:"data"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// CatalogImportColumns returns the column definitions for pricelist import
func CatalogImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "sku", Description: "Business product identifier, unique per tenant", Required: true, Type: "string", Example: "P1"},
		{Name: "pricelistId", Description: "Pricelist identifier the row belongs to", Required: true, Type: "string", Example: "PL1"},
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Widget"},
		{Name: "description", Description: "Product description", Required: false, Type: "string", Example: "Standard widget"},
		{Name: "uomCode", Description: "Unit of measure code", Required: false, Type: "string", Example: "PCS"},
		{Name: "uomValue", Description: "Unit of measure value", Required: false, Type: "string", Example: "1"},
		{Name: "isBox", Description: "Whether the SKU is sold as a box", Required: false, Type: "boolean", Example: "false"},
		{Name: "isCombo", Description: "Whether the SKU is a combo pack", Required: false, Type: "boolean", Example: "false"},
		{Name: "taxRate1", Description: "Primary tax rate percent", Required: false, Type: "number", Example: "9"},
		{Name: "taxRate2", Description: "Secondary tax rate percent", Required: false, Type: "number", Example: "9"},
		{Name: "mrp", Description: "Maximum retail price, must be >= 0", Required: true, Type: "number", Example: "100"},
		{Name: "currency", Description: "Price currency (Rs or USD)", Required: true, Type: "string", Example: "Rs"},
		{Name: "remark", Description: "Free-text remark", Required: false, Type: "string", Example: ""},
	}
}

// CatalogImportTemplate returns the template definition for pricelist import
func CatalogImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: CatalogImportColumns(),
	}
}

// TemplateExampleRow returns the single example data line emitted below the
// template header.
func TemplateExampleRow() []string {
	cols := CatalogImportColumns()
	row := make([]string, len(cols))
	for i, col := range cols {
		row[i] = col.Example
	}
	return row
}
