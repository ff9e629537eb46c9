package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/importer"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type ImportHandler struct {
	repo         *repository.ProductsRepository
	outbox       *repository.OutboxRepository
	maxFileBytes int64
}

func NewImportHandler(repo *repository.ProductsRepository, outbox *repository.OutboxRepository, maxFileBytes int64) *ImportHandler {
	return &ImportHandler{
		repo:         repo,
		outbox:       outbox,
		maxFileBytes: maxFileBytes,
	}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/products/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.CatalogImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template with one example line
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
	writer.Write(models.TemplateExampleRow())
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	// Example data line below the header
	for i, value := range models.TemplateExampleRow() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetName, cell, value)
	}

	// Instructions sheet with column definitions
	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Pricelist Import Instructions")
	f.SetCellValue("Instructions", "A3", "Each row is one product price. Rows with errors are skipped; a single error blocks the whole sync until fixed.")
	f.SetCellValue("Instructions", "A4", "Products already in the catalog (matched by sku) are updated; new skus are added.")

	f.SetCellValue("Instructions", "A6", "Column Definitions:")
	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Description")
	f.SetCellValue("Instructions", "C7", "Required")
	f.SetCellValue("Instructions", "D7", "Type")
	f.SetCellValue("Instructions", "E7", "Example")

	for i, col := range template.Columns {
		row := i + 8
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 15)
	f.SetColWidth("Instructions", "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")

	f.Write(c.Writer)
}

// readUpload pulls the uploaded file into memory, enforces the size limit,
// and returns the raw bytes plus the batch checksum that identifies this
// exact file content for idempotent sync.
func (h *ImportHandler) readUpload(c *gin.Context) ([]byte, models.ImportFormat, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return nil, "", "", false
	}
	defer file.Close()

	var format models.ImportFormat
	name := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		format = models.ImportFormatCSV
	case strings.HasSuffix(name, ".xlsx"):
		format = models.ImportFormatXLSX
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return nil, "", "", false
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "READ_ERROR",
				Message: "Failed to read uploaded file",
			},
		})
		return nil, "", "", false
	}
	if int64(len(data)) > h.maxFileBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_TOO_LARGE",
				Message: fmt.Sprintf("File exceeds the %d byte limit", h.maxFileBytes),
			},
		})
		return nil, "", "", false
	}

	sum := sha256.Sum256(data)
	return data, format, hex.EncodeToString(sum[:]), true
}

func (h *ImportHandler) parseUpload(c *gin.Context, data []byte, format models.ImportFormat) ([]models.ImportedRow, bool) {
	var rows []models.ImportedRow
	var err error
	if format == models.ImportFormatCSV {
		rows, err = importer.ParseCSV(bytes.NewReader(data))
	} else {
		rows, err = importer.ParseXLSX(bytes.NewReader(data))
	}
	if err != nil {
		code := "PARSE_ERROR"
		switch {
		case err == importer.ErrEmptyFile:
			code = "EMPTY_FILE"
		case strings.Contains(err.Error(), importer.ErrMissingColumns.Error()):
			code = "MISSING_COLUMNS"
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    code,
				Message: err.Error(),
			},
		})
		return nil, false
	}
	return rows, true
}

// validateBatch takes the current catalog snapshot and runs the full batch
// through validation.
func (h *ImportHandler) validateBatch(tenantID string, rows []models.ImportedRow) (models.ValidationSummary, error) {
	catalog, err := h.repo.GetCatalogSnapshot(tenantID)
	if err != nil {
		return models.ValidationSummary{}, err
	}
	summary := importer.Aggregate(rows, catalog)

	middleware.RecordRowValidated(string(models.RowStatusAccepted), summary.AcceptedRows)
	middleware.RecordRowValidated(string(models.RowStatusError), summary.ErrorRows)
	middleware.RecordRowValidated(string(models.RowStatusWarning), summary.WarningRows)
	return summary, nil
}

// ValidateImport validates an uploaded pricelist without touching the catalog
// POST /api/v1/products/import/validate
func (h *ImportHandler) ValidateImport(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	data, format, _, ok := h.readUpload(c)
	if !ok {
		return
	}
	rows, ok := h.parseUpload(c, data, format)
	if !ok {
		return
	}

	summary, err := h.validateBatch(tenantID, rows)
	if err != nil {
		logrus.WithError(err).Error("Failed to load catalog snapshot for validation")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to validate import",
			},
		})
		return
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"total":     summary.TotalRows,
		"accepted":  summary.AcceptedRows,
		"errors":    summary.ErrorRows,
		"warnings":  summary.WarningRows,
	}).Info("Import batch validated")

	c.JSON(http.StatusOK, models.ValidationSummaryResponse{
		Success: true,
		CanSync: importer.CanSync(summary),
		Data:    &summary,
	})
}

// DownloadReport validates an uploaded pricelist and returns the row-by-row
// verdicts as a CSV for spreadsheet review
// POST /api/v1/products/import/report
func (h *ImportHandler) DownloadReport(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	data, format, _, ok := h.readUpload(c)
	if !ok {
		return
	}
	rows, ok := h.parseUpload(c, data, format)
	if !ok {
		return
	}

	summary, err := h.validateBatch(tenantID, rows)
	if err != nil {
		logrus.WithError(err).Error("Failed to load catalog snapshot for report")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to build validation report",
			},
		})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=import_validation_report.csv")
	c.String(http.StatusOK, importer.FormatReport(summary.Rows))
}

// SyncImport applies a confirmed import batch to the catalog
// POST /api/v1/products/import/sync
//
// The file is re-validated server-side; the client's earlier validation
// response is advisory only. Sync is refused outright if any row carries an
// error. Accepted rows are applied best-effort: each row is journaled to the
// sync outbox and then applied; a row that fails is reported and the rest
// continue.
func (h *ImportHandler) SyncImport(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)
	startTime := time.Now()

	data, format, checksum, ok := h.readUpload(c)
	if !ok {
		return
	}
	rows, ok := h.parseUpload(c, data, format)
	if !ok {
		return
	}

	summary, err := h.validateBatch(tenantID, rows)
	if err != nil {
		logrus.WithError(err).Error("Failed to load catalog snapshot for sync")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to validate import before sync",
			},
		})
		return
	}

	if !importer.CanSync(summary) {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "SYNC_BLOCKED",
				Message: fmt.Sprintf("Batch has %d error rows; fix them and re-validate before syncing", summary.ErrorRows),
			},
		})
		return
	}

	result := h.applyBatch(tenantID, userID, checksum, summary)
	result.ProcessingMs = time.Since(startTime).Milliseconds()

	logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"created":   result.CreatedCount,
		"updated":   result.UpdatedCount,
		"failed":    result.FailedCount,
		"checksum":  checksum,
	}).Info("Import batch synced")

	c.JSON(http.StatusOK, result)
}

// applyBatch journals and applies the accepted rows. Only accepted verdicts
// reach the store: warning rows pass the gate but are advisory-only and stay
// untouched, counted as skipped.
func (h *ImportHandler) applyBatch(tenantID, userID, checksum string, summary models.ValidationSummary) *models.SyncResult {
	result := &models.SyncResult{
		Success:   true,
		TotalRows: summary.TotalRows,
	}

	for _, row := range summary.Rows {
		if row.Verdict.Status != models.RowStatusAccepted {
			result.SkippedCount++
			continue
		}
		switch row.Verdict.Action {
		case models.RowActionInsert:
			h.applyInsert(tenantID, userID, checksum, row, result)
		case models.RowActionUpdate:
			h.applyUpdate(tenantID, userID, checksum, row, result)
		default:
			result.SkippedCount++
		}
	}

	result.FailedCount = len(result.Errors)
	result.Success = result.FailedCount == 0
	return result
}

func (h *ImportHandler) applyInsert(tenantID, userID, checksum string, row models.ValidatedRow, result *models.SyncResult) {
	key := models.SyncActionKey(tenantID, models.SyncActionInsert, row.SKU, checksum)
	h.journal(tenantID, key, models.SyncActionInsert, row)

	product := productFromRow(row.ImportedRow, userID)
	if err := h.repo.CreateProduct(tenantID, product); err != nil {
		h.recordRowFailure(key, models.SyncActionInsert, row, err, result)
		return
	}

	h.markApplied(key, models.SyncActionInsert)
	result.CreatedCount++
	result.CreatedIDs = append(result.CreatedIDs, product.ID.String())
}

func (h *ImportHandler) applyUpdate(tenantID, userID, checksum string, row models.ValidatedRow, result *models.SyncResult) {
	key := models.SyncActionKey(tenantID, models.SyncActionUpdate, row.SKU, checksum)
	h.journal(tenantID, key, models.SyncActionUpdate, row)

	updated, err := h.repo.UpdateProductBySKU(tenantID, row.SKU, updatesFromRow(row.ImportedRow, userID))
	if err != nil {
		h.recordRowFailure(key, models.SyncActionUpdate, row, err, result)
		return
	}

	h.markApplied(key, models.SyncActionUpdate)
	result.UpdatedCount++
	result.UpdatedIDs = append(result.UpdatedIDs, updated.ID.String())
}

func (h *ImportHandler) journal(tenantID, key string, action models.SyncActionType, row models.ValidatedRow) {
	entry := &models.SyncAction{
		TenantID:   tenantID,
		Key:        key,
		ActionType: action,
		SKU:        row.SKU,
		Payload: models.JSON{
			"pricelistId": row.PricelistID,
			"name":        row.Name,
			"mrp":         row.MRP.String(),
			"currency":    row.Currency,
			"rowNumber":   row.RowNumber,
		},
	}
	if err := h.outbox.Append(entry); err != nil {
		// Journal failures are logged, not fatal: the direct apply below
		// still runs and the entry can be reconstructed from the file.
		logrus.WithError(err).WithField("key", key).Warn("Failed to journal sync action")
	}
}

func (h *ImportHandler) markApplied(key string, action models.SyncActionType) {
	if err := h.outbox.MarkApplied(key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to mark sync action applied")
	}
	middleware.RecordSyncAction(string(action), true)
}

func (h *ImportHandler) recordRowFailure(key string, action models.SyncActionType, row models.ValidatedRow, cause error, result *models.SyncResult) {
	logrus.WithError(cause).WithFields(logrus.Fields{
		"sku": row.SKU,
		"row": row.RowNumber,
	}).Error("Failed to apply sync row")

	middleware.RecordSyncAction(string(action), false)
	result.Errors = append(result.Errors, models.ImportRowError{
		Row:     row.RowNumber,
		Code:    "SYNC_ROW_FAILED",
		Message: cause.Error(),
	})
}

// MissingProducts applies a disposition to catalog products absent from an
// import batch
// POST /api/v1/products/import/missing-products
func (h *ImportHandler) MissingProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.MissingProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	var actionType models.SyncActionType
	switch req.Action {
	case models.MissingProductDeactivate:
		actionType = models.SyncActionDeactivate
	case models.MissingProductDelete:
		actionType = models.SyncActionDelete
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ACTION",
				Message: "Action must be one of: deactivate, delete",
				Field:   "action",
			},
		})
		return
	}

	productIDs := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INVALID_PRODUCT_ID",
					Message: fmt.Sprintf("%q is not a valid product id", raw),
					Field:   "productIds",
				},
			})
			return
		}
		productIDs = append(productIDs, id)
	}

	// Journal each disposition before applying. The key uses the product id
	// in place of a batch checksum: re-applying the same disposition to the
	// same product is naturally idempotent.
	for _, id := range productIDs {
		key := models.SyncActionKey(tenantID, actionType, id.String(), "disposition")
		h.journal(tenantID, key, actionType, models.ValidatedRow{
			ImportedRow: models.ImportedRow{SKU: id.String()},
		})
	}

	var applied int
	var failedIDs []string
	if actionType == models.SyncActionDeactivate {
		applied, failedIDs = h.repo.DeactivateProducts(tenantID, productIDs)
	} else {
		applied, failedIDs = h.repo.DeleteProducts(tenantID, productIDs)
	}

	for _, id := range productIDs {
		key := models.SyncActionKey(tenantID, actionType, id.String(), "disposition")
		failed := false
		for _, f := range failedIDs {
			if f == id.String() {
				failed = true
				break
			}
		}
		if failed {
			middleware.RecordSyncAction(string(actionType), false)
			_ = h.outbox.MarkFailed(key, fmt.Errorf("disposition did not apply"), 1)
		} else {
			h.markApplied(key, actionType)
		}
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"action":    req.Action,
		"applied":   applied,
		"failed":    len(failedIDs),
	}).Info("Missing-product disposition applied")

	c.JSON(http.StatusOK, models.MissingProductsResult{
		Success:      len(failedIDs) == 0,
		Action:       string(req.Action),
		AppliedCount: applied,
		FailedIDs:    failedIDs,
	})
}
