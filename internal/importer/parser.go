// Package importer implements the pricelist import pipeline: file parsing,
// per-row validation, batch aggregation, the sync gate, and report
// formatting. Everything here is a pure computation over already-materialized
// inputs; persistence and transport live with the callers.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
)

// Structural parse failures. Row-content problems never surface as errors;
// they are encoded in verdicts by the validator.
var (
	ErrEmptyFile      = errors.New("file contains no data rows")
	ErrMissingColumns = errors.New("file is missing required columns")
)

// requiredColumns must all be present in the header row.
var requiredColumns = []string{"sku", "pricelistid", "name", "mrp", "currency"}

// ParseCSV parses an uploaded CSV pricelist into typed rows. The first line
// is the header; recognized names map case-insensitively to ImportedRow
// fields. Returns a structural error for an empty file or a missing required
// column — never for bad cell values.
func ParseCSV(file io.Reader) ([]models.ImportedRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	if err := checkRequiredColumns(headers); err != nil {
		return nil, err
	}

	var rows []models.ImportedRow
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}
		lineNum++
		rows = append(rows, rowFromRecord(headers, record, lineNum))
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// ParseXLSX parses an uploaded Excel pricelist into typed rows. Prefers a
// sheet named "Products" and falls back to the first sheet.
func ParseXLSX(file io.Reader) ([]models.ImportedRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrEmptyFile
	}

	headers := excelRows[0]
	normalizeHeaders(headers)
	if err := checkRequiredColumns(headers); err != nil {
		return nil, err
	}

	rows := make([]models.ImportedRow, 0, len(excelRows)-1)
	for rowIdx, excelRow := range excelRows[1:] {
		rows = append(rows, rowFromRecord(headers, excelRow, rowIdx+2))
	}
	return rows, nil
}

// normalizeHeaders lowercases headers and strips the required marker the
// template generator appends.
func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}

func checkRequiredColumns(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// rowFromRecord maps one value record onto a typed ImportedRow. Cell values
// are trimmed; a malformed MRP is carried with MRPValid=false so the
// validator fails it against the non-negative rule instead of the parser
// guessing a value.
func rowFromRecord(headers []string, record []string, rowNumber int) models.ImportedRow {
	cells := make(map[string]string, len(headers))
	for i, value := range record {
		if i < len(headers) {
			cells[headers[i]] = strings.TrimSpace(value)
		}
	}

	mrp, mrpValid := parseDecimal(cells["mrp"])

	return models.ImportedRow{
		SKU:         cells["sku"],
		PricelistID: cells["pricelistid"],
		Name:        cells["name"],
		Description: cells["description"],
		UOMCode:     cells["uomcode"],
		UOMValue:    cells["uomvalue"],
		IsBox:       parseFlag(cells["isbox"]),
		IsCombo:     parseFlag(cells["iscombo"]),
		TaxRate1:    parseDecimalOrZero(cells["taxrate1"]),
		TaxRate2:    parseDecimalOrZero(cells["taxrate2"]),
		MRP:         mrp,
		MRPValid:    mrpValid,
		Currency:    cells["currency"],
		Remark:      cells["remark"],
		RowNumber:   rowNumber,
	}
}

func parseDecimal(value string) (decimal.Decimal, bool) {
	if value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseDecimalOrZero(value string) decimal.Decimal {
	d, ok := parseDecimal(value)
	if !ok {
		return decimal.Zero
	}
	return d
}

func parseFlag(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
