package importer

import (
	"strconv"
	"strings"
	"time"

	"catalog-service/internal/models"
)

// reportHeader is the fixed column order of the validation report.
var reportHeader = []string{
	"rowNumber", "status", "action", "sku", "pricelistId",
	"name", "mrp", "currency", "remark",
}

// FormatReport renders validated rows as downloadable CSV text, one line per
// row in original file order. Fields are wrapped in double quotes without
// escaping embedded quotes; the report is meant for spreadsheet review of
// identifiers and remarks, none of which carry quote characters.
func FormatReport(rows []models.ValidatedRow) string {
	var b strings.Builder
	writeReportLine(&b, reportHeader)
	for _, row := range rows {
		writeReportLine(&b, []string{
			strconv.Itoa(row.RowNumber),
			string(row.Verdict.Status),
			string(row.Verdict.Action),
			row.SKU,
			row.PricelistID,
			row.Name,
			row.MRP.String(),
			row.Currency,
			row.Verdict.Remark,
		})
	}
	return b.String()
}

func writeReportLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(f)
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// CatalogExportHeader returns the fixed 18-column header of the catalog
// export.
func CatalogExportHeader() []string {
	return []string{
		"sku", "pricelistId", "name", "description", "uomCode", "uomValue",
		"isBox", "isCombo", "taxRate1", "taxRate2", "mrp", "currency",
		"status", "category", "group", "createdAt", "updatedAt", "updatedBy",
	}
}

// CatalogExportRow renders one catalog product as an export record in
// CatalogExportHeader order. Category and group names are resolved by the
// caller so the formatter stays free of lookups.
func CatalogExportRow(p models.CatalogProduct, categoryName, groupName string) []string {
	return []string{
		p.SKU,
		p.PricelistID,
		p.Name,
		strOrEmpty(p.Description),
		strOrEmpty(p.UOMCode),
		strOrEmpty(p.UOMValue),
		boolStr(p.IsBox),
		boolStr(p.IsCombo),
		p.TaxRate1.String(),
		p.TaxRate2.String(),
		p.MRP.String(),
		p.Currency,
		string(p.Status),
		categoryName,
		groupName,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
		strOrEmpty(p.UpdatedBy),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
