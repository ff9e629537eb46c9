package handlers

import (
	"catalog-service/internal/models"
)

// productFromRow builds a new catalog product from an accepted insert row.
func productFromRow(row models.ImportedRow, userID string) *models.CatalogProduct {
	return &models.CatalogProduct{
		SKU:         row.SKU,
		PricelistID: row.PricelistID,
		Name:        row.Name,
		Description: optional(row.Description),
		UOMCode:     optional(row.UOMCode),
		UOMValue:    optional(row.UOMValue),
		IsBox:       row.IsBox,
		IsCombo:     row.IsCombo,
		TaxRate1:    row.TaxRate1,
		TaxRate2:    row.TaxRate2,
		MRP:         row.MRP,
		Currency:    row.Currency,
		Remark:      optional(row.Remark),
		Status:      models.ProductStatusActive,
		CreatedBy:   optional(userID),
		UpdatedBy:   optional(userID),
	}
}

// updatesFromRow builds the column update map for an accepted update row.
// Every import column overwrites the stored value; the file is the source of
// truth for the fields it carries.
func updatesFromRow(row models.ImportedRow, userID string) map[string]interface{} {
	updates := map[string]interface{}{
		"pricelist_id": row.PricelistID,
		"name":         row.Name,
		"is_box":       row.IsBox,
		"is_combo":     row.IsCombo,
		"tax_rate1":    row.TaxRate1,
		"tax_rate2":    row.TaxRate2,
		"mrp":          row.MRP,
		"currency":     row.Currency,
		"status":       models.ProductStatusActive,
	}
	if row.Description != "" {
		updates["description"] = row.Description
	}
	if row.UOMCode != "" {
		updates["uom_code"] = row.UOMCode
	}
	if row.UOMValue != "" {
		updates["uom_value"] = row.UOMValue
	}
	if row.Remark != "" {
		updates["remark"] = row.Remark
	}
	if userID != "" {
		updates["updated_by"] = userID
	}
	return updates
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
