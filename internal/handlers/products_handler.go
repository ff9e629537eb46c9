package handlers

import (
	"encoding/csv"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"catalog-service/internal/importer"
	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type ProductsHandler struct {
	repo            *repository.ProductsRepository
	defaultPageSize int
	maxPageSize     int
}

func NewProductsHandler(repo *repository.ProductsRepository, defaultPageSize, maxPageSize int) *ProductsHandler {
	return &ProductsHandler{
		repo:            repo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateProduct creates a new catalog product
// POST /api/v1/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	if req.MRP.IsNegative() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "MRP must be greater than or equal to 0",
				Field:   "mrp",
			},
		})
		return
	}
	if !models.IsAllowedCurrency(req.Currency) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Currency is not supported",
				Field:   "currency",
			},
		})
		return
	}

	exists, err := h.repo.SKUExistsForTenant(tenantID, req.SKU)
	if err == nil && exists {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DUPLICATE_SKU",
				Message: "A product with this SKU already exists",
				Field:   "sku",
			},
		})
		return
	}

	product := &models.CatalogProduct{
		SKU:         req.SKU,
		PricelistID: req.PricelistID,
		Name:        req.Name,
		Description: req.Description,
		UOMCode:     req.UOMCode,
		UOMValue:    req.UOMValue,
		IsBox:       req.IsBox,
		IsCombo:     req.IsCombo,
		TaxRate1:    req.TaxRate1,
		TaxRate2:    req.TaxRate2,
		MRP:         req.MRP,
		Currency:    req.Currency,
		Remark:      req.Remark,
		Status:      models.ProductStatusActive,
		CreatedBy:   optional(userID),
		UpdatedBy:   optional(userID),
	}
	if req.CategoryID != nil {
		if id, err := uuid.Parse(*req.CategoryID); err == nil {
			product.CategoryID = &id
		}
	}
	if req.GroupID != nil {
		if id, err := uuid.Parse(*req.GroupID); err == nil {
			product.GroupID = &id
		}
	}

	if err := h.repo.CreateProduct(tenantID, product); err != nil {
		logrus.WithError(err).Error("Failed to create product")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATION_FAILED",
				Message: "Failed to create product",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// GetProducts lists catalog products with filters, sorting, and pagination
// GET /api/v1/products
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	filter := h.filterFromQuery(c)

	products, total, err := h.repo.GetProducts(tenantID, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to list products")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "QUERY_FAILED",
				Message: "Failed to retrieve products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: paginationInfo(filter.Page, filter.Limit, total),
	})
}

func (h *ProductsHandler) filterFromQuery(c *gin.Context) *models.ProductFilter {
	filter := &models.ProductFilter{
		Page:  1,
		Limit: h.defaultPageSize,
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
		if filter.Limit > h.maxPageSize {
			filter.Limit = h.maxPageSize
		}
	}

	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if status := c.Query("status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			filter.Status = append(filter.Status, models.ProductStatus(strings.TrimSpace(s)))
		}
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		filter.CategoryID = &categoryID
	}
	if groupID := c.Query("groupId"); groupID != "" {
		filter.GroupID = &groupID
	}
	if pricelistID := c.Query("pricelistId"); pricelistID != "" {
		filter.PricelistID = &pricelistID
	}
	if currency := c.Query("currency"); currency != "" {
		filter.Currency = &currency
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		filter.SortBy = &sortBy
	}
	if sortOrder := c.Query("sortOrder"); sortOrder != "" {
		filter.SortOrder = &sortOrder
	}

	return filter
}

// GetProduct retrieves a single product
// GET /api/v1/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID)
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// UpdateProduct updates a catalog product
// PUT /api/v1/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	updates, err := updatesFromRequest(&req, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "No fields to update",
			},
		})
		return
	}

	if err := h.repo.UpdateProduct(tenantID, productID, updates); err != nil {
		respondProductLookupError(c, err)
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID)
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// UpdateProductField applies a single inline cell edit from the product table
// PATCH /api/v1/products/:id/field
func (h *ProductsHandler) UpdateProductField(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	userID := middleware.GetUserID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req models.UpdateProductFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	uid := optional(userID)
	if err := h.repo.UpdateProductField(tenantID, productID, req.Field, req.Value, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondProductLookupError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
				Field:   req.Field,
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID)
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// UpdateProductStatus updates product lifecycle status
// PATCH /api/v1/products/:id/status
func (h *ProductsHandler) UpdateProductStatus(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req models.UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	switch req.Status {
	case models.ProductStatusActive, models.ProductStatusInactive,
		models.ProductStatusDraft, models.ProductStatusArchived:
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid product status",
				Field:   "status",
			},
		})
		return
	}

	if err := h.repo.UpdateProductStatus(tenantID, productID, req.Status); err != nil {
		respondProductLookupError(c, err)
		return
	}

	product, err := h.repo.GetProductByID(tenantID, productID)
	if err != nil {
		respondProductLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// DeleteProduct soft deletes a product
// DELETE /api/v1/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	if _, err := h.repo.GetProductByID(tenantID, productID); err != nil {
		respondProductLookupError(c, err)
		return
	}

	if err := h.repo.DeleteProduct(tenantID, productID); err != nil {
		logrus.WithError(err).Error("Failed to delete product")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELETION_FAILED",
				Message: "Failed to delete product",
			},
		})
		return
	}

	msg := "Product deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &msg,
	})
}

// ExportProducts downloads the filtered catalog as CSV or XLSX
// GET /api/v1/products/export
func (h *ProductsHandler) ExportProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Format must be csv or xlsx",
			},
		})
		return
	}

	filter := h.filterFromQuery(c)

	all, err := collectAllPages(h.maxPageSize, func(page, limit int) ([]models.CatalogProduct, int64, error) {
		f := *filter
		f.Page = page
		f.Limit = limit
		return h.repo.GetProducts(tenantID, &f)
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to export products")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EXPORT_FAILED",
				Message: "Failed to export products",
			},
		})
		return
	}

	categoryNames, groupNames := h.taxonomyNames(tenantID)

	if format == "csv" {
		h.exportCSV(c, all, categoryNames, groupNames)
		return
	}
	h.exportXLSX(c, all, categoryNames, groupNames)
}

// taxonomyNames resolves category and group id -> name maps for export,
// paging through the full taxonomy. Lookup failures degrade to blank names
// rather than failing the export.
func (h *ProductsHandler) taxonomyNames(tenantID string) (map[uuid.UUID]string, map[uuid.UUID]string) {
	categoryNames := make(map[uuid.UUID]string)
	groupNames := make(map[uuid.UUID]string)

	categories, err := collectAllPages(h.maxPageSize, func(page, limit int) ([]models.Category, int64, error) {
		return h.repo.GetCategories(tenantID, page, limit)
	})
	if err == nil {
		for _, cat := range categories {
			categoryNames[cat.ID] = cat.Name
		}
	}

	groups, err := collectAllPages(h.maxPageSize, func(page, limit int) ([]models.ProductGroup, int64, error) {
		return h.repo.GetGroups(tenantID, page, limit)
	})
	if err == nil {
		for _, g := range groups {
			groupNames[g.ID] = g.Name
		}
	}
	return categoryNames, groupNames
}

func exportNames(p models.CatalogProduct, categoryNames, groupNames map[uuid.UUID]string) (string, string) {
	categoryName := ""
	if p.CategoryID != nil {
		categoryName = categoryNames[*p.CategoryID]
	}
	groupName := ""
	if p.GroupID != nil {
		groupName = groupNames[*p.GroupID]
	}
	return categoryName, groupName
}

func (h *ProductsHandler) exportCSV(c *gin.Context, products []models.CatalogProduct, categoryNames, groupNames map[uuid.UUID]string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_export.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(importer.CatalogExportHeader())
	for _, p := range products {
		categoryName, groupName := exportNames(p, categoryNames, groupNames)
		writer.Write(importer.CatalogExportRow(p, categoryName, groupName))
	}
}

func (h *ProductsHandler) exportXLSX(c *gin.Context, products []models.CatalogProduct, categoryNames, groupNames map[uuid.UUID]string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	header := importer.CatalogExportHeader()
	for i, col := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	for rowIdx, p := range products {
		categoryName, groupName := exportNames(p, categoryNames, groupNames)
		for colIdx, value := range importer.CatalogExportRow(p, categoryName, groupName) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_export.xlsx")
	f.Write(c.Writer)
}

// updatesFromRequest builds a column update map from the partial update
// request, validating the typed fields.
func updatesFromRequest(req *models.UpdateProductRequest, userID string) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if req.PricelistID != nil {
		updates["pricelist_id"] = *req.PricelistID
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, errors.New("name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.UOMCode != nil {
		updates["uom_code"] = *req.UOMCode
	}
	if req.UOMValue != nil {
		updates["uom_value"] = *req.UOMValue
	}
	if req.IsBox != nil {
		updates["is_box"] = *req.IsBox
	}
	if req.IsCombo != nil {
		updates["is_combo"] = *req.IsCombo
	}
	if req.TaxRate1 != nil {
		updates["tax_rate1"] = *req.TaxRate1
	}
	if req.TaxRate2 != nil {
		updates["tax_rate2"] = *req.TaxRate2
	}
	if req.MRP != nil {
		if req.MRP.LessThan(decimal.Zero) {
			return nil, errors.New("MRP must be greater than or equal to 0")
		}
		updates["mrp"] = *req.MRP
	}
	if req.Currency != nil {
		if !models.IsAllowedCurrency(*req.Currency) {
			return nil, errors.New("currency is not supported")
		}
		updates["currency"] = *req.Currency
	}
	if req.Remark != nil {
		updates["remark"] = *req.Remark
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, errors.New("categoryId must be a valid UUID")
		}
		updates["category_id"] = id
	}
	if req.GroupID != nil {
		id, err := uuid.Parse(*req.GroupID)
		if err != nil {
			return nil, errors.New("groupId must be a valid UUID")
		}
		updates["group_id"] = id
	}

	if len(updates) > 0 && userID != "" {
		updates["updated_by"] = userID
	}
	return updates, nil
}

func parseProductID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: "Product ID must be a valid UUID",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}

func respondProductLookupError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Product not found",
			},
		})
		return
	}
	logrus.WithError(err).Error("Product lookup failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "QUERY_FAILED",
			Message: "Failed to retrieve product",
		},
	})
}

func paginationInfo(page, limit int, total int64) *models.PaginationInfo {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &models.PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
