package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"catalog-service/internal/middleware"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// TaxonomyHandler serves categories and product groups. Both are thin
// organizational layers over the catalog; products reference them by id.
type TaxonomyHandler struct {
	repo            *repository.ProductsRepository
	defaultPageSize int
	maxPageSize     int
}

func NewTaxonomyHandler(repo *repository.ProductsRepository, defaultPageSize, maxPageSize int) *TaxonomyHandler {
	return &TaxonomyHandler{
		repo:            repo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (h *TaxonomyHandler) pageParams(c *gin.Context) (int, int) {
	page := 1
	limit := h.defaultPageSize
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
		if limit > h.maxPageSize {
			limit = h.maxPageSize
		}
	}
	return page, limit
}

// CreateCategory creates a new category
// POST /api/v1/categories
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Position != nil {
		category.Position = *req.Position
	}

	if err := h.repo.CreateCategory(tenantID, category); err != nil {
		logrus.WithError(err).Error("Failed to create category")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATION_FAILED",
				Message: "Failed to create category",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{
		Success: true,
		Data:    category,
	})
}

// GetCategories lists categories
// GET /api/v1/categories
func (h *TaxonomyHandler) GetCategories(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	page, limit := h.pageParams(c)

	categories, total, err := h.repo.GetCategories(tenantID, page, limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "QUERY_FAILED",
				Message: "Failed to retrieve categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{
		Success:    true,
		Data:       categories,
		Pagination: paginationInfo(page, limit, total),
	})
}

// GetCategory retrieves a single category
// GET /api/v1/categories/:id
func (h *TaxonomyHandler) GetCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	categoryID, ok := parseTaxonomyID(c, "Category")
	if !ok {
		return
	}

	category, err := h.repo.GetCategoryByID(tenantID, categoryID)
	if err != nil {
		respondTaxonomyError(c, err, "category")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{
		Success: true,
		Data:    category,
	})
}

// UpdateCategory updates a category
// PUT /api/v1/categories/:id
func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	categoryID, ok := parseTaxonomyID(c, "Category")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		respondValidationError(c, "No fields to update")
		return
	}

	if err := h.repo.UpdateCategory(tenantID, categoryID, updates); err != nil {
		respondTaxonomyError(c, err, "category")
		return
	}

	category, err := h.repo.GetCategoryByID(tenantID, categoryID)
	if err != nil {
		respondTaxonomyError(c, err, "category")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{
		Success: true,
		Data:    category,
	})
}

// DeleteCategory soft deletes a category
// DELETE /api/v1/categories/:id
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	categoryID, ok := parseTaxonomyID(c, "Category")
	if !ok {
		return
	}

	if _, err := h.repo.GetCategoryByID(tenantID, categoryID); err != nil {
		respondTaxonomyError(c, err, "category")
		return
	}

	if err := h.repo.DeleteCategory(tenantID, categoryID); err != nil {
		respondTaxonomyError(c, err, "category")
		return
	}

	msg := "Category deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &msg,
	})
}

// CreateGroup creates a new product group
// POST /api/v1/groups
func (h *TaxonomyHandler) CreateGroup(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	group := &models.ProductGroup{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Slug != nil {
		group.Slug = *req.Slug
	}
	if req.Position != nil {
		group.Position = *req.Position
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondValidationError(c, "categoryId must be a valid UUID")
			return
		}
		group.CategoryID = &id
	}

	if err := h.repo.CreateGroup(tenantID, group); err != nil {
		logrus.WithError(err).Error("Failed to create group")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATION_FAILED",
				Message: "Failed to create group",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.GroupResponse{
		Success: true,
		Data:    group,
	})
}

// GetGroups lists product groups
// GET /api/v1/groups
func (h *TaxonomyHandler) GetGroups(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	page, limit := h.pageParams(c)

	groups, total, err := h.repo.GetGroups(tenantID, page, limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list groups")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "QUERY_FAILED",
				Message: "Failed to retrieve groups",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.GroupListResponse{
		Success:    true,
		Data:       groups,
		Pagination: paginationInfo(page, limit, total),
	})
}

// GetGroup retrieves a single product group
// GET /api/v1/groups/:id
func (h *TaxonomyHandler) GetGroup(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	groupID, ok := parseTaxonomyID(c, "Group")
	if !ok {
		return
	}

	group, err := h.repo.GetGroupByID(tenantID, groupID)
	if err != nil {
		respondTaxonomyError(c, err, "group")
		return
	}

	c.JSON(http.StatusOK, models.GroupResponse{
		Success: true,
		Data:    group,
	})
}

// UpdateGroup updates a product group
// PUT /api/v1/groups/:id
func (h *TaxonomyHandler) UpdateGroup(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	groupID, ok := parseTaxonomyID(c, "Group")
	if !ok {
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondValidationError(c, "categoryId must be a valid UUID")
			return
		}
		updates["category_id"] = id
	}
	if len(updates) == 0 {
		respondValidationError(c, "No fields to update")
		return
	}

	if err := h.repo.UpdateGroup(tenantID, groupID, updates); err != nil {
		respondTaxonomyError(c, err, "group")
		return
	}

	group, err := h.repo.GetGroupByID(tenantID, groupID)
	if err != nil {
		respondTaxonomyError(c, err, "group")
		return
	}

	c.JSON(http.StatusOK, models.GroupResponse{
		Success: true,
		Data:    group,
	})
}

// DeleteGroup soft deletes a product group
// DELETE /api/v1/groups/:id
func (h *TaxonomyHandler) DeleteGroup(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	groupID, ok := parseTaxonomyID(c, "Group")
	if !ok {
		return
	}

	if _, err := h.repo.GetGroupByID(tenantID, groupID); err != nil {
		respondTaxonomyError(c, err, "group")
		return
	}

	if err := h.repo.DeleteGroup(tenantID, groupID); err != nil {
		respondTaxonomyError(c, err, "group")
		return
	}

	msg := "Group deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: &msg,
	})
}

func parseTaxonomyID(c *gin.Context, kind string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ID",
				Message: kind + " ID must be a valid UUID",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}

func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "VALIDATION_ERROR",
			Message: message,
		},
	})
}

func respondTaxonomyError(c *gin.Context, err error, kind string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "The requested " + kind + " was not found",
			},
		})
		return
	}
	logrus.WithError(err).Error("Taxonomy operation failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "QUERY_FAILED",
			Message: "Operation failed",
		},
	})
}
