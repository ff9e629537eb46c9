package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL  = 5 * time.Minute  // Single product cache
	CategoryCacheTTL = 30 * time.Minute // Categories and groups rarely change
)

// editableColumns maps inline-editable JSON field names to their DB columns.
// Anything not listed here is rejected by UpdateProductField.
var editableColumns = map[string]string{
	"pricelistId": "pricelist_id",
	"name":        "name",
	"description": "description",
	"uomCode":     "uom_code",
	"uomValue":    "uom_value",
	"isBox":       "is_box",
	"isCombo":     "is_combo",
	"taxRate1":    "tax_rate1",
	"taxRate2":    "tax_rate2",
	"mrp":         "mrp",
	"currency":    "currency",
	"remark":      "remark",
}

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redisClient,
	}
}

// invalidateProductCaches drops the cached copy of a product after a write.
func (r *ProductsRepository) invalidateProductCaches(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, productCacheKey(tenantID, productID)).Err()
}

func productCacheKey(tenantID string, productID uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s:%s", tenantID, productID.String())
}

// Product CRUD Operations

// CreateProduct creates a new catalog product
func (r *ProductsRepository) CreateProduct(tenantID string, product *models.CatalogProduct) error {
	product.TenantID = tenantID
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}

	return r.db.Create(product).Error
}

// GetProductByID retrieves a product by internal id with caching
func (r *ProductsRepository) GetProductByID(tenantID string, productID uuid.UUID) (*models.CatalogProduct, error) {
	ctx := context.Background()
	cacheKey := productCacheKey(tenantID, productID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.CatalogProduct
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.CatalogProduct
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).First(&product).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// GetProductBySKU retrieves a product by its tenant-scoped business identifier
func (r *ProductsRepository) GetProductBySKU(tenantID, sku string) (*models.CatalogProduct, error) {
	var product models.CatalogProduct
	if err := r.db.Where("tenant_id = ? AND sku = ?", tenantID, sku).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetCatalogSnapshot returns every non-deleted product for a tenant. The
// import pipeline validates against this snapshot; it is taken once per run
// and never re-checked after sync begins.
func (r *ProductsRepository) GetCatalogSnapshot(tenantID string) ([]models.CatalogProduct, error) {
	var products []models.CatalogProduct
	if err := r.db.Where("tenant_id = ?", tenantID).Order("sku ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct updates a product and invalidates its cache
func (r *ProductsRepository) UpdateProduct(tenantID string, productID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	err := r.db.Model(&models.CatalogProduct{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates).Error

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID)
	}
	return err
}

// UpdateProductBySKU updates the product matching the business identifier.
// Used by the confirmed sync step for rows classified as updates.
func (r *ProductsRepository) UpdateProductBySKU(tenantID, sku string, updates map[string]interface{}) (*models.CatalogProduct, error) {
	var existing models.CatalogProduct
	if err := r.db.Where("tenant_id = ? AND sku = ?", tenantID, sku).First(&existing).Error; err != nil {
		return nil, err
	}

	updates["updated_at"] = time.Now()
	if err := r.db.Model(&models.CatalogProduct{}).
		Where("tenant_id = ? AND id = ?", tenantID, existing.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	r.invalidateProductCaches(context.Background(), tenantID, existing.ID)
	return &existing, nil
}

// UpdateProductField applies a single inline cell edit. The field must be in
// the editable allow-list; raw values are coerced to the column type.
func (r *ProductsRepository) UpdateProductField(tenantID string, productID uuid.UUID, field, raw string, updatedBy *string) error {
	column, ok := editableColumns[field]
	if !ok {
		return fmt.Errorf("field %q is not editable", field)
	}

	value, err := coerceFieldValue(field, raw)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		column:       value,
		"updated_at": time.Now(),
	}
	if updatedBy != nil {
		updates["updated_by"] = *updatedBy
	}

	result := r.db.Model(&models.CatalogProduct{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateProductCaches(context.Background(), tenantID, productID)
	return nil
}

// coerceFieldValue converts a raw cell value to the typed column value.
func coerceFieldValue(field, raw string) (interface{}, error) {
	switch field {
	case "mrp", "taxRate1", "taxRate2":
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("field %q requires a numeric value", field)
		}
		if field == "mrp" && d.IsNegative() {
			return nil, fmt.Errorf("mrp must be greater than or equal to 0")
		}
		return d, nil
	case "isBox", "isCombo":
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes", "y":
			return true, nil
		case "false", "0", "no", "n", "":
			return false, nil
		}
		return nil, fmt.Errorf("field %q requires a boolean value", field)
	case "currency":
		if !models.IsAllowedCurrency(raw) {
			return nil, fmt.Errorf("currency %q is not supported", raw)
		}
		return raw, nil
	case "name", "pricelistId":
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("field %q cannot be empty", field)
		}
		return strings.TrimSpace(raw), nil
	default:
		return raw, nil
	}
}

// UpdateProductStatus updates product status
func (r *ProductsRepository) UpdateProductStatus(tenantID string, productID uuid.UUID, status models.ProductStatus) error {
	return r.UpdateProduct(tenantID, productID, map[string]interface{}{
		"status": status,
	})
}

// DeleteProduct soft deletes a product
func (r *ProductsRepository) DeleteProduct(tenantID string, productID uuid.UUID) error {
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).
		Delete(&models.CatalogProduct{}).Error

	if err == nil {
		r.invalidateProductCaches(context.Background(), tenantID, productID)
	}
	return err
}

// GetProducts retrieves products with filters, sorting, and pagination
func (r *ProductsRepository) GetProducts(tenantID string, filter *models.ProductFilter) ([]models.CatalogProduct, int64, error) {
	var products []models.CatalogProduct
	var total int64

	query := r.db.Model(&models.CatalogProduct{}).Where("tenant_id = ?", tenantID)
	query = applyProductFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyProductSort(query, filter)

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Offset(offset).Limit(filter.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// sortableColumns restricts sortBy to real columns; anything else falls back
// to creation order.
var sortableColumns = map[string]string{
	"sku":         "sku",
	"name":        "name",
	"mrp":         "mrp",
	"currency":    "currency",
	"status":      "status",
	"pricelistId": "pricelist_id",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

func applyProductSort(query *gorm.DB, filter *models.ProductFilter) *gorm.DB {
	if filter.SortBy != nil {
		if column, ok := sortableColumns[*filter.SortBy]; ok {
			order := "ASC"
			if filter.SortOrder != nil && strings.EqualFold(*filter.SortOrder, "desc") {
				order = "DESC"
			}
			return query.Order(fmt.Sprintf("%s %s", column, order))
		}
	}
	return query.Order("created_at DESC")
}

func applyProductFilters(query *gorm.DB, filter *models.ProductFilter) *gorm.DB {
	if filter.Search != nil && *filter.Search != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", term, term)
	}
	if len(filter.Status) > 0 {
		query = query.Where("status IN ?", filter.Status)
	}
	if filter.CategoryID != nil && *filter.CategoryID != "" {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.GroupID != nil && *filter.GroupID != "" {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.PricelistID != nil && *filter.PricelistID != "" {
		query = query.Where("pricelist_id = ?", *filter.PricelistID)
	}
	if filter.Currency != nil && *filter.Currency != "" {
		query = query.Where("currency = ?", *filter.Currency)
	}
	return query
}

// SKUExistsForTenant checks if a business identifier already exists for a tenant
func (r *ProductsRepository) SKUExistsForTenant(tenantID, sku string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CatalogProduct{}).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		Count(&count).Error
	return count > 0, err
}

// Missing-product dispositions

// DeactivateProducts marks the given products INACTIVE. Applied per row;
// products that fail or don't exist for the tenant are reported, not fatal.
func (r *ProductsRepository) DeactivateProducts(tenantID string, productIDs []uuid.UUID) (int, []string) {
	applied := 0
	failedIDs := make([]string, 0)

	for _, id := range productIDs {
		result := r.db.Model(&models.CatalogProduct{}).
			Where("tenant_id = ? AND id = ?", tenantID, id).
			Updates(map[string]interface{}{
				"status":     models.ProductStatusInactive,
				"updated_at": time.Now(),
			})
		if result.Error != nil || result.RowsAffected == 0 {
			failedIDs = append(failedIDs, id.String())
			continue
		}
		r.invalidateProductCaches(context.Background(), tenantID, id)
		applied++
	}

	return applied, failedIDs
}

// DeleteProducts soft deletes the given products per row.
func (r *ProductsRepository) DeleteProducts(tenantID string, productIDs []uuid.UUID) (int, []string) {
	applied := 0
	failedIDs := make([]string, 0)

	for _, id := range productIDs {
		result := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&models.CatalogProduct{})
		if result.Error != nil || result.RowsAffected == 0 {
			failedIDs = append(failedIDs, id.String())
			continue
		}
		r.invalidateProductCaches(context.Background(), tenantID, id)
		applied++
	}

	return applied, failedIDs
}

// Category Operations

// CreateCategory creates a new category
func (r *ProductsRepository) CreateCategory(tenantID string, category *models.Category) error {
	category.TenantID = tenantID
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	if category.Slug == "" {
		category.Slug = generateSlug(category.Name)
	}
	return r.db.Create(category).Error
}

// GetCategories retrieves categories with pagination
func (r *ProductsRepository) GetCategories(tenantID string, page, limit int) ([]models.Category, int64, error) {
	var categories []models.Category
	var total int64

	query := r.db.Model(&models.Category{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("position ASC, name ASC").Offset(offset).Limit(limit).Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// GetCategoryByID retrieves a category by ID
func (r *ProductsRepository) GetCategoryByID(tenantID string, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, categoryID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory updates a category
func (r *ProductsRepository) UpdateCategory(tenantID string, categoryID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Category{}).
		Where("tenant_id = ? AND id = ?", tenantID, categoryID).
		Updates(updates).Error
}

// DeleteCategory soft deletes a category
func (r *ProductsRepository) DeleteCategory(tenantID string, categoryID uuid.UUID) error {
	return r.db.Where("tenant_id = ? AND id = ?", tenantID, categoryID).
		Delete(&models.Category{}).Error
}

// Group Operations

// CreateGroup creates a new product group
func (r *ProductsRepository) CreateGroup(tenantID string, group *models.ProductGroup) error {
	group.TenantID = tenantID
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()
	if group.Slug == "" {
		group.Slug = generateSlug(group.Name)
	}
	return r.db.Create(group).Error
}

// GetGroups retrieves product groups with pagination
func (r *ProductsRepository) GetGroups(tenantID string, page, limit int) ([]models.ProductGroup, int64, error) {
	var groups []models.ProductGroup
	var total int64

	query := r.db.Model(&models.ProductGroup{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("position ASC, name ASC").Offset(offset).Limit(limit).Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

// GetGroupByID retrieves a product group by ID
func (r *ProductsRepository) GetGroupByID(tenantID string, groupID uuid.UUID) (*models.ProductGroup, error) {
	var group models.ProductGroup
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, groupID).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup updates a product group
func (r *ProductsRepository) UpdateGroup(tenantID string, groupID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.ProductGroup{}).
		Where("tenant_id = ? AND id = ?", tenantID, groupID).
		Updates(updates).Error
}

// DeleteGroup soft deletes a product group
func (r *ProductsRepository) DeleteGroup(tenantID string, groupID uuid.UUID) error {
	return r.db.Where("tenant_id = ? AND id = ?", tenantID, groupID).
		Delete(&models.ProductGroup{}).Error
}

// generateSlug creates a URL-friendly slug from a name
func generateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
