package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus represents the lifecycle status of a catalog product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// AllowedCurrencies is the fixed currency allow-list for catalog prices.
// Import rows priced in any other currency are rejected.
var AllowedCurrencies = []string{"Rs", "USD"}

// IsAllowedCurrency reports whether code is in the currency allow-list.
func IsAllowedCurrency(code string) bool {
	for _, c := range AllowedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// CatalogProduct represents a SKU in the tenant's catalog.
// The business identifier (SKU) is the tenant-defined external key and is
// unique per tenant; the internal record id is the UUID primary key.
// Composite indexes on tenant_id keep multi-tenant queries fast.
type CatalogProduct struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string          `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;index:idx_products_tenant_status;index:idx_products_tenant_sku,unique"`
	SKU         string          `json:"sku" gorm:"not null;index:idx_products_tenant_sku,unique"`
	PricelistID string          `json:"pricelistId" gorm:"not null;index"`
	Name        string          `json:"name" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	UOMCode     *string         `json:"uomCode,omitempty"`
	UOMValue    *string         `json:"uomValue,omitempty"`
	IsBox       bool            `json:"isBox" gorm:"not null;default:false"`
	IsCombo     bool            `json:"isCombo" gorm:"not null;default:false"`
	TaxRate1    decimal.Decimal `json:"taxRate1" gorm:"type:numeric(6,3);default:0"`
	TaxRate2    decimal.Decimal `json:"taxRate2" gorm:"type:numeric(6,3);default:0"`
	MRP         decimal.Decimal `json:"mrp" gorm:"type:numeric(14,2);not null"`
	Currency    string          `json:"currency" gorm:"not null"`
	Remark      *string         `json:"remark,omitempty"`
	Status      ProductStatus   `json:"status" gorm:"not null;default:'ACTIVE';index:idx_products_tenant_status"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty" gorm:"type:uuid;index"`
	GroupID     *uuid.UUID      `json:"groupId,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy   *string         `json:"createdBy,omitempty"`
	UpdatedBy   *string         `json:"updatedBy,omitempty"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string          `json:"tenantId" gorm:"column:tenant_id;not null;index"`
	Name        string          `json:"name" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	Position    int             `json:"position" gorm:"not null;default:1"`
	IsActive    *bool           `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"column:deleted_at;index"`
}

// ProductGroup represents a group of SKUs inside a category.
// Groups map to pricelist sections in the import file.
type ProductGroup struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    string          `json:"tenantId" gorm:"column:tenant_id;not null;index"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty" gorm:"type:uuid;index"`
	Name        string          `json:"name" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"not null"`
	Description *string         `json:"description,omitempty"`
	Position    int             `json:"position" gorm:"not null;default:1"`
	IsActive    *bool           `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"column:updated_at"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"column:deleted_at;index"`
}

// CreateProductRequest represents a request to create a new catalog product
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	PricelistID string          `json:"pricelistId" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description,omitempty"`
	UOMCode     *string         `json:"uomCode,omitempty"`
	UOMValue    *string         `json:"uomValue,omitempty"`
	IsBox       bool            `json:"isBox"`
	IsCombo     bool            `json:"isCombo"`
	TaxRate1    decimal.Decimal `json:"taxRate1"`
	TaxRate2    decimal.Decimal `json:"taxRate2"`
	MRP         decimal.Decimal `json:"mrp"`
	Currency    string          `json:"currency" binding:"required"`
	Remark      *string         `json:"remark,omitempty"`
	CategoryID  *string         `json:"categoryId,omitempty"`
	GroupID     *string         `json:"groupId,omitempty"`
}

// UpdateProductRequest represents a request to update a catalog product
type UpdateProductRequest struct {
	PricelistID *string          `json:"pricelistId,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	UOMCode     *string          `json:"uomCode,omitempty"`
	UOMValue    *string          `json:"uomValue,omitempty"`
	IsBox       *bool            `json:"isBox,omitempty"`
	IsCombo     *bool            `json:"isCombo,omitempty"`
	TaxRate1    *decimal.Decimal `json:"taxRate1,omitempty"`
	TaxRate2    *decimal.Decimal `json:"taxRate2,omitempty"`
	MRP         *decimal.Decimal `json:"mrp,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Remark      *string          `json:"remark,omitempty"`
	CategoryID  *string          `json:"categoryId,omitempty"`
	GroupID     *string          `json:"groupId,omitempty"`
}

// UpdateProductFieldRequest is the payload for inline cell edits: a single
// allow-listed column and its new raw value.
type UpdateProductFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// UpdateProductStatusRequest represents a request to update product status
type UpdateProductStatusRequest struct {
	Status ProductStatus `json:"status" binding:"required"`
	Notes  *string       `json:"notes,omitempty"`
}

// ProductFilter captures list filters, sorting, and pagination for the
// product table.
type ProductFilter struct {
	Search      *string         `json:"search,omitempty"`
	Status      []ProductStatus `json:"status,omitempty"`
	CategoryID  *string         `json:"categoryId,omitempty"`
	GroupID     *string         `json:"groupId,omitempty"`
	PricelistID *string         `json:"pricelistId,omitempty"`
	Currency    *string         `json:"currency,omitempty"`
	SortBy      *string         `json:"sortBy,omitempty"`
	SortOrder   *string         `json:"sortOrder,omitempty"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
}

// ExportProductsRequest represents a catalog export request
type ExportProductsRequest struct {
	Format  string         `json:"format" binding:"required"` // csv, xlsx
	Filters *ProductFilter `json:"filters,omitempty"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateGroupRequest represents a request to create a product group
type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        *string `json:"slug,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

// UpdateGroupRequest represents a request to update a product group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// Response types
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductResponse struct {
	Success bool            `json:"success"`
	Data    *CatalogProduct `json:"data"`
	Message *string         `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool             `json:"success"`
	Data       []CatalogProduct `json:"data"`
	Pagination *PaginationInfo  `json:"pagination"`
}

type CategoryResponse struct {
	Success bool      `json:"success"`
	Data    *Category `json:"data"`
	Message *string   `json:"message,omitempty"`
}

type CategoryListResponse struct {
	Success    bool            `json:"success"`
	Data       []Category      `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type GroupResponse struct {
	Success bool          `json:"success"`
	Data    *ProductGroup `json:"data"`
	Message *string       `json:"message,omitempty"`
}

type GroupListResponse struct {
	Success    bool            `json:"success"`
	Data       []ProductGroup  `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// TableName returns the table name for the CatalogProduct model
func (CatalogProduct) TableName() string {
	return "products"
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// TableName returns the table name for the ProductGroup model
func (ProductGroup) TableName() string {
	return "product_groups"
}
