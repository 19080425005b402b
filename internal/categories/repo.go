package categories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Filter narrows category listings. Both terms are case-insensitive substrings.
type Filter struct {
	Name        string
	ProductName string
}

// Repository persists categories and reads the products filed under them.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Category, int64, error) {
	params = params.Normalize()
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Category
	err := r.filtered(ctx, filter).
		Order("name ASC").
		Order("id").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) filtered(ctx context.Context, filter Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Category{})
	if name := likePattern(filter.Name); name != "" {
		query = query.Where("LOWER(name) LIKE ?", name)
	}
	if productName := likePattern(filter.ProductName); productName != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM products WHERE products.category_id = categories.id AND LOWER(products.name) LIKE ?)",
			productName,
		)
	}
	return query
}

// ListProducts returns the products of the given categories, optionally
// narrowed by product name.
func (r *Repository) ListProducts(ctx context.Context, categoryIDs []uuid.UUID, productName string) ([]models.Product, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).Where("category_id IN ?", categoryIDs)
	if pattern := likePattern(productName); pattern != "" {
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	var rows []models.Product
	err := query.Order("name ASC").Order("id").Find(&rows).Error
	return rows, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ActiveStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}

// DetachProducts clears the category reference of every product filed under id.
func (r *Repository) DetachProducts(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", id).
		Update("category_id", nil).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	return res.RowsAffected, res.Error
}

func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ""
	}
	return "%" + term + "%"
}
