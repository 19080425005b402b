package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository persists products and their discount tiers.
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

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("DiscountTiers").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads the product holding a row lock until the transaction ends.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := pkgdb.ForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context, params pagination.Params) ([]models.Product, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) SetHasDiscount(ctx context.Context, id uuid.UUID, value bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("has_discount", value).Error
}

// ListDiscountTiers returns the product's tiers ordered by range start.
func (r *Repository) ListDiscountTiers(ctx context.Context, productID uuid.UUID) ([]models.DiscountTier, error) {
	var rows []models.DiscountTier
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("start_range ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateDiscountTiers(ctx context.Context, tiers []models.DiscountTier) error {
	if len(tiers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tiers).Error
}

// DeleteDiscountTier removes one tier and reports how many rows were affected.
func (r *Repository) DeleteDiscountTier(ctx context.Context, productID, tierID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", tierID, productID).
		Delete(&models.DiscountTier{})
	return res.RowsAffected, res.Error
}

func (r *Repository) CountDiscountTiers(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DiscountTier{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}
