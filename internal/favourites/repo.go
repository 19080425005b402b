package favourites

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository encapsulates favourites persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Add(ctx context.Context, fav *models.Favourite) error {
	return r.db.WithContext(ctx).Omit("Product").Create(fav).Error
}

func (r *Repository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Favourite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	return n > 0, err
}

// Remove deletes the user-product favourite and reports how many rows went away.
func (r *Repository) Remove(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favourite{})
	return res.RowsAffected, res.Error
}

// Record is a favourite joined with its product.
type Record struct {
	FavouriteID uuid.UUID
	FavouredAt  time.Time
	ProductID   uuid.UUID
	Name        string
	Price       decimal.Decimal
	HasDiscount bool
}

// List returns the user's favourites joined with their product, newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Record, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Favourite{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	selectColumns := []string{
		"f.id AS favourite_id",
		"f.created_at AS favoured_at",
		"p.id AS product_id",
		"p.name",
		"p.price",
		"p.has_discount",
	}

	var records []Record
	err := r.db.WithContext(ctx).
		Table("favourites f").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN products p ON p.id = f.product_id").
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC").
		Order("f.id DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Scan(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
