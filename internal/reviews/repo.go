package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Filter narrows review listings. Nil fields are ignored.
type Filter struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
	Status    *enums.ReviewStatus
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *Repository) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Review, int64, error) {
	params = params.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Review{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Review
	err := r.applyFilter(r.db.WithContext(ctx), filter).
		Order("created_at DESC").
		Order("id").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReviewStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

type ratingSummary struct {
	Average float64
	Count   int64
}

// ApprovedRatingSummary returns the mean rating across approved reviews.
func (r *Repository) ApprovedRatingSummary(ctx context.Context, productID uuid.UUID) (float64, int64, error) {
	var summary ratingSummary
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, enums.ReviewStatusApproved).
		Scan(&summary).Error
	if err != nil {
		return 0, 0, err
	}
	return summary.Average, summary.Count, nil
}
