package utm

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, link *models.UTMLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.UTMLink, error) {
	var link models.UTMLink
	if err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *Repository) List(ctx context.Context, status *enums.ActiveStatus, params pagination.Params) ([]models.UTMLink, int64, error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).Model(&models.UTMLink{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.UTMLink
	err := query.
		Order("created_at DESC").
		Order("id").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ActiveStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.UTMLink{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// IncrementTraffic bumps the counter of every active link for the medium and
// campaign pair.
func (r *Repository) IncrementTraffic(ctx context.Context, medium, campaign string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.UTMLink{}).
		Where("medium = ? AND campaign = ? AND status = ?", medium, campaign, enums.ActiveStatusActive).
		UpdateColumn("traffic", gorm.Expr("traffic + ?", 1))
	return res.RowsAffected, res.Error
}
