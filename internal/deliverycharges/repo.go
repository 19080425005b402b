package deliverycharges

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository persists cities and per-route delivery charges.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateCity(ctx context.Context, city *models.City) error {
	return r.db.WithContext(ctx).Create(city).Error
}

func (r *Repository) FindCity(ctx context.Context, id uuid.UUID) (*models.City, error) {
	var city models.City
	if err := r.db.WithContext(ctx).First(&city, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *Repository) ListCities(ctx context.Context, status *enums.ActiveStatus) ([]models.City, error) {
	query := r.db.WithContext(ctx).Model(&models.City{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var rows []models.City
	err := query.Order("name ASC").Find(&rows).Error
	return rows, err
}

// UpsertCharge inserts the route charge or overwrites the charge of an
// existing (product, source, destination) route.
func (r *Repository) UpsertCharge(ctx context.Context, charge *models.DeliveryCharge) error {
	return r.db.WithContext(ctx).
		Omit("SourceCity", "DestinationCity").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "product_id"},
				{Name: "source_city_id"},
				{Name: "destination_city_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"delivery_charge", "updated_at"}),
		}).
		Create(charge).Error
}

func (r *Repository) FindRoute(ctx context.Context, productID, sourceCityID, destinationCityID uuid.UUID) (*models.DeliveryCharge, error) {
	var charge models.DeliveryCharge
	err := r.db.WithContext(ctx).
		Preload("SourceCity").
		Preload("DestinationCity").
		Where("product_id = ? AND source_city_id = ? AND destination_city_id = ?", productID, sourceCityID, destinationCityID).
		First(&charge).Error
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.DeliveryCharge, error) {
	var rows []models.DeliveryCharge
	err := r.db.WithContext(ctx).
		Preload("SourceCity").
		Preload("DestinationCity").
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Order("id").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) DeleteCharge(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DeliveryCharge{})
	return res.RowsAffected, res.Error
}
