package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeliveryCharge is the per-unit shipping cost of a product between two cities.
type DeliveryCharge struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:delivery_charges_route_key"`
	SourceCityID      uuid.UUID       `gorm:"column:source_city_id;type:uuid;not null;uniqueIndex:delivery_charges_route_key"`
	DestinationCityID uuid.UUID       `gorm:"column:destination_city_id;type:uuid;not null;uniqueIndex:delivery_charges_route_key"`
	Charge            decimal.Decimal `gorm:"column:delivery_charge;type:numeric(12,2);not null"`
	SourceCity        *City           `gorm:"foreignKey:SourceCityID"`
	DestinationCity   *City           `gorm:"foreignKey:DestinationCityID"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *DeliveryCharge) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
