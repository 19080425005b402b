package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountTier maps an inclusive quantity range to a percentage off the unit price.
type DiscountTier struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:discount_tiers_product_id_idx"`
	StartRange      int             `gorm:"column:start_range;not null"`
	EndRange        int             `gorm:"column:end_range;not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (d *DiscountTier) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// Contains reports whether quantity falls inside the tier, bounds included.
func (d DiscountTier) Contains(quantity int) bool {
	return d.StartRange <= quantity && quantity <= d.EndRange
}

// Overlaps reports whether the two tiers share at least one quantity.
func (d DiscountTier) Overlaps(start, end int) bool {
	return d.Contains(start) || d.Contains(end) || (start <= d.StartRange && end >= d.EndRange)
}
