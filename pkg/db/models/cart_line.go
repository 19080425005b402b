package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLine is one product in a user's cart. SettledPrice is the per-unit
// price captured when the line was last added or updated.
type CartLine struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:cart_lines_user_product_key"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_lines_user_product_key"`
	Quantity     int             `gorm:"column:quantity;not null"`
	SettledPrice decimal.Decimal `gorm:"column:settled_price;type:numeric(12,2);not null"`
	Product      *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartLine) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// LineTotal is quantity times the settled unit price.
func (c CartLine) LineTotal() decimal.Decimal {
	return c.SettledPrice.Mul(decimal.NewFromInt(int64(c.Quantity))).Round(2)
}
