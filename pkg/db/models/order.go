package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// OrderLine is the frozen copy of a purchased line. It is never re-joined to
// live catalog data.
type OrderLine struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	Quantity        int             `json:"quantity"`
	ItemTotal       decimal.Decimal `json:"item_total"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges"`
}

// Order is the settled result of a checkout.
type Order struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              string              `gorm:"column:order_id;not null;uniqueIndex:orders_order_id_key"`
	UserID               uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Lines                []OrderLine         `gorm:"column:product_info;type:jsonb;serializer:json;not null"`
	TotalProductAmount   decimal.Decimal     `gorm:"column:total_product_amount;type:numeric(12,2);not null"`
	DeliveryChargesTotal decimal.Decimal     `gorm:"column:delivery_charges_total;type:numeric(12,2);not null"`
	TotalAmount          decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentType          enums.PaymentType   `gorm:"column:payment_type;type:varchar(16);not null"`
	SourceCity           string              `gorm:"column:source_city;not null"`
	DestinationCity      string              `gorm:"column:destination_city;not null"`
	Status               enums.OrderStatus   `gorm:"column:status;type:varchar(16);not null;default:'pending'"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:varchar(16);not null;default:'pending'"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
