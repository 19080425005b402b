package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// UTMLink is a tracked campaign URL.
type UTMLink struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	BaseURL     string             `gorm:"column:base_url;not null"`
	Source      string             `gorm:"column:source;not null"`
	Medium      string             `gorm:"column:medium;not null;index:utm_links_medium_campaign_idx"`
	Campaign    string             `gorm:"column:campaign;not null;index:utm_links_medium_campaign_idx"`
	URL         string             `gorm:"column:utm_url;not null"`
	CouponCode  *string            `gorm:"column:coupon_code"`
	Traffic     int64              `gorm:"column:traffic;not null;default:0"`
	HasPurchase bool               `gorm:"column:has_purchase;not null;default:false"`
	Status      enums.ActiveStatus `gorm:"column:status;type:varchar(16);not null;default:'active'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (UTMLink) TableName() string {
	return "utm_links"
}

func (u *UTMLink) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
