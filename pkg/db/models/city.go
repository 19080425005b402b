package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type City struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name      string             `gorm:"column:name;not null;uniqueIndex:cities_name_key"`
	Status    enums.ActiveStatus `gorm:"column:status;type:varchar(16);not null;default:'active'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (c *City) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
