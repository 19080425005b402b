package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&DiscountTier{},
		&CartLine{},
		&Order{},
		&City{},
		&DeliveryCharge{},
		&Review{},
		&Favourite{},
		&UTMLink{},
	}
}
