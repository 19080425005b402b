package products

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ProductDTO is the catalog shape returned by product endpoints.
type ProductDTO struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Price       string     `json:"price"`
	HasDiscount bool       `json:"has_discount"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DiscountTierDTO renders a tier with the unit price it yields.
type DiscountTierDTO struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	StartRange      int       `json:"start_range"`
	EndRange        int       `json:"end_range"`
	Range           string    `json:"range"`
	DiscountPercent string    `json:"discount_percent"`
	DiscountedPrice string    `json:"discounted_price"`
}

// ProductDetailDTO adds tiers and review aggregates to the catalog shape.
type ProductDetailDTO struct {
	ProductDTO
	DiscountTiers []DiscountTierDTO `json:"discount_tiers"`
	AverageRating *float64          `json:"average_rating"`
	ReviewCount   int64             `json:"review_count"`
}

type ProductListResult struct {
	Products []ProductDTO    `json:"products"`
	Page     pagination.Page `json:"page"`
}

// Quote is the settled unit price of a product at a given quantity.
type Quote struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	SettledPrice    decimal.Decimal
	TierID          *uuid.UUID
}

// QuotationLineDTO prices one requested product at its quoted quantity.
type QuotationLineDTO struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	Color           string    `json:"color,omitempty"`
	Weight          string    `json:"weight,omitempty"`
	OriginalPrice   string    `json:"original_price"`
	FinalPrice      string    `json:"final_price"`
	DiscountPercent string    `json:"discount_percent"`
	DiscountAmount  string    `json:"discount_amount"`
	Total           string    `json:"total"`
}

type QuotationDTO struct {
	Lines               []QuotationLineDTO `json:"product_details"`
	TotalQuotationValue string             `json:"total_quotation_value"`
}

func NewProductDTO(product *models.Product) ProductDTO {
	return ProductDTO{
		ID:          product.ID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		HasDiscount: product.HasDiscount,
		CreatedAt:   product.CreatedAt,
	}
}

func NewDiscountTierDTO(tier models.DiscountTier, price decimal.Decimal) DiscountTierDTO {
	return DiscountTierDTO{
		ID:              tier.ID,
		ProductID:       tier.ProductID,
		StartRange:      tier.StartRange,
		EndRange:        tier.EndRange,
		Range:           fmt.Sprintf("%d-%d", tier.StartRange, tier.EndRange),
		DiscountPercent: tier.DiscountPercent.String() + "%",
		DiscountedPrice: ApplyDiscount(price, tier.DiscountPercent).StringFixed(2),
	}
}

func newDiscountTierDTOs(tiers []models.DiscountTier, price decimal.Decimal) []DiscountTierDTO {
	out := make([]DiscountTierDTO, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, NewDiscountTierDTO(tier, price))
	}
	return out
}
