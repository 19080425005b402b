package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// LineDTO is a cart line as returned to clients. Money is rendered with two decimals.
type LineDTO struct {
	ID                 uuid.UUID `json:"id"`
	ProductID          uuid.UUID `json:"product_id"`
	ProductName        string    `json:"product_name,omitempty"`
	Quantity           int       `json:"quantity"`
	SingleProductPrice string    `json:"single_product_price,omitempty"`
	DiscountedPrice    string    `json:"discounted_price"`
	DiscountPercent    string    `json:"discount_percent,omitempty"`
	Total              string    `json:"total"`
}

type CartDTO struct {
	Items          []LineDTO `json:"items"`
	TotalCartValue string    `json:"total_cart_value"`
}

func newLineDTO(line *models.CartLine) LineDTO {
	dto := LineDTO{
		ID:              line.ID,
		ProductID:       line.ProductID,
		Quantity:        line.Quantity,
		DiscountedPrice: line.SettledPrice.StringFixed(2),
		Total:           line.LineTotal().StringFixed(2),
	}
	if line.Product != nil {
		dto.ProductName = line.Product.Name
		dto.SingleProductPrice = line.Product.Price.StringFixed(2)
	}
	return dto
}

func newCartDTO(lines []models.CartLine) *CartDTO {
	items := make([]LineDTO, 0, len(lines))
	total := decimal.Zero
	for i := range lines {
		items = append(items, newLineDTO(&lines[i]))
		total = total.Add(lines[i].LineTotal())
	}
	return &CartDTO{Items: items, TotalCartValue: total.StringFixed(2)}
}
