package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// LineInput is one purchased line as submitted at checkout. ItemTotal is the
// line's product amount; DeliveryCharges is the per-unit delivery cost.
type LineInput struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int
	ItemTotal       decimal.Decimal
	DeliveryCharges decimal.Decimal
}

// PlaceOrderInput carries a checkout request. ClientTotal is only compared
// against the recomputed total for logging.
type PlaceOrderInput struct {
	Lines           []LineInput
	PaymentType     enums.PaymentType
	SourceCity      string
	DestinationCity string
	ClientTotal     *decimal.Decimal
}

// Viewer identifies who is reading or mutating orders.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (v Viewer) isAdmin() bool {
	return v.Role == enums.RoleAdmin
}

type OrderLineDTO struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name,omitempty"`
	Quantity        int       `json:"quantity"`
	ItemTotal       string    `json:"item_total"`
	DeliveryCharges string    `json:"delivery_charges"`
}

type OrderDTO struct {
	ID                   uuid.UUID           `json:"id"`
	OrderID              string              `json:"order_id"`
	UserID               uuid.UUID           `json:"user_id"`
	ProductInfo          []OrderLineDTO      `json:"product_info"`
	TotalProductAmount   string              `json:"total_product_amount"`
	DeliveryChargesTotal string              `json:"delivery_charges_total"`
	TotalAmount          string              `json:"total_amount"`
	PaymentType          enums.PaymentType   `json:"payment_type"`
	SourceCity           string              `json:"source_city"`
	DestinationCity      string              `json:"destination_city"`
	Status               enums.OrderStatus   `json:"status"`
	PaymentStatus        enums.PaymentStatus `json:"payment_status"`
	CreatedAt            time.Time           `json:"created_at"`
}

type OrderList struct {
	Orders []OrderDTO      `json:"orders"`
	Page   pagination.Page `json:"page"`
}

func NewOrderDTO(order *models.Order) OrderDTO {
	lines := make([]OrderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineDTO{
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			ItemTotal:       line.ItemTotal.StringFixed(2),
			DeliveryCharges: line.DeliveryCharges.StringFixed(2),
		})
	}
	return OrderDTO{
		ID:                   order.ID,
		OrderID:              order.OrderID,
		UserID:               order.UserID,
		ProductInfo:          lines,
		TotalProductAmount:   order.TotalProductAmount.StringFixed(2),
		DeliveryChargesTotal: order.DeliveryChargesTotal.StringFixed(2),
		TotalAmount:          order.TotalAmount.StringFixed(2),
		PaymentType:          order.PaymentType,
		SourceCity:           order.SourceCity,
		DestinationCity:      order.DestinationCity,
		Status:               order.Status,
		PaymentStatus:        order.PaymentStatus,
		CreatedAt:            order.CreatedAt,
	}
}
