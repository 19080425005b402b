package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	ordersvc "github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type placeOrderRequest struct {
	ProductInfo     []orderLineRequest `json:"productInfo" validate:"required,min=1,dive"`
	PaymentType     string             `json:"paymentType" validate:"required"`
	SourceCity      string             `json:"sourceCity" validate:"required"`
	DestinationCity string             `json:"destinationCity" validate:"required"`
	TotalAmount     *decimal.Decimal   `json:"totalAmount,omitempty"`
}

type orderLineRequest struct {
	ProductID       uuid.UUID        `json:"productId" validate:"required"`
	ProductName     string           `json:"productName,omitempty"`
	Quantity        int              `json:"quantity" validate:"required,min=1"`
	ItemTotal       *decimal.Decimal `json:"itemTotal" validate:"required"`
	DeliveryCharges *decimal.Decimal `json:"deliveryCharges,omitempty"`
}

func (p placeOrderRequest) toInput() (ordersvc.PlaceOrderInput, error) {
	paymentType, err := enums.ParsePaymentType(strings.ToLower(strings.TrimSpace(p.PaymentType)))
	if err != nil {
		return ordersvc.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentType")
	}

	lines := make([]ordersvc.LineInput, 0, len(p.ProductInfo))
	for _, line := range p.ProductInfo {
		delivery := decimal.Zero
		if line.DeliveryCharges != nil {
			delivery = *line.DeliveryCharges
		}
		lines = append(lines, ordersvc.LineInput{
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			ItemTotal:       *line.ItemTotal,
			DeliveryCharges: delivery,
		})
	}

	return ordersvc.PlaceOrderInput{
		Lines:           lines,
		PaymentType:     paymentType,
		SourceCity:      p.SourceCity,
		DestinationCity: p.DestinationCity,
		ClientTotal:     p.TotalAmount,
	}, nil
}

type verifyPaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

// PlaceOrder persists the caller's order with server computed totals.
func PlaceOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// VerifyPayment settles a pending order's payment as approved or rejected.
func VerifyPayment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required"))
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePaymentStatus(strings.ToLower(strings.TrimSpace(payload.PaymentStatus)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentStatus"))
			return
		}

		ctx := logg.WithOrderID(r.Context(), orderID)
		order, err := svc.VerifyPayment(ctx, orderID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders pages through the caller's orders. Admins see every order.
func ListOrders(svc ordersvc.Service, pricing config.PricingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r, pricing.DefaultPageSize, pricing.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := ordersvc.Viewer{UserID: userID, Role: roleFromRequest(r)}
		orderID := strings.TrimSpace(r.URL.Query().Get("orderId"))
		result, err := svc.ListOrders(r.Context(), viewer, orderID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result.Orders, result.Page)
	}
}

func CancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required"))
			return
		}

		viewer := ordersvc.Viewer{UserID: userID, Role: roleFromRequest(r)}
		ctx := logg.WithOrderID(r.Context(), orderID)
		if err := svc.CancelOrder(ctx, viewer, orderID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
