package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/notifications"
	pkgdb "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Service settles checkouts into orders and drives payment verification.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	VerifyPayment(ctx context.Context, orderID string, status enums.PaymentStatus) (*OrderDTO, error)
	ListOrders(ctx context.Context, viewer Viewer, orderID string, params pagination.Params) (*OrderList, error)
	CancelOrder(ctx context.Context, viewer Viewer, orderID string) error
}

// Deps groups the collaborators of the order service.
type Deps struct {
	Repo       Repository
	Tx         txRunner
	Cart       CartClearer
	Notifier   notifications.Notifier
	GenerateID OrderIDGenerator
	Metrics    *metrics.PricingMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	cart     CartClearer
	notifier notifications.Notifier
	genID    OrderIDGenerator
	recorder *metrics.PricingMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an order service. Metrics, Logger, GenerateID and Now are optional.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart clearer required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if deps.GenerateID == nil {
		deps.GenerateID = NewOrderIDGenerator("ORD")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{
		repo:     deps.Repo,
		tx:       deps.Tx,
		cart:     deps.Cart,
		notifier: deps.Notifier,
		genID:    deps.GenerateID,
		recorder: deps.Metrics,
		logg:     deps.Logger,
		now:      deps.Now,
	}, nil
}

// Totals is the server side settlement of a checkout.
type Totals struct {
	Products decimal.Decimal
	Delivery decimal.Decimal
	Amount   decimal.Decimal
}

// ComputeTotals sums item totals and per-unit delivery charges times quantity.
// Line amounts are rounded to cents first, the same way the order snapshot
// stores them, so the totals always equal the sum of the stored lines.
func ComputeTotals(lines []LineInput) Totals {
	products := decimal.Zero
	delivery := decimal.Zero
	for _, line := range lines {
		products = products.Add(line.ItemTotal.Round(2))
		delivery = delivery.Add(line.DeliveryCharges.Round(2).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	products = products.Round(2)
	delivery = delivery.Round(2)
	return Totals{Products: products, Delivery: delivery, Amount: products.Add(delivery).Round(2)}
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "productInfo must contain at least one item")
	}
	for i, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("productInfo[%d]: productId is required", i))
		}
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("productInfo[%d]: quantity must be at least 1", i))
		}
		if line.ItemTotal.IsNegative() || line.DeliveryCharges.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("productInfo[%d]: amounts must be non-negative", i))
		}
	}
	if !input.PaymentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid paymentType")
	}
	if strings.TrimSpace(input.SourceCity) == "" || strings.TrimSpace(input.DestinationCity) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sourceCity and destinationCity are required")
	}
	return nil
}

// PlaceOrder recomputes totals, persists the order and clears the buyer's cart
// in one transaction. Any client supplied total is discarded.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	totals := ComputeTotals(input.Lines)
	if input.ClientTotal != nil && !input.ClientTotal.Equal(totals.Amount) {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"client_total": input.ClientTotal.String(),
			"server_total": totals.Amount.StringFixed(2),
		}), "orders.client_total_mismatch")
	}

	orderID, err := s.genID(s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order id")
	}

	lines := make([]models.OrderLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, models.OrderLine{
			ProductID:       line.ProductID,
			ProductName:     strings.TrimSpace(line.ProductName),
			Quantity:        line.Quantity,
			ItemTotal:       line.ItemTotal.Round(2),
			DeliveryCharges: line.DeliveryCharges.Round(2),
		})
	}

	order := &models.Order{
		OrderID:              orderID,
		UserID:               userID,
		Lines:                lines,
		TotalProductAmount:   totals.Products,
		DeliveryChargesTotal: totals.Delivery,
		TotalAmount:          totals.Amount,
		PaymentType:          input.PaymentType,
		SourceCity:           strings.TrimSpace(input.SourceCity),
		DestinationCity:      strings.TrimSpace(input.DestinationCity),
		Status:               enums.OrderStatusPending,
		PaymentStatus:        enums.PaymentStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if pkgdb.IsUniqueViolation(err, "orders_order_id_key") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order id collision, retry the request")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert order")
		}
		if err := s.cart.ClearCart(ctx, tx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.ObserveOrder(string(order.PaymentType), order.TotalAmount)
	s.logg.Info(s.logg.WithOrderID(ctx, order.OrderID), "orders.placed")

	dto := NewOrderDTO(order)
	return &dto, nil
}

// VerifyPayment moves a pending payment to approved or rejected. The approval
// notice is sent after commit and its failure does not fail the call.
func (s *service) VerifyPayment(ctx context.Context, orderID string, status enums.PaymentStatus) (*OrderDTO, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	if !status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paymentStatus must be approved or rejected")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return orderNotFoundOr(err, "load order")
		}
		if found.PaymentStatus != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("payment already %s", found.PaymentStatus)).
				WithDetails(map[string]any{"payment_status": found.PaymentStatus})
		}

		orderStatus := enums.OrderStatusForPayment(status)
		updated, err := repo.UpdatePaymentStatus(ctx, found.ID, status, orderStatus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update payment status")
		}
		if updated == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "payment is no longer pending")
		}
		found.PaymentStatus = status
		found.Status = orderStatus
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.ObservePayment(string(status))
	ctx = s.logg.WithOrderID(ctx, order.OrderID)
	s.logg.Info(s.logg.WithField(ctx, "payment_status", string(status)), "orders.payment_verified")

	if status == enums.PaymentStatusApproved {
		if err := s.notifier.OrderApproved(ctx, order); err != nil {
			s.logg.Error(ctx, "orders.notify_failed", err)
		}
	}

	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) ListOrders(ctx context.Context, viewer Viewer, orderID string, params pagination.Params) (*OrderList, error) {
	filter := ListFilter{OrderID: orderID}
	if !viewer.isAdmin() {
		if viewer.UserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
		}
		userID := viewer.UserID
		filter.UserID = &userID
	}

	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewOrderDTO(&rows[i]))
	}
	return &OrderList{Orders: out, Page: params.PageOf(total)}, nil
}

// CancelOrder deletes an order while its payment is pending. Buyers can only
// cancel their own orders.
func (s *service) CancelOrder(ctx context.Context, viewer Viewer, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return orderNotFoundOr(err, "load order")
		}
		if !viewer.isAdmin() && order.UserID != viewer.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.PaymentStatus != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "only orders with a pending payment can be cancelled")
		}
		deleted, err := repo.DeletePending(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete order")
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "only orders with a pending payment can be cancelled")
		}
		return nil
	})
}

func orderNotFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
