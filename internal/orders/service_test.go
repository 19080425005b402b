package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgdb "github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type recordingNotifier struct {
	approved []string
	err      error
}

func (n *recordingNotifier) OrderApproved(_ context.Context, order *models.Order) error {
	n.approved = append(n.approved, order.OrderID)
	return n.err
}

type failingClearer struct{}

func (failingClearer) ClearCart(context.Context, *gorm.DB, uuid.UUID) error {
	return errors.New("cart table unavailable")
}

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, conn *gorm.DB, clearer CartClearer, notifier *recordingNotifier) Service {
	t.Helper()
	if clearer == nil {
		clearer = cart.NewRepository(conn)
	}
	svc, err := NewService(Deps{
		Repo:     NewRepository(conn),
		Tx:       pkgdb.NewFromConn(conn),
		Cart:     clearer,
		Notifier: notifier,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func sampleInput() PlaceOrderInput {
	forged := decimal.NewFromInt(1)
	return PlaceOrderInput{
		Lines: []LineInput{
			{ProductID: uuid.New(), ProductName: "Cement", Quantity: 2, ItemTotal: decimal.RequireFromString("170.00"), DeliveryCharges: decimal.RequireFromString("5.25")},
			{ProductID: uuid.New(), ProductName: "Sand", Quantity: 3, ItemTotal: decimal.RequireFromString("29.97"), DeliveryCharges: decimal.NewFromInt(2)},
		},
		PaymentType:     enums.PaymentTypeCOD,
		SourceCity:      "Lahore",
		DestinationCity: "Karachi",
		ClientTotal:     &forged,
	}
}

func seedCartLine(t *testing.T, conn *gorm.DB, userID uuid.UUID) {
	t.Helper()
	product := &models.Product{Name: "Cement", Price: decimal.NewFromInt(85)}
	require.NoError(t, conn.Create(product).Error)
	require.NoError(t, conn.Create(&models.CartLine{
		UserID:       userID,
		ProductID:    product.ID,
		Quantity:     2,
		SettledPrice: decimal.NewFromInt(85),
	}).Error)
}

func countCartLines(t *testing.T, conn *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.CartLine{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	conn := dbtest.NewSQLite(t)
	_, err := NewService(Deps{})
	require.Error(t, err)
	_, err = NewService(Deps{Repo: NewRepository(conn), Tx: pkgdb.NewFromConn(conn)})
	require.Error(t, err)
	_, err = NewService(Deps{Repo: NewRepository(conn), Tx: pkgdb.NewFromConn(conn), Cart: cart.NewRepository(conn)})
	require.Error(t, err)
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(sampleInput().Lines)
	assert.Equal(t, "199.97", totals.Products.StringFixed(2))
	assert.Equal(t, "16.50", totals.Delivery.StringFixed(2))
	assert.Equal(t, "216.47", totals.Amount.StringFixed(2))
}

func TestPlaceOrderTotalsMatchStoredLines(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	svc := newTestService(t, conn, nil, &recordingNotifier{})

	input := sampleInput()
	input.Lines = []LineInput{
		{ProductID: uuid.New(), ProductName: "Bolt", Quantity: 1, ItemTotal: decimal.RequireFromString("10.005"), DeliveryCharges: decimal.RequireFromString("0.125")},
		{ProductID: uuid.New(), ProductName: "Nut", Quantity: 3, ItemTotal: decimal.RequireFromString("10.005"), DeliveryCharges: decimal.RequireFromString("0.125")},
	}

	order, err := svc.PlaceOrder(ctx, uuid.New(), input)
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "order_id = ?", order.OrderID).Error)
	require.Len(t, stored.Lines, 2)

	products, delivery := decimal.Zero, decimal.Zero
	for _, line := range stored.Lines {
		products = products.Add(line.ItemTotal)
		delivery = delivery.Add(line.DeliveryCharges.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	assert.Equal(t, "20.02", stored.TotalProductAmount.StringFixed(2))
	assert.True(t, stored.TotalProductAmount.Equal(products))
	assert.True(t, stored.DeliveryChargesTotal.Equal(delivery))
	assert.True(t, stored.TotalAmount.Equal(products.Add(delivery)))
}

func TestPlaceOrderIgnoresClientTotalAndClearsCart(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	svc := newTestService(t, conn, nil, &recordingNotifier{})
	userID := uuid.New()
	seedCartLine(t, conn, userID)

	order, err := svc.PlaceOrder(ctx, userID, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "216.47", order.TotalAmount)
	assert.Equal(t, "199.97", order.TotalProductAmount)
	assert.Equal(t, "16.50", order.DeliveryChargesTotal)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Regexp(t, `^ORD-20260504-[0-9A-Z]{8}$`, order.OrderID)
	require.Len(t, order.ProductInfo, 2)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "order_id = ?", order.OrderID).Error)
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("216.47")))
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, "Sand", stored.Lines[1].ProductName)
	assert.Zero(t, countCartLines(t, conn, userID))
}

func TestPlaceOrderValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, dbtest.NewSQLite(t), nil, &recordingNotifier{})

	cases := map[string]func(*PlaceOrderInput){
		"no lines":         func(in *PlaceOrderInput) { in.Lines = nil },
		"zero quantity":    func(in *PlaceOrderInput) { in.Lines[0].Quantity = 0 },
		"negative total":   func(in *PlaceOrderInput) { in.Lines[0].ItemTotal = decimal.NewFromInt(-1) },
		"bad payment type": func(in *PlaceOrderInput) { in.PaymentType = "cheque" },
		"missing city":     func(in *PlaceOrderInput) { in.DestinationCity = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := sampleInput()
			mutate(&input)
			_, err := svc.PlaceOrder(ctx, uuid.New(), input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestPlaceOrderRollsBackWhenCartClearFails(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	svc := newTestService(t, conn, failingClearer{}, &recordingNotifier{})
	userID := uuid.New()

	_, err := svc.PlaceOrder(ctx, userID, sampleInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

	var n int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPlaceOrderRollbackOnDriverFailure(t *testing.T) {
	conn, mock := dbtest.NewMock(t)
	svc := newTestService(t, conn, nil, &recordingNotifier{})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "orders"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "cart_lines"`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), sampleInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyPaymentTransitions(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	notifier := &recordingNotifier{}
	svc := newTestService(t, conn, nil, notifier)

	placed, err := svc.PlaceOrder(ctx, uuid.New(), sampleInput())
	require.NoError(t, err)

	_, err = svc.VerifyPayment(ctx, placed.OrderID, enums.PaymentStatusPending)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.VerifyPayment(ctx, "ORD-00000000-MISSING0", enums.PaymentStatusApproved)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	verified, err := svc.VerifyPayment(ctx, placed.OrderID, enums.PaymentStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusApproved, verified.PaymentStatus)
	assert.Equal(t, enums.OrderStatusApproved, verified.Status)
	assert.Equal(t, []string{placed.OrderID}, notifier.approved)

	_, err = svc.VerifyPayment(ctx, placed.OrderID, enums.PaymentStatusRejected)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Len(t, notifier.approved, 1)
}

func TestVerifyPaymentRejectedSkipsNotifier(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	notifier := &recordingNotifier{}
	svc := newTestService(t, conn, nil, notifier)

	placed, err := svc.PlaceOrder(ctx, uuid.New(), sampleInput())
	require.NoError(t, err)

	verified, err := svc.VerifyPayment(ctx, placed.OrderID, enums.PaymentStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusRejected, verified.Status)
	assert.Empty(t, notifier.approved)
}

func TestVerifyPaymentNotifierFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := newTestService(t, conn, nil, notifier)

	placed, err := svc.PlaceOrder(ctx, uuid.New(), sampleInput())
	require.NoError(t, err)

	_, err = svc.VerifyPayment(ctx, placed.OrderID, enums.PaymentStatusApproved)
	require.NoError(t, err)

	var stored models.Order
	require.NoError(t, conn.First(&stored, "order_id = ?", placed.OrderID).Error)
	assert.Equal(t, enums.PaymentStatusApproved, stored.PaymentStatus)
}

func TestListOrdersScopesToViewer(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	svc := newTestService(t, conn, nil, &recordingNotifier{})
	alice, bob := uuid.New(), uuid.New()

	first, err := svc.PlaceOrder(ctx, alice, sampleInput())
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, alice, sampleInput())
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, bob, sampleInput())
	require.NoError(t, err)

	own, err := svc.ListOrders(ctx, Viewer{UserID: alice, Role: enums.RoleCustomer}, "", pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, own.Orders, 2)
	assert.Equal(t, int64(2), own.Page.Total)
	assert.Equal(t, pagination.DefaultLimit, own.Page.Limit)

	all, err := svc.ListOrders(ctx, Viewer{UserID: uuid.New(), Role: enums.RoleAdmin}, "", pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all.Orders, 2)
	assert.Equal(t, int64(3), all.Page.Total)

	filtered, err := svc.ListOrders(ctx, Viewer{UserID: bob, Role: enums.RoleCustomer}, first.OrderID, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, filtered.Orders)

	_, err = svc.ListOrders(ctx, Viewer{}, "", pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	svc := newTestService(t, conn, nil, &recordingNotifier{})
	owner := uuid.New()
	viewer := Viewer{UserID: owner, Role: enums.RoleCustomer}

	pending, err := svc.PlaceOrder(ctx, owner, sampleInput())
	require.NoError(t, err)
	paid, err := svc.PlaceOrder(ctx, owner, sampleInput())
	require.NoError(t, err)
	_, err = svc.VerifyPayment(ctx, paid.OrderID, enums.PaymentStatusApproved)
	require.NoError(t, err)

	err = svc.CancelOrder(ctx, Viewer{UserID: uuid.New(), Role: enums.RoleCustomer}, pending.OrderID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.CancelOrder(ctx, viewer, paid.OrderID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	require.NoError(t, svc.CancelOrder(ctx, viewer, pending.OrderID))
	err = svc.CancelOrder(ctx, viewer, pending.OrderID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
