package notifications

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Notifier tells a buyer that their order moved forward. Implementations must
// not assume they run inside the transaction that changed the order.
type Notifier interface {
	OrderApproved(ctx context.Context, order *models.Order) error
}

// LogNotifier records approval notices in the structured log instead of
// delivering them.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) OrderApproved(ctx context.Context, order *models.Order) error {
	if order == nil {
		return nil
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"order_id":     order.OrderID,
		"user_id":      order.UserID.String(),
		"total_amount": order.TotalAmount.StringFixed(2),
		"payment_type": string(order.PaymentType),
	})
	n.logg.Info(ctx, "notification.order_approved")
	return nil
}
