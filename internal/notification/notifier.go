package notification

import (
	"context"
	"errors"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/rs/zerolog"
)

// Notifier delivers order lifecycle notifications. Implementations are
// best-effort collaborators: callers log failures and never let them affect
// an already-committed order mutation.
type Notifier interface {
	// OrderCreated notifies the customer and the shop admin about a new order.
	OrderCreated(ctx context.Context, order *model.Order, user *model.User) error

	// OrderConfirmed notifies about an admin confirmation.
	OrderConfirmed(ctx context.Context, order *model.Order, user *model.User) error

	// PaymentReceived notifies about a successful payment.
	PaymentReceived(ctx context.Context, order *model.Order, user *model.User) error

	// OrderReminder nudges a customer about an order still pending.
	OrderReminder(ctx context.Context, order *model.Order, user *model.User) error

	// Close releases any underlying connections.
	Close() error
}

// logNotifier writes notifications to the log instead of delivering them.
// Used when no mail transport is configured.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{
		logger: logger.With().Str("notifier", "log").Logger(),
	}
}

func (n *logNotifier) log(event string, order *model.Order, user *model.User) {
	entry := n.logger.Info().
		Str("event", event).
		Str("order_id", order.ID.String()).
		Str("status", order.Status).
		Str("payment_status", order.PaymentStatus).
		Float64("total_price", order.TotalPrice)
	if user != nil {
		entry = entry.Str("customer", user.FullName).Str("email", user.Email)
	}
	entry.Msg("order notification")
}

func (n *logNotifier) OrderCreated(ctx context.Context, order *model.Order, user *model.User) error {
	n.log("order-created", order, user)
	return nil
}

func (n *logNotifier) OrderConfirmed(ctx context.Context, order *model.Order, user *model.User) error {
	n.log("order-confirmed", order, user)
	return nil
}

func (n *logNotifier) PaymentReceived(ctx context.Context, order *model.Order, user *model.User) error {
	n.log("order-paid", order, user)
	return nil
}

func (n *logNotifier) OrderReminder(ctx context.Context, order *model.Order, user *model.User) error {
	n.log("order-reminder", order, user)
	return nil
}

func (n *logNotifier) Close() error {
	return nil
}

// multiNotifier fans a notification out to several notifiers, collecting
// their failures without short-circuiting.
type multiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier combines notifiers into one. With no arguments the
// returned notifier does nothing.
func NewMultiNotifier(notifiers ...Notifier) Notifier {
	return &multiNotifier{notifiers: notifiers}
}

func (m *multiNotifier) each(fn func(Notifier) error) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := fn(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiNotifier) OrderCreated(ctx context.Context, order *model.Order, user *model.User) error {
	return m.each(func(n Notifier) error { return n.OrderCreated(ctx, order, user) })
}

func (m *multiNotifier) OrderConfirmed(ctx context.Context, order *model.Order, user *model.User) error {
	return m.each(func(n Notifier) error { return n.OrderConfirmed(ctx, order, user) })
}

func (m *multiNotifier) PaymentReceived(ctx context.Context, order *model.Order, user *model.User) error {
	return m.each(func(n Notifier) error { return n.PaymentReceived(ctx, order, user) })
}

func (m *multiNotifier) OrderReminder(ctx context.Context, order *model.Order, user *model.User) error {
	return m.each(func(n Notifier) error { return n.OrderReminder(ctx, order, user) })
}

func (m *multiNotifier) Close() error {
	return m.each(func(n Notifier) error { return n.Close() })
}
