package notification

import (
	"context"
	"errors"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTemplateLoader_Load(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "order_created.html"), []byte("<p>Hello {{.CustomerName}}</p>"), 0o644)
	require.NoError(t, err)

	loader := NewFileTemplateLoader(dir, zerolog.Nop())

	source, err := loader.Load(context.Background(), "order_created.html")
	require.NoError(t, err)
	assert.Contains(t, source, "{{.CustomerName}}")
}

func TestFileTemplateLoader_Load_Missing(t *testing.T) {
	loader := NewFileTemplateLoader(t.TempDir(), zerolog.Nop())

	_, err := loader.Load(context.Background(), "nope.html")
	assert.Error(t, err)
}

// failingLoader always errors, standing in for an unreachable S3 bucket.
type failingLoader struct{}

func (failingLoader) Load(ctx context.Context, name string) (string, error) {
	return "", errors.New("bucket unreachable")
}

func TestFallbackTemplateLoader_FallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "order_reminder.html"), []byte("local copy"), 0o644)
	require.NoError(t, err)

	fileLoader := NewFileTemplateLoader(dir, zerolog.Nop())
	loader := NewFallbackTemplateLoader(failingLoader{}, fileLoader, "templates/", true, zerolog.Nop())

	source, err := loader.Load(context.Background(), "order_reminder.html")
	require.NoError(t, err)
	assert.Equal(t, "local copy", source)
}

func TestFallbackTemplateLoader_S3Disabled(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "order_created.html"), []byte("local"), 0o644)
	require.NoError(t, err)

	// The S3 loader would panic if called, proving it is skipped.
	loader := NewFallbackTemplateLoader(nil, NewFileTemplateLoader(dir, zerolog.Nop()), "templates/", false, zerolog.Nop())

	source, err := loader.Load(context.Background(), "order_created.html")
	require.NoError(t, err)
	assert.Equal(t, "local", source)
}

func sampleOrder() (*model.Order, *model.User) {
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		TotalPrice:    1798,
		Items: []model.OrderItem{
			{ProductName: "Silk Saree", Price: 899, Quantity: 2, Subtotal: 1798, SelectedColor: "Red"},
		},
		ShippingAddress: &model.ShippingAddress{Line1: "12 MG Road", City: "Chennai", Pincode: "600001"},
	}
	user := &model.User{ID: order.UserID, FullName: "Priya S", Email: "priya@example.com"}
	return order, user
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zerolog.Nop())
	order, user := sampleOrder()

	assert.NoError(t, n.OrderCreated(context.Background(), order, user))
	assert.NoError(t, n.OrderConfirmed(context.Background(), order, user))
	assert.NoError(t, n.PaymentReceived(context.Background(), order, user))
	assert.NoError(t, n.OrderReminder(context.Background(), order, nil))
	assert.NoError(t, n.Close())
}

// countingNotifier records calls and optionally fails.
type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) OrderCreated(ctx context.Context, o *model.Order, u *model.User) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) OrderConfirmed(ctx context.Context, o *model.Order, u *model.User) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) PaymentReceived(ctx context.Context, o *model.Order, u *model.User) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) OrderReminder(ctx context.Context, o *model.Order, u *model.User) error {
	c.calls++
	return c.err
}
func (c *countingNotifier) Close() error { return c.err }

func TestMultiNotifier_FansOutPastFailures(t *testing.T) {
	failing := &countingNotifier{err: errors.New("smtp down")}
	healthy := &countingNotifier{}
	multi := NewMultiNotifier(failing, healthy)

	order, user := sampleOrder()
	err := multi.OrderCreated(context.Background(), order, user)

	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls, "failure in one notifier must not skip the others")
}

func TestMultiNotifier_Empty(t *testing.T) {
	multi := NewMultiNotifier()
	order, user := sampleOrder()

	assert.NoError(t, multi.OrderCreated(context.Background(), order, user))
	assert.NoError(t, multi.Close())
}

func TestEmailNotifier_DefaultTemplates(t *testing.T) {
	n := &emailNotifier{
		loader: failingLoader{},
		logger: zerolog.Nop(),
		cache:  make(map[string]*template.Template),
	}

	for _, name := range []string{TemplateOrderCreated, TemplateOrderConfirmed, TemplatePaymentReceived, TemplateOrderReminder} {
		tmpl, err := n.lookup(context.Background(), name)
		require.NoError(t, err, name)

		order, user := sampleOrder()
		var body strings.Builder
		err = tmpl.Execute(&body, mailData{Order: order, CustomerName: user.FullName, Address: "12 MG Road, Chennai, 600001"})
		require.NoError(t, err, name)
		assert.Contains(t, body.String(), order.ID.String())
		assert.Contains(t, body.String(), user.FullName)
	}
}

func TestEmailNotifier_CachesParsedTemplates(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, TemplateOrderCreated), []byte("<p>v1 {{.CustomerName}}</p>"), 0o644)
	require.NoError(t, err)

	n := &emailNotifier{
		loader: NewFileTemplateLoader(dir, zerolog.Nop()),
		logger: zerolog.Nop(),
		cache:  make(map[string]*template.Template),
	}

	first, err := n.lookup(context.Background(), TemplateOrderCreated)
	require.NoError(t, err)

	// Changing the file on disk must not affect the cached template.
	err = os.WriteFile(filepath.Join(dir, TemplateOrderCreated), []byte("<p>v2</p>"), 0o644)
	require.NoError(t, err)

	second, err := n.lookup(context.Background(), TemplateOrderCreated)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
