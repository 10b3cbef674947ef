package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/chandraa-ads/sthree-backend/internal/config"
	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Template names resolved through the TemplateLoader.
const (
	TemplateOrderCreated    = "order_created.html"
	TemplateOrderConfirmed  = "order_confirmed.html"
	TemplatePaymentReceived = "payment_received.html"
	TemplateOrderReminder   = "order_reminder.html"
)

// defaultTemplates are used when neither S3 nor the local template
// directory can serve a template.
var defaultTemplates = map[string]string{
	TemplateOrderCreated: `<div style="font-family:sans-serif;color:#333;">
<h2>Order placed #{{.Order.ID}}</h2>
<p>Dear {{.CustomerName}}, thank you for your order.</p>
{{template "items" .}}
<p><strong>Total:</strong> ₹{{.Order.TotalPrice}}</p>
<p><strong>Shipping to:</strong> {{.Address}}</p>
</div>`,
	TemplateOrderConfirmed: `<div style="font-family:sans-serif;color:#333;">
<h2>Order confirmed #{{.Order.ID}}</h2>
<p>Dear {{.CustomerName}}, your order has been confirmed and is being prepared.</p>
{{template "items" .}}
<p><strong>Total:</strong> ₹{{.Order.TotalPrice}}</p>
</div>`,
	TemplatePaymentReceived: `<div style="font-family:sans-serif;color:#333;">
<h2>Payment received for order #{{.Order.ID}}</h2>
<p>Dear {{.CustomerName}}, we have received your payment of ₹{{.Order.TotalPrice}}.</p>
{{if .Order.PaymentInfo}}<p><strong>Transaction:</strong> {{.Order.PaymentInfo.TransactionID}} ({{.Order.PaymentInfo.Method}})</p>{{end}}
</div>`,
	TemplateOrderReminder: `<div style="font-family:sans-serif;color:#333;">
<h2>Your order #{{.Order.ID}} is waiting</h2>
<p>Dear {{.CustomerName}}, your order is still pending. Complete the payment to have it shipped.</p>
<p><strong>Total:</strong> ₹{{.Order.TotalPrice}}</p>
</div>`,
}

// itemsPartial renders the order line items table shared by all templates.
const itemsPartial = `{{define "items"}}<table style="border-collapse:collapse;">
<tr><th style="padding:8px;">Product</th><th style="padding:8px;">Size</th><th style="padding:8px;">Color</th><th style="padding:8px;">Price</th><th style="padding:8px;">Qty</th><th style="padding:8px;">Subtotal</th></tr>
{{range .Order.Items}}<tr style="border-bottom:1px solid #ddd;">
<td style="padding:8px;">{{.ProductName}}</td>
<td style="padding:8px;">{{if .SelectedSize}}{{.SelectedSize}}{{else}}-{{end}}</td>
<td style="padding:8px;">{{if .SelectedColor}}{{.SelectedColor}}{{else}}-{{end}}</td>
<td style="padding:8px;">₹{{.Price}}</td>
<td style="padding:8px;">{{.Quantity}}</td>
<td style="padding:8px;">₹{{.Subtotal}}</td>
</tr>{{end}}
</table>{{end}}`

// mailData is the payload rendered into email templates.
type mailData struct {
	Order        *model.Order
	CustomerName string
	Address      string
}

// emailNotifier delivers order notifications over SMTP to both the customer
// and the shop admin.
type emailNotifier struct {
	dialer     *gomail.Dialer
	from       string
	adminEmail string
	loader     TemplateLoader
	logger     zerolog.Logger

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewEmailNotifier creates an SMTP-backed notifier.
func NewEmailNotifier(cfg config.SMTPConfig, loader TemplateLoader, logger zerolog.Logger) Notifier {
	return &emailNotifier{
		dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:       cfg.From,
		adminEmail: cfg.AdminEmail,
		loader:     loader,
		logger:     logger.With().Str("notifier", "email").Logger(),
		cache:      make(map[string]*template.Template),
	}
}

// lookup loads and parses a template, falling back to the built-in default
// when neither S3 nor the local directory can serve it. Parsed templates
// are cached.
func (n *emailNotifier) lookup(ctx context.Context, name string) (*template.Template, error) {
	n.mu.Lock()
	if tmpl, ok := n.cache[name]; ok {
		n.mu.Unlock()
		return tmpl, nil
	}
	n.mu.Unlock()

	source, err := n.loader.Load(ctx, name)
	if err != nil {
		n.logger.Warn().Err(err).Str("template", name).Msg("using built-in default template")
		source = defaultTemplates[name]
	}

	tmpl, err := template.New(name).Parse(itemsPartial + source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	n.mu.Lock()
	n.cache[name] = tmpl
	n.mu.Unlock()

	return tmpl, nil
}

func (n *emailNotifier) send(ctx context.Context, templateName, subject string, order *model.Order, user *model.User) error {
	if user == nil || user.Email == "" {
		return fmt.Errorf("no recipient email for order %s", order.ID)
	}

	tmpl, err := n.lookup(ctx, templateName)
	if err != nil {
		return err
	}

	data := mailData{
		Order:        order,
		CustomerName: user.FullName,
	}
	if order.ShippingAddress != nil {
		data.Address = fmt.Sprintf("%s, %s, %s",
			order.ShippingAddress.Line1, order.ShippingAddress.City, order.ShippingAddress.Pincode)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render template %s: %w", templateName, err)
	}

	recipients := []string{user.Email}
	if n.adminEmail != "" {
		recipients = append(recipients, n.adminEmail)
	}

	for _, to := range recipients {
		msg := gomail.NewMessage()
		msg.SetAddressHeader("From", n.from, "Shop Orders")
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", body.String())

		if err := n.dialer.DialAndSend(msg); err != nil {
			n.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("recipient", to).
				Msg("failed to send notification email")
			return fmt.Errorf("failed to send notification email to %s: %w", to, err)
		}
	}

	n.logger.Info().
		Str("order_id", order.ID.String()).
		Str("template", templateName).
		Int("recipients", len(recipients)).
		Msg("notification email sent")

	return nil
}

func (n *emailNotifier) OrderCreated(ctx context.Context, order *model.Order, user *model.User) error {
	subject := fmt.Sprintf("Order placed #%s", order.ID)
	return n.send(ctx, TemplateOrderCreated, subject, order, user)
}

func (n *emailNotifier) OrderConfirmed(ctx context.Context, order *model.Order, user *model.User) error {
	subject := fmt.Sprintf("Order confirmed #%s", order.ID)
	return n.send(ctx, TemplateOrderConfirmed, subject, order, user)
}

func (n *emailNotifier) PaymentReceived(ctx context.Context, order *model.Order, user *model.User) error {
	subject := fmt.Sprintf("Payment received for order #%s", order.ID)
	return n.send(ctx, TemplatePaymentReceived, subject, order, user)
}

func (n *emailNotifier) OrderReminder(ctx context.Context, order *model.Order, user *model.User) error {
	subject := fmt.Sprintf("Your order #%s is waiting", order.ID)
	return n.send(ctx, TemplateOrderReminder, subject, order, user)
}

func (n *emailNotifier) Close() error {
	return nil
}
