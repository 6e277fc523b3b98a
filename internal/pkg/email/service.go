// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// Service sends transactional mail over SMTP. When email is disabled in
// configuration every send becomes a logged no-op, which keeps development
// environments working without a mail server.
type Service struct {
	config    *config.Config
	logger    *logrus.Logger
	templates *template.Template
}

// NewService creates a new email service
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		config:    cfg,
		logger:    logger,
		templates: loadTemplates(),
	}
}

// SendOrderConfirmation emails the shopper after an order is placed
func (s *Service) SendOrderConfirmation(ctx context.Context, data OrderConfirmationData) error {
	html, err := s.render("order_confirmation", data)
	if err != nil {
		return err
	}
	return s.send(ctx, &Message{
		To:      data.CustomerEmail,
		Subject: fmt.Sprintf("Order %s confirmed", data.OrderNumber),
		HTML:    html,
	})
}

// SendReturnStatusUpdate emails the shopper when their return changes state
func (s *Service) SendReturnStatusUpdate(ctx context.Context, data ReturnStatusData) error {
	html, err := s.render("return_status", data)
	if err != nil {
		return err
	}
	return s.send(ctx, &Message{
		To:      data.CustomerEmail,
		Subject: fmt.Sprintf("Update on return %s", data.ReturnNumber),
		HTML:    html,
	})
}

func (s *Service) send(ctx context.Context, msg *Message) error {
	if !s.config.Email.Enabled {
		s.log().WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Debug("email disabled, skipping send")
		return nil
	}
	return s.sendSMTP(ctx, msg)
}

func (s *Service) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *Service) log() *logrus.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logrus.StandardLogger()
}

// rupees formats a paise amount for display
func rupees(paise int64) string {
	return fmt.Sprintf("₹%.2f", float64(paise)/100)
}

func loadTemplates() *template.Template {
	t := template.New("emails").Funcs(template.FuncMap{"rupees": rupees})
	return template.Must(t.Parse(`
{{define "order_confirmation"}}
<html><body>
<h2>Thanks for your order, {{.CustomerName}}!</h2>
<p>Your order <strong>{{.OrderNumber}}</strong> has been placed.</p>
<table border="0" cellpadding="6">
<tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Amount</th></tr>
{{range .Items}}
<tr><td>{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}</td><td align="right">{{.Quantity}}</td><td align="right">{{rupees .Subtotal}}</td></tr>
{{end}}
<tr><td colspan="2" align="right">Subtotal</td><td align="right">{{rupees .Subtotal}}</td></tr>
{{if gt .Discount 0}}<tr><td colspan="2" align="right">Discount</td><td align="right">-{{rupees .Discount}}</td></tr>{{end}}
<tr><td colspan="2" align="right">Shipping</td><td align="right">{{if gt .Shipping 0}}{{rupees .Shipping}}{{else}}Free{{end}}</td></tr>
<tr><td colspan="2" align="right"><strong>Total</strong></td><td align="right"><strong>{{rupees .Total}}</strong></td></tr>
</table>
<p>Payment method: {{.PaymentMethod}}</p>
</body></html>
{{end}}

{{define "return_status"}}
<html><body>
<h2>Hello {{.CustomerName}},</h2>
<p>Your return <strong>{{.ReturnNumber}}</strong> for order {{.OrderNumber}} is now <strong>{{.Status}}</strong>.</p>
{{if eq .Status "refunded"}}<p>A refund of {{rupees .RefundAmount}} has been processed.</p>{{end}}
{{if eq .Status "approved"}}<p>Once we receive the items, a refund of {{rupees .RefundAmount}} will be processed.</p>{{end}}
</body></html>
{{end}}
`))
}
