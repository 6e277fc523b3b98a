// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service renders order invoices as PDF
type Service struct {
	config   *config.Config
	template *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	t := template.New("invoice").Funcs(template.FuncMap{
		"rupees": func(paise int64) string {
			return fmt.Sprintf("₹%.2f", float64(paise)/100)
		},
	})
	return &Service{
		config:   cfg,
		template: template.Must(t.Parse(invoiceTemplate)),
	}
}

// InvoiceData feeds the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Company       CompanyInfo
}

// CompanyInfo is the seller block printed on the invoice
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// GenerateInvoice renders a PDF invoice for an order
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   time.Now().Format("January 2, 2006"),
		Order:         o,
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
		},
	}

	var html bytes.Buffer
	if err := s.template.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html.Bytes()))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 20px; margin-bottom: 30px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; }
        .meta td { padding: 4px 12px 4px 0; }
        .customer { margin: 20px 0 30px 0; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 8px; color: #374151; }
        .items { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items th, .items td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items th { background-color: #f8f9fa; }
        .items .num { text-align: right; width: 90px; }
        .totals { float: right; width: 300px; }
        .totals td { padding: 6px 8px; border-bottom: 1px solid #eee; }
        .totals .label { text-align: right; font-weight: bold; }
        .totals .amount { text-align: right; width: 110px; }
        .grand { font-size: 18px; font-weight: bold; border-top: 2px solid #333 !important; }
        .footer { margin-top: 60px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="invoice-title">INVOICE</div>
        <table class="meta">
            <tr><td><strong>{{.Company.Name}}</strong></td><td>Invoice #: {{.InvoiceNumber}}</td></tr>
            <tr><td>{{.Company.Address}}</td><td>Invoice Date: {{.InvoiceDate}}</td></tr>
            <tr><td>{{.Company.Email}} {{.Company.Phone}}</td><td>Order #: {{.Order.OrderNumber}}</td></tr>
        </table>
    </div>

    <div class="customer">
        <div class="section-title">Bill To</div>
        <p><strong>{{.Order.CustomerName}}</strong></p>
        <p>{{.Order.AddressLine}}</p>
        <p>{{.Order.City}}, {{.Order.State}} {{.Order.PostalCode}}</p>
        <p>{{.Order.CustomerEmail}}{{if .Order.CustomerPhone}} · {{.Order.CustomerPhone}}{{end}}</p>
        <p>Payment: {{.Order.PaymentMethod}} · Status: {{.Order.Status}}</p>
    </div>

    <table class="items">
        <thead>
            <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td><strong>{{.ProductName}}</strong>{{if .Color}}<br><small>{{.Color}}{{if .Size}} / {{.Size}}{{end}}</small>{{else if .Size}}<br><small>{{.Size}}</small>{{end}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{rupees .Price}}</td>
                <td class="num">{{rupees .Subtotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td class="label">Subtotal:</td><td class="amount">{{rupees .Order.TotalAmount}}</td></tr>
            {{if gt .Order.DiscountAmount 0}}
            <tr><td class="label">Discount{{if .Order.DiscountCode}} ({{.Order.DiscountCode}}){{end}}:</td><td class="amount">-{{rupees .Order.DiscountAmount}}</td></tr>
            {{end}}
            <tr><td class="label">Shipping:</td><td class="amount">{{if gt .Order.ShippingCost 0}}{{rupees .Order.ShippingCost}}{{else}}Free{{end}}</td></tr>
            <tr class="grand"><td class="label">Total:</td><td class="amount">{{rupees .Order.FinalAmount}}</td></tr>
        </table>
    </div>

    <div style="clear: both;"></div>

    <div class="footer">
        <p>Thank you for shopping with {{.Company.Name}}!</p>
        <p>Questions about this invoice? Contact {{.Company.Email}}</p>
    </div>
</body>
</html>
`
