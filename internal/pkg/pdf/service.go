// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/berkelium/storefront/internal/config"
	"github.com/berkelium/storefront/internal/domain/order"
)

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// Service handles PDF generation
type Service struct {
	config *config.Config
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		now:    time.Now,
	}
}

// GenerateReceipt renders a receipt as PDF. Requires the wkhtmltopdf binary.
func (s *Service) GenerateReceipt(receipt *order.Receipt) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderHTML(receipt)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderHTML renders the receipt page
func (s *Service) RenderHTML(receipt *order.Receipt) ([]byte, error) {
	data := ReceiptData{
		Receipt:  receipt,
		IssuedOn: s.now().Format("January 2, 2006"),
		PlacedOn: receipt.PlacedAt.Format("January 2, 2006"),
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	Receipt  *order.Receipt
	IssuedOn string
	PlacedOn string
	Company  CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Email   string
	Website string
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.Receipt.Number}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .title { font-size: 28px; font-weight: bold; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; }
        .items { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items th, .items td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items th { background-color: #f8f9fa; }
        .num { text-align: right; }
        .totals { float: right; width: 300px; }
        .totals td { padding: 6px; border-bottom: 1px solid #eee; }
        .total-row { font-size: 18px; font-weight: bold; }
        .footer { clear: both; margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Company.Name}}</h1>
        <div class="title">RECEIPT</div>
        <p><strong>Order:</strong> {{.Receipt.Number}}</p>
        <p><strong>Placed:</strong> {{.PlacedOn}}</p>
        <p><strong>Issued:</strong> {{.IssuedOn}}</p>
        <p><strong>Email:</strong> {{.Receipt.Email}}</p>
    </div>

    {{with .Receipt.ShippingAddress}}
    <div>
        <div class="section-title">Ship To:</div>
        <p><strong>{{.FirstName}} {{.LastName}}</strong></p>
        {{if .Company}}<p>{{.Company}}</p>{{end}}
        <p>{{.Address1}}</p>
        {{if .Address2}}<p>{{.Address2}}</p>{{end}}
        <p>{{.City}}, {{.Province}} {{.PostalCode}}</p>
        <p>{{.CountryCode}}</p>
    </div>
    {{end}}
    {{if .Receipt.ShippingMethod}}<p><strong>Shipping method:</strong> {{.Receipt.ShippingMethod}}</p>{{end}}

    <table class="items">
        <thead>
            <tr><th>Item</th><th>SKU</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Receipt.Lines}}
            <tr>
                <td><strong>{{.Title}}</strong>{{if .Variant}}<br><small>{{.Variant}}</small>{{end}}</td>
                <td>{{.SKU}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.UnitPrice}}</td>
                <td class="num">{{.Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td>Subtotal:</td><td class="num">{{.Receipt.Subtotal}}</td></tr>
            <tr><td>Shipping:</td><td class="num">{{.Receipt.Shipping}}</td></tr>
            <tr><td>Tax:</td><td class="num">{{.Receipt.Tax}}</td></tr>
            <tr class="total-row"><td>Total:</td><td class="num">{{.Receipt.Total}}</td></tr>
        </table>
    </div>

    <div class="footer">
        <p>Thank you for your order!</p>
        <p>Questions? Contact us at {{.Company.Email}} or visit {{.Company.Website}}</p>
    </div>
</body>
</html>
`
