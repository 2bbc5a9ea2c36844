// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/brewflow-storefront/internal/config"
	"github.com/your-org/brewflow-storefront/internal/domain/order"
)

// Service renders order receipts. PDF output needs the wkhtmltopdf binary
// on PATH (or WKHTMLTOPDF_PATH).
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

// ReceiptData is what the receipt template sees
type ReceiptData struct {
	ReceiptNumber string
	PrintedAt     string
	OrderDate     string
	Currency      string
	Shop          ShopInfo
	Order         *order.Order
}

// ShopInfo is the header of the receipt
type ShopInfo struct {
	Name    string
	Address string
}

// GenerateReceipt renders o as a PDF receipt
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderReceiptHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	// narrow receipt page, like a counter printer slip
	pdfg.Dpi.Set(203)
	pdfg.PageWidth.Set(80)
	pdfg.PageHeight.Set(200)
	pdfg.MarginLeft.Set(4)
	pdfg.MarginRight.Set(4)
	pdfg.Grayscale.Set(true)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.Encoding.Set("utf-8")
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderReceiptHTML renders the receipt page
func (s *Service) RenderReceiptHTML(o *order.Order) (string, error) {
	data := ReceiptData{
		ReceiptNumber: fmt.Sprintf("RCPT-%s", o.ShortID()),
		PrintedAt:     s.now().Format("Jan 2, 2006 3:04 PM"),
		Currency:      s.config.Receipt.Currency,
		Shop: ShopInfo{
			Name:    s.config.Receipt.ShopName,
			Address: s.config.Receipt.ShopAddress,
		},
		Order: o,
	}
	if !o.CreatedAt.IsZero() {
		data.OrderDate = o.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(amount float64) string { return fmt.Sprintf("%.2f", amount) },
}).Parse(receiptHTML))

const receiptHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: "Courier New", monospace; font-size: 11px; color: #000; margin: 0; }
        .center { text-align: center; }
        .shop { font-size: 15px; font-weight: bold; }
        hr { border: 0; border-top: 1px dashed #000; }
        table { width: 100%; border-collapse: collapse; }
        td { padding: 2px 0; vertical-align: top; }
        .qty { width: 30px; }
        .amount { text-align: right; }
        .total td { font-weight: bold; font-size: 13px; border-top: 1px solid #000; }
        .status { text-transform: uppercase; font-weight: bold; }
    </style>
</head>
<body>
    <div class="center">
        <div class="shop">{{.Shop.Name}}</div>
        {{if .Shop.Address}}<div>{{.Shop.Address}}</div>{{end}}
    </div>
    <hr>
    <table>
        <tr><td>Receipt</td><td class="amount">{{.ReceiptNumber}}</td></tr>
        <tr><td>Order</td><td class="amount">{{.Order.ID}}</td></tr>
        <tr><td>Customer</td><td class="amount">{{.Order.CustomerID}}</td></tr>
        {{if .OrderDate}}<tr><td>Ordered</td><td class="amount">{{.OrderDate}}</td></tr>{{end}}
        <tr><td>Status</td><td class="amount status">{{.Order.PaymentStatus}}</td></tr>
    </table>
    <hr>
    <table>
        {{range .Order.Items}}
        <tr>
            <td class="qty">{{.Quantity}}x</td>
            <td>{{.Name}}</td>
            <td class="amount">{{if .Price}}{{$.Currency}}{{money .Price}}{{end}}</td>
        </tr>
        {{end}}
        <tr class="total">
            <td></td>
            <td>TOTAL</td>
            <td class="amount">{{.Currency}}{{money .Order.Total}}</td>
        </tr>
    </table>
    <hr>
    <div class="center">
        <p>Show this receipt at the counter when your order is ready to serve.</p>
        <p>Printed {{.PrintedAt}}</p>
    </div>
</body>
</html>
`
