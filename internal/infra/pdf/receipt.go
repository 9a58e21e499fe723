// Package pdf draws sale receipts with fixed coordinates on an A4 page.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
)

// ShopName heads every receipt.
const ShopName = "Verona Marmolería"

// ReceiptRenderer implements port.ReceiptRenderer.
type ReceiptRenderer struct {
	// Compress deflates page streams; tests turn it off to inspect text.
	Compress bool
	now      func() time.Time
}

var _ port.ReceiptRenderer = (*ReceiptRenderer)(nil)

func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{Compress: true, now: time.Now}
}

// Render writes one receipt page for sale. branch may be nil.
func (r *ReceiptRenderer) Render(w io.Writer, sale domain.Sale, branch *domain.Branch) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetTitle(fmt.Sprintf("Venta %d", sale.SaleID), true)
	pdf.SetCreator(ShopName, true)
	pdf.SetCreationDate(r.now())
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	// Header band.
	pdf.SetFillColor(40, 40, 40)
	pdf.Rect(0, 0, 210, 32, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(20, 18, tr(ShopName))
	pdf.SetFont("Helvetica", "", 11)
	branchLabel := "-"
	if branch != nil {
		branchLabel = branch.Label()
	} else if sale.BranchID > 0 {
		branchLabel = domain.Branch{BranchID: sale.BranchID}.Label()
	}
	pdf.Text(20, 26, tr("Comprobante de venta · "+branchLabel))

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(20, 46, tr(fmt.Sprintf("Venta N° %d", sale.SaleID)))
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(140, 46, tr("Fecha: "+sale.CreatedAt.Display()))

	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(20, 51, 190, 51)

	y := 62.0
	field := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(20, y, tr(label))
		pdf.SetFont("Helvetica", "", 11)
		pdf.Text(65, y, tr(value))
		y += 9
	}
	field("Cliente:", sale.CustomerName)
	field("Teléfono:", orDash(sale.PhoneNumber))
	field("Método de pago:", orDash(sale.PaymentMethod))
	field("Estado:", sale.Status.Label())

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(20, y, tr("Detalle:"))
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(64, y-4.5)
	pdf.MultiCell(126, 6, tr(orDash(sale.Details)), "", "L", false)
	y = pdf.GetY() + 8

	// Totals box.
	pdf.Rect(110, y, 80, 32, "D")
	amount := func(label string, m domain.Money, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.Text(114, y+8, tr(label))
		pdf.Text(155, y+8, m.String())
		y += 9
	}
	amount("Total:", sale.TotalAmount, false)
	amount("Seña recibida:", sale.TotalMoneyEntries, false)
	amount("Saldo:", sale.Balance(), true)

	// Signature line.
	pdf.Line(20, 262, 90, 262)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(38, 267, tr("Firma del cliente"))
	pdf.Text(140, 267, tr("Emitido "+r.now().Format("02/01/2006 15:04")))

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render receipt %d: %w", sale.SaleID, err)
	}
	return pdf.Output(w)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
