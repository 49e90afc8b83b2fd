// Package pdf genera el comprobante de venta en PDF.
//
// Layout (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Comercio (vendedor)  │  N° Venta + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Subtotal                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + Método de pago                                      │
//	│  FOOTER: QR con id, fecha y total                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/domain/entity"
)

var _ sales.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ReceiptGenerator implementa sales.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct{}

func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderReceipt genera el PDF y devuelve sus bytes. products puede no tener un producto ya borrado;
// esa línea se muestra como "Producto #id".
func (g *ReceiptGenerator) RenderReceipt(sale *entity.Sale, products map[int64]*entity.Product, seller *entity.User) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("pdf: venta nil")
	}
	shop := sellerName(seller)
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Comprobante de venta N° %d", sale.ID), true).
		WithAuthor(shop, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sale, shop, seller))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(sale.Items, products)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(sale))
	m.AddRows(line.NewRow(3))
	m.AddRows(qrRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(sale *entity.Sale, shop string, seller *entity.User) core.Row {
	contact := ""
	if seller != nil {
		contact = strings.Join(nonEmptyParts(seller.Email, seller.Phone, seller.Address), "   |   ")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(shop, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(contact, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+sale.Date.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func itemRows(items []entity.SaleItem, products map[int64]*entity.Product) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		name := fmt.Sprintf("Producto #%d", it.ProductID)
		if p, ok := products[it.ProductID]; ok && p != nil {
			name = p.Name
		}
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(FormatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(FormatMoney(it.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalRow(sale *entity.Sale) core.Row {
	return row.New(16).Add(
		col.New(6).Add(
			text.New("Método de pago: "+sale.PaymentMethod, props.Text{Size: 9, Top: 2, Color: colorGray}),
		),
		col.New(3).Add(
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2}),
		),
		col.New(3).Add(
			text.New(FormatMoney(sale.TotalAmount), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1}),
		),
	)
}

func qrRow(sale *entity.Sale) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(QRPayload(sale), props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 10, Top: 8, Left: 3, Color: colorPrimary}),
			text.New("Este comprobante no es una factura.", props.Text{Size: 8, Top: 16, Left: 3, Color: colorGray}),
		),
	)
}

// QRPayload contenido del código QR del comprobante.
func QRPayload(sale *entity.Sale) string {
	return fmt.Sprintf("venta=%d;fecha=%s;total=%s", sale.ID, sale.Date.UTC().Format("2006-01-02T15:04:05Z"), sale.TotalAmount.StringFixed(2))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sellerName(u *entity.User) string {
	if u == nil {
		return "Comercio"
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

func nonEmptyParts(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
