// Package pdf genera el comprobante de suscripción de una empresa.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del portal │ N° Comprobante + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Razón social + NIT + email                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Plan | Periodo | Moneda | Importe                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO + QR con la referencia de pago                       │
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

	"github.com/jhoicas/crm-portal-api/internal/application/subscription"
	"github.com/jhoicas/crm-portal-api/internal/domain/entity"
)

var _ subscription.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa subscription.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	issuer string
}

// NewMarotoReceiptGenerator construye el generador; issuer es el nombre que encabeza el comprobante.
func NewMarotoReceiptGenerator(issuer string) *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{issuer: nonEmpty(issuer, "CRM Portal")}
}

// Receipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) Receipt(data subscription.ReceiptData) ([]byte, error) {
	if data.Company == nil || data.Subscription == nil || data.Plan == nil {
		return nil, fmt.Errorf("pdf: datos incompletos para el comprobante")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de suscripción", true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(data.Company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(planRow(data.Plan, data.Subscription))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(line.NewRow(3))
	m.AddRows(statusRows(data.Subscription)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReceiptGenerator) headerRow(data subscription.ReceiptData) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.issuer, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Comprobante de suscripción", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(receiptNumber(data.Subscription), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+data.IssuedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(company *entity.Company) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("NIT: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(company.TaxID, "—"),
				nonEmpty(company.Email, "—"),
				nonEmpty(company.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Plan", 4, align.Left),
		h("Periodo", 4, align.Left),
		h("Moneda", 1, align.Center),
		h("Importe", 3, align.Right),
	)
}

func planRow(plan *entity.SubscriptionPlan, sub *entity.Subscription) core.Row {
	period := fmt.Sprintf("%s - %s",
		sub.CurrentPeriodStart.Format("02/01/2006"),
		sub.CurrentPeriodEnd.Format("02/01/2006"),
	)
	return row.New(7).Add(
		col.New(4).Add(text.New(plan.Name, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(4).Add(text.New(period, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(1).Add(text.New(strings.ToUpper(plan.Currency), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New(formatAmount(plan.Amount.StringFixed(2)), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
	)
}

// statusRows: estado de la suscripción y QR con la referencia de pago.
func statusRows(sub *entity.Subscription) []core.Row {
	status := "Estado: " + sub.Status
	if sub.CancelAtPeriodEnd {
		status += " (se cancela al final del periodo)"
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(status, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
		)),
	}
	if sub.PaymentRef == "" {
		return rows
	}
	rows = append(rows, row.New(40).Add(
		col.New(3).Add(code.NewQr(sub.PaymentRef, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Referencia de pago:", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(sub.PaymentRef, props.Text{Style: fontstyle.Bold, Size: 9, Top: 10, Left: 3}),
		),
	))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func receiptNumber(sub *entity.Subscription) string {
	id := strings.ReplaceAll(sub.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "SUB-" + strings.ToUpper(id)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount inserta puntos de miles y coma decimal: "1234567.50" → "1.234.567,50".
func formatAmount(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf)
	if frac != "" {
		out += "," + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
