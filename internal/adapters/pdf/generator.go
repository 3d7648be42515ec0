// Package pdf renders a tax declaration statement. One page is produced per
// declared component; each page shows the employee header and the component's
// fields grouped the way the declaration form groups them, with amounts in
// Indian notation.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/paydesk/taxdecl/internal/domain"
	"github.com/paydesk/taxdecl/internal/form"
	"github.com/paydesk/taxdecl/internal/validate"
)

// Generator implements ports.StatementGenerator.
type Generator struct{}

func New() *Generator { return &Generator{} }

// Generate writes the declaration statement PDF to w. Components appear in
// the canonical kind order; kinds absent from the statement are skipped.
func (g *Generator) Generate(_ context.Context, s *domain.Statement, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("{nb}")

	for _, kind := range domain.Kinds() {
		rec, ok := s.Components[kind]
		if !ok {
			continue
		}
		pdf.AddPage()
		if err := drawComponentPage(pdf, s, kind, rec); err != nil {
			return err
		}
	}
	if pdf.PageCount() == 0 {
		pdf.AddPage()
		drawHeader(pdf, s, "TAX DECLARATION STATEMENT")
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetXY(18, 40)
		pdf.CellFormat(0, 8, "No components declared.", "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

func drawHeader(pdf *fpdf.Fpdf, s *domain.Statement, title string) {
	pageW, _ := pdf.GetPageSize()
	marginL, marginT, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, title, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 7, "Page "+fmt.Sprint(pdf.PageNo())+" of {nb}", "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func drawComponentPage(pdf *fpdf.Fpdf, s *domain.Statement, kind domain.ComponentKind, rec domain.NestedRecord) error {
	pageW, _ := pdf.GetPageSize()
	marginL, marginT, marginR, _ := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	drawHeader(pdf, s, "TAX DECLARATION  "+strings.ToUpper(kindTitle(kind)))
	y := marginT + 13

	// ── Employee section ─────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "EMPLOYEE", "LRT", 1, "L", true, 0, "")
	y += 5.5

	colHalf := contentW / 2
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(colHalf, 6.5, s.EmployeeName, "LB", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colHalf, 6.5,
		fmt.Sprintf("Employee #%d   FY %s   generated %s",
			s.EmployeeID, s.TaxYear, s.GeneratedAt.Format("02 Jan 2006")),
		"RB", 1, "R", false, 0, "")
	y += 6.5 + 5

	// The schema drives both the row order and the labels; flattening fills
	// defaults for anything the stored record omits.
	flat, err := form.Flatten(kind, rec)
	if err != nil {
		flat = form.Defaults(kind)
	}

	descW := contentW * 0.62
	valW := contentW - descW
	rowH := 6.5

	pdf.SetY(y)
	lastSub := ""
	i := 0
	for _, def := range form.Schema(kind) {
		if def.Sub != lastSub {
			lastSub = def.Sub
			pdf.SetFillColor(240, 240, 240)
			pdf.SetFont("Helvetica", "B", 8)
			pdf.SetX(marginL)
			pdf.CellFormat(contentW, 5.5, strings.ToUpper(subTitle(def.Sub)), "1", 1, "L", true, 0, "")
			i = 0
		}
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetFont("Helvetica", "", 8.5)
		pdf.SetX(marginL)
		pdf.CellFormat(descW, rowH, def.Label, "1", 0, "L", true, 0, "")
		pdf.CellFormat(valW, rowH, displayValue(def, flat), "1", 1, "R", true, 0, "")
		i++
	}
	return nil
}

func displayValue(def form.FieldDef, flat form.FlatForm) string {
	if validate.IsAmountField(def.Type) {
		return inr(flat.Amount(def.Key))
	}
	switch v := flat[def.Key].(type) {
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprint(v)
	}
}

func kindTitle(kind domain.ComponentKind) string {
	return strings.ReplaceAll(string(kind), "_", " ")
}

func subTitle(sub string) string {
	s := strings.ReplaceAll(sub, "_", " ")
	return strings.Replace(s, "section ", "Section ", 1)
}

// inr renders an amount with Indian digit grouping and the rupee sign.
func inr(v decimal.Decimal) string {
	neg := v.IsNegative()
	s := v.Abs().Round(0).String()
	var b strings.Builder
	n := len(s)
	for i, c := range s {
		b.WriteRune(c)
		rest := n - i - 1
		if rest > 2 && rest%2 == 1 {
			b.WriteByte(',')
		}
	}
	out := "Rs " + b.String()
	if neg {
		out = "-" + out
	}
	return out
}
