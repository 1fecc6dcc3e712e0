package services

import (
	"errors"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ErrTemplateNotFound is returned when a renderer is asked for a template
// identifier it does not carry.
var ErrTemplateNotFound = errors.New("template not found")

// Template identifiers the quotation flow uses.
const (
	TemplateQuotationMain    = "quotation/main"
	TemplateQuotationRecoAir = "quotation/recoair"
)

// DocumentRenderer turns a document context into rendered bytes. The
// caller does not know how templates are stored; it only hands over a
// stable identifier.
type DocumentRenderer interface {
	Render(templateID string, ctx Namespace) ([]byte, error)
}

// PDFRenderer renders quotation documents as PDFs using maroto/v2.
type PDFRenderer struct{}

// NewPDFRenderer returns the built-in PDF document renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the named quotation document from a context namespace.
func (r *PDFRenderer) Render(templateID string, ctx Namespace) ([]byte, error) {
	switch templateID {
	case TemplateQuotationMain:
		return renderQuotation(ctx, false)
	case TemplateQuotationRecoAir:
		return renderQuotation(ctx, true)
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
}

// renderQuotation builds the quotation PDF. recoAirOnly restricts the body
// to RecoAir areas, which ship as a separate document.
func renderQuotation(ctx Namespace, recoAirOnly bool) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addQuotationHeader(m, ctx, recoAirOnly)

	areas, _ := ctx["areas"].([]ContextArea)
	rendered := 0
	for _, area := range areas {
		if recoAirOnly != area.HasRecoAir {
			continue
		}
		addAreaSection(m, area, recoAirOnly)
		rendered++
	}
	if rendered == 0 {
		addBodyLine(m, "No equipment scheduled for this document.")
	}

	addGrandTotal(m, ctx)
	addSignoff(m, ctx)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addQuotationHeader(m core.Maroto, ctx Namespace, recoAirOnly bool) {
	title := "QUOTATION"
	if recoAirOnly {
		title = "RECOAIR QUOTATION"
	}
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	gray := &props.Color{Red: 80, Green: 80, Blue: 80}
	meta := props.Text{Size: 9, Align: align.Left, Color: gray}
	metaRight := meta
	metaRight.Align = align.Right

	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(text.New(fmt.Sprintf("Project: %s", nsString(ctx, "project_name")), meta)),
			col.New(6).Add(text.New(fmt.Sprintf("Our ref: %s", nsString(ctx, "quote_ref")), metaRight)),
		),
		row.New(7).Add(
			col.New(6).Add(text.New(fmt.Sprintf("Location: %s", nsString(ctx, "location")), meta)),
			col.New(6).Add(text.New(fmt.Sprintf("Date: %s", nsString(ctx, "date")), metaRight)),
		),
	)
	if rev := nsString(ctx, "revision"); rev != "" {
		m.AddRows(
			row.New(7).Add(
				col.New(12).Add(text.New(fmt.Sprintf("Revision %s", rev), metaRight)),
			),
		)
	}

	m.AddRows(row.New(4))
	addBodyLine(m, nsString(ctx, "dear_line"))
	addBodyLine(m, fmt.Sprintf("Re: %s", nsString(ctx, "subject")))
	m.AddRows(row.New(4))
}

// addAreaSection renders one area: its schedule table, then the ancillary
// lines (cladding, fire suppression) and the area totals.
func addAreaSection(m core.Maroto, area ContextArea, recoAirOnly bool) {
	m.AddRows(
		row.New(9).Add(
			col.New(12).Add(
				text.New(area.Title, props.Text{
					Size:  11,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)

	addScheduleHeader(m, recoAirOnly)
	for _, item := range area.Items {
		addScheduleRow(m, item, recoAirOnly)
	}

	small := props.Text{Size: 8, Align: align.Left}
	smallRight := props.Text{Size: 8, Align: align.Right}

	for _, cl := range area.Cladding {
		m.AddRows(
			row.New(6).Add(
				col.New(9).Add(text.New(fmt.Sprintf("%s  %s", cl.Ref, cl.Description), small)),
				col.New(3).Add(text.New(cl.PriceText, smallRight)),
			),
		)
	}
	for _, fs := range area.FireSuppression {
		m.AddRows(
			row.New(6).Add(
				col.New(9).Add(text.New(fmt.Sprintf("%s  Ansul fire suppression, %s", fs.Ref, fs.TankText), small)),
				col.New(3).Add(text.New(fs.PriceText, smallRight)),
			),
		)
	}

	addAreaTotals(m, area)
	m.AddRows(row.New(5))
}

func addScheduleHeader(m core.Maroto, recoAirOnly bool) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: headerBg}

	cols := []struct {
		width int
		label string
	}{
		{1, "Ref"},
		{2, "Model"},
		{2, "Dimensions (mm)"},
		{2, "Extract (m³/s)"},
		{2, "Supply (m³/s)"},
		{1, "Lighting"},
		{2, "Price"},
	}
	if recoAirOnly {
		cols = []struct {
			width int
			label string
		}{
			{2, "Ref"},
			{4, "Model"},
			{3, ""},
			{3, "Price"},
		}
	}

	r := row.New(7)
	for _, c := range cols {
		r.Add(col.New(c.width).Add(text.New(c.label, headerText)).WithStyle(&headerCell))
	}
	m.AddRows(r)
}

func addScheduleRow(m core.Maroto, item ContextItem, recoAirOnly bool) {
	base := props.Text{Size: 7, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	if recoAirOnly {
		m.AddRows(
			row.New(6).Add(
				col.New(2).Add(text.New(item.Ref, left)),
				col.New(4).Add(text.New(item.Model, left)),
				col.New(3).Add(text.New("", base)),
				col.New(3).Add(text.New(item.TotalPriceText, right)),
			),
		)
		return
	}

	dims := fmt.Sprintf("%s x %s x %s", item.Length, item.Width, item.Height)
	extract := fmt.Sprintf("%s @ %s Pa", item.ExtractVolume, item.ExtractStatic)
	supply := fmt.Sprintf("%s @ %s Pa", item.MUAVolume, item.SupplyStatic)
	if item.MUAVolume == SentinelNA {
		supply = SentinelNA
	}

	m.AddRows(
		row.New(6).Add(
			col.New(1).Add(text.New(item.Ref, base)),
			col.New(2).Add(text.New(item.Model, left)),
			col.New(2).Add(text.New(dims, base)),
			col.New(2).Add(text.New(extract, base)),
			col.New(2).Add(text.New(supply, base)),
			col.New(1).Add(text.New(item.Lighting, base)),
			col.New(2).Add(text.New(item.TotalPriceText, right)),
		),
	)
}

func addAreaTotals(m core.Maroto, area ContextArea) {
	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}
	label := props.Text{Size: 8, Align: align.Right}
	value := props.Text{Size: 8, Align: align.Right}

	line := func(name, amount string) {
		if amount == "" {
			return
		}
		m.AddRows(
			row.New(6).Add(
				col.New(9).Add(text.New(name, label)).WithStyle(summaryCell),
				col.New(3).Add(text.New(amount, value)).WithStyle(summaryCell),
			),
		)
	}
	line("Delivery & installation", area.DeliveryText)
	line("Commissioning", area.CommissioningText)

	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(7).Add(
			col.New(9).Add(text.New("Area total (excl. VAT)", bold)).WithStyle(summaryCell),
			col.New(3).Add(text.New(area.TotalText, bold)).WithStyle(summaryCell),
		),
	)
}

func addGrandTotal(m core.Maroto, ctx Namespace) {
	m.AddRows(row.New(4))
	bold := props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(9).Add(
			col.New(9).Add(text.New("TOTAL (excluding VAT)", bold)),
			col.New(3).Add(text.New(nsString(ctx, "total_text"), bold)),
		),
	)
}

func addSignoff(m core.Maroto, ctx Namespace) {
	m.AddRows(row.New(6))
	addBodyLine(m, "We trust this meets with your approval and look forward to receiving your instructions.")
	m.AddRows(row.New(4))
	addBodyLine(m, "Yours faithfully,")
	addBodyLine(m, nsString(ctx, "estimator"))
}

func addBodyLine(m core.Maroto, line string) {
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(line, props.Text{Size: 9, Align: align.Left}),
			),
		),
	)
}

// nsString reads a string variable from a context namespace; absent or
// non-string values come back empty.
func nsString(ctx Namespace, key string) string {
	v, ok := ctx[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
