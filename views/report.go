// Package views renders the HTML pages served alongside the document
// downloads.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"costsheet/services"
)

// ReportData feeds the pricing report page.
type ReportData struct {
	ProjectName   string
	ProjectNumber string
	Revision      string
	Summary       *services.PricingSummary
}

// ReportPage renders a read-only pricing breakdown for one project:
// per-area subtotals, explicit delivery and commissioning rows, and the
// project total, with any pricing anomalies called out on top.
func ReportPage(data ReportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := func(format string, args ...any) error {
			_, err := fmt.Fprintf(w, format, args...)
			return err
		}
		esc := templ.EscapeString[string]

		title := fmt.Sprintf("%s — %s", data.ProjectNumber, data.ProjectName)
		if err := p(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body class="report">`, esc(title)); err != nil {
			return err
		}
		if err := p(`<h1>%s</h1>`, esc(title)); err != nil {
			return err
		}
		if data.Revision != "" {
			if err := p(`<p class="revision">Revision %s</p>`, esc(data.Revision)); err != nil {
				return err
			}
		}

		if len(data.Summary.Anomalies) > 0 {
			if err := p(`<div class="anomalies"><h2>Pricing warnings</h2><ul>`); err != nil {
				return err
			}
			for _, a := range data.Summary.Anomalies {
				if err := p(`<li>%s</li>`, esc(a.String())); err != nil {
					return err
				}
			}
			if err := p(`</ul></div>`); err != nil {
				return err
			}
		}

		for _, level := range data.Summary.Levels {
			if err := p(`<section class="level"><h2>%s</h2>`, esc(level.Name)); err != nil {
				return err
			}
			for _, area := range level.Areas {
				if err := renderArea(p, esc, area); err != nil {
					return err
				}
			}
			if err := p(`<p class="level-total">Level total: %s</p></section>`,
				esc(services.FormatGBP(level.Total))); err != nil {
				return err
			}
		}

		if err := p(`<h2 class="grand-total">Project total: %s</h2>`,
			esc(services.FormatGBP(data.Summary.Total))); err != nil {
			return err
		}
		return p(`</body></html>`)
	})
}

func renderArea(p func(string, ...any) error, esc func(string) string, area services.AreaSummary) error {
	if err := p(`<div class="area"><h3>%s</h3><table>`, esc(area.Name)); err != nil {
		return err
	}

	row := func(label string, amount float64) error {
		if amount == 0 {
			return nil
		}
		return p(`<tr><td>%s</td><td class="amount">%s</td></tr>`,
			esc(label), esc(services.FormatGBP(amount)))
	}

	if err := row("Canopies", area.CanopySubtotal); err != nil {
		return err
	}
	if err := row("Wall cladding", area.CladdingSubtotal); err != nil {
		return err
	}
	if err := row("Fire suppression", area.FireSuppSubtotal); err != nil {
		return err
	}
	if err := row("Ancillary equipment", area.AncillarySubtotal); err != nil {
		return err
	}
	if err := row("Delivery & installation", area.Delivery); err != nil {
		return err
	}
	if err := row("Commissioning", area.Commissioning); err != nil {
		return err
	}

	return p(`<tr class="total"><td>Area total</td><td class="amount">%s</td></tr></table></div>`,
		esc(services.FormatGBP(area.Total)))
}
