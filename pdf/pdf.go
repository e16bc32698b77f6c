// Package pdf renders invoices into fixed-layout PDF documents stored on
// disk, one file per invoice id.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Invoice is the flattened snapshot rendered into a document. The caller
// fills it from the persisted record so the file always reflects the
// state as of the last successful generation.
type Invoice struct {
	ID           uint
	Title        string
	Description  string
	AmountHT     float64
	TVA          float64
	AmountTTC    float64
	ClientName   string
	ProjectTitle string
}

// Generator writes invoice documents into a single storage directory.
type Generator struct {
	dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

// Path returns the deterministic location of an invoice's document.
// Regeneration overwrites this path; old content is never orphaned.
func (g *Generator) Path(id uint) string {
	return filepath.Join(g.dir, fmt.Sprintf("invoice-%d.pdf", id))
}

// Generate renders the invoice and writes it at Path(inv.ID), creating
// the storage directory if needed. It returns the resolved path; on any
// failure the caller must not persist a pdf_url.
func (g *Generator) Generate(inv Invoice) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir %s: %w", g.dir, err)
	}
	doc, err := g.build(inv).Generate()
	if err != nil {
		return "", fmt.Errorf("render invoice %d: %w", inv.ID, err)
	}
	path := g.Path(inv.ID)
	if err := doc.Save(path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// build assembles the fixed template: branding header, title and
// optional description, client, optional project, date, amount block,
// footer. Content order and included fields are not configurable.
func (g *Generator) build(inv Invoice) core.Maroto {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			text.NewCol(8, "FACTURE", props.Text{Size: 18, Style: fontstyle.Bold}),
			text.NewCol(4, fmt.Sprintf("Ref. %d", inv.ID), props.Text{Size: 11, Top: 4, Align: align.Right}),
		),
		line.NewRow(4),
	)

	m.AddRow(9, text.NewCol(12, inv.Title, props.Text{Size: 13, Style: fontstyle.Bold}))
	if inv.Description != "" {
		m.AddRow(6, text.NewCol(12, inv.Description, props.Text{Size: 9}))
	}

	m.AddRow(6, text.NewCol(12, "Client: "+inv.ClientName, props.Text{Size: 10}))
	if inv.ProjectTitle != "" {
		m.AddRow(6, text.NewCol(12, "Projet: "+inv.ProjectTitle, props.Text{Size: 10}))
	}
	m.AddRows(
		row.New(6).Add(
			text.NewCol(12, "Date: "+time.Now().Format("02/01/2006"), props.Text{Size: 10}),
		),
		line.NewRow(4),
	)

	m.AddRows(
		amountRow("Montant HT", inv.AmountHT, false),
		amountRow(fmt.Sprintf("TVA (%.1f%%)", inv.TVA), inv.AmountHT*inv.TVA/100, false),
		amountRow("Total TTC", inv.AmountTTC, true),
	)

	m.AddRows(
		line.NewRow(6),
		row.New(6).Add(
			text.NewCol(12, "Merci de votre confiance.", props.Text{Size: 9, Align: align.Center}),
		),
	)
	return m
}

func amountRow(label string, value float64, emphasized bool) core.Row {
	style := fontstyle.Normal
	size := 10.0
	if emphasized {
		style = fontstyle.Bold
		size = 12
	}
	return row.New(7).Add(
		text.NewCol(8, label, props.Text{Size: size, Style: style}),
		text.NewCol(4, fmt.Sprintf("%.2f EUR", value), props.Text{Size: size, Style: style, Align: align.Right}),
	)
}
