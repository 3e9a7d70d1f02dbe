package services

import (
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

// GenerateBreakdownPDF renders a one-page cost summary of the export data
// and returns the raw PDF bytes.
func GenerateBreakdownPDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addTableHeader(m, data)
	for _, r := range data.Rows {
		addTableRow(m, data, r)
	}
	addSummary(m, data)
	addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, data ExportData) {
	grey := &props.Color{Red: 80, Green: 80, Blue: 80}

	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
			),
		),
	)

	offer := ""
	if data.OfferNumber != "" {
		offer = "Offer: " + data.OfferNumber
	}
	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(
				text.New("Reference: "+data.ReferenceNumber, props.Text{Size: 9, Align: align.Left, Color: grey}),
			),
			col.New(4).Add(
				text.New(offer, props.Text{Size: 9, Align: align.Center, Color: grey}),
			),
			col.New(4).Add(
				text.New("Date: "+data.CreatedDate, props.Text{Size: 9, Align: align.Right, Color: grey}),
			),
		),
	)
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Stage: %s   Mode: %s   Currency: %s", data.Stage, data.Mode, data.Currency),
					props.Text{Size: 8, Align: align.Left, Color: grey}),
			),
		),
	)
	m.AddRows(row.New(4))
}

func addTableHeader(m core.Maroto, data ExportData) {
	headerCell := props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
			col.New(7).Add(text.New("Description", headerTextLeft)).WithStyle(&headerCell),
			col.New(4).Add(text.New("Amount ("+string(data.Currency)+")", headerText)).WithStyle(&headerCell),
		),
	)
}

// addTableRow adds one breakdown line. Categories are bold, positions are
// indented on a light background, excluded positions greyed.
func addTableRow(m core.Maroto, data ExportData, r ExportRow) {
	var cellStyle *props.Cell
	textSize := 7.0
	textStyle := fontstyle.Normal
	var textColor *props.Color
	descPrefix := ""

	switch {
	case r.Level == 0:
		textStyle = fontstyle.Bold
		textSize = 8
	case r.Excluded:
		descPrefix = "  "
		textStyle = fontstyle.Italic
		textColor = &props.Color{Red: 150, Green: 150, Blue: 150}
		cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	default:
		descPrefix = "  "
		cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	}

	base := props.Text{Size: textSize, Style: textStyle, Align: align.Center, Color: textColor}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	desc := descPrefix + r.Description
	if r.Excluded {
		desc += " (excluded)"
	}

	colIndex := col.New(1).Add(text.New(r.Index, base))
	colDesc := col.New(7).Add(text.New(desc, left))
	colAmount := col.New(4).Add(text.New(FormatMoney(r.Amount, data.Currency), right))
	if cellStyle != nil {
		colIndex = colIndex.WithStyle(cellStyle)
		colDesc = colDesc.WithStyle(cellStyle)
		colAmount = colAmount.WithStyle(cellStyle)
	}

	m.AddRows(row.New(7).Add(colIndex, colDesc, colAmount))
}

func addSummary(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct {
		label string
		value string
	}{
		{"Total cost", FormatMoney(data.Breakdown.Total, data.Currency)},
		{"Excluded items (not in total)", FormatMoney(data.Breakdown.Excluded, data.Currency)},
		{"Offer price", FormatMoney(data.Price, data.Currency)},
		{"Margin", FormatPercent(data.Margin)},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(l.label, label)).WithStyle(summaryCell),
				col.New(4).Add(text.New(l.value, value)).WithStyle(summaryCell),
			),
		)
	}
}

func addFooter(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.CreatedDate),
					props.Text{Size: 7, Align: align.Left, Color: &props.Color{Red: 140, Green: 140, Blue: 140}},
				),
			),
		),
	)
}
