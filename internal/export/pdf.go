// Package export renders nesting results to external formats: a PDF
// layout document and QR-coded placement labels.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/NestCut/internal/model"
)

// partColor represents an RGB fill color for a placed part.
type partColor struct {
	R, G, B int
}

// partColors cycles per placement so adjacent parts stay distinguishable.
var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF generates a PDF document for the ranked nesting results. Each
// sheet result gets its own page with the layout drawn to scale, followed
// by a summary page.
func ExportPDF(path string, design model.Design, results []model.NestResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, result := range results {
		pdf.AddPage()
		renderResultPage(pdf, design, result, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, design, results)

	return pdf.OutputFileAndClose(path)
}

// renderResultPage draws a single sheet result on the current PDF page.
func renderResultPage(pdf *fpdf.Fpdf, design model.Design, result model.NestResult, rank int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("#%d %s (%.0f x %.0f mm)", rank, result.Sheet.Name, result.Sheet.Width, result.Sheet.Height)
	if result.EdgeWarning {
		title += "  [close to edge]"
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Parts: %d | Used area: %.0f mm² | Wasted: %.0f mm² | Efficiency: %.1f%%",
		result.Count, result.UsedArea, result.WastedArea, result.Efficiency)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scaleX := drawWidth / result.Sheet.Width
	scaleY := drawHeight / result.Sheet.Height
	scale := math.Min(scaleX, scaleY)

	canvasW := result.Sheet.Width * scale
	canvasH := result.Sheet.Height * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Sheet background
	pdf.SetFillColor(235, 235, 228)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	main := design.MainPolygon(model.MainPolygonLargestArea)
	for i, placement := range result.Placements {
		color := partColors[i%len(partColors)]
		pdf.SetFillColor(color.R, color.G, color.B)
		pdf.SetDrawColor(40, 40, 40)
		pdf.SetLineWidth(0.2)

		world := placement.RenderedPolygon(main, design.BoundingBox)
		pts := make([]fpdf.PointType, len(world))
		for j, p := range world {
			pts[j] = fpdf.PointType{
				X: offsetX + p.X*scale,
				// The PDF y axis grows downward; flip the sheet.
				Y: offsetY + (result.Sheet.Height-p.Y)*scale,
			}
		}
		pdf.Polygon(pts, "FD")
	}
}

// renderSummaryPage draws overall statistics across all ranked sheets.
func renderSummaryPage(pdf *fpdf.Fpdf, design model.Design, results []model.NestResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, "Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(marginLeft, marginTop+headerHeight+4)
	pdf.CellFormat(0, 6, fmt.Sprintf("Design: %s (%.0f mm²)", design.Name, design.Area), "", 1, "L", false, 0, "")

	y := marginTop + headerHeight + 16
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(70, 7, "Sheet", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Count", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Efficiency", "B", 0, "R", false, 0, "")
	pdf.CellFormat(50, 7, "Wasted", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range results {
		pdf.SetX(marginLeft)
		pdf.CellFormat(70, 6, r.Sheet.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", r.Count), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f%%", r.Efficiency), "", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.0f mm²", r.WastedArea), "", 1, "R", false, 0, "")
	}
}
