// NestCut — irregular-shape nesting for sheet materials.
//
// Imports a DXF design, packs as many copies as possible onto each
// candidate sheet, and ranks the sheets by material utilisation.
//
// Build:
//
//	go build -o nestcut ./cmd/nestcut
//
// Usage:
//
//	nestcut -design part.dxf -sheets a3,a2,board-m -margin 3 -algorithm nfp
//	nestcut -design part.dxf -presets sheets.csv -pdf layout.pdf -report report.html
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/piwi3910/NestCut/internal/engine"
	"github.com/piwi3910/NestCut/internal/export"
	"github.com/piwi3910/NestCut/internal/importer"
	"github.com/piwi3910/NestCut/internal/model"
	"github.com/piwi3910/NestCut/internal/report"
)

func main() {
	var (
		designPath  = flag.String("design", "", "DXF file with the design to nest (required)")
		sheetIDs    = flag.String("sheets", "", "comma-separated preset ids (default: all presets)")
		presetsPath = flag.String("presets", "", "CSV or Excel file with custom sheet presets")
		margin      = flag.Float64("margin", 3, "minimum gap between parts and to the sheet edge, mm")
		rotStep     = flag.Float64("rotation-step", 90, "rotation step in degrees, must divide 360")
		algorithm   = flag.String("algorithm", "nfp", "nesting algorithm: fast, nfp, nfp-ga")
		seed        = flag.Int64("seed", 42, "random seed for the genetic search")
		pdfPath     = flag.String("pdf", "", "write a PDF layout to this path")
		labelsPath  = flag.String("labels", "", "write QR placement labels to this path")
		reportPath  = flag.String("report", "", "write an HTML utilisation report to this path")
	)
	flag.Parse()

	if *designPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	imported := importer.ImportDXF(*designPath)
	for _, w := range imported.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(imported.Errors) > 0 {
		for _, e := range imported.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		os.Exit(1)
	}
	design := imported.Designs[0]

	sheets, err := resolveSheets(*sheetIDs, *presetsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	settings := model.DefaultSettings()
	settings.Margin = *margin
	settings.RotationStep = *rotStep
	settings.Algorithm = model.Algorithm(*algorithm)

	driver := engine.NewDriver(settings)
	driver.Seed = *seed
	driver.Progress = func(percent float64, message string) {
		fmt.Fprintf(os.Stderr, "\r%5.1f%% %-50s", percent, message)
	}

	results, err := driver.Nest(context.Background(), design, sheets)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if errors.Is(err, engine.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "cancelled")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("The design does not fit on any candidate sheet.")
		os.Exit(1)
	}

	printRanking(design, results)

	if *pdfPath != "" {
		if err := export.ExportPDF(*pdfPath, design, results); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Layout written to %s\n", *pdfPath)
	}
	if *labelsPath != "" {
		if err := export.ExportLabels(*labelsPath, design, results); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Labels written to %s\n", *labelsPath)
	}
	if *reportPath != "" {
		if err := report.WriteHTMLFile(*reportPath, design, results); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", *reportPath)
	}
}

// resolveSheets builds the candidate sheet list from preset ids and an
// optional custom preset file.
func resolveSheets(sheetIDs, presetsPath string) ([]model.SheetPreset, error) {
	var sheets []model.SheetPreset

	if sheetIDs != "" {
		for _, id := range strings.Split(sheetIDs, ",") {
			id = strings.TrimSpace(id)
			preset, ok := model.PresetByID(id)
			if !ok {
				return nil, fmt.Errorf("unknown sheet preset %q", id)
			}
			sheets = append(sheets, preset)
		}
	}

	if presetsPath != "" {
		var imported importer.ImportResult
		if strings.HasSuffix(strings.ToLower(presetsPath), ".xlsx") {
			imported = importer.ImportPresetsExcel(presetsPath)
		} else {
			imported = importer.ImportPresetsCSV(presetsPath)
		}
		for _, w := range imported.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if len(imported.Errors) > 0 {
			return nil, fmt.Errorf("preset import failed: %s", strings.Join(imported.Errors, "; "))
		}
		sheets = append(sheets, imported.Presets...)
	}

	if len(sheets) == 0 {
		sheets = model.SheetPresets
	}
	return sheets, nil
}

// printRanking writes the ranked result table to stdout.
func printRanking(design model.Design, results []model.NestResult) {
	fmt.Printf("Design %q: area %.0f mm², bbox %.0f x %.0f mm\n\n",
		design.Name, design.Area, design.BoundingBox.Width, design.BoundingBox.Height)
	fmt.Printf("%-4s %-20s %-14s %6s %10s %12s\n", "#", "Sheet", "Size", "Count", "Efficiency", "Wasted")

	for i, r := range results {
		warn := ""
		if r.EdgeWarning {
			warn = "  (within 3 mm of edge)"
		}
		fmt.Printf("%-4d %-20s %5.0fx%-7.0f %6d %9.1f%% %9.0f mm²%s\n",
			i+1, r.Sheet.Name, r.Sheet.Width, r.Sheet.Height, r.Count, r.Efficiency, r.WastedArea, warn)
	}
}
