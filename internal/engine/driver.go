package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/piwi3910/NestCut/internal/clip"
	"github.com/piwi3910/NestCut/internal/collide"
	"github.com/piwi3910/NestCut/internal/model"
)

// Driver runs the per-sheet strategy race and ranks the candidate sheets
// by utilisation. It is the single entry point the dispatch layer calls.
type Driver struct {
	Settings model.NestSettings
	MainMode model.MainPolygonMode

	// Seed fixes the genetic search RNG. Runs with equal inputs and equal
	// seeds produce identical placements.
	Seed int64

	// Progress, when set, receives advisory progress reports. The driver
	// yields between sheets; cancellation is observed there and inside the
	// BLF and GA loops.
	Progress func(percent float64, message string)
}

// NewDriver returns a driver with the given settings and a fixed default
// seed.
func NewDriver(settings model.NestSettings) *Driver {
	return &Driver{Settings: settings, MainMode: model.MainPolygonLargestArea, Seed: 42}
}

// Nest packs the design onto every candidate sheet, returning results
// ranked by descending efficiency. Sheets on which nothing fits are
// omitted. The only error returned is the cancellation sentinel; an
// unavailable kernel only skips the NFP-based variants.
func (d *Driver) Nest(ctx context.Context, design model.Design, sheets []model.SheetPreset) ([]model.NestResult, error) {
	clip.Init()

	if design.Empty() {
		return nil, nil
	}

	var results []model.NestResult
	for i, sheet := range sheets {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		d.report(float64(i)/float64(len(sheets))*100, fmt.Sprintf("nesting on %s", sheet.Name))

		result, err := d.nestSheet(ctx, design, sheet)
		if err != nil {
			return nil, err
		}
		if result.Count == 0 {
			continue // no result for this sheet; skipped, not an error
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Efficiency > results[j].Efficiency
	})
	d.report(100, "done")
	return results, nil
}

// nestSheet races the strategy set configured by the algorithm choice and
// keeps the variant with the most placements. Ties go to the variant
// discovered first.
func (d *Driver) nestSheet(ctx context.Context, design model.Design, sheet model.SheetPreset) (model.NestResult, error) {
	margin := d.Settings.Margin

	best := RotationSweep(design, sheet, margin, d.MainMode)

	mixed := MixedGridPack(design, sheet, margin, d.MainMode)
	if mixed.Count > best.Count {
		best = mixed
	}

	if d.Settings.Algorithm == model.AlgorithmNFP || d.Settings.Algorithm == model.AlgorithmNFPGA {
		placer := NewPlacer(d.Settings)
		placer.MainMode = d.MainMode
		blf, err := placer.Pack(ctx, design, sheet)
		switch {
		case err == ErrKernelUnavailable:
			// Kernel cold start: skip the NFP variant, keep the fast ones.
		case err != nil:
			return model.NestResult{}, err
		case blf.Count > best.Count:
			best = blf
		}
	}

	if d.Settings.Algorithm == model.AlgorithmNFPGA {
		ga := NewGeneticNester(d.Settings, design, sheet, d.Seed)
		ga.Progress = func(gen, total int) {
			if total > 0 {
				d.report(float64(gen)/float64(total)*100, fmt.Sprintf("generation %d/%d on %s", gen, total, sheet.Name))
			}
		}
		evolved, err := ga.Run(ctx)
		switch {
		case err == ErrKernelUnavailable:
		case err != nil:
			return model.NestResult{}, err
		case evolved.Count > best.Count:
			best = evolved
		}
	}

	best.Sheet = sheet
	best.ComputeAreas(design.Area)
	best.EdgeWarning = d.edgeWarning(design, best)
	return best, nil
}

// edgeWarning reports whether any placement comes within the warning
// distance of a sheet edge.
func (d *Driver) edgeWarning(design model.Design, result model.NestResult) bool {
	main := design.MainPolygon(d.MainMode)
	for _, p := range result.Placements {
		rendered := p.RenderedPolygon(main, design.BoundingBox)
		if collide.MinDistanceToBounds(rendered, result.Sheet.Width, result.Sheet.Height) < model.EdgeWarningDistance {
			return true
		}
	}
	return false
}

func (d *Driver) report(percent float64, message string) {
	if d.Progress != nil {
		d.Progress(percent, message)
	}
}
