package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
)

func sampleResults() (model.Design, []model.NestResult) {
	design := model.NewDesign("L", []geom.Polygon{{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 30}, {X: 0, Y: 30},
	}})
	result := model.NestResult{
		Sheet: model.SheetPreset{ID: "s", Name: "Test Sheet", Width: 100, Height: 100},
		Placements: []model.Placement{
			{DesignID: design.ID, X: 3, Y: 3, Rotation: 0},
			{DesignID: design.ID, X: 30, Y: 3, Rotation: 90},
		},
	}
	result.ComputeAreas(design.Area)
	return design, []model.NestResult{result}
}

func TestExportPDF_WritesFile(t *testing.T) {
	design, results := sampleResults()
	path := filepath.Join(t.TempDir(), "layout.pdf")

	require.NoError(t, ExportPDF(path, design, results))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500), "the PDF should contain rendered pages")
}

func TestExportPDF_NoResults(t *testing.T) {
	design, _ := sampleResults()
	err := ExportPDF(filepath.Join(t.TempDir(), "x.pdf"), design, nil)
	assert.Error(t, err)
}

func TestExportLabels_WritesFile(t *testing.T) {
	design, results := sampleResults()
	path := filepath.Join(t.TempDir(), "labels.pdf")

	require.NoError(t, ExportLabels(path, design, results))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
}

func TestExportLabels_NoPlacements(t *testing.T) {
	design, results := sampleResults()
	results[0].Placements = nil

	err := ExportLabels(filepath.Join(t.TempDir(), "x.pdf"), design, results)
	assert.Error(t, err)
}
