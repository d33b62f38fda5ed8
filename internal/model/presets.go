package model

import "github.com/google/uuid"

// SheetPreset describes one candidate sheet size.
type SheetPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Width    float64 `json:"width"`  // mm
	Height   float64 `json:"height"` // mm
	Category string  `json:"category"`
}

// NewSheetPreset creates a preset with a fresh id.
func NewSheetPreset(name string, w, h float64, category string) SheetPreset {
	return SheetPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Width:    w,
		Height:   h,
		Category: category,
	}
}

// Built-in sheet presets: ISO A-series plus common board and leather
// trade sizes.
var SheetPresets = []SheetPreset{
	{ID: "a4", Name: "A4", Width: 210, Height: 297, Category: "paper"},
	{ID: "a3", Name: "A3", Width: 297, Height: 420, Category: "paper"},
	{ID: "a2", Name: "A2", Width: 420, Height: 594, Category: "paper"},
	{ID: "a1", Name: "A1", Width: 594, Height: 841, Category: "paper"},
	{ID: "a0", Name: "A0", Width: 841, Height: 1189, Category: "paper"},
	{ID: "board-s", Name: "Board 600x400", Width: 600, Height: 400, Category: "board"},
	{ID: "board-m", Name: "Board 728x1030", Width: 728, Height: 1030, Category: "board"},
	{ID: "board-l", Name: "Board 1220x2440", Width: 1220, Height: 2440, Category: "board"},
	{ID: "hide-half", Name: "Half hide", Width: 1100, Height: 800, Category: "leather"},
	{ID: "hide-full", Name: "Full hide", Width: 2200, Height: 1400, Category: "leather"},
}

// PresetByID returns the preset with the given id, or false when unknown.
func PresetByID(id string) (SheetPreset, bool) {
	for _, p := range SheetPresets {
		if p.ID == id {
			return p, true
		}
	}
	return SheetPreset{}, false
}

// PresetsByCategory returns all built-in presets in the given category.
func PresetsByCategory(category string) []SheetPreset {
	var out []SheetPreset
	for _, p := range SheetPresets {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
