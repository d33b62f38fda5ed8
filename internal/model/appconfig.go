package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default nesting settings applied to new projects
	DefaultAlgorithm    Algorithm `json:"default_algorithm"`
	DefaultMargin       float64   `json:"default_margin"`
	DefaultRotationStep float64   `json:"default_rotation_step"`
	DefaultGridStep     float64   `json:"default_grid_step"`

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
	PreferredUnits string   `json:"preferred_units"` // "mm" or "cm", display only
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultAlgorithm:    defaults.Algorithm,
		DefaultMargin:       defaults.Margin,
		DefaultRotationStep: defaults.RotationStep,
		DefaultGridStep:     defaults.GridStep,
		RecentProjects:      []string{},
		PreferredUnits:      "mm",
	}
}

// ApplyToSettings copies the saved defaults into a NestSettings value.
// Used when creating a new project so it inherits the user's preferences.
func (c AppConfig) ApplyToSettings(s *NestSettings) {
	if c.DefaultAlgorithm != "" {
		s.Algorithm = c.DefaultAlgorithm
	}
	s.Margin = c.DefaultMargin
	s.RotationStep = c.DefaultRotationStep
	s.GridStep = c.DefaultGridStep
}

// Project ties everything together for save/load.
type Project struct {
	Name     string        `json:"name"`
	Designs  []Design      `json:"designs"`
	Presets  []SheetPreset `json:"presets"`
	Settings NestSettings  `json:"settings"`
	Results  []NestResult  `json:"results,omitempty"`
}

// NewProject returns an empty project with default settings.
func NewProject() Project {
	return Project{
		Name:     "Untitled",
		Designs:  []Design{},
		Presets:  []SheetPreset{},
		Settings: DefaultSettings(),
	}
}
