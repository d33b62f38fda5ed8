package model

// Algorithm selects the nesting strategy set the driver runs per sheet.
type Algorithm string

const (
	// AlgorithmFast runs only the grid and rotation-sweep packers.
	AlgorithmFast Algorithm = "fast"
	// AlgorithmNFP adds the NFP-driven bottom-left-fill placer.
	AlgorithmNFP Algorithm = "nfp"
	// AlgorithmNFPGA adds the genetic search on top of the BLF placer.
	AlgorithmNFPGA Algorithm = "nfp-ga"
)

// NestSettings holds the engine configuration.
type NestSettings struct {
	Algorithm    Algorithm `json:"algorithm"`
	Margin       float64   `json:"margin"`        // min gap between parts and to the sheet edge, mm
	RotationStep float64   `json:"rotation_step"` // degrees, must divide 360
	GridStep     float64   `json:"grid_step"`     // BLF base grid, mm; 0 = use margin
	GA           GAConfig  `json:"ga"`
}

// EffectiveGridStep returns the BLF base grid step; it defaults to the
// margin when unset.
func (s NestSettings) EffectiveGridStep() float64 {
	if s.GridStep > 0 {
		return s.GridStep
	}
	return s.Margin
}

// RotationAngles expands RotationStep into the allowed rotation set
// {0, step, 2*step, ...} below 360.
func (s NestSettings) RotationAngles() []float64 {
	step := s.RotationStep
	if step <= 0 || step > 360 {
		step = 90
	}
	var angles []float64
	for a := 0.0; a < 360; a += step {
		angles = append(angles, a)
	}
	return angles
}

// GAConfig holds parameters for the genetic search.
type GAConfig struct {
	PopulationSize int       `json:"population_size"`
	Generations    int       `json:"generations"`
	MutationRate   float64   `json:"mutation_rate"`
	CrossoverRate  float64   `json:"crossover_rate"`
	EliteCount     int       `json:"elite_count"`
	TournamentSize int       `json:"tournament_size"`
	RotationAngles []float64 `json:"rotation_angles"`
}

// DefaultGAConfig returns the default genetic search parameters.
func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize: 30,
		Generations:    50,
		MutationRate:   0.10,
		CrossoverRate:  0.80,
		EliteCount:     2,
		TournamentSize: 3,
		RotationAngles: []float64{0, 90, 180, 270},
	}
}

// DefaultSettings returns the default engine configuration.
func DefaultSettings() NestSettings {
	return NestSettings{
		Algorithm:    AlgorithmNFP,
		Margin:       3.0,
		RotationStep: 90,
		GridStep:     0,
		GA:           DefaultGAConfig(),
	}
}
