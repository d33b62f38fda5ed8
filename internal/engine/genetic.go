package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/piwi3910/NestCut/internal/model"
)

// Chromosome is one candidate solution of the genetic search: a placement
// order permutation with a rotation gene per slot. Fitness is the number
// of parts the fitness evaluator managed to place.
type Chromosome struct {
	Order     []int
	Rotations []float64
	Fitness   int
}

// clone returns a deep copy of the chromosome.
func (c Chromosome) clone() Chromosome {
	order := make([]int, len(c.Order))
	copy(order, c.Order)
	rotations := make([]float64, len(c.Rotations))
	copy(rotations, c.Rotations)
	return Chromosome{Order: order, Rotations: rotations, Fitness: c.Fitness}
}

// GeneticNester searches over placement order and rotation sequences,
// using the simplified BLF placer as its fitness evaluator. The RNG is
// injected so runs are reproducible; the nester is single-threaded and
// owns its placer (and through it the NFP cache).
type GeneticNester struct {
	Config model.GAConfig

	// Progress, when set, is called once per generation before offspring
	// are re-evaluated.
	Progress func(generation, total int)

	placer *Placer
	design model.Design
	sheet  model.SheetPreset
	rng    *rand.Rand

	best    Chromosome
	hasBest bool
}

// NewGeneticNester builds a nester for one design/sheet pair. The same
// settings drive the embedded BLF placer; seed fixes the whole run.
func NewGeneticNester(settings model.NestSettings, design model.Design, sheet model.SheetPreset, seed int64) *GeneticNester {
	cfg := settings.GA
	if cfg.PopulationSize <= 0 {
		cfg = model.DefaultGAConfig()
	}
	if len(cfg.RotationAngles) == 0 {
		cfg.RotationAngles = []float64{0, 90, 180, 270}
	}
	return &GeneticNester{
		Config: cfg,
		placer: NewPlacer(settings),
		design: design,
		sheet:  sheet,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// chromosomeLength is the estimated placement cap for the sheet, the same
// bound the BLF uses.
func (g *GeneticNester) chromosomeLength() int {
	if g.design.Area <= 0 {
		return 0
	}
	sheetArea := g.sheet.Width * g.sheet.Height
	return int(math.Ceil(sheetArea/g.design.Area)) + 10
}

// Run executes the configured number of generations and returns the
// layout of the best chromosome ever seen, obtained by one final fitness
// evaluation. The context is observed between generations.
func (g *GeneticNester) Run(ctx context.Context) (model.NestResult, error) {
	n := g.chromosomeLength()
	if n == 0 || g.design.Empty() {
		result := model.NestResult{Sheet: g.sheet}
		result.ComputeAreas(g.design.Area)
		return result, nil
	}

	population := g.initPopulation(n)
	for i := range population {
		fitness, err := g.evaluate(ctx, population[i])
		if err != nil {
			return model.NestResult{Sheet: g.sheet}, err
		}
		population[i].Fitness = fitness
		g.observe(population[i])
	}

	for gen := 0; gen < g.Config.Generations; gen++ {
		if err := checkCancel(ctx); err != nil {
			return model.NestResult{Sheet: g.sheet}, err
		}
		if g.Progress != nil {
			g.Progress(gen, g.Config.Generations)
		}

		sort.SliceStable(population, func(i, j int) bool {
			return population[i].Fitness > population[j].Fitness
		})

		newPop := make([]Chromosome, 0, g.Config.PopulationSize)

		eliteCount := g.Config.EliteCount
		if eliteCount > len(population) {
			eliteCount = len(population)
		}
		// Elites carry their cached fitness; they are not re-evaluated.
		for i := 0; i < eliteCount; i++ {
			newPop = append(newPop, population[i].clone())
		}

		for len(newPop) < g.Config.PopulationSize {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)

			var child1, child2 Chromosome
			if g.rng.Float64() < g.Config.CrossoverRate {
				child1 = g.orderCrossover(parent1, parent2)
				child2 = g.orderCrossover(parent2, parent1)
			} else {
				child1 = parent1.clone()
				child2 = parent2.clone()
			}

			g.mutate(&child1)
			g.mutate(&child2)

			for _, child := range []Chromosome{child1, child2} {
				if len(newPop) >= g.Config.PopulationSize {
					break
				}
				fitness, err := g.evaluate(ctx, child)
				if err != nil {
					return model.NestResult{Sheet: g.sheet}, err
				}
				child.Fitness = fitness
				g.observe(child)
				newPop = append(newPop, child)
			}
		}

		population = newPop
	}

	if !g.hasBest {
		result := model.NestResult{Sheet: g.sheet}
		result.ComputeAreas(g.design.Area)
		return result, nil
	}
	return g.placer.PackSequence(ctx, g.design, g.sheet, g.best.Rotations)
}

// observe tracks the best chromosome across all generations.
func (g *GeneticNester) observe(c Chromosome) {
	if !g.hasBest || c.Fitness > g.best.Fitness {
		g.best = c.clone()
		g.hasBest = true
	}
}

// initPopulation creates uniform random permutations with uniform random
// rotation genes.
func (g *GeneticNester) initPopulation(n int) []Chromosome {
	population := make([]Chromosome, g.Config.PopulationSize)
	for i := range population {
		order := g.rng.Perm(n)
		rotations := make([]float64, n)
		for j := range rotations {
			rotations[j] = g.Config.RotationAngles[g.rng.Intn(len(g.Config.RotationAngles))]
		}
		population[i] = Chromosome{Order: order, Rotations: rotations}
	}
	return population
}

// evaluate runs the simplified BLF with the chromosome's rotation
// sequence and returns the number of parts placed.
func (g *GeneticNester) evaluate(ctx context.Context, c Chromosome) (int, error) {
	result, err := g.placer.PackSequence(ctx, g.design, g.sheet, c.Rotations)
	if err != nil {
		return 0, err
	}
	return result.Count, nil
}

// tournamentSelect picks the fittest of k uniform random draws.
func (g *GeneticNester) tournamentSelect(population []Chromosome) Chromosome {
	k := g.Config.TournamentSize
	if k < 1 {
		k = 1
	}
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < k; i++ {
		contender := population[g.rng.Intn(len(population))]
		if contender.Fitness > best.Fitness {
			best = contender
		}
	}
	return best
}

// orderCrossover implements Order Crossover (OX): the segment between two
// cut points is copied from the first parent together with its rotation
// genes; the remaining slots are filled from the second parent starting
// after the segment, skipping order values already present. Membership is
// tracked in a set, not by scanning the child.
func (g *GeneticNester) orderCrossover(p1, p2 Chromosome) Chromosome {
	n := len(p1.Order)
	if n <= 2 {
		return p1.clone()
	}

	cut1 := g.rng.Intn(n)
	cut2 := g.rng.Intn(n)
	if cut1 > cut2 {
		cut1, cut2 = cut2, cut1
	}

	child := Chromosome{
		Order:     make([]int, n),
		Rotations: make([]float64, n),
	}
	inSegment := make(map[int]bool, cut2-cut1+1)
	for i := cut1; i <= cut2; i++ {
		child.Order[i] = p1.Order[i]
		child.Rotations[i] = p1.Rotations[i]
		inSegment[p1.Order[i]] = true
	}

	childIdx := (cut2 + 1) % n
	for off := 0; off < n; off++ {
		src := (cut2 + 1 + off) % n
		if inSegment[p2.Order[src]] {
			continue
		}
		child.Order[childIdx] = p2.Order[src]
		child.Rotations[childIdx] = p2.Rotations[src]
		childIdx = (childIdx + 1) % n
	}

	return child
}

// mutate applies the two mutation kinds: a position swap carrying both
// order and rotation genes, and independent rotation replacement per gene.
func (g *GeneticNester) mutate(c *Chromosome) {
	n := len(c.Order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.Config.MutationRate {
		i := g.rng.Intn(n)
		j := g.rng.Intn(n)
		c.Order[i], c.Order[j] = c.Order[j], c.Order[i]
		c.Rotations[i], c.Rotations[j] = c.Rotations[j], c.Rotations[i]
	}

	for i := 0; i < n; i++ {
		if g.rng.Float64() < g.Config.MutationRate {
			c.Rotations[i] = g.Config.RotationAngles[g.rng.Intn(len(g.Config.RotationAngles))]
		}
	}
}
