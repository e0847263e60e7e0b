package synth

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/schema"
)

// Pace model in seconds per kilometre.
const (
	paceMean = 330.0
	paceSD   = 55.0
	paceMin  = 170.0
	paceMax  = 780.0
	// fatigue is the relative slowdown per kilometre.
	fatigue = 0.002
	// jitter is the relative noise of each checkpoint segment.
	jitter = 0.03
)

var (
	firstNames = []string{"Ana", "Lucía", "María", "Sofía", "Valeria", "Camila", "Carlos", "José", "Luis", "Jorge", "Diego", "Andrés", "Rosa", "Pedro", "Elena", "Miguel"}
	lastNames  = []string{"García", "Quispe", "Flores", "Rodríguez", "Mamani", "Sánchez", "Torres", "Ramírez", "Castillo", "Vargas", "Huamán", "Rojas"}
	ageGroups  = []string{"18 a 29", "30 a 39", "40 a 49", "50 a 59", "60 a más"}
)

// AdaptedCategory is the category given to adapted-division rows.
const AdaptedCategory = "Silla de ruedas"

// Runner is one synthetic result row.
type Runner struct {
	Bib         int
	Name        string
	Gender      gender.Gender
	Category    string
	ChipSeconds int             // 0 when the runner has no chip time
	Splits      map[float64]int // cumulative seconds per checkpoint km
}

// Result projects the runner onto a stored result with ingestion order seq.
func (r Runner) Result(seq int) model.Result {
	chip := ""
	if r.ChipSeconds > 0 {
		chip = duration.FormatHHMMSS(float64(r.ChipSeconds))
	}
	return model.Result{
		Seq:         seq,
		Bib:         strconv.Itoa(r.Bib),
		Name:        r.Name,
		Gender:      r.Gender,
		Category:    r.Category,
		ChipTime:    chip,
		ChipSeconds: r.ChipSeconds,
	}
}

// Checkpoints lists the checkpoints a race of distanceKm passes, in order.
func Checkpoints(distanceKm float64) []schema.Checkpoint {
	var out []schema.Checkpoint
	for _, c := range schema.Checkpoints() {
		if c.Km < distanceKm {
			out = append(out, c)
		}
	}
	return out
}

// Generate builds cfg.Runners rows. Each row depends only on the seed and its
// index, so the output is identical for any worker count.
func Generate(ctx context.Context, cfg Config) ([]Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runners := make([]Runner, cfg.Runners)
	if cfg.Runners == 0 {
		return runners, nil
	}
	cps := Checkpoints(cfg.DistanceKm)

	workers := min(cfg.Workers, cfg.Runners)
	per := (cfg.Runners + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start, end := w*per, min((w+1)*per, cfg.Runners)
		if start >= end {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				runners[i] = generateRunner(cfg, cps, i)
			}
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate runners: %w", err)
	}
	return runners, nil
}

func generateRunner(cfg Config, cps []schema.Checkpoint, i int) Runner {
	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(i)))
	r := Runner{
		Bib:  i + 1,
		Name: firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
	}
	switch x := rng.Float64(); {
	case x < 0.58:
		r.Gender = gender.Male
	case x < 0.98:
		r.Gender = gender.Female
	default:
		r.Gender = gender.Other
	}
	r.Category = ageGroups[rng.IntN(len(ageGroups))]
	if rng.Float64() < cfg.AdaptedRate {
		r.Category = AdaptedCategory
	}
	if rng.Float64() < cfg.NoChipRate {
		return r
	}

	base := min(max(paceMean+rng.NormFloat64()*paceSD, paceMin), paceMax)
	if r.Gender == gender.Female {
		base *= 1.08
	}
	elapsed, prevKm := 0.0, 0.0
	splits := make(map[float64]int, len(cps))
	for _, c := range cps {
		elapsed += segment(rng, base, prevKm, c.Km)
		splits[c.Km] = int(elapsed + 0.5)
		prevKm = c.Km
	}
	elapsed += segment(rng, base, prevKm, cfg.DistanceKm)
	r.ChipSeconds = int(elapsed + 0.5)
	if rng.Float64() >= cfg.NoSplitsRate {
		r.Splits = splits
	}
	return r
}

func segment(rng *rand.Rand, base, fromKm, toKm float64) float64 {
	mid := (fromKm + toKm) / 2
	pace := base * (1 + fatigue*mid) * (1 + rng.NormFloat64()*jitter)
	return pace * (toKm - fromKm)
}

// Headers returns the CSV header row for a race of distanceKm. Pace and split
// headers use the vendor spellings the resolver understands.
func Headers(distanceKm float64) []string {
	h := []string{"Dorsal", "Nombre", "Sexo", "Categoria", "Tiempo Chip"}
	for _, c := range Checkpoints(distanceKm) {
		h = append(h, fmt.Sprintf("RM %gkm", c.Km), fmt.Sprintf("Split %gkm", c.Km))
	}
	return h
}

// WriteCSV writes runners as a results file for a race of distanceKm.
func WriteCSV(w io.Writer, distanceKm float64, runners []Runner) error {
	cps := Checkpoints(distanceKm)
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(distanceKm)); err != nil {
		return err
	}
	row := make([]string, 0, 5+2*len(cps))
	for _, r := range runners {
		row = row[:0]
		chip := ""
		if r.ChipSeconds > 0 {
			chip = duration.FormatHHMMSS(float64(r.ChipSeconds))
		}
		row = append(row, strconv.Itoa(r.Bib), r.Name, string(r.Gender), r.Category, chip)
		for _, c := range cps {
			s, ok := r.Splits[c.Km]
			if !ok {
				row = append(row, "", "")
				continue
			}
			row = append(row, duration.FormatHHMMSS(float64(s)/c.Km), duration.FormatHHMMSS(float64(s)))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
