package stats

import (
	"fmt"
	"slices"

	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/pace"
)

type mean struct {
	sum, n int
}

func (m *mean) add(secs int) {
	m.sum += secs
	m.n++
}

func (m mean) value() *string {
	if m.n == 0 {
		return nil
	}
	s := duration.FormatHHMMSS(float64(m.sum) / float64(m.n))
	return &s
}

// RaceOverview averages the pace of stored results, overall and per gender.
// Results without a pace are ignored by the averages but still counted.
func RaceOverview(results []model.Result) model.RaceOverview {
	var all, men, women mean
	var out model.RaceOverview
	for _, r := range results {
		switch r.Gender {
		case gender.Male:
			out.ConteoMasculino++
		case gender.Female:
			out.ConteoFemenino++
		}
		if r.PaceSeconds <= 0 {
			continue
		}
		all.add(r.PaceSeconds)
		switch r.Gender {
		case gender.Male:
			men.add(r.PaceSeconds)
		case gender.Female:
			women.add(r.PaceSeconds)
		}
	}
	out.RitmoGeneral = all.value()
	out.RitmoMasculino = men.value()
	out.RitmoFemenino = women.value()
	return out
}

func percent(n, total int) string {
	return fmt.Sprintf("%.2f", float64(n)*100/float64(total))
}

// PaceShares buckets stored results into the general pace ranges. Gender
// totals of zero are reported as one so shares stay defined.
func PaceShares(results []model.Result) model.PaceShares {
	counts := make([][2]int, len(pace.GeneralRanges))
	totalF, totalM := 0, 0
	for _, r := range results {
		switch r.Gender {
		case gender.Female:
			totalF++
		case gender.Male:
			totalM++
		default:
			continue
		}
		if r.PaceSeconds <= 0 {
			continue
		}
		for i, rg := range pace.GeneralRanges {
			if !rg.Contains(float64(r.PaceSeconds)) {
				continue
			}
			if r.Gender == gender.Female {
				counts[i][0]++
			} else {
				counts[i][1]++
			}
			break
		}
	}
	totalF, totalM = max(totalF, 1), max(totalM, 1)

	out := model.PaceShares{
		TotalFemenino:  totalF,
		TotalMasculino: totalM,
		Distribucion:   make([]model.PaceShare, len(pace.GeneralRanges)),
	}
	for i, rg := range pace.GeneralRanges {
		out.Distribucion[i] = model.PaceShare{
			Rango:        rg.Label,
			Femenino:     counts[i][0],
			FemeninoPct:  percent(counts[i][0], totalF),
			Masculino:    counts[i][1],
			MasculinoPct: percent(counts[i][1], totalM),
		}
	}
	return out
}

// CategoryPaces reports per-category gender counts and average pace of
// stored results, ordered byte-wise by category like the SQL store orders
// text. Results without a category group under the empty category, which
// sorts first.
func CategoryPaces(results []model.Result) []model.CategoryPace {
	type group struct {
		men, women   mean
		nMen, nWomen int
	}
	groups := map[string]*group{}
	var labels []string
	for _, r := range results {
		g, ok := groups[r.Category]
		if !ok {
			g = &group{}
			groups[r.Category] = g
			labels = append(labels, r.Category)
		}
		switch r.Gender {
		case gender.Male:
			g.nMen++
			if r.PaceSeconds > 0 {
				g.men.add(r.PaceSeconds)
			}
		case gender.Female:
			g.nWomen++
			if r.PaceSeconds > 0 {
				g.women.add(r.PaceSeconds)
			}
		}
	}
	slices.Sort(labels)

	out := make([]model.CategoryPace, len(labels))
	for i, cat := range labels {
		g := groups[cat]
		out[i] = model.CategoryPace{
			Categoria:      cat,
			RitmoFemenino:  g.women.value(),
			Corredoras:     g.nWomen,
			RitmoMasculino: g.men.value(),
			Corredores:     g.nMen,
		}
	}
	return out
}
