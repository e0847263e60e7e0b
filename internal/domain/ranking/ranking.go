// Package ranking selects the fastest finishers of a race.
package ranking

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/model"
)

// DefaultN is the default ranking length.
const DefaultN = 5

// DisabilityPatterns mark adapted categories that are left out of the
// per-gender podium.
var DisabilityPatterns = []string{
	"invident",
	"ciego",
	"silla de ruedas",
	"ruedas",
	"wheelchair",
	"paralimp",
	"paralymp",
	"discapacidad",
	"pcd",
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Excluded reports whether category matches a disability pattern, ignoring
// case and accents. An empty category is never excluded.
func Excluded(category string) bool {
	if category == "" {
		return false
	}
	c := fold(category)
	for _, p := range DisabilityPatterns {
		if strings.Contains(c, p) {
			return true
		}
	}
	return false
}

// byChip orders by chip time and then by ingestion order.
func byChip(rs []model.Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].ChipSeconds != rs[j].ChipSeconds {
			return rs[i].ChipSeconds < rs[j].ChipSeconds
		}
		return rs[i].Seq < rs[j].Seq
	})
}

// TopByGender returns the n fastest results of g with a chip time, skipping
// disability categories.
func TopByGender(results []model.Result, g gender.Gender, n int) []model.Ranked {
	if n <= 0 {
		return []model.Ranked{}
	}
	pool := make([]model.Result, 0, len(results))
	for _, r := range results {
		if r.Gender == g && r.ChipSeconds > 0 && !Excluded(r.Category) {
			pool = append(pool, r)
		}
	}
	byChip(pool)
	out := make([]model.Ranked, 0, min(n, len(pool)))
	for i, r := range pool {
		if i == n {
			break
		}
		out = append(out, model.RankedOf(i+1, r))
	}
	return out
}

// Podium returns the per-gender top n.
func Podium(results []model.Result, n int) model.GenderTop {
	return model.GenderTop{
		Femenino:  TopByGender(results, gender.Female, n),
		Masculino: TopByGender(results, gender.Male, n),
	}
}

// TopByCategory returns the n fastest results of every category, ordered by
// category and position. Results without a chip time are not ranked.
func TopByCategory(results []model.Result, n int) []model.Ranked {
	if n <= 0 {
		return []model.Ranked{}
	}
	groups := map[string][]model.Result{}
	for _, r := range results {
		if r.ChipSeconds > 0 {
			groups[r.Category] = append(groups[r.Category], r)
		}
	}
	cats := make([]string, 0, len(groups))
	for c := range groups {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	out := []model.Ranked{}
	for _, c := range cats {
		g := groups[c]
		byChip(g)
		for i := 0; i < len(g) && i < n; i++ {
			out = append(out, model.RankedOf(i+1, g[i]))
		}
	}
	return out
}
