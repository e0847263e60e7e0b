// Package gender maps free-form gender and category cells onto canonical values.
package gender

import (
	"regexp"
	"strings"

	"github.com/okian/ritmo/internal/domain/schema"
)

// Gender is the canonical gender bucket of a result.
type Gender string

const (
	Male   Gender = "Masculino"
	Female Gender = "Femenino"
	Other  Gender = "X"
)

// Key returns the single-letter histogram key: F, M or X.
func (g Gender) Key() string {
	switch g {
	case Female:
		return "F"
	case Male:
		return "M"
	default:
		return "X"
	}
}

// Parse returns the Gender for an already canonical value.
func Parse(s string) Gender {
	switch Gender(s) {
	case Male:
		return Male
	case Female:
		return Female
	default:
		return Other
	}
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[schema.NormalizeHeader(w)] = struct{}{}
	}
	return m
}

var (
	feminine = set("f", "femenino", "fem", "femenina", "female", "w", "woman", "women",
		"mujer", "mujeres", "dama", "damas", "lady", "ladies", "girl", "girls", "femenil")
	masculine = set("m", "masculino", "masc", "masculina", "male", "man", "men", "hombre", "hombres",
		"caballero", "caballeros", "boy", "boys", "varon", "varones", "varonil")
	neutral = set("x", "nb", "nonbinary", "nonbinario", "nobinario", "otro", "otra", "neutral", "mixto", "open")

	looseFeminine  = set("feme", "femen", "femeninas", "females")
	looseMasculine = set("mascu", "mascul", "masculinas", "males", "gentleman", "gentlemen")

	feminineHint  = regexp.MustCompile(`\bfem(en|enin[oa]?|enil)?\b|\bmujer(es)?\b|\bdamas?\b|\blad(y|ies)\b|\bgirls?\b`)
	masculineHint = regexp.MustCompile(`\bmasc(ulino|ulina)?\b|\bvaron(es)?\b|\bhombres?\b|\bcaballeros?\b|\bgentlemen?\b|\bboys?\b`)
)

func lookup(token string) (Gender, bool) {
	if _, ok := feminine[token]; ok {
		return Female, true
	}
	if _, ok := masculine[token]; ok {
		return Male, true
	}
	if _, ok := neutral[token]; ok {
		return Other, true
	}
	return Other, false
}

// Normalize maps a raw cell by exact synonym lookup. Empty or unrecognized
// values become Other.
func Normalize(raw string) Gender {
	token := schema.NormalizeHeader(strings.TrimSpace(raw))
	if token == "" {
		return Other
	}
	g, _ := lookup(token)
	return g
}

// NormalizeLoose extends Normalize with a wider synonym set and word-level
// hints, so cells such as "Fem. 30-39" or "Varones Elite" still resolve.
func NormalizeLoose(raw string) Gender {
	token := schema.NormalizeHeader(strings.TrimSpace(raw))
	if token == "" {
		return Other
	}
	if g, ok := lookup(token); ok {
		return g
	}
	if _, ok := looseFeminine[token]; ok {
		return Female
	}
	if _, ok := looseMasculine[token]; ok {
		return Male
	}
	words := foldWords(raw)
	switch {
	case feminineHint.MatchString(words):
		return Female
	case masculineHint.MatchString(words):
		return Male
	}
	return Other
}

// foldWords lower-cases and strips diacritics while keeping word boundaries.
func foldWords(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == ' ' || r == '.' || r == '-' || r == '_' || r == '/' || r == ','
	})
	for i, f := range fields {
		fields[i] = schema.NormalizeHeader(f)
	}
	return strings.Join(fields, " ")
}

var categoryRemap = map[string]string{
	"h":    "20 a 29",
	"ju20": "18 a 19 años",
}

// Category applies the fixed vendor category remaps, otherwise returns the
// trimmed value unchanged.
func Category(raw string) string {
	v := strings.TrimSpace(raw)
	if mapped, ok := categoryRemap[strings.ToLower(v)]; ok {
		return mapped
	}
	return v
}
