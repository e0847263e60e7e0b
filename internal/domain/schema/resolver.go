package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader folds a header or alias to its lookup key: lower case,
// diacritics removed, everything outside [a-z0-9] dropped.
func NormalizeHeader(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Strategy decides which header wins when several map to the same field.
type Strategy int

const (
	// FirstHeader binds the earliest matching header in file order.
	FirstHeader Strategy = iota
	// AliasPriority binds the header matching the earliest alias in the table.
	AliasPriority
)

type binding struct {
	field    Field
	priority int
}

// Resolver maps source headers onto canonical fields. It is immutable and
// safe for concurrent use.
type Resolver struct {
	name     string
	strategy Strategy
	lookup   map[string]binding
}

// NewResolver builds a resolver from a synonym table. When two fields claim
// the same normalized alias the earlier entry keeps it.
func NewResolver(name string, strategy Strategy, table []Synonym) *Resolver {
	r := &Resolver{name: name, strategy: strategy, lookup: make(map[string]binding)}
	for _, syn := range table {
		variants := append([]string{syn.Field.String()}, syn.Aliases...)
		for i, v := range variants {
			key := NormalizeHeader(v)
			if key == "" {
				continue
			}
			if _, taken := r.lookup[key]; taken {
				continue
			}
			r.lookup[key] = binding{field: syn.Field, priority: i}
		}
	}
	return r
}

// Name identifies the synonym table behind the resolver.
func (r *Resolver) Name() string { return r.name }

// Matches records which source header was bound to each canonical field.
type Matches map[Field]string

// Header returns the source header bound to f.
func (m Matches) Header(f Field) (string, bool) {
	h, ok := m[f]
	return h, ok
}

// Resolve binds headers to canonical fields. Unmatched fields are absent.
func (r *Resolver) Resolve(headers []string) Matches {
	out := make(Matches)
	prio := make(map[Field]int)
	for _, h := range headers {
		b, ok := r.lookup[NormalizeHeader(h)]
		if !ok {
			continue
		}
		cur, claimed := prio[b.field]
		switch {
		case !claimed:
		case r.strategy == AliasPriority && b.priority < cur:
		default:
			continue
		}
		out[b.field] = h
		prio[b.field] = b.priority
	}
	return out
}

// Shared resolvers for the two header tables.
var (
	ReportResolver = NewResolver("report", FirstHeader, ReportSynonyms)
	IngestResolver = NewResolver("ingest", AliasPriority, IngestSynonyms)
)
