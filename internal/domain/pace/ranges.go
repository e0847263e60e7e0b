// Package pace holds the fixed pace-range tables used to bucket average pace
// (seconds per kilometre).
package pace

import "math"

// Range is an inclusive [Min, Max] bucket of seconds per kilometre.
type Range struct {
	Label string
	Min   int
	Max   int
}

// Contains reports whether seconds falls inside the bucket.
func (r Range) Contains(seconds float64) bool {
	return seconds >= float64(r.Min) && seconds <= float64(r.Max)
}

// Table is an ordered list of ranges partitioning [0, inf).
type Table []Range

// Find returns the first range containing seconds.
func (t Table) Find(seconds float64) (Range, bool) {
	for _, r := range t {
		if r.Contains(seconds) {
			return r, true
		}
	}
	return Range{}, false
}

// Unbounded marks the open upper end of the last bucket.
const Unbounded = math.MaxInt32

// ReportRanges buckets the Rango column and the report pace distribution.
var ReportRanges = Table{
	{Label: "≤ 03:30", Min: 0, Max: 210},
	{Label: "03:31–03:45", Min: 211, Max: 225},
	{Label: "03:46–04:00", Min: 226, Max: 240},
	{Label: "04:01–04:15", Min: 241, Max: 255},
	{Label: "04:16–04:46", Min: 256, Max: 286},
	{Label: "04:47–05:14", Min: 287, Max: 314},
	{Label: "05:15–05:55", Min: 315, Max: 355},
	{Label: "05:56–06:30", Min: 356, Max: 390},
	{Label: "06:31–07:37", Min: 391, Max: 457},
	{Label: "07:38–08:28", Min: 458, Max: 508},
	{Label: "≥ 08:29", Min: 509, Max: Unbounded},
}

// GeneralRanges buckets the per-race pace share analysis of stored results.
var GeneralRanges = Table{
	{Label: "< 03:20", Min: 0, Max: 199},
	{Label: "03:20–03:45", Min: 200, Max: 225},
	{Label: "03:45–04:00", Min: 226, Max: 240},
	{Label: "04:00–04:15", Min: 241, Max: 255},
	{Label: "04:16–04:46", Min: 256, Max: 286},
	{Label: "04:47–05:14", Min: 287, Max: 314},
	{Label: "05:15–05:30", Min: 315, Max: 330},
	{Label: "05:31–06:30", Min: 331, Max: 390},
	{Label: "06:31–07:37", Min: 391, Max: 457},
	{Label: "07:38–08:28", Min: 458, Max: 508},
	{Label: "≥ 08:29", Min: 509, Max: 10000},
}
