package stats_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/schema"
	"github.com/okian/ritmo/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

const trials = 200

var genders = []string{"Masculino", "Femenino", "X", ""}

func clock(rng *rand.Rand, maxSecs int) string {
	if rng.IntN(4) == 0 {
		return duration.Zero
	}
	return duration.FormatHHMMSS(float64(1 + rng.IntN(maxSecs)))
}

func randomRunners(rng *rand.Rand) []runner {
	out := make([]runner, rng.IntN(40))
	for i := range out {
		paces := make([]string, len(schema.Checkpoints()))
		for j := range paces {
			paces[j] = clock(rng, 600)
		}
		out[i] = runner{
			gender:   genders[rng.IntN(len(genders))],
			category: "30 a 34",
			chip:     clock(rng, 4*3600),
			avg:      clock(rng, 700),
			paces:    paces,
			complete: rng.IntN(2) == 0,
		}
	}
	return out
}

func TestPickIsMonotonic(t *testing.T) {
	Convey("Given random ascending slices", t, func() {
		rng := rand.New(rand.NewPCG(1, 2))
		violations := 0
		for range trials {
			vals := make([]int, 1+rng.IntN(50))
			for i := range vals {
				vals[i] = rng.IntN(1000)
			}
			slices.Sort(vals)
			prev := stats.Pick(vals, 0)
			for step := 1; step <= 100; step++ {
				cur := stats.Pick(vals, float64(step)/100)
				if cur < prev {
					violations++
				}
				prev = cur
			}
			if stats.Pick(vals, 0) != vals[0] || stats.Pick(vals, 1) != vals[len(vals)-1] {
				violations++
			}
		}

		Convey("Then a higher percentile never selects a smaller value", func() {
			So(violations, ShouldEqual, 0)
		})
	})

	Convey("Given random records", t, func() {
		rng := rand.New(rand.NewPCG(3, 4))
		violations := 0
		for range trials {
			rows := stats.Percentiles(records(randomRunners(rng)...))
			for i := 1; i < len(rows); i++ {
				for _, pair := range [][2]string{
					{rows[i-1].Masculino, rows[i].Masculino},
					{rows[i-1].Femenino, rows[i].Femenino},
				} {
					if pair[1] == "-" {
						continue
					}
					if duration.Seconds(pair[1]) < duration.Seconds(pair[0]) {
						violations++
					}
				}
			}
		}

		Convey("Then the percentile table is ordered per gender", func() {
			So(violations, ShouldEqual, 0)
		})
	})
}

func TestProgressiveCountsNeverGrow(t *testing.T) {
	Convey("Given random records", t, func() {
		rng := rand.New(rand.NewPCG(5, 6))
		violations := 0
		for range trials {
			rs := records(randomRunners(rng)...)
			rows := stats.SummaryStats(rs)
			byGender := stats.GenderSummaryStats(rs)
			if rows[1].Count > rows[0].Count {
				violations++
			}
			for i := 3; i < len(rows); i++ {
				if rows[i].Count > rows[i-1].Count {
					violations++
				}
				if byGender[i].CountM > byGender[i-1].CountM || byGender[i].CountF > byGender[i-1].CountF {
					violations++
				}
			}
		}

		Convey("Then each threshold keeps at most the previous count", func() {
			So(violations, ShouldEqual, 0)
		})
	})
}

func TestPaceDistributionTotals(t *testing.T) {
	Convey("Given random records", t, func() {
		rng := rand.New(rand.NewPCG(7, 8))
		mismatches := 0
		for range trials {
			rs := randomRunners(rng)
			want := model.PaceDistributionRow{Label: stats.LabelTotal}
			for _, r := range rs {
				rec := r.record()
				if !stats.FullyCompleted(rec) || !duration.Positive(r.avg) {
					continue
				}
				switch r.gender {
				case "Femenino":
					want.F++
				case "Masculino":
					want.M++
				default:
					want.X++
				}
			}
			rows, got := stats.PaceDistribution(records(rs...))
			if got != want {
				mismatches++
			}
			sum := 0
			for _, row := range rows {
				sum += row.F + row.M + row.X
			}
			if sum != want.F+want.M+want.X {
				mismatches++
			}
		}

		Convey("Then totals count fully completed positive paces per gender", func() {
			So(mismatches, ShouldEqual, 0)
		})
	})
}
