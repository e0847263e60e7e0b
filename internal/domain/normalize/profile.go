// Package normalize turns raw CSV rows into canonical result records.
//
// One normalizer serves both pipelines. The caller picks a Profile, which
// fixes the header table, the gender matcher, the time parser and the
// validity policy applied to rows without a usable chip time.
package normalize

import (
	"github.com/okian/ritmo/internal/domain/duration"
	"github.com/okian/ritmo/internal/domain/gender"
	"github.com/okian/ritmo/internal/domain/schema"
)

// Validity decides what happens to rows whose chip time is missing or zero.
type Validity int

const (
	// DefaultZeroTime keeps the row and writes "00:00:00".
	DefaultZeroTime Validity = iota
	// DropZeroTime omits the row.
	DropZeroTime
)

func (v Validity) String() string {
	if v == DropZeroTime {
		return "drop_zero_time"
	}
	return "default_zero_time"
}

// Profile bundles the rules of one normalization pipeline.
type Profile struct {
	Name     string
	Resolver *schema.Resolver
	Validity Validity
	Gender   func(string) gender.Gender
	Time     func(string) (int, bool)
}

// ReportProfile builds records for analysis reports.
var ReportProfile = Profile{
	Name:     "report",
	Resolver: schema.ReportResolver,
	Validity: DefaultZeroTime,
	Gender:   gender.Normalize,
	Time:     duration.Parse,
}

// IngestProfile builds records persisted into a race.
var IngestProfile = Profile{
	Name:     "ingest",
	Resolver: schema.IngestResolver,
	Validity: DropZeroTime,
	Gender:   gender.NormalizeLoose,
	Time:     duration.ParseLenient,
}

// ProfileByName looks a profile up by its Name.
func ProfileByName(name string) (Profile, bool) {
	switch name {
	case ReportProfile.Name:
		return ReportProfile, true
	case IngestProfile.Name:
		return IngestProfile, true
	}
	return Profile{}, false
}
