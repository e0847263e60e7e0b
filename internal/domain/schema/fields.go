// Package schema defines the canonical race-result columns and resolves
// arbitrary source headers onto them.
package schema

// Field is one canonical column of a normalized result record.
type Field int

// Canonical fields, in export order.
const (
	Bib Field = iota
	Name
	Distance
	Gender
	Category
	Team
	OfficialTime
	AvgPace
	ChipTime
	Pace5
	Split5
	Pace10
	Split10
	Pace15
	Split15
	Pace20
	Split20
	Pace21
	Split21
	Pace25
	Split25
	Pace30
	Split30
	Pace35
	Split35
	Pace40
	Split40
	Pace42
	Split42
	PlaceOverall
	TotalOverall
	PlaceGender
	TotalGender
	PlaceCategory
	TotalCategory
	PaceRange
	Nationality

	NumFields int = iota
)

var fieldNames = [NumFields]string{
	Bib:           "bib",
	Name:          "nombre",
	Distance:      "distancia",
	Gender:        "genero",
	Category:      "categoria",
	Team:          "equipo",
	OfficialTime:  "tiempo_oficial",
	AvgPace:       "Ritmo Medio",
	ChipTime:      "tiempo_chip",
	Pace5:         "RM_5km",
	Split5:        "split_5km",
	Pace10:        "RM_10km",
	Split10:       "split_10km",
	Pace15:        "RM_15km",
	Split15:       "split_15km",
	Pace20:        "RM_20km",
	Split20:       "split_20km",
	Pace21:        "RM_21km",
	Split21:       "split_21km",
	Pace25:        "RM_25km",
	Split25:       "split_25km",
	Pace30:        "RM_30km",
	Split30:       "split_30km",
	Pace35:        "RM_35km",
	Split35:       "split_35km",
	Pace40:        "RM_40km",
	Split40:       "split_40km",
	Pace42:        "RM_42km",
	Split42:       "split_42km",
	PlaceOverall:  "lugar_general",
	TotalOverall:  "total_general",
	PlaceGender:   "lugar_genero",
	TotalGender:   "total_genero",
	PlaceCategory: "lugar_categoria",
	TotalCategory: "total_categoria",
	PaceRange:     "Rango",
	Nationality:   "nacionalidad",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, NumFields)
	for i, n := range fieldNames {
		m[n] = Field(i)
	}
	return m
}()

// String returns the canonical column name.
func (f Field) String() string {
	if f < 0 || int(f) >= NumFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Valid reports whether f is a canonical field.
func (f Field) Valid() bool { return f >= 0 && int(f) < NumFields }

// Lookup returns the field with the given canonical name.
func Lookup(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Fields returns every canonical field in export order.
func Fields() []Field {
	out := make([]Field, NumFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Names returns the canonical column names in export order.
func Names() []string {
	out := make([]string, NumFields)
	copy(out, fieldNames[:])
	return out
}

// IsTime reports whether values of f are durations sanitized to HH:MM:SS.
func (f Field) IsTime() bool {
	switch f {
	case OfficialTime, AvgPace, ChipTime:
		return true
	}
	return f >= Pace5 && f <= Split42
}

// Checkpoint is a fixed distance marker carrying a pace and a split column.
type Checkpoint struct {
	Km    float64
	Label string
	Pace  Field
	Split Field
}

// MarathonKm is the official marathon distance.
const MarathonKm = 42.195

var checkpoints = [...]Checkpoint{
	{Km: 5, Label: "split 5K", Pace: Pace5, Split: Split5},
	{Km: 10, Label: "split 10K", Pace: Pace10, Split: Split10},
	{Km: 15, Label: "split 15K", Pace: Pace15, Split: Split15},
	{Km: 20, Label: "split 20K", Pace: Pace20, Split: Split20},
	{Km: 21, Label: "split 21K", Pace: Pace21, Split: Split21},
	{Km: 25, Label: "split 25K", Pace: Pace25, Split: Split25},
	{Km: 30, Label: "split 30K", Pace: Pace30, Split: Split30},
	{Km: 35, Label: "split 35K", Pace: Pace35, Split: Split35},
	{Km: 40, Label: "split 40K", Pace: Pace40, Split: Split40},
	{Km: MarathonKm, Label: "split 42K", Pace: Pace42, Split: Split42},
}

// Checkpoints returns the checkpoints in increasing distance order.
func Checkpoints() []Checkpoint {
	out := make([]Checkpoint, len(checkpoints))
	copy(out, checkpoints[:])
	return out
}

// CheckpointKm maps a checkpoint label ("split 5K") to its distance.
func CheckpointKm(label string) (float64, bool) {
	for _, c := range checkpoints {
		if c.Label == label {
			return c.Km, true
		}
	}
	return 0, false
}
