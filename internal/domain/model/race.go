package model

import (
	"time"

	"github.com/okian/ritmo/internal/domain/gender"
)

// Race is a persisted race that results are ingested into.
type Race struct {
	ID         int64     `json:"id"`
	Name       string    `json:"nombre"`
	Date       string    `json:"fecha"`
	DistanceKm float64   `json:"distancia"`
	AscentM    float64   `json:"ascenso_total"`
	CreatedAt  time.Time `json:"created_at"`
}

// Result is one ingested finisher row.
type Result struct {
	ID          int64             `json:"id"`
	RaceID      int64             `json:"carrera_id"`
	Seq         int               `json:"seq"`
	Bib         string            `json:"bib,omitempty"`
	Name        string            `json:"nombre"`
	Gender      gender.Gender     `json:"genero"`
	Category    string            `json:"categoria"`
	ChipTime    string            `json:"tiempo_chip"`
	ChipSeconds int               `json:"-"`
	Pace        string            `json:"ritmo_medio"`
	PaceSeconds int               `json:"-"`
	Distance    float64           `json:"distancia"`
	Ascent      float64           `json:"ascenso_total"`
	Checkpoints map[string]string `json:"checkpoints,omitempty"`
}

// Ranked is a result with its position inside a ranking.
type Ranked struct {
	Position int    `json:"pos"`
	Bib      string `json:"bib,omitempty"`
	Name     string `json:"nombre"`
	Gender   string `json:"genero"`
	Category string `json:"categoria"`
	ChipTime string `json:"tiempo_chip"`
	Pace     string `json:"ritmo_medio"`
}

// RankedOf projects a result into a ranking row.
func RankedOf(pos int, r Result) Ranked {
	return Ranked{
		Position: pos,
		Bib:      r.Bib,
		Name:     r.Name,
		Gender:   string(r.Gender),
		Category: r.Category,
		ChipTime: r.ChipTime,
		Pace:     r.Pace,
	}
}

// IngestResult reports what a results upload stored.
type IngestResult struct {
	RaceID   int64    `json:"raceId"`
	Race     Race     `json:"carrera"`
	Inserted int      `json:"insertados"`
	Omitted  int      `json:"omitidos"`
	Columns  []string `json:"columnas"`
}
