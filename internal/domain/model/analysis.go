package model

// RaceOverview summarizes average pace across one stored race.
// Averages are nil when no result contributes.
type RaceOverview struct {
	RitmoGeneral    *string `json:"ritmo_general"`
	RitmoMasculino  *string `json:"ritmo_masculino"`
	RitmoFemenino   *string `json:"ritmo_femenino"`
	ConteoMasculino int     `json:"conteo_masculino"`
	ConteoFemenino  int     `json:"conteo_femenino"`
}

// PaceShare counts one pace range per gender with its share of the gender total.
type PaceShare struct {
	Rango        string `json:"rango"`
	Femenino     int    `json:"femenino"`
	FemeninoPct  string `json:"femenino_pct"`
	Masculino    int    `json:"masculino"`
	MasculinoPct string `json:"masculino_pct"`
}

// PaceShares is the pace range distribution of one race.
type PaceShares struct {
	TotalFemenino  int         `json:"total_femenino"`
	TotalMasculino int         `json:"total_masculino"`
	Distribucion   []PaceShare `json:"distribucion"`
}

// CategoryPace holds per-gender averages and counts for one category.
type CategoryPace struct {
	Categoria      string  `json:"categoria"`
	RitmoFemenino  *string `json:"ritmo_femenino"`
	Corredoras     int     `json:"corredoras"`
	RitmoMasculino *string `json:"ritmo_masculino"`
	Corredores     int     `json:"corredores"`
}

// GenderTop holds the fastest finishers of each gender.
type GenderTop struct {
	Femenino  []Ranked `json:"femenino"`
	Masculino []Ranked `json:"masculino"`
}
