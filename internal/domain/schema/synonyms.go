package schema

import "fmt"

// Synonym lists one canonical field and the source spellings that resolve to it.
// The canonical name itself always resolves and need not be listed.
type Synonym struct {
	Field   Field
	Aliases []string
}

func reportCheckpoint(km int) []Synonym {
	return []Synonym{
		{Field: paceField(km), Aliases: []string{
			fmt.Sprintf("rm %dkm", km), fmt.Sprintf("ritmo medio %dk", km), fmt.Sprintf("pace %dk", km),
			fmt.Sprintf("rm%dk", km), fmt.Sprintf("z%dpace", km),
		}},
		{Field: splitField(km), Aliases: []string{
			fmt.Sprintf("split %dkm", km), fmt.Sprintf("%dkm split", km), fmt.Sprintf("split %dk", km),
			fmt.Sprintf("%dk split", km), fmt.Sprintf("z%d", km),
		}},
	}
}

func paceField(km int) Field {
	for _, c := range checkpoints {
		if int(c.Km) == km {
			return c.Pace
		}
	}
	panic(fmt.Sprintf("schema: no checkpoint at %d km", km))
}

func splitField(km int) Field {
	return paceField(km) + 1
}

// ReportSynonyms is the header table used when building analysis reports.
var ReportSynonyms = func() []Synonym {
	s := []Synonym{
		{Field: Bib, Aliases: []string{"dorsal", "numero", "num", "no", "bib number", "bib_number", "startnummer", "id", "ident"}},
		{Field: Name, Aliases: []string{"nombre completo", "name", "full name", "vorname", "nachname"}},
		{Field: Distance, Aliases: []string{"distance", "dist"}},
		{Field: Gender, Aliases: []string{"gender", "sexo", "sex", "rama", "gender category"}},
		{Field: Category, Aliases: []string{"category", "cat", "division", "ak"}},
		{Field: Team, Aliases: []string{"team", "club", "equipo/club", "asociacion", "verein"}},
		{Field: OfficialTime, Aliases: []string{"tiempo oficial", "official time", "gun time", "tiempo_general", "brutto"}},
		{Field: AvgPace, Aliases: []string{"ritmo medio", "ritmo_promedio", "pace", "average pace", "pace promedio", "ritmo promedio"}},
		{Field: ChipTime, Aliases: []string{"tiempo chip", "chip time", "net time", "tiempo neto", "netto"}},
	}
	for _, km := range []int{5, 10, 15} {
		s = append(s, reportCheckpoint(km)...)
	}
	s = append(s,
		Synonym{Field: Pace20, Aliases: []string{"rm 20km", "ritmo medio 20k", "pace 20k", "rm20k", "z20pace"}},
		Synonym{Field: Split20, Aliases: []string{"split 20km", "20km split", "split 20km2", "20k split", "split20km", "split20km2", "split_20km2", "z20"}},
		Synonym{Field: Pace21, Aliases: []string{"rm 21km", "ritmo medio 21k", "pace 21k", "rm21k", "ritmo medio media maraton", "hm1pace"}},
		Synonym{Field: Split21, Aliases: []string{"split 21km", "21km split", "split 21k", "21k split", "media maraton split", "halbmarathon"}},
	)
	for _, km := range []int{25, 30, 35, 40} {
		s = append(s, reportCheckpoint(km)...)
	}
	return append(s,
		Synonym{Field: Pace42, Aliases: []string{"rm 42km", "ritmo medio 42k", "pace 42k", "rm42k", "ritmo medio maraton", "z42pace"}},
		Synonym{Field: Split42, Aliases: []string{"split 42km", "42km split", "split 42k", "42k split", "split marathon", "z42"}},
		Synonym{Field: PlaceOverall, Aliases: []string{"overall place", "posicion general", "general place", "platz"}},
		Synonym{Field: TotalOverall, Aliases: []string{"overall total", "total general", "participantes generales"}},
		Synonym{Field: PlaceGender, Aliases: []string{"gender place", "posicion genero", "rama lugar", "gender rank", "sex_platz"}},
		Synonym{Field: TotalGender, Aliases: []string{"gender total", "total genero", "participantes genero"}},
		Synonym{Field: PlaceCategory, Aliases: []string{"category place", "posicion categoria", "cat place", "ak_platz"}},
		Synonym{Field: TotalCategory, Aliases: []string{"category total", "total categoria", "participantes categoria"}},
		Synonym{Field: PaceRange, Aliases: []string{"range", "rank", "ranking", "rango edad", "division rank"}},
		Synonym{Field: Nationality, Aliases: []string{"nationality", "country", "pais", "nac", "nation"}},
	)
}()

// IngestSynonyms is the looser table used when persisting results into a race.
// Alias order is significant: the ingest resolver prefers earlier aliases.
var IngestSynonyms = []Synonym{
	{Field: Name, Aliases: []string{"nombre", "atleta", "corredor", "competidor", "participante", "participant", "nombrecompleto", "fullname", "name", "nombre_completo", "athlete", "athlete_name", "athletename"}},
	{Field: Gender, Aliases: []string{"genero", "gnero", "rama", "sexo", "gender", "sex", "rama_m", "rama_f", "division_sexo", "genderdivision"}},
	{Field: Category, Aliases: []string{"categoria", "cat", "catg", "agegroup", "age_group", "division", "category", "grupo_edad", "grupoedad", "agecategory", "age_cat"}},
	{Field: ChipTime, Aliases: []string{
		"tiempochip", "tiempo_chip", "chiptime", "chip_time", "nettime", "net_time", "tiempofinal", "tiempo_final",
		"tiempooficial", "tiempo_oficial", "tiempo", "time", "finaltime", "final_time", "officialtime", "official_time",
		"tiempototal", "tiempo_total", "totaltime", "total_time", "tiempofinaltotal", "tiempo_final_total",
	}},
	{Field: Bib, Aliases: []string{"bib", "dorsal", "numero", "num", "nro", "numeroatleta", "numero_corredor", "numcorredor"}},
	{Field: Pace5, Aliases: []string{"rm5km", "rm_5k", "rm5k", "ritmo5km", "ritmo5k", "pace5km", "pace5k", "ritmo_5km", "pace_5km", "pace_5k", "ritmo_5k", "ritmop1", "ritmo_p1", "pacerp1", "pacep1", "pace_p1", "ritmo01", "ritmop01", "ritmo_p01"}},
	{Field: Split5, Aliases: []string{"split5km", "split_5k", "split5k", "parcial5km", "parcial_5km", "lap5km", "lap_5k", "lap5k", "partial5km", "partial5k", "parcial1", "parcial_1", "p1", "p_1", "p01", "parcial01", "primerparcial", "parcialp1"}},
	{Field: Pace10, Aliases: []string{"rm10km", "rm_10k", "rm10k", "ritmo10km", "ritmo10k", "pace10km", "pace10k", "ritmo_10km", "pace_10km", "ritmop2", "ritmo_p2", "pacep2", "pace_p2", "ritmo02", "ritmop02", "ritmo_p02"}},
	{Field: Split10, Aliases: []string{"split10km", "split_10k", "split10k", "parcial10km", "lap10km", "partial10km", "parcial2", "parcial_2", "p2", "p_2", "p02", "parcial02", "segundoparcial", "parcialp2"}},
	{Field: Pace15, Aliases: []string{"rm15km", "rm_15k", "rm15k", "ritmo15km", "pace15km", "ritmop3", "ritmo_p3", "pacep3", "pace_p3", "ritmo03", "ritmop03", "ritmo_p03"}},
	{Field: Split15, Aliases: []string{"split15km", "split_15k", "split15k", "parcial15km", "lap15km", "partial15km", "parcial3", "parcial_3", "p3", "p_3", "p03", "parcial03", "tercerparcial", "parcialp3"}},
	{Field: Pace21, Aliases: []string{"rm21km", "rm_21k", "rm21k", "ritmo21km", "ritmo21k", "pace21km", "pace21k", "ritmop4", "ritmo_p4", "pacep4", "pace_p4", "ritmo04", "ritmop04", "ritmo_p04"}},
	{Field: Split21, Aliases: []string{"split21km", "split_21k", "split21k", "parcial21km", "lap21km", "partial21km", "parcial4", "parcial_4", "p4", "p_4", "p04", "parcial04", "cuartoparcial", "parcialp4"}},
	{Field: Pace25, Aliases: []string{"rm25km", "rm_25k", "rm25k", "ritmo25km", "pace25km", "ritmop5", "ritmo_p5", "pacep5", "pace_p5", "ritmo05", "ritmop05", "ritmo_p05"}},
	{Field: Split25, Aliases: []string{"split25km", "split_25k", "split25k", "parcial25km", "lap25km", "partial25km", "parcial5", "parcial_5", "p5", "p_5", "p05", "parcial05", "quintoparcial", "parcialp5"}},
	{Field: Pace30, Aliases: []string{"rm30km", "rm_30k", "rm30k", "ritmo30km", "pace30km"}},
	{Field: Split30, Aliases: []string{"split30km", "split_30k", "split30k", "parcial30km", "lap30km", "partial30km"}},
	{Field: Pace35, Aliases: []string{"rm35km", "rm_35k", "rm35k", "ritmo35km", "pace35km"}},
	{Field: Split35, Aliases: []string{"split35km", "split_35k", "split35k", "parcial35km", "lap35km", "partial35km"}},
	{Field: Pace40, Aliases: []string{"rm40km", "rm_40k", "rm40k", "ritmo40km", "pace40km"}},
	{Field: Split40, Aliases: []string{"split40km", "split_40k", "split40k", "parcial40km", "lap40km", "partial40km"}},
	{Field: Pace42, Aliases: []string{"rm42km", "rm_42k", "rm42k", "ritmo42km", "pace42km", "maratonrm", "marathonpace"}},
	{Field: Split42, Aliases: []string{"split42km", "split_42k", "split42k", "parcial42km", "lap42km", "partial42km"}},
}
