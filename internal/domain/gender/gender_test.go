package gender_test

import (
	"testing"

	"github.com/okian/ritmo/internal/domain/gender"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw gender cells", t, func() {
		So(gender.Normalize("Mujer"), ShouldEqual, gender.Female)
		So(gender.Normalize("  F "), ShouldEqual, gender.Female)
		So(gender.Normalize("Damas"), ShouldEqual, gender.Female)
		So(gender.Normalize("Varón"), ShouldEqual, gender.Male)
		So(gender.Normalize("MASCULINO"), ShouldEqual, gender.Male)
		So(gender.Normalize("Open"), ShouldEqual, gender.Other)

		Convey("Then blank and unknown cells become X", func() {
			So(gender.Normalize("  "), ShouldEqual, gender.Other)
			So(gender.Normalize(""), ShouldEqual, gender.Other)
			So(gender.Normalize("Fem 30-39"), ShouldEqual, gender.Other)
			So(gender.Normalize("alien"), ShouldEqual, gender.Other)
		})
	})
}

func TestMasculinaIsMasculine(t *testing.T) {
	Convey("Given the token masculina", t, func() {
		Convey("Then both tables read it as masculine rather than feminine", func() {
			for _, in := range []string{"masculina", "Masculina", " MASCULINA "} {
				So(gender.Normalize(in), ShouldEqual, gender.Male)
				So(gender.NormalizeLoose(in), ShouldEqual, gender.Male)
			}
		})

		Convey("Then the plural stays masculine in the loose table", func() {
			So(gender.NormalizeLoose("Masculinas"), ShouldEqual, gender.Male)
		})
	})
}

func TestNormalizeLoose(t *testing.T) {
	Convey("Given noisy ingestion cells", t, func() {
		So(gender.NormalizeLoose("Fem. 30-39"), ShouldEqual, gender.Female)
		So(gender.NormalizeLoose("Femeninas"), ShouldEqual, gender.Female)
		So(gender.NormalizeLoose("Varones Elite"), ShouldEqual, gender.Male)
		So(gender.NormalizeLoose("Gentlemen"), ShouldEqual, gender.Male)
		So(gender.NormalizeLoose("mujer"), ShouldEqual, gender.Female)
		So(gender.NormalizeLoose("Mixto"), ShouldEqual, gender.Other)
		So(gender.NormalizeLoose("Elite"), ShouldEqual, gender.Other)
		So(gender.NormalizeLoose(""), ShouldEqual, gender.Other)
	})
}

func TestKeyAndParse(t *testing.T) {
	Convey("Given canonical genders", t, func() {
		So(gender.Female.Key(), ShouldEqual, "F")
		So(gender.Male.Key(), ShouldEqual, "M")
		So(gender.Other.Key(), ShouldEqual, "X")
		So(gender.Parse("Femenino"), ShouldEqual, gender.Female)
		So(gender.Parse("whatever"), ShouldEqual, gender.Other)
	})
}

func TestCategory(t *testing.T) {
	Convey("Given category cells", t, func() {
		So(gender.Category("H"), ShouldEqual, "20 a 29")
		So(gender.Category(" h "), ShouldEqual, "20 a 29")
		So(gender.Category("JU20"), ShouldEqual, "18 a 19 años")
		So(gender.Category("ju20"), ShouldEqual, "18 a 19 años")
		So(gender.Category("40 a 49"), ShouldEqual, "40 a 49")
		So(gender.Category(""), ShouldEqual, "")
	})
}
