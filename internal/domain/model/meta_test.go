package model_test

import (
	"testing"

	"github.com/clefscore/clef/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseMeta(t *testing.T) {
	Convey("Given round metadata blobs", t, func() {
		Convey("When the blob is a well-formed object", func() {
			m, ok := model.ParseMeta(`{"difficulty":"hard","questions":12}`)

			Convey("Then both fields are extracted", func() {
				So(ok, ShouldBeTrue)
				So(m.Difficulty, ShouldEqual, "hard")
				So(m.Questions, ShouldEqual, 12)
			})
		})

		Convey("When questions is a numeric string", func() {
			m, ok := model.ParseMeta(`{"questions":" 7 "}`)

			Convey("Then it is coerced to an int", func() {
				So(ok, ShouldBeTrue)
				So(m.Questions, ShouldEqual, 7)
			})
		})

		Convey("When questions is not numeric", func() {
			m, ok := model.ParseMeta(`{"difficulty":"easy","questions":"a few"}`)

			Convey("Then the count is absent but the rest survives", func() {
				So(ok, ShouldBeTrue)
				So(m.Difficulty, ShouldEqual, "easy")
				So(m.Questions, ShouldEqual, 0)
			})
		})

		Convey("When the blob is empty", func() {
			_, ok := model.ParseMeta("")

			Convey("Then there is no metadata", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the blob is not JSON", func() {
			_, ok := model.ParseMeta("free-form note")

			Convey("Then there is no metadata and no error", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the blob is a JSON array", func() {
			_, ok := model.ParseMeta(`[1,2,3]`)

			Convey("Then it is treated as absent", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestParseDifficulty(t *testing.T) {
	Convey("Given difficulty tags", t, func() {
		Convey("Known tiers parse to themselves", func() {
			for _, tag := range []string{"easy", "medium", "hard"} {
				d, ok := model.ParseDifficulty(tag)
				So(ok, ShouldBeTrue)
				So(string(d), ShouldEqual, tag)
			}
		})

		Convey("An empty tag is absent", func() {
			_, ok := model.ParseDifficulty("")
			So(ok, ShouldBeFalse)
		})

		Convey("An unknown tag falls back to medium", func() {
			d, ok := model.ParseDifficulty("extreme")
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, model.DifficultyMedium)
		})
	})
}
