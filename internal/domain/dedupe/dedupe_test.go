package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/clefscore/clef/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a bounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When recording a fresh id", func() {
			seen := d.SeenAndRecord(ctx, "a")

			Convey("Then it is new the first time and seen after", func() {
				So(seen, ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording an id", func() {
			d.SeenAndRecord(ctx, "a")
			d.Unrecord(ctx, "a")

			Convey("Then it can be recorded again", func() {
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown id", func() {
			d.Unrecord(ctx, "ghost")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the cache overflows", func() {
			for i := 0; i < 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i))
			}

			Convey("Then the oldest id is evicted and the rest remain", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "id-0"), ShouldBeFalse) // evicted
				So(d.SeenAndRecord(ctx, "id-3"), ShouldBeTrue)
			})
		})
	})
}
