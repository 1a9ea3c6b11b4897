package names

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStaticResolver(t *testing.T) {
	Convey("Given a resolver seeded from config", t, func() {
		r := NewStatic(map[string]string{
			"254":  "The Cheesy Poofs",
			"1678": "Citrus Circuits",
			"bad":  "ignored",
		})

		Convey("Then seeded teams resolve and invalid keys are skipped", func() {
			So(r.Name(254), ShouldEqual, "The Cheesy Poofs")
			So(r.Name(1678), ShouldEqual, "Citrus Circuits")
			So(r.Len(), ShouldEqual, 2)
		})

		Convey("Then unknown teams resolve to empty", func() {
			So(r.Name(9999), ShouldEqual, "")
		})

		Convey("When a name is set at runtime", func() {
			r.Set(118, "Everybot")
			So(r.Name(118), ShouldEqual, "Everybot")

			Convey("Then setting empty removes it", func() {
				r.Set(118, "")
				So(r.Name(118), ShouldEqual, "")
				So(r.Len(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a nil seed", t, func() {
		r := NewStatic(nil)
		So(r.Len(), ShouldEqual, 0)
		So(r.Name(1), ShouldEqual, "")
	})
}
