package model

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func valid() MatchRecord {
	return MatchRecord{
		RecordID:    "rec-1",
		TeamNumber:  254,
		MatchNumber: 12,
		ScoutedAt:   time.Now(),
		ClimbResult: ClimbDeep,
	}
}

func TestMatchRecordValidate(t *testing.T) {
	Convey("Given a match record", t, func() {
		Convey("A well-formed record passes", func() {
			r := valid()
			So(r.Validate(), ShouldBeNil)
		})

		Convey("Missing record_id fails", func() {
			r := valid()
			r.RecordID = ""
			So(errors.Is(r.Validate(), ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("Non-positive team or match numbers fail", func() {
			r := valid()
			r.TeamNumber = 0
			So(errors.Is(r.Validate(), ErrInvalidRecord), ShouldBeTrue)

			r = valid()
			r.MatchNumber = -1
			So(errors.Is(r.Validate(), ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("Unknown climb outcomes fail", func() {
			r := valid()
			r.ClimbResult = "hover"
			So(errors.Is(r.Validate(), ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("Negative scoring counts fail", func() {
			r := valid()
			r.TeleopCoralL3 = -1
			So(errors.Is(r.Validate(), ErrInvalidRecord), ShouldBeTrue)
		})
	})
}

func TestCoralTotals(t *testing.T) {
	Convey("Given coral counts per level", t, func() {
		r := valid()
		r.AutoCoralL1, r.AutoCoralL2, r.AutoCoralL3, r.AutoCoralL4 = 1, 2, 3, 4
		r.TeleopCoralL1, r.TeleopCoralL2 = 5, 6

		So(r.AutoCoral(), ShouldEqual, 10)
		So(r.TeleopCoral(), ShouldEqual, 11)
	})
}

func TestClimbValid(t *testing.T) {
	Convey("Given climb outcomes", t, func() {
		for _, c := range []Climb{ClimbNone, ClimbPark, ClimbShallow, ClimbDeep} {
			So(c.Valid(), ShouldBeTrue)
		}
		So(Climb("").Valid(), ShouldBeFalse)
		So(Climb("hover").Valid(), ShouldBeFalse)
	})
}

func TestPitRecordValidate(t *testing.T) {
	Convey("Given a pit record", t, func() {
		Convey("Scores within the 0-100 domain pass", func() {
			p := PitRecord{TeamNumber: 254, Electrical: 100, Mechanical: 0, Tools: 55}
			So(p.Validate(), ShouldBeNil)
		})

		Convey("Out-of-domain scores fail", func() {
			p := PitRecord{TeamNumber: 254, SpareParts: 101}
			So(errors.Is(p.Validate(), ErrInvalidRecord), ShouldBeTrue)

			p = PitRecord{TeamNumber: 254, DriverStation: -1}
			So(errors.Is(p.Validate(), ErrInvalidRecord), ShouldBeTrue)
		})

		Convey("A non-positive team fails", func() {
			p := PitRecord{TeamNumber: 0}
			So(errors.Is(p.Validate(), ErrInvalidRecord), ShouldBeTrue)
		})
	})
}
