package dedupe

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a ring deduper", t, func() {
		ctx := context.Background()
		d := NewRing()

		Convey("When an ID is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "rec-1")

			Convey("Then it reports unseen and tracks it", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same ID is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "rec-1")
			second := d.SeenAndRecord(ctx, "rec-1")

			Convey("Then the second scan is flagged as a duplicate", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When distinct IDs are recorded", func() {
			for i := 0; i < 10; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("rec-%d", i)), ShouldBeFalse)
			}

			Convey("Then all are tracked", func() {
				So(d.Size(), ShouldEqual, 10)
			})
		})
	})
}

func TestUnrecord(t *testing.T) {
	Convey("Given a deduper with a recorded ID", t, func() {
		ctx := context.Background()
		d := NewRing()
		d.SeenAndRecord(ctx, "rec-1")

		Convey("When the ID is unrecorded", func() {
			d.Unrecord(ctx, "rec-1")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "rec-1"), ShouldBeFalse)
			})
		})

		Convey("When an unknown ID is unrecorded", func() {
			d.Unrecord(ctx, "never-seen")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestFIFOEviction(t *testing.T) {
	Convey("Given a deduper with capacity 3", t, func() {
		ctx := context.Background()
		d := NewRing(WithCapacity(3))

		Convey("When a fourth ID is recorded", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.SeenAndRecord(ctx, "c")
			d.SeenAndRecord(ctx, "d")

			Convey("Then the oldest ID is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse) // evicted, re-recordable
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
			})
		})

		Convey("When an ID is unrecorded before its slot cycles", func() {
			d.SeenAndRecord(ctx, "a")
			d.SeenAndRecord(ctx, "b")
			d.Unrecord(ctx, "a")
			d.SeenAndRecord(ctx, "c")
			d.SeenAndRecord(ctx, "d")

			Convey("Then the stale slot does not corrupt the count", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
			})
		})
	})
}

func TestUnboundedCapacity(t *testing.T) {
	Convey("Given a deduper with non-positive capacity", t, func() {
		ctx := context.Background()
		d := NewRing(WithCapacity(0))

		Convey("When many IDs are recorded", func() {
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("rec-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(ctx, "rec-0"), ShouldBeTrue)
			})
		})
	})
}

func TestConcurrentRecording(t *testing.T) {
	Convey("Given concurrent scans of the same IDs", t, func() {
		ctx := context.Background()
		d := NewRing()

		const goroutines = 8
		const ids = 200

		var wg sync.WaitGroup
		duplicates := make([]int, goroutines)
		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < ids; i++ {
					if d.SeenAndRecord(ctx, fmt.Sprintf("rec-%d", i)) {
						duplicates[g]++
					}
				}
			}(g)
		}
		wg.Wait()

		Convey("Then each ID is admitted exactly once", func() {
			So(d.Size(), ShouldEqual, ids)

			total := 0
			for _, n := range duplicates {
				total += n
			}
			So(total, ShouldEqual, (goroutines-1)*ids)
		})
	})
}
