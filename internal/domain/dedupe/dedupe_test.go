package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/ritmo/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFingerprint(t *testing.T) {
	Convey("Given the same file uploaded for a race", t, func() {
		content := []byte("Dorsal,Nombre\n1,Ana\n")

		Convey("Then race name spacing and case do not matter", func() {
			So(dedupe.Fingerprint(" Maratón Lima ", content), ShouldEqual, dedupe.Fingerprint("maratón lima", content))
		})

		Convey("Then a different race or content changes the fingerprint", func() {
			base := dedupe.Fingerprint("10K", content)
			So(dedupe.Fingerprint("21K", content), ShouldNotEqual, base)
			So(dedupe.Fingerprint("10K", append(content, '2')), ShouldNotEqual, base)
			So(len(base), ShouldEqual, 64)
		})
	})
}

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a fingerprint is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "fp-1")
			second := d.SeenAndRecord(ctx, "fp-1")

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a fingerprint is unrecorded", func() {
			d.SeenAndRecord(ctx, "fp-1")
			d.Unrecord(ctx, "fp-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("fp-%d", i))
		}

		Convey("Then the oldest fingerprint is evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "fp-4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "fp-2"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "fp-1"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper under concurrent use", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, fmt.Sprintf("fp-%d", i%10)) {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Then each fingerprint is new exactly once", func() {
			So(fresh, ShouldEqual, 10)
			So(d.Size(), ShouldEqual, 10)
		})
	})
}
