package worker_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/ritmo/internal/adapters/mq/queue"
	"github.com/okian/ritmo/internal/adapters/mq/worker"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/normalize"
	logging "github.com/okian/ritmo/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

var headers = []string{"Dorsal", "Nombre", "Sexo", "Categoría", "Tiempo Chip"}

func sampleRows(n int) []model.RawRow {
	rows := make([]model.RawRow, n)
	for i := range rows {
		sex := "M"
		if i%3 == 0 {
			sex = "F"
		}
		chip := fmt.Sprintf("0:%02d:%02d", 35+i%20, i%60)
		if i%17 == 0 {
			chip = ""
		}
		vals := []string{fmt.Sprint(i + 1), fmt.Sprintf("Runner %d", i), sex, "30 a 34", chip}
		if i%41 == 0 {
			vals = []string{"", "", "", "", ""}
		}
		rows[i] = model.RawRow{Headers: headers, Values: vals, Line: i + 2}
	}
	return rows
}

func TestPoolNormalize(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a started pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue(queue.WithCapacity(10000))
		pool := worker.NewPool(4, q, worker.WithParallelThreshold(100))
		pool.Start(ctx)
		convey.Reset(func() {
			_ = pool.Shutdown(context.Background())
			cancel()
		})

		for _, p := range []normalize.Profile{normalize.ReportProfile, normalize.IngestProfile} {
			n := normalize.New(10, headers, normalize.WithProfile(p))

			convey.Convey("When a large batch is normalized with the "+p.Name+" profile", func() {
				rows := sampleRows(5000)
				got, err := pool.Normalize(ctx, n, rows)

				convey.Convey("Then the result matches sequential normalization in order", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(got, convey.ShouldResemble, n.All(rows))
				})
			})
		}

		convey.Convey("When a batch is below the threshold", func() {
			n := normalize.New(10, headers)
			rows := sampleRows(50)
			got, err := pool.Normalize(ctx, n, rows)

			convey.Convey("Then it is normalized inline", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, n.All(rows))
				convey.So(pool.Threshold(), convey.ShouldEqual, 100)
				convey.So(pool.Size(), convey.ShouldEqual, 4)
			})
		})
	})

	convey.Convey("Given a tiny queue in front of running workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue(queue.WithCapacity(1))
		pool := worker.NewPool(2, q, worker.WithParallelThreshold(10))
		pool.Start(ctx)
		convey.Reset(func() {
			_ = pool.Shutdown(context.Background())
			cancel()
		})
		n := normalize.New(10, headers)
		rows := sampleRows(200)

		convey.Convey("When the queue rejects most jobs", func() {
			got, err := pool.Normalize(ctx, n, rows)

			convey.Convey("Then rejected rows are processed by the caller", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, n.All(rows))
			})
		})
	})

	convey.Convey("Given a pool whose workers were stopped by cancellation", t, func() {
		runCtx, cancelRun := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		pool := worker.NewPool(2, q, worker.WithParallelThreshold(10))
		pool.Start(runCtx)
		cancelRun()
		deadline := time.Now().Add(time.Second)
		for pool.Running() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}

		convey.Convey("When a request still in flight normalizes a large batch", func() {
			reqCtx, cancelReq := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancelReq()
			n := normalize.New(10, headers)
			rows := sampleRows(100)
			start := time.Now()
			got, err := pool.Normalize(reqCtx, n, rows)

			convey.Convey("Then it is normalized inline without waiting for the deadline", func() {
				convey.So(pool.Running(), convey.ShouldBeFalse)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, n.All(rows))
				convey.So(time.Since(start), convey.ShouldBeLessThan, time.Second)
			})
		})
	})

	convey.Convey("Given workers stopped while a batch is queued", t, func() {
		runCtx, cancelRun := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		pool := worker.NewPool(1, q, worker.WithParallelThreshold(10))
		pool.Start(runCtx)
		release := make(chan struct{})
		busy := blocker{started: make(chan struct{}), release: release}
		convey.So(q.Enqueue(context.Background(), queue.Job{Target: busy}), convey.ShouldBeTrue)
		<-busy.started

		n := normalize.New(10, headers)
		rows := sampleRows(300)
		type outcome struct {
			b   normalize.Batch
			err error
		}
		res := make(chan outcome, 1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			b, err := pool.Normalize(ctx, n, rows)
			res <- outcome{b, err}
		}()
		for q.Len(context.Background()) == 0 {
			time.Sleep(time.Millisecond)
		}
		cancelRun()
		close(release)

		convey.Convey("Then the caller finishes the queued rows itself", func() {
			got := <-res
			convey.So(got.err, convey.ShouldBeNil)
			convey.So(got.b, convey.ShouldResemble, n.All(rows))
		})
	})

	convey.Convey("Given a pool that was never started", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		pool := worker.NewPool(2, q, worker.WithParallelThreshold(10))
		n := normalize.New(10, headers)
		rows := sampleRows(200)

		convey.Convey("Then batches run on the caller and nothing is queued", func() {
			got, err := pool.Normalize(context.Background(), n, rows)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldResemble, n.All(rows))
			convey.So(q.Len(context.Background()), convey.ShouldEqual, 0)
		})
	})
}

type blocker struct {
	started chan struct{}
	release chan struct{}
}

func (b blocker) Fill(context.Context, int) {
	close(b.started)
	<-b.release
}

func TestWorkerShutdown(t *testing.T) {
	_ = logging.Init()

	convey.Convey("Given a running worker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		w := worker.NewInMemoryWorker(q, worker.WithName("w-test"))
		go w.Run(context.Background())

		convey.Convey("Then Shutdown returns once the loop exits", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
		})
	})
}
