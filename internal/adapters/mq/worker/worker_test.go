package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/plantcard/internal/adapters/mq/worker"
	model "github.com/okian/plantcard/internal/domain/model"
	logging "github.com/okian/plantcard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	ch   chan worker.Update
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan worker.Update, 64)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Update { return mq.ch }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.ch) })
	return nil
}

func (mq *mockQueue) add(entity, value string) {
	mq.ch <- model.StateUpdate{
		UpdateID:   entity + ":" + value,
		State:      model.State{Entity: entity, Value: value},
		ReceivedAt: time.Now(),
	}
}

type mockApplier struct {
	mu     sync.Mutex
	states map[string]string
	errs   map[string]error
	stale  map[string]bool
}

func newMockApplier() *mockApplier {
	return &mockApplier{
		states: make(map[string]string),
		errs:   make(map[string]error),
		stale:  make(map[string]bool),
	}
}

func (ma *mockApplier) Put(_ context.Context, u worker.Update) (bool, error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if err, ok := ma.errs[u.State.Entity]; ok {
		return false, err
	}
	if ma.stale[u.State.Entity] {
		return false, nil
	}
	ma.states[u.State.Entity] = u.State.Value
	return true, nil
}

func (ma *mockApplier) get(entity string) (string, bool) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	v, ok := ma.states[entity]
	return v, ok
}

type hookRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (h *hookRecorder) hook(_ context.Context, u worker.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, u.UpdateID)
}

func (h *hookRecorder) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.ids...)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		applier := newMockApplier()
		rec := &hookRecorder{}
		w := worker.NewInMemoryWorker(q, applier,
			worker.WithName("test-worker"),
			worker.WithAppliedHook(rec.hook),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When an update is queued", func() {
			q.add("sensor.moisture", "42")

			convey.Convey("Then it is applied and the hook fires", func() {
				convey.So(eventually(func() bool { _, ok := applier.get("sensor.moisture"); return ok }), convey.ShouldBeTrue)
				v, _ := applier.get("sensor.moisture")
				convey.So(v, convey.ShouldEqual, "42")
				convey.So(eventually(func() bool { return len(rec.seen()) == 1 }), convey.ShouldBeTrue)
				convey.So(rec.seen()[0], convey.ShouldEqual, "sensor.moisture:42")
			})
		})

		convey.Convey("When the store rejects an update", func() {
			applier.errs["sensor.bad"] = errors.New("boom")
			q.add("sensor.bad", "1")
			q.add("sensor.good", "2")

			convey.Convey("Then the worker keeps going and skips the hook", func() {
				convey.So(eventually(func() bool { _, ok := applier.get("sensor.good"); return ok }), convey.ShouldBeTrue)
				_, ok := applier.get("sensor.bad")
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(rec.seen(), convey.ShouldResemble, []string{"sensor.good:2"})
			})
		})

		convey.Convey("When an update does not change the store", func() {
			applier.stale["sensor.old"] = true
			q.add("sensor.old", "1")

			convey.Convey("Then the hook is not called", func() {
				convey.So(eventually(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
				convey.So(rec.seen(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		applier := newMockApplier()

		convey.Convey("When created with a non-positive count", func() {
			pool := worker.NewPool(0, q, applier)

			convey.Convey("Then it falls back to at least one worker", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		convey.Convey("When started and fed updates", func() {
			pool := worker.NewPool(3, q, applier)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			for i := 0; i < 20; i++ {
				q.add(fmt.Sprintf("sensor.%d", i), "1")
			}

			convey.Convey("Then shutdown drains every update", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(pool.Processed(), convey.ShouldEqual, 20)
				for i := 0; i < 20; i++ {
					_, ok := applier.get(fmt.Sprintf("sensor.%d", i))
					convey.So(ok, convey.ShouldBeTrue)
				}
			})
		})

		convey.Convey("When stopped without draining", func() {
			pool := worker.NewPool(2, q, applier)
			pool.Start(context.Background())
			pool.Stop()

			convey.Convey("Then later updates are left in the queue", func() {
				q.add("sensor.late", "1")
				time.Sleep(50 * time.Millisecond)
				_, ok := applier.get("sensor.late")
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(pool.Processed(), convey.ShouldEqual, 0)
			})

			convey.Convey("Then a second stop returns", func() {
				convey.So(pool.Stop, convey.ShouldNotPanic)
			})

			convey.Convey("Then a later shutdown is harmless", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}
