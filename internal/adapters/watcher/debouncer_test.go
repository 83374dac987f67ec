package watcher_test

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/aqtcache/internal/adapters/watcher"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32
		d := watcher.NewDebouncer(100*time.Millisecond, func() { calls.Add(1) })

		d.Trigger()
		d.Trigger()
		d.Trigger()

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestDebouncer_TriggerResetsWindow(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32
		d := watcher.NewDebouncer(100*time.Millisecond, func() { calls.Add(1) })

		d.Trigger()
		time.Sleep(60 * time.Millisecond)
		d.Trigger()
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(0), calls.Load())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32
		d := watcher.NewDebouncer(100*time.Millisecond, func() { calls.Add(1) })

		d.Trigger()
		d.Stop()

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(0), calls.Load())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Trigger()
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
	})
}
