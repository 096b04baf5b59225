package client

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_OnlyTrailingCallFires(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(30 * time.Millisecond)

	var fired atomic.Int32
	var got atomic.Value

	// A user typing "Ana": each keystroke reschedules the search.
	for _, term := range []string{"A", "An", "Ana"} {
		term := term
		d.Do(func() {
			fired.Add(1)
			got.Store(term)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), fired.Load(), "only the last keystroke searches")
	assert.Equal(t, "Ana", got.Load())
}

func TestDebouncer_SeparateBurstsFireSeparately(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Do(func() { fired.Add(1) })
	time.Sleep(60 * time.Millisecond)
	d.Do(func() { fired.Add(1) })
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, int32(2), fired.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(30 * time.Millisecond)

	var fired atomic.Int32
	d.Do(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
