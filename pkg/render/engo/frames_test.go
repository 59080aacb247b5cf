package engo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameSystem_RunsRequestedFrameOnce(t *testing.T) {
	fs := NewFrameSystem()
	var got []time.Duration
	fs.RequestFrame(func(now time.Duration) { got = append(got, now) })

	fs.Update(0.5)
	fs.Update(0.5)

	assert.Equal(t, []time.Duration{500 * time.Millisecond}, got)
	assert.Equal(t, time.Second, fs.Now())
}

func TestFrameSystem_IdleUpdatesAdvanceClock(t *testing.T) {
	fs := NewFrameSystem()
	fs.Update(0.25)
	fs.Update(0.25)

	var got time.Duration
	fs.RequestFrame(func(now time.Duration) { got = now })
	fs.Update(0.25)

	assert.Equal(t, 750*time.Millisecond, got)
}

func TestFrameSystem_LatestRequestWins(t *testing.T) {
	fs := NewFrameSystem()
	var first, second int
	fs.RequestFrame(func(time.Duration) { first++ })
	fs.RequestFrame(func(time.Duration) { second++ })
	fs.Update(0.016)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestFrameSystem_FrameMayRequestNext(t *testing.T) {
	fs := NewFrameSystem()
	count := 0
	var frame func(time.Duration)
	frame = func(time.Duration) {
		count++
		fs.RequestFrame(frame)
	}
	fs.RequestFrame(frame)

	for i := 0; i < 3; i++ {
		fs.Update(0.016)
	}
	assert.Equal(t, 3, count)
}
