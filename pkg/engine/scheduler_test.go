// pkg/engine/scheduler_test.go
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()

	if s.Step(time.Second) {
		t.Error("Expected no frame to run without a request")
	}
	if s.Now() != time.Second {
		t.Errorf("Expected clock 1s, got %v", s.Now())
	}

	var calls []time.Duration
	s.RequestFrame(func(now time.Duration) { calls = append(calls, now) })
	s.RequestFrame(func(now time.Duration) { calls = append(calls, -now) })
	if !s.Pending() {
		t.Fatal("Expected a pending frame")
	}

	if !s.Step(500 * time.Millisecond) {
		t.Fatal("Expected the pending frame to run")
	}
	if len(calls) != 1 || calls[0] != -1500*time.Millisecond {
		t.Errorf("Expected only the latest request to run at 1.5s, got %v", calls)
	}
	if s.Pending() {
		t.Error("Expected the request to be consumed")
	}
}

func TestManualScheduler_RequestFromFrame(t *testing.T) {
	s := NewManualScheduler()
	var frames int
	var fn FrameFunc
	fn = func(now time.Duration) {
		frames++
		s.RequestFrame(fn)
	}
	s.RequestFrame(fn)

	for i := 0; i < 3; i++ {
		s.Step(10 * time.Millisecond)
	}
	if frames != 3 {
		t.Errorf("Expected 3 frames, got %d", frames)
	}
}

func TestTickerScheduler(t *testing.T) {
	s := NewTickerScheduler(time.Millisecond)

	var frames atomic.Int32
	var fn FrameFunc
	fn = func(now time.Duration) {
		if frames.Add(1) < 5 {
			s.RequestFrame(fn)
		}
	}
	s.RequestFrame(fn)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for frames.Load() < 5 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if frames.Load() != 5 {
		t.Fatalf("Expected 5 frames, got %d", frames.Load())
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close returned %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Second Close returned %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil from Run after Close, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}

	// Only requested frames run
	time.Sleep(5 * time.Millisecond)
	if frames.Load() != 5 {
		t.Errorf("Expected no frames without a request, got %d", frames.Load())
	}
}

func TestTickerScheduler_ContextCancel(t *testing.T) {
	s := NewTickerScheduler(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
