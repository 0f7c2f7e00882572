package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNextTickAligned(t *testing.T) {
	s := New(Options{Interval: 5 * time.Minute, AlignToStart: true}, zerolog.Nop())

	now := time.Date(2024, 1, 2, 15, 7, 30, 0, time.UTC)
	next := s.nextTick(now)

	want := time.Date(2024, 1, 2, 15, 10, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected aligned tick %s, got %s", want, next)
	}
}

func TestNextTickUnaligned(t *testing.T) {
	s := New(Options{Interval: 5 * time.Minute}, zerolog.Nop())

	now := time.Date(2024, 1, 2, 15, 7, 30, 0, time.UTC)
	next := s.nextTick(now)

	if got := next.Sub(now); got != 5*time.Minute {
		t.Fatalf("expected tick one interval away, got %s", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := s.Run(ctx, func(ctx context.Context, tick time.Time) error {
		ticks++
		return nil
	})

	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ticks == 0 {
		t.Fatal("expected at least one tick before cancellation")
	}
}
