package eviction_test

import (
	"testing"

	"github.com/Dynatrace/openkit-go/cache"
	"github.com/Dynatrace/openkit-go/eviction"
	"github.com/Dynatrace/openkit-go/logger"
)

func TestSpaceStrategy_DisabledCases(t *testing.T) {
	cases := []struct {
		lower, upper int64
	}{
		{0, 100},
		{100, 0},
		{-1, 100},
		{100, 50}, // upper < lower
	}
	for _, c := range cases {
		s := eviction.NewSpaceStrategy(c.lower, c.upper)
		if !s.Disabled() {
			t.Errorf("bounds (%d, %d): expected disabled", c.lower, c.upper)
		}
	}
}

func TestSpaceStrategy_ShouldRunChecksUpperBound(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 0, "12345") // 5-byte payload + 8-byte timestamp + 1 = 14 bytes
	s := eviction.NewSpaceStrategy(1, 10)
	if !s.ShouldRun(c) {
		t.Error("expected ShouldRun=true when over upper bound")
	}
	s2 := eviction.NewSpaceStrategy(1, 20)
	if s2.ShouldRun(c) {
		t.Error("expected ShouldRun=false when under upper bound")
	}
}

func TestSpaceStrategy_EvictsRoundRobinUntilLowerBound(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 0, "aa")
	c.AddEvent(1, 1, "bb")
	c.AddEvent(2, 0, "cc")
	c.AddEvent(2, 1, "dd")
	// total bytes = 44 (4 records, each 2-byte payload + 8-byte timestamp + 1 = 11)

	s := eviction.NewSpaceStrategy(22, 33)
	s.Execute(c, func() bool { return true }, logger.New(logger.LevelError))

	if c.TotalBytes() > 22 {
		t.Errorf("got total bytes %d, want <= 22", c.TotalBytes())
	}
	// Round-robin should not have starved either session entirely if
	// avoidable: both should have lost at least one record given the even
	// split, though exact distribution depends on map iteration order.
}

func TestSpaceStrategy_NoOpWhenDisabled(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 0, "aaaaaaaaaa")
	s := eviction.NewSpaceStrategy(0, 0)
	s.Execute(c, func() bool { return true }, logger.New(logger.LevelError))
	if c.IsEmpty(1) {
		t.Error("expected disabled strategy to leave the cache untouched")
	}
}

func TestSpaceStrategy_StopsWhenNotAlive(t *testing.T) {
	c := cache.New()
	c.AddEvent(1, 0, "aaaaaaaaaa")
	s := eviction.NewSpaceStrategy(1, 2)
	s.Execute(c, func() bool { return false }, logger.New(logger.LevelError))
	if c.IsEmpty(1) {
		t.Error("expected no eviction once alive() reports false immediately")
	}
}
