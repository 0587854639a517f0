package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMapKeepsOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	got, err := Map(context.Background(), items, 3, func(_ context.Context, _ int, v int) (int, error) {
		time.Sleep(time.Duration(v) * time.Millisecond)
		return v * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{50, 10, 40, 20, 30}, got)
}

func TestMapRespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	items := make([]int, 12)
	_, err := Map(context.Background(), items, 2, func(_ context.Context, _ int, _ int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestMapReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Map(context.Background(), []string{"a", "b", "c"}, 1, func(_ context.Context, i int, _ string) (string, error) {
		if i == 1 {
			return "", boom
		}
		return "ok", nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMapZeroLimitIsSequential(t *testing.T) {
	var seen []int
	_, err := Map(context.Background(), []int{1, 2, 3}, 0, func(_ context.Context, i int, _ int) (int, error) {
		seen = append(seen, i)
		return i, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, seen)
}
