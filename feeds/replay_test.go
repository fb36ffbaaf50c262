package feeds

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTick(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	type test struct {
		line  string
		tick  Tick
		error bool
	}

	tests := map[string]test{
		"price-only": {
			line: "1234.56",
			tick: Tick{Symbol: "R_100", Price: 1234.56, Time: now},
		},
		"with-symbol": {
			line: "R_50, 99.1",
			tick: Tick{Symbol: "R_50", Price: 99.1, Time: now},
		},
		"with-epoch": {
			line: "R_10,6543.21,1700000000",
			tick: Tick{Symbol: "R_10", Price: 6543.21, Time: time.Unix(1700000000, 0).UTC()},
		},
		"empty-symbol": {
			line: ",12.5",
			tick: Tick{Symbol: "R_100", Price: 12.5, Time: now},
		},
		"bad-price": {
			line:  "abc",
			error: true,
		},
		"bad-epoch": {
			line:  "R_10,1.5,yesterday",
			error: true,
		},
		"too-many-fields": {
			line:  "a,b,c,d",
			error: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tick, err := ParseTick(tt.line, "R_100", now)
			if tt.error {
				assert.True(t, errors.Is(err, ErrBadTick))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tick, tick)
		})
	}
}

func TestReplay_Stream(t *testing.T) {
	input := strings.Join([]string{
		"# recorded R_100 ticks",
		"1000.01",
		"",
		"not-a-price",
		"R_100,1000.02",
		"R_100,1000.13,1700000000",
	}, "\n")

	replay := NewReplay(strings.NewReader(input), "R_100")
	ticks, errCh := replay.Stream(context.Background())

	var digits []int
	for tick := range ticks {
		assert.Equal(t, "R_100", tick.Symbol)
		digits = append(digits, tick.Digit())
	}

	assert.NoError(t, <-errCh)
	assert.Equal(t, []int{1, 2, 3}, digits)
	assert.Equal(t, 1, replay.Skipped())
}

func TestReplay_StreamCancelled(t *testing.T) {
	input := strings.Repeat("1000.01\n", 500)

	ctx, cancel := context.WithCancel(context.Background())
	replay := NewReplay(strings.NewReader(input), "R_100")
	ticks, errCh := replay.Stream(ctx)

	<-ticks
	cancel()

	// drain until the producer notices the cancellation
	for range ticks {
	}
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
