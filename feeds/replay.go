package feeds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// ═══════════════════════════════════════════════════════════════════════════════
// REPLAY FEED - Recorded ticks from a file or stdin
// ═══════════════════════════════════════════════════════════════════════════════
//
// Accepted line formats:
//   1234.56
//   R_100,1234.56
//   R_100,1234.56,1700000000      (unix seconds)
//
// Blank lines and lines starting with # are skipped.
//
// ═══════════════════════════════════════════════════════════════════════════════

// ErrBadTick is returned for lines that cannot be parsed into a tick
var ErrBadTick = errors.New("bad tick")

// Tick is a single price update for a synthetic index
type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// Digit returns the last digit of the tick price
func (t Tick) Digit() int {
	return LastDigit(t.Price)
}

// Replay streams ticks from a reader
type Replay struct {
	r      io.Reader
	symbol string
	now    func() time.Time

	// Stats
	lines   int
	skipped atomic.Int64
}

// NewReplay creates a replay feed; symbol is used when a line does not carry one
func NewReplay(r io.Reader, symbol string) *Replay {
	return &Replay{
		r:      r,
		symbol: symbol,
		now:    time.Now,
	}
}

// ParseTick parses one replay line
func ParseTick(line, defaultSymbol string, now time.Time) (Tick, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	tick := Tick{Symbol: defaultSymbol, Time: now}
	var priceField string

	switch len(fields) {
	case 1:
		priceField = fields[0]
	case 2, 3:
		if fields[0] != "" {
			tick.Symbol = fields[0]
		}
		priceField = fields[1]
		if len(fields) == 3 {
			epoch, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return Tick{}, fmt.Errorf("%w: epoch %q: %v", ErrBadTick, fields[2], err)
			}
			tick.Time = time.Unix(epoch, 0).UTC()
		}
	default:
		return Tick{}, fmt.Errorf("%w: %d fields", ErrBadTick, len(fields))
	}

	price, err := strconv.ParseFloat(priceField, 64)
	if err != nil {
		return Tick{}, fmt.Errorf("%w: price %q: %v", ErrBadTick, priceField, err)
	}
	tick.Price = price
	return tick, nil
}

// Stream reads the source until EOF or ctx cancellation.
// Both channels are closed when streaming ends; at most one error is sent.
func (rp *Replay) Stream(ctx context.Context) (<-chan Tick, <-chan error) {
	ticks := make(chan Tick, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(ticks)
		defer close(errCh)

		scanner := bufio.NewScanner(rp.r)
		for scanner.Scan() {
			rp.lines++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			tick, err := ParseTick(line, rp.symbol, rp.now())
			if err != nil {
				rp.skipped.Add(1)
				log.Warn().Err(err).Int("line", rp.lines).Msg("Skipping replay line")
				continue
			}

			select {
			case ticks <- tick:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}

		if err := scanner.Err(); err != nil {
			errCh <- fmt.Errorf("read ticks: %w", err)
		}
	}()

	return ticks, errCh
}

// Skipped returns the number of unparseable lines seen so far
func (rp *Replay) Skipped() int {
	return int(rp.skipped.Load())
}
