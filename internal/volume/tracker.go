package volume

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/holiman/uint256"

	"tradeGuard/internal/fixedpoint"
)

// ErrStaleTimestamp is returned when a record precedes the pool's open window.
var ErrStaleTimestamp = errors.New("timestamp precedes open window")

// Window holds cumulative USD volume for one pool and one time window.
type Window struct {
	Pool      string
	Start     uint64
	End       uint64
	VolumeUSD *uint256.Int
	Trades    uint64
}

// Tracker accumulates per-pool trade volume over fixed windows. A window
// resets when a record lands past its end.
type Tracker struct {
	windowSeconds uint64

	mu      sync.Mutex
	windows map[string]*Window
}

func NewTracker(windowSeconds uint64) (*Tracker, error) {
	if windowSeconds == 0 {
		return nil, fmt.Errorf("window seconds must be > 0")
	}
	return &Tracker{
		windowSeconds: windowSeconds,
		windows:       make(map[string]*Window),
	}, nil
}

// WindowSeconds returns the configured window length.
func (t *Tracker) WindowSeconds() uint64 {
	return t.windowSeconds
}

// Record adds amountUSD to the pool's window containing ts and returns
// the window total after the addition.
func (t *Tracker) Record(pool string, ts uint64, amountUSD *uint256.Int) (*uint256.Int, error) {
	if amountUSD == nil {
		amountUSD = new(uint256.Int)
	}
	start := windowStart(ts, t.windowSeconds)
	key := poolKey(pool)

	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.windows[key]
	switch {
	case w == nil || start > w.Start:
		w = &Window{Pool: pool, Start: start, End: windowEnd(start, t.windowSeconds), VolumeUSD: new(uint256.Int)}
	case start < w.Start:
		return nil, fmt.Errorf("%w: timestamp %d, window %d, pool %s", ErrStaleTimestamp, ts, w.Start, pool)
	}

	total, err := fixedpoint.Add(w.VolumeUSD, amountUSD)
	if err != nil {
		return nil, fmt.Errorf("record volume for pool %s: %w", pool, err)
	}
	t.windows[key] = &Window{Pool: w.Pool, Start: w.Start, End: w.End, VolumeUSD: total, Trades: w.Trades + 1}
	return total.Clone(), nil
}

// Volume returns the cumulative volume of the window containing ts, or
// zero once that window has rolled over.
func (t *Tracker) Volume(pool string, ts uint64) *uint256.Int {
	start := windowStart(ts, t.windowSeconds)

	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.windows[poolKey(pool)]
	if w == nil || w.Start != start {
		return new(uint256.Int)
	}
	return w.VolumeUSD.Clone()
}

// Snapshot returns a copy of the pool's open window.
func (t *Tracker) Snapshot(pool string) (Window, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.windows[poolKey(pool)]
	if w == nil {
		return Window{}, false
	}
	out := *w
	out.VolumeUSD = w.VolumeUSD.Clone()
	return out, true
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}

// windowEnd saturates at math.MaxUint64 for windows opening near the top
// of the timestamp range.
func windowEnd(start, windowSec uint64) uint64 {
	if start > math.MaxUint64-windowSec {
		return math.MaxUint64
	}
	return start + windowSec
}

func poolKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
