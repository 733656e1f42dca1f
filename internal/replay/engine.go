package replay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/twinfan/sendtraffic/internal/parser"
	"github.com/twinfan/sendtraffic/internal/stats"
	"github.com/twinfan/sendtraffic/internal/types"
)

// Sender delivers one datagram per call to the traffic or the weather
// destination. A send failure is fatal for the replay: if the destination is
// unreachable there is no point in continuing to pace.
type Sender interface {
	SendTraffic(line string) error
	SendWeather(line string) error
}

// Poller is polled once per input line; it must never block. The ownship
// tracker implements it.
type Poller interface {
	Poll()
}

// Observer is notified after each datagram has gone out. rec is nil for
// weather data. Observers are best-effort consumers (mirror, state cache,
// transcript); they must not fail the send path.
type Observer interface {
	RecordSent(kind, payload string, rec *types.TrafficRecord, pass int)
}

// Options configures a replay run.
type Options struct {
	Filter       AircraftFilter
	BufferPeriod int  // seconds the first record is pushed into the past
	Historic     int  // seconds subtracted from every outbound timestamp
	Loop         bool // restart from the beginning at end of input
	Verbose      bool
}

// Engine replays a recorded traffic/weather stream with original pacing.
type Engine struct {
	opts     Options
	sender   Sender
	stats    *stats.Stats
	clock    Clock
	tracker  Poller
	observer Observer
}

// New creates a replay engine. Tracker and observer are optional and set via
// SetTracker / SetObserver.
func New(opts Options, sender Sender, st *stats.Stats) *Engine {
	return &Engine{
		opts:   opts,
		sender: sender,
		stats:  st,
		clock:  realClock{},
	}
}

// SetTracker attaches an ownship tracker polled before each input line.
func (e *Engine) SetTracker(t Poller) { e.tracker = t }

// SetObserver attaches a post-send observer.
func (e *Engine) SetObserver(o Observer) { e.observer = o }

// SetClock replaces the wall clock, for tests.
func (e *Engine) SetClock(c Clock) { e.clock = c }

// passState carries the pacing state for one replay pass. A fresh value is
// created per pass so the timestamp offset is recomputed at every loop
// restart and never leaks between passes.
type passState struct {
	index        int
	bufferPeriod float64
	tsDiff       float64
	haveDiff     bool
}

// Run replays src until end of input, or forever when looping is enabled.
// It returns ctx.Err() when the run is canceled.
func (e *Engine) Run(ctx context.Context, src Source) error {
	// The first traffic record of a looped pass is paced but not re-sent:
	// it was the last position the consumer saw before the seam.
	sendFirst := true

	for pass := 0; ; pass++ {
		ps := passState{index: pass, bufferPeriod: float64(e.opts.BufferPeriod)}
		if pass > 0 {
			// Continuous replay must not re-introduce the one-time
			// backdating offset.
			ps.bufferPeriod = 0
		}

		if err := e.runPass(ctx, src, &ps, &sendFirst); err != nil {
			return err
		}
		e.stats.IncrementPasses()

		if !e.opts.Loop {
			return nil
		}
		sendFirst = false
		if err := src.Rewind(); err != nil {
			return fmt.Errorf("cannot restart replay: %w", err)
		}
	}
}

func (e *Engine) runPass(ctx context.Context, src Source, ps *passState, sendFirst *bool) error {
	for src.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.tracker != nil {
			e.tracker.Poll()
		}

		line := strings.TrimSpace(src.Text())
		e.stats.IncrementLines()

		if parser.Classify(line) == parser.KindTraffic {
			err := e.handleTraffic(ctx, line, ps, *sendFirst)
			// Any traffic line, even a suppressed or filtered one,
			// consumes the seam suppression.
			*sendFirst = true
			if err != nil {
				return err
			}
		} else {
			if err := e.emitWeather(line, ps); err != nil {
				return err
			}
		}
	}
	if err := src.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func (e *Engine) handleTraffic(ctx context.Context, line string, ps *passState, send bool) error {
	rec, err := parser.ParseTraffic(line)
	if err != nil {
		if errors.Is(err, parser.ErrTooFewFields) {
			log.Printf("Skipping malformed record: %v", err)
			e.stats.IncrementMalformed()
			return nil
		}
		return err
	}

	if !e.opts.Filter.Empty() {
		// The id format is a hard precondition when filtering is active;
		// an unparsable id aborts the pass rather than being coerced.
		id, err := rec.AircraftID()
		if err != nil {
			return fmt.Errorf("in line %q: %w", line, err)
		}
		if !e.opts.Filter.Match(id) {
			e.stats.IncrementFiltered()
			return nil
		}
	}

	raw, err := rec.Timestamp()
	if err != nil {
		return fmt.Errorf("in line %q: %w", line, err)
	}
	adjusted, err := e.waitTimestamp(ctx, ps, raw)
	if err != nil {
		return err
	}
	rec.SetTimestamp(adjusted)

	if !send {
		e.stats.IncrementSuppressed()
		return nil
	}

	payload := rec.String()
	if err := e.sender.SendTraffic(payload); err != nil {
		return fmt.Errorf("failed to send traffic data: %w", err)
	}
	e.stats.IncrementTrafficSent()
	if e.opts.Verbose {
		log.Println(payload)
	}
	if e.observer != nil {
		e.observer.RecordSent("traffic", payload, rec, ps.index)
	}
	return nil
}

func (e *Engine) emitWeather(line string, ps *passState) error {
	if err := e.sender.SendWeather(line); err != nil {
		return fmt.Errorf("failed to send weather data: %w", err)
	}
	e.stats.IncrementWeatherSent()
	if e.opts.Verbose {
		log.Printf("Weather: %s", line)
	}
	if e.observer != nil {
		e.observer.RecordSent("weather", line, nil, ps.index)
	}
	return nil
}

// waitTimestamp maps a recorded timestamp onto the wall clock. The first
// record of a pass fixes the offset (shifted into the past by the buffer
// period); every later record waits until its remapped time is due. The
// returned value additionally carries the historic offset, which shifts the
// reported timestamp without affecting pacing. Wait times are never
// negative: a past timestamp sends immediately.
func (e *Engine) waitTimestamp(ctx context.Context, ps *passState, raw float64) (float64, error) {
	now := float64(e.clock.Now().Unix())

	if !ps.haveDiff {
		ps.tsDiff = now - raw - ps.bufferPeriod
		ps.haveDiff = true
		if e.opts.Verbose {
			log.Printf("Timestamp difference: %v", ps.tsDiff)
		}
	}

	target := raw + ps.tsDiff
	if wait := target - now; wait > 0 {
		if e.opts.Verbose {
			log.Printf("Waiting for %.0f seconds...", wait)
		}
		if err := e.clock.Sleep(ctx, time.Duration(wait*float64(time.Second))); err != nil {
			return 0, err
		}
	}

	return target - float64(e.opts.Historic), nil
}
