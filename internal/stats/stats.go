package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks replay counters. Counters are atomic so the periodic logger
// can read them while the engine is sending.
type Stats struct {
	TotalLines  uint64
	TrafficSent uint64
	WeatherSent uint64
	Malformed   uint64
	Filtered    uint64
	Suppressed  uint64
	Passes      uint64

	LastSentTime time.Time
	startTime    time.Time

	mu sync.RWMutex
}

// New creates a new Stats instance.
func New() *Stats {
	return &Stats{startTime: time.Now()}
}

// IncrementLines counts one input line read.
func (s *Stats) IncrementLines() {
	atomic.AddUint64(&s.TotalLines, 1)
}

// IncrementTrafficSent counts one traffic datagram sent.
func (s *Stats) IncrementTrafficSent() {
	atomic.AddUint64(&s.TrafficSent, 1)
	s.mu.Lock()
	s.LastSentTime = time.Now()
	s.mu.Unlock()
}

// IncrementWeatherSent counts one weather datagram sent.
func (s *Stats) IncrementWeatherSent() {
	atomic.AddUint64(&s.WeatherSent, 1)
	s.mu.Lock()
	s.LastSentTime = time.Now()
	s.mu.Unlock()
}

// IncrementMalformed counts one skipped record with too few fields.
func (s *Stats) IncrementMalformed() {
	atomic.AddUint64(&s.Malformed, 1)
}

// IncrementFiltered counts one record dropped by the aircraft filter.
func (s *Stats) IncrementFiltered() {
	atomic.AddUint64(&s.Filtered, 1)
}

// IncrementSuppressed counts one record held back at the loop seam.
func (s *Stats) IncrementSuppressed() {
	atomic.AddUint64(&s.Suppressed, 1)
}

// IncrementPasses counts one completed pass over the input.
func (s *Stats) IncrementPasses() {
	atomic.AddUint64(&s.Passes, 1)
}

// GetStats returns a copy of the current counters.
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"total_lines":    atomic.LoadUint64(&s.TotalLines),
		"traffic_sent":   atomic.LoadUint64(&s.TrafficSent),
		"weather_sent":   atomic.LoadUint64(&s.WeatherSent),
		"malformed":      atomic.LoadUint64(&s.Malformed),
		"filtered":       atomic.LoadUint64(&s.Filtered),
		"suppressed":     atomic.LoadUint64(&s.Suppressed),
		"passes":         atomic.LoadUint64(&s.Passes),
		"last_sent_time": s.LastSentTime,
		"uptime":         time.Since(s.startTime),
	}
}

// String returns a one-line summary of the counters.
func (s *Stats) String() string {
	return fmt.Sprintf("lines=%d traffic=%d weather=%d malformed=%d filtered=%d suppressed=%d passes=%d",
		atomic.LoadUint64(&s.TotalLines),
		atomic.LoadUint64(&s.TrafficSent),
		atomic.LoadUint64(&s.WeatherSent),
		atomic.LoadUint64(&s.Malformed),
		atomic.LoadUint64(&s.Filtered),
		atomic.LoadUint64(&s.Suppressed),
		atomic.LoadUint64(&s.Passes))
}

// StartLogging logs the counters periodically until ctx is canceled.
func (s *Stats) StartLogging(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("Replay statistics: %s", s)
		}
	}
}
