// Package statistics tracks per-player blackjack results. Stats holds the
// win/loss/tie counters that survive restarts; Session adds running net-result
// analytics for the current process only.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Result is the coarse classification of one settled hand
type Result int

const (
	Win Result = iota
	Loss
	Tie
)

func (r Result) String() string {
	return [...]string{"win", "loss", "tie"}[r]
}

// Stats are the persisted per-player counters
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Record increments the counter matching r
func (s *Stats) Record(r Result) {
	switch r {
	case Win:
		s.Wins++
	case Loss:
		s.Losses++
	case Tie:
		s.Ties++
	}
}

// Hands returns the number of settled hands counted
func (s Stats) Hands() int {
	return s.Wins + s.Losses + s.Ties
}

// WinRate returns wins as a percentage of settled hands
func (s Stats) WinRate() float64 {
	if s.Hands() == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Hands()) * 100
}

func (s Stats) String() string {
	return fmt.Sprintf("W %d / L %d / T %d", s.Wins, s.Losses, s.Ties)
}

// Session accumulates net bankroll change per settled hand
type Session struct {
	Hands   int
	SumNet  float64
	SumNet2 float64 // Sum of squares for variance calculation
	Values  []float64

	BiggestWin  int
	BiggestLoss int // Stored as a positive amount
}

// Add incorporates one settled hand's net result (credit minus stake)
func (s *Session) Add(net int) {
	v := float64(net)
	s.Hands++
	s.SumNet += v
	s.SumNet2 += v * v
	s.Values = append(s.Values, v)

	if net > s.BiggestWin {
		s.BiggestWin = net
	}
	if -net > s.BiggestLoss {
		s.BiggestLoss = -net
	}
}

// Mean returns the average net result per hand
func (s *Session) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumNet / float64(s.Hands)
}

// Variance returns the sample variance of net results
func (s *Session) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of net results
func (s *Session) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Session) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Session) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median net result
func (s *Session) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Tracker is the per-player stats record updated by settlement
type Tracker struct {
	Stats
	Session Session
}

// NewTracker seeds a tracker with counters restored from storage
func NewTracker(saved Stats) *Tracker {
	return &Tracker{Stats: saved}
}

// Record counts one settled hand. Settlement is the only caller.
func (t *Tracker) Record(r Result, net int) {
	t.Stats.Record(r)
	t.Session.Add(net)
}

// Summary renders the counters and session net for status lines
func (t *Tracker) Summary() string {
	if t.Session.Hands == 0 {
		return t.Stats.String()
	}
	return fmt.Sprintf("%s (session %+d over %d hands)", t.Stats, int(t.Session.SumNet), t.Session.Hands)
}

// Validate checks the session analytics against the counters
func (t *Tracker) Validate() error {
	if len(t.Session.Values) != t.Session.Hands {
		return fmt.Errorf("values length (%d) does not match hands count (%d)",
			len(t.Session.Values), t.Session.Hands)
	}
	if t.Session.Hands > t.Stats.Hands() {
		return fmt.Errorf("session hands (%d) exceed recorded hands (%d)",
			t.Session.Hands, t.Stats.Hands())
	}
	return nil
}
