package game

import "github.com/vladimirvolkov/bucketshot/internal/stats"

// HotStreakEvery is the streak interval that earns a "Hot streak!" call-out.
const HotStreakEvery = 5

// Scoreboard tracks the current streak and the persistent best and lifetime counts.
type Scoreboard struct {
	Streak   int `json:"streak"`
	Best     int `json:"best"`
	Lifetime int `json:"lifetime"`
}

// Hit records a basket and reports whether the streak just reached a hot-streak mark.
func (s *Scoreboard) Hit() (hot bool) {
	s.Streak++
	s.Lifetime++
	if s.Streak > s.Best {
		s.Best = s.Streak
	}
	return s.Streak%HotStreakEvery == 0
}

// Miss ends the streak. broken is true when there was a streak to lose.
func (s *Scoreboard) Miss() (broken bool) {
	broken = s.Streak != 0
	s.Streak = 0
	return broken
}

func (s *Scoreboard) Reset() {
	*s = Scoreboard{}
}

// Restore loads persisted totals. The streak always starts at zero.
func (s *Scoreboard) Restore(r stats.Record) {
	s.Streak = 0
	s.Best = r.Best
	s.Lifetime = r.Lifetime
}

func (s Scoreboard) Record() stats.Record {
	return stats.Record{Best: s.Best, Lifetime: s.Lifetime}
}
