package game

import (
	"testing"

	"github.com/vladimirvolkov/bucketshot/internal/stats"
)

func TestScoreboard(t *testing.T) {
	var s Scoreboard
	for i := 1; i <= 5; i++ {
		hot := s.Hit()
		if hot != (i == 5) {
			t.Errorf("hit %d: hot = %v", i, hot)
		}
	}
	if s.Streak != 5 || s.Best != 5 || s.Lifetime != 5 {
		t.Fatalf("after 5 hits: %+v", s)
	}

	if !s.Miss() {
		t.Error("Miss after a streak should report it broken")
	}
	if s.Miss() {
		t.Error("second Miss reported a broken streak")
	}
	s.Hit()
	if s.Streak != 1 || s.Best != 5 || s.Lifetime != 6 {
		t.Errorf("after miss and hit: %+v", s)
	}

	if got := s.Record(); got != (stats.Record{Best: 5, Lifetime: 6}) {
		t.Errorf("Record = %+v", got)
	}

	s.Reset()
	if s != (Scoreboard{}) {
		t.Errorf("Reset left %+v", s)
	}
}

func TestScoreboardRestore(t *testing.T) {
	s := Scoreboard{Streak: 3}
	s.Restore(stats.Record{Best: 9, Lifetime: 40})
	if s != (Scoreboard{Best: 9, Lifetime: 40}) {
		t.Errorf("Restore = %+v", s)
	}
}
