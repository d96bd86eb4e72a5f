package sfx

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// drain streams s to the end and returns the sample count and peak amplitude.
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatal("streamer never ended")
	return 0, 0
}

func TestBounceLength(t *testing.T) {
	n, peak := drain(t, Bounce(SampleRate, 0.5))
	want := SampleRate.N(70 * time.Millisecond)
	if n < want || n > want+512 {
		t.Errorf("bounce is %d samples, want about %d", n, want)
	}
	if peak <= 0 || peak > 1 {
		t.Errorf("peak = %v, want within (0, 1]", peak)
	}
}

func TestBounceScalesWithIntensity(t *testing.T) {
	_, soft := drain(t, Bounce(SampleRate, 0.2))
	_, hard := drain(t, Bounce(SampleRate, 1))
	if hard <= soft {
		t.Errorf("hard bounce peak %v not louder than soft %v", hard, soft)
	}
}

func TestChimeLength(t *testing.T) {
	n, peak := drain(t, Chime(SampleRate))
	want := SampleRate.N(240*time.Millisecond) + SampleRate.N(250*time.Millisecond)
	if n < want || n > want+512 {
		t.Errorf("chime is %d samples, want about %d", n, want)
	}
	if peak <= 0 || peak > 0.25 {
		t.Errorf("peak = %v", peak)
	}
}

func TestPingStaysInRange(t *testing.T) {
	p := newPing(SampleRate, 2000, 1.4, 0.3, 2*time.Millisecond, 60*time.Millisecond)
	buf := make([][2]float64, 256)
	n, ok := p.Stream(buf)
	if !ok || n != 256 {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	for i, smp := range buf {
		if math.Abs(smp[0]) > 0.3 || smp[0] != smp[1] {
			t.Fatalf("sample %d = %v", i, smp)
		}
	}
}

func TestPlayerWithoutDeviceDropsEffects(t *testing.T) {
	p := NewPlayer()
	for i := 0; i < 100; i++ {
		p.Bounce(0.5)
	}
	p.Chime()
	if got := p.Active(); got != 0 {
		t.Errorf("active = %d on a player with no device, want 0", got)
	}
}

func TestPlayerToggle(t *testing.T) {
	p := NewPlayer()
	if !p.Enabled() {
		t.Fatal("new player disabled")
	}
	p.SetEnabled(false)
	if p.Enabled() {
		t.Error("Enabled after SetEnabled(false)")
	}
	p.SetEnabled(true)
	if !p.Enabled() {
		t.Error("not Enabled after SetEnabled(true)")
	}
}

func TestPlayerVolumeClamped(t *testing.T) {
	p := NewPlayer()
	tests := []struct{ in, want float64 }{
		{0.4, 0.4},
		{-1, 0},
		{3, 1},
	}
	for _, tt := range tests {
		p.SetVolume(tt.in)
		if got := p.Volume(); got != tt.want {
			t.Errorf("SetVolume(%v): volume = %v, want %v", tt.in, got, tt.want)
		}
	}
}
