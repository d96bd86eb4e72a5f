// Package sfx synthesizes the game's sound effects: a glassy ping for every bounce,
// scaled by how hard the ball hit, and a rising three-tone chime for a basket.
package sfx

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/vladimirvolkov/bucketshot/internal/physics"
)

// ping is a sine partial with a short pitch glide and an exponential decay.
type ping struct {
	rate     beep.SampleRate
	freq     float64
	sweep    float64
	glide    int
	attack   int
	total    int
	peak     float64
	phase    float64
	position int
}

// newPing starts at freq and glides to freq*sweep over the first 15ms.
func newPing(rate beep.SampleRate, freq, sweep, peak float64, attack, length time.Duration) *ping {
	return &ping{
		rate:   rate,
		freq:   freq,
		sweep:  sweep,
		glide:  rate.N(15 * time.Millisecond),
		attack: max(rate.N(attack), 1),
		total:  rate.N(length),
		peak:   peak,
	}
}

func (p *ping) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if p.position >= p.total {
			return i, i > 0
		}

		freq := p.freq * math.Pow(p.sweep, math.Min(float64(p.position)/float64(p.glide), 1))

		var amp float64
		if p.position < p.attack {
			amp = p.peak * float64(p.position) / float64(p.attack)
		} else {
			// -80 dB by the end of the sound.
			t := float64(p.position-p.attack) / float64(p.total-p.attack)
			amp = p.peak * math.Pow(1e-4, t)
		}

		val := amp * math.Sin(2*math.Pi*p.phase)
		samples[i][0] = val
		samples[i][1] = val

		p.phase += freq / float64(p.rate)
		p.phase -= math.Floor(p.phase)
		p.position++
	}
	return len(samples), true
}

func (p *ping) Err() error { return nil }

// crackle is decaying white noise.
type crackle struct {
	rng      *rand.Rand
	peak     float64
	total    int
	position int
}

func (c *crackle) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.position >= c.total {
			return i, i > 0
		}
		t := float64(c.position) / float64(c.total)
		val := (c.rng.Float64()*2 - 1) * c.peak * math.Pow(1-t, 3)
		samples[i][0] = val
		samples[i][1] = val
		c.position++
	}
	return len(samples), true
}

func (c *crackle) Err() error { return nil }

// Bounce is the impact sound. intensity is the 0..1 loudness from game.ImpactIntensity;
// harder hits are louder and slightly higher.
func Bounce(rate beep.SampleRate, intensity float64) beep.Streamer {
	capped := physics.Clamp(intensity, 0.12, 1.2)
	base := 2000 + capped*10

	partials := []struct{ ratio, gain float64 }{
		{1, 1}, {1.37, 0.9}, {2.58, 0.6}, {3.9, 0.4},
	}
	streams := make([]beep.Streamer, 0, len(partials)+1)
	for _, p := range partials {
		streams = append(streams, newPing(rate, base*p.ratio, 1.4, 0.2*capped*p.gain, 2*time.Millisecond, 60*time.Millisecond))
	}
	streams = append(streams, &crackle{
		rng:   rand.New(rand.NewSource(int64(capped * 1e6))),
		peak:  0.15 * capped,
		total: rate.N(70 * time.Millisecond),
	})
	return beep.Mix(streams...)
}

// Chime is the success sound: three ascending plucks 120ms apart.
func Chime(rate beep.SampleRate) beep.Streamer {
	notes := []float64{600, 850, 1100}
	streams := make([]beep.Streamer, len(notes))
	for i, f := range notes {
		tone := newPing(rate, f, 1, 0.2, 10*time.Millisecond, 250*time.Millisecond)
		streams[i] = beep.Seq(beep.Silence(rate.N(time.Duration(i)*120*time.Millisecond)), tone)
	}
	return beep.Mix(streams...)
}

// withVolume scales s by a linear gain, silencing it at zero.
func withVolume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
