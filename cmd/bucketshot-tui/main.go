// Command bucketshot-tui plays the game in a terminal: drag the ball with the mouse,
// release to launch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vladimirvolkov/bucketshot/internal/config"
	"github.com/vladimirvolkov/bucketshot/internal/game"
	"github.com/vladimirvolkov/bucketshot/internal/physics"
	"github.com/vladimirvolkov/bucketshot/internal/sfx"
	"github.com/vladimirvolkov/bucketshot/internal/stats"
	"github.com/vladimirvolkov/bucketshot/internal/ws"
)

// One terminal cell covers this many arena units. Cells are about twice as tall as wide.
const (
	cellW = 10.0
	cellH = 20.0
)

const volumeStep = 0.1

// assisted is the preset the 'a' key switches to when the tuning file sets no assist.
var assisted = physics.Assist{Forgiveness: 8, LowerBucket: true, TargetScale: 1.25}

// observer plays sounds and persists outcomes for the local player.
type observer struct {
	player   string
	sound    *sfx.Player
	recorder *stats.Recorder
}

func (o *observer) Impact(_ physics.Surface, intensity, _ float64) {
	o.sound.Bounce(intensity)
}

func (o *observer) Concluded(r game.Result) {
	if r.Outcome.Success {
		o.sound.Chime()
	}
	o.recorder.Record(o.player, r.Board.Record(), nil)
}

func (o *observer) StatsReset() {
	o.recorder.Reset(o.player)
}

type app struct {
	screen  tcell.Screen
	session *game.Session
	sound   *sfx.Player

	assist   physics.Assist
	dragging bool
}

func main() {
	name := flag.String("name", os.Getenv("USER"), "player name used for saved stats")
	mute := flag.Bool("mute", false, "start with sound effects off")
	dump := flag.String("dump-tuning", "", "write the default tuning file to this path and exit")
	flag.Parse()

	if *dump != "" {
		if err := config.WriteTuning(*dump, config.DefaultTuning()); err != nil {
			fmt.Fprintf(os.Stderr, "bucketshot: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The screen owns stdout; keep logs out of the way.
	if f, err := os.CreateTemp("", "bucketshot-*.log"); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	if err := run(ws.SanitizeNickname(*name), *mute); err != nil {
		fmt.Fprintf(os.Stderr, "bucketshot: %v\n", err)
		os.Exit(1)
	}
}

func run(player string, mute bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var store stats.Store = stats.NewMemoryStore()
	if cfg.RedisURL != "" {
		rdb, err := stats.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Printf("[STATS] redis unavailable, stats will not be saved: %v", err)
		} else {
			defer rdb.Close()
			store = stats.NewRedisStore(rdb)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	rec, err := stats.LoadOrZero(ctx, store, player)
	cancel()
	if err != nil {
		log.Printf("[STATS] load %s: %v", player, err)
	}

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorder := stats.NewRecorder(store, nil, 64)
	recorderDone := make(chan struct{})
	go func() {
		recorder.Run(recorderCtx)
		close(recorderDone)
	}()
	defer func() {
		stopRecorder()
		<-recorderDone
	}()

	sound := sfx.NewPlayer()
	if err := sound.Init(); err != nil {
		log.Printf("[SFX] audio disabled: %v", err)
		mute = true
	}
	defer sound.Close()
	sound.SetEnabled(!mute)

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	cols, rows := screen.Size()
	a := &app{
		screen: screen,
		sound:  sound,
		assist: cfg.Tuning.Assist,
	}
	a.session = game.NewSession(float64(cols)*cellW, float64(rows)*cellH, game.Options{
		Params:   cfg.Tuning.Physics,
		Assist:   cfg.Tuning.Assist,
		Observer: &observer{player: player, sound: sound, recorder: recorder},
	})
	a.session.Restore(rec)
	a.loop()
	return nil
}

func (a *app) loop() {
	ticker := time.NewTicker(physics.FrameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !a.handle(ev) {
				return
			}
		case now := <-ticker.C:
			a.session.Tick(now.Sub(last))
			last = now
			a.draw()
		}
	}
}

func toArena(x, y int) physics.Vec2 {
	return physics.V((float64(x)+0.5)*cellW, (float64(y)+0.5)*cellH)
}

// handle applies one terminal event and reports whether to keep running.
func (a *app) handle(ev tcell.Event) bool {
	s := a.session
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyEscape:
			a.dragging = false
			s.SetPaused(!s.Paused())
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case 'r':
				a.dragging = false
				s.QuickReset()
			case 'a':
				a.toggleAssist()
			case 's':
				a.sound.SetEnabled(!a.sound.Enabled())
			case '+', '=':
				a.sound.SetVolume(a.sound.Volume() + volumeStep)
			case '-':
				a.sound.SetVolume(a.sound.Volume() - volumeStep)
			case 'x':
				a.dragging = false
				s.ResetStats()
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		p := toArena(x, y)
		down := ev.Buttons()&tcell.Button1 != 0
		switch {
		case down && !a.dragging:
			a.dragging = s.Press(p)
		case down:
			s.Aim(p)
		case a.dragging:
			a.dragging = false
			s.Aim(p)
			s.Release()
		}

	case *tcell.EventResize:
		cols, rows := a.screen.Size()
		a.dragging = false
		s.Resize(float64(cols)*cellW, float64(rows)*cellH)
		a.screen.Sync()
	}
	return true
}

func (a *app) toggleAssist() {
	if a.session.Assist() != (physics.Assist{}) {
		a.session.SetAssist(physics.Assist{})
		return
	}
	if a.assist == (physics.Assist{}) {
		a.session.SetAssist(assisted)
		return
	}
	a.session.SetAssist(a.assist)
}
