package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/vladimirvolkov/bucketshot/internal/physics"
)

var (
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleHelp    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGround  = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleBucket  = tcell.StyleDefault.Foreground(tcell.ColorMediumPurple)
	styleBall    = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleTrail   = tcell.StyleDefault.Foreground(tcell.ColorDarkOrange)
	stylePreview = tcell.StyleDefault.Foreground(tcell.ColorSilver).Dim(true)
)

func toCell(p physics.Vec2) (int, int) {
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

func (a *app) put(p physics.Vec2, r rune, style tcell.Style) {
	x, y := toCell(p)
	a.screen.SetContent(x, y, r, nil, style)
}

func (a *app) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// segment plots a wall by sampling it every half cell.
func (a *app) segment(seg physics.Segment, style tcell.Style) {
	from := physics.V(seg.X1, seg.Y1)
	to := physics.V(seg.X2, seg.Y2)
	n := int(from.Dist(to)/(cellW/2)) + 1
	for i := 0; i <= n; i++ {
		a.put(from.Add(to.Sub(from).Scale(float64(i)/float64(n))), '█', style)
	}
}

func (a *app) draw() {
	a.screen.Clear()
	snap := a.session.Snapshot()
	cols, rows := a.screen.Size()

	_, groundRow := toCell(physics.V(0, snap.Arena.GroundY))
	for x := 0; x < cols; x++ {
		for y := groundRow; y < rows-1; y++ {
			a.screen.SetContent(x, y, '▒', nil, styleGround)
		}
	}

	walls := physics.DeriveWalls(snap.Target)
	for _, seg := range walls.Each() {
		a.segment(seg, styleBucket)
	}

	for _, p := range snap.Preview {
		a.put(p, '·', stylePreview)
	}
	for _, p := range snap.Trail {
		a.put(p, '∙', styleTrail)
	}
	a.put(snap.Ball.Pos, '●', styleBall)

	b := snap.Board
	a.text(1, 0, fmt.Sprintf("Streak %d   Best %d   Lifetime %d", b.Streak, b.Best, b.Lifetime), styleHUD)
	if snap.Status.Remaining > 0 || snap.Paused {
		a.text(cols/2-len(snap.Status.Text)/2, 1, snap.Status.Text, styleStatus)
	}

	flags := ""
	if snap.Assist != (physics.Assist{}) {
		flags += " [assist]"
	}
	if !a.sound.Enabled() {
		flags += " [muted]"
	} else {
		flags += fmt.Sprintf(" [vol %d%%]", int(math.Round(a.sound.Volume()*100)))
	}
	a.text(1, rows-1, "drag ball + release  r reset  esc pause  a assist  s sound  +/- volume  x reset stats  q quit"+flags, styleHelp)

	a.screen.Show()
}
