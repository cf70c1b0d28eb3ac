package main

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tankarena/config"
	"github.com/lixenwraith/tankarena/core"
	"github.com/lixenwraith/tankarena/dyncolor"
	"github.com/lixenwraith/tankarena/engine"
	"github.com/lixenwraith/tankarena/event"
	"github.com/lixenwraith/tankarena/shot"
	"github.com/lixenwraith/tankarena/vars"
	"github.com/lixenwraith/tankarena/vmath"
)

const teamColorVar = "_teamColor"

// teamColors is the cycle applied by the `v` key
var teamColors = []string{"red@1", "green@1", "#3366ff@1", "1 1 0 0.5@2"}

// Layout
const (
	swatchWidth = 6
	nameWidth   = 16
	hudRows     = 3
)

type sandbox struct {
	screen tcell.Screen
	sim    *engine.Simulation
	mirror *engine.Simulation
	outbox *peerOutbox
	logger *log.Logger

	selected  int
	aim       float64 // radians, advanced per shot
	teamIndex int

	lastEvent    string
	mirrorEvents int
}

func newSandbox(screen tcell.Screen, sim, mirror *engine.Simulation, outbox *peerOutbox, logger *log.Logger) *sandbox {
	return &sandbox{
		screen: screen,
		sim:    sim,
		mirror: mirror,
		outbox: outbox,
		logger: logger,
	}
}

// handleEvent returns false when the sandbox should exit
func (a *sandbox) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyTab:
			a.selected = (a.selected + 1) % len(shot.Types())
			return true
		case tcell.KeyRune:
		default:
			return true
		}

		r := ev.Rune()
		switch {
		case r == 'q':
			return false
		case r == ' ':
			a.fire()
		case r == 'v':
			a.cycleTeamColor()
		case r >= '0' && r <= '9':
			if idx, ok := typeForDigit(r); ok {
				a.selected = idx
			}
		}
	}
	return true
}

// typeForDigit maps 1..9 to the first nine shot types and 0 to the tenth
func typeForDigit(r rune) (int, bool) {
	idx := int(r - '1')
	if r == '0' {
		idx = 9
	}
	if idx < 0 || idx >= len(shot.Types()) {
		return 0, false
	}
	return idx, true
}

func (a *sandbox) selectedType() shot.Type {
	return shot.Types()[a.selected]
}

func (a *sandbox) fire() {
	dir := vmath.Vec3F{X: math.Cos(a.aim), Y: math.Sin(a.aim)}
	a.aim += 0.4
	key := a.sim.Fire(a.selectedType(), vmath.Vec3F{}, dir)
	a.logger.Debug("fired", "type", a.selectedType(), "player", key.Player, "id", key.ID)
}

func (a *sandbox) cycleTeamColor() {
	a.teamIndex = (a.teamIndex + 1) % len(teamColors)
	a.sim.Vars().Set(teamColorVar, teamColors[a.teamIndex])
}

func (a *sandbox) noteEvents(events []event.GameEvent) {
	for _, ev := range events {
		a.lastEvent = fmt.Sprintf("%.2fs %s", ev.Time, ev.Type)
	}
}

// blendOverBlack flattens a translucent color onto the black background
func blendOverBlack(c core.RGBA) tcell.Color {
	r, g, b := c.RGB8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// worldToScreen maps arena coordinates onto a w by h cell grid
// Returns false for positions outside the arena
func worldToScreen(pos vmath.Vec3F, halfSize float64, w, h int) (int, int, bool) {
	if halfSize <= 0 || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	nx := (pos.X + halfSize) / (2 * halfSize)
	ny := (halfSize - pos.Y) / (2 * halfSize)
	if nx < 0 || nx > 1 || ny < 0 || ny > 1 {
		return 0, 0, false
	}
	x := int(nx * float64(w-1))
	y := int(ny * float64(h-1))
	return x, y, true
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func (a *sandbox) draw() {
	s := a.screen
	s.Clear()
	w, h := s.Size()
	base := tcell.StyleDefault

	// Swatches
	colors := a.sim.Colors()
	for id := 0; id < colors.Len() && id < h-hudRows; id++ {
		c := colors.GetColor(id)
		drawText(s, 0, id, base, fmt.Sprintf("%-*.*s", nameWidth, nameWidth, c.Name()))
		swatch := base.Background(blendOverBlack(c.Color()))
		for x := 0; x < swatchWidth; x++ {
			s.SetContent(nameWidth+x, id, ' ', nil, swatch)
		}
	}

	// Arena
	left := nameWidth + swatchWidth + 2
	arenaW, arenaH := w-left, h-hudRows
	half := a.sim.Vars().EvalOr(vars.WorldSize, vars.DefaultFloat(vars.WorldSize)) / 2
	for _, p := range a.sim.Shots() {
		if x, y, ok := worldToScreen(p.Position(), half, arenaW, arenaH); ok {
			s.SetContent(left+x, y, shotGlyph(p.Type()), nil, base.Foreground(tcell.ColorYellow))
		}
	}
	for _, p := range a.mirror.Shots() {
		if x, y, ok := worldToScreen(p.Position(), half, arenaW, arenaH); ok {
			s.SetContent(left+x, y, 'o', nil, base.Foreground(tcell.ColorAqua))
		}
	}

	// HUD
	hud := base.Foreground(tcell.ColorSilver)
	drawText(s, 0, h-3, hud, fmt.Sprintf("type %-16s shots %-3d mirrored %-3d sent %-5d t=%.2f",
		a.selectedType(), a.sim.ShotCount(), a.mirror.ShotCount(), a.outbox.sent, a.sim.Now()))
	drawText(s, 0, h-2, hud, fmt.Sprintf("%s = %-20s last %-24s dropped %d",
		teamColorVar, a.sim.Vars().Get(teamColorVar), a.lastEvent, a.sim.Events().Dropped()))
	drawText(s, 0, h-1, hud, "space fire  1-0/tab type  v team color  q quit")

	s.Show()
}

func shotGlyph(t shot.Type) rune {
	switch t {
	case shot.GuidedMissile:
		return 'G'
	case shot.Laser:
		return '-'
	case shot.ShockWave:
		return '@'
	case shot.Ricochet:
		return 'R'
	}
	return '*'
}

// dump builds the world's colors offline and prints them in world format
func dump(w io.Writer, world *config.World) error {
	if world == nil {
		return nil
	}
	store := vars.NewDefaultStore()
	if err := world.ApplyVars(store); err != nil {
		return err
	}
	m := dyncolor.NewManager(store, engine.NewClock(nil))
	defer m.Clear()
	if err := world.BuildColors(m); err != nil {
		return err
	}
	m.Print(w, "")
	return nil
}
