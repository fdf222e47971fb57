package match

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/playmatatu/chapas/internal/physics"
)

// Team identifies a side. Home defends +z and is played by the accepting peer.
type Team int

const (
	Home Team = 0
	Away Team = 1
)

func (t Team) Other() Team { return 1 - t }

func (t Team) String() string {
	if t == Home {
		return "home"
	}
	return "away"
}

// Phase is the period of the match.
type Phase int

const (
	FirstHalf Phase = iota
	SecondHalf
	Ended
)

func (p Phase) String() string {
	switch p {
	case FirstHalf:
		return "first_half"
	case SecondHalf:
		return "second_half"
	}
	return "ended"
}

var ErrInvalidLayout = errors.New("match: invalid layout")

// Layout places the pieces at kick-off. Spots are (x, z) for the home side;
// the away side is mirrored across the halfway line.
type Layout struct {
	CapSpots   [CapsPerTeam]mgl32.Vec2
	CapMass    float32
	BallMass   float32
	KeeperMass float32
}

// DefaultLayout is the standard two-three-three formation.
func DefaultLayout() Layout {
	return Layout{
		CapSpots: [CapsPerTeam]mgl32.Vec2{
			{2, 4.25}, {0.75, 4.25}, {-0.75, 4.25}, {-2, 4.25},
			{1.5, 2.5}, {0, 2.5}, {-1.5, 2.5},
			{0, 1},
		},
		CapMass:    CapMass,
		BallMass:   BallMass,
		KeeperMass: KeeperMass,
	}
}

func (l Layout) validate() error {
	if l.CapMass <= 0 || l.BallMass <= 0 || l.KeeperMass <= 0 {
		return fmt.Errorf("%w: masses must be positive", ErrInvalidLayout)
	}
	limitX := float32(4 - CapRadius/2*CapScale)
	limitZ := float32(6 - CapRadius/2*CapScale)
	for i, s := range l.CapSpots {
		if s[0] <= -limitX || s[0] >= limitX || s[1] <= 0 || s[1] >= limitZ {
			return fmt.Errorf("%w: cap %d at %v is outside its half", ErrInvalidLayout, i, s)
		}
	}
	return nil
}

// Data is the whole match: the world, every piece and the scoreboard.
type Data struct {
	World   *physics.World
	Ball    *physics.Body
	Caps    [2][CapsPerTeam]*physics.Body
	Keepers [2]*physics.Body
	Walls   []*physics.Body

	layout Layout

	turn       Team
	turnClock  int
	matchClock int
	shots      int
	goals      [2]int
	phase      Phase
}

// NewData builds the rink. Bodies are added in a fixed order (ball, home caps,
// away caps, home keeper, away keeper, walls) so both peers resolve collisions
// identically.
func NewData(layout Layout) (*Data, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}

	d := &Data{World: physics.NewWorld(), layout: layout}

	d.Ball = d.World.Add(physics.NewDisc(BallRadius))
	d.Ball.SetScale(mgl32.Vec3{BallScale, BallScale, BallScale})
	d.Ball.SetMass(layout.BallMass)
	d.Ball.SetRotationSpeed(BallRotationSpeed)

	for team := range d.Caps {
		for i := range d.Caps[team] {
			c := d.World.Add(physics.NewDisc(CapRadius))
			c.SetScale(mgl32.Vec3{CapScale, CapScale, CapScale})
			c.SetMass(layout.CapMass)
			d.Caps[team][i] = c
		}
	}

	for team := range d.Keepers {
		k := d.World.Add(physics.NewDisc(KeeperRadius))
		k.SetScale(mgl32.Vec3{KeeperScale, KeeperScale, KeeperScale})
		k.SetMass(layout.KeeperMass)
		d.Keepers[team] = k
	}

	for _, seg := range rinkWalls() {
		d.Walls = append(d.Walls, d.World.Add(physics.NewWall(seg[0], seg[1], WallThickness)))
	}

	d.phase = FirstHalf
	d.ResetPositions(true)
	d.SetTurn(Home)
	return d, nil
}

// rinkWalls lists the sidelines, the end lines on both sides of each goal
// mouth, the goal back walls and the goal side posts.
func rinkWalls() [][2]mgl32.Vec2 {
	const o = CapRadius / 2 * CapScale
	return [][2]mgl32.Vec2{
		{{-4 + o, -10}, {-4 + o, 10}},
		{{4 - o, -10}, {4 - o, 10}},
		{{-10, 6 - o}, {-1, 6 - o}},
		{{1, 6 - o}, {10, 6 - o}},
		{{-10, -6 + o}, {-1, -6 + o}},
		{{1, -6 + o}, {10, -6 + o}},
		{{-1, 6.4 - o}, {1, 6.4 - o}},
		{{-1, -6.4 + o}, {1, -6.4 + o}},
		{{-1 - o, 6.4}, {-1 - o, 6.0}},
		{{-1 - o, -6.4}, {-1 - o, -6.0}},
		{{1 + o, 6.4}, {1 + o, 6.0}},
		{{1 + o, -6.4}, {1 + o, -6.0}},
	}
}

// ResetPositions puts every piece back on its kick-off spot at rest.
// The match clock is restored only when resetClock is set.
func (d *Data) ResetPositions(resetClock bool) {
	place := func(b *physics.Body, p mgl32.Vec3) {
		b.SetPosition(p)
		b.SetVelocity(mgl32.Vec3{})
	}

	place(d.Ball, mgl32.Vec3{0, BallHeight, 0})
	for i, s := range d.layout.CapSpots {
		place(d.Caps[Home][i], mgl32.Vec3{s[0], 0, s[1]})
		place(d.Caps[Away][i], mgl32.Vec3{s[0], 0, -s[1]})
	}
	place(d.Keepers[Home], mgl32.Vec3{0, KeeperHeight, KeeperLine})
	place(d.Keepers[Away], mgl32.Vec3{0, KeeperHeight, -KeeperLine})
	d.World.ClearLastCollision()

	if resetClock {
		d.matchClock = HalfFrames
	}
}

// SetTurn gives the turn to team with a full turn clock and shot count.
func (d *Data) SetTurn(team Team) {
	d.turn = team
	d.turnClock = TurnFrames
	d.shots = ShotsPerTurn
}

// ToggleTurn passes the turn to the other team.
func (d *Data) ToggleTurn() {
	d.SetTurn(d.turn.Other())
}

func (d *Data) Team() Team          { return d.turn }
func (d *Data) TurnClock() int      { return d.turnClock }
func (d *Data) MatchClock() int     { return d.matchClock }
func (d *Data) Shots() int          { return d.shots }
func (d *Data) Goals() [2]int       { return d.goals }
func (d *Data) Phase() Phase        { return d.phase }
func (d *Data) SetPhase(p Phase)    { d.phase = p }
func (d *Data) SetShots(n int)      { d.shots = n }
func (d *Data) SetTurnClock(n int)  { d.turnClock = n }
func (d *Data) SetMatchClock(n int) { d.matchClock = n }

// ActiveCaps returns the caps of the team whose turn it is.
func (d *Data) ActiveCaps() [CapsPerTeam]*physics.Body {
	return d.Caps[d.turn]
}

// ActiveKeeper returns the keeper of the team whose turn it is.
func (d *Data) ActiveKeeper() *physics.Body {
	return d.Keepers[d.turn]
}

// Piece returns the active team's cap at index, or its keeper for -1.
func (d *Data) Piece(index int) (*physics.Body, bool) {
	if index == -1 {
		return d.ActiveKeeper(), true
	}
	if index < 0 || index >= CapsPerTeam {
		return nil, false
	}
	return d.Caps[d.turn][index], true
}

// IsActiveBody reports whether b belongs to the team whose turn it is.
func (d *Data) IsActiveBody(b *physics.Body) bool {
	if b == nil {
		return false
	}
	for _, c := range d.Caps[d.turn] {
		if c == b {
			return true
		}
	}
	return d.Keepers[d.turn] == b
}

// TickTurnClock adds the shot bonus when action is set, otherwise counts one
// frame down. It reports whether the turn clock is at zero.
func (d *Data) TickTurnClock(action bool) bool {
	if action {
		d.turnClock += ShotBonusFrames
	} else if d.turnClock > 0 {
		d.turnClock--
	}
	return d.turnClock == 0
}

// TickMatchClock counts one frame down and reports whether the half is over.
func (d *Data) TickMatchClock() bool {
	if d.matchClock > 0 {
		d.matchClock--
	}
	return d.matchClock == 0
}

// DownShots spends a shot and reports whether none are left.
func (d *Data) DownShots() bool {
	if d.shots > 0 {
		d.shots--
	}
	return d.shots == 0
}

// AddGoal credits team with a goal and puts the pieces back on their spots.
func (d *Data) AddGoal(team Team) {
	d.goals[team]++
	d.ResetPositions(false)
}

// GoalScorer reports which team scored if the ball is inside a goal mouth.
func (d *Data) GoalScorer() (Team, bool) {
	p := d.Ball.Position()
	if p[0] < -GoalHalfWidth || p[0] > GoalHalfWidth {
		return 0, false
	}
	switch {
	case p[2] >= GoalLine:
		return Away, true
	case p[2] <= -GoalLine:
		return Home, true
	}
	return 0, false
}

// Free releases the world once the match is over.
func (d *Data) Free() {
	d.World.Free()
}
