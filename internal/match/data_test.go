package match

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestData(t *testing.T) *Data {
	t.Helper()
	d, err := NewData(DefaultLayout())
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	return d
}

func TestNewDataBodyOrder(t *testing.T) {
	d := newTestData(t)

	bodies := d.World.Bodies()
	if want := 1 + 2*CapsPerTeam + 2 + 12; len(bodies) != want {
		t.Fatalf("got %d bodies, want %d", len(bodies), want)
	}

	if d.Ball.ID != 0 {
		t.Errorf("ball id = %d, want 0", d.Ball.ID)
	}
	for i := 0; i < CapsPerTeam; i++ {
		if d.Caps[Home][i].ID != 1+i {
			t.Errorf("home cap %d id = %d, want %d", i, d.Caps[Home][i].ID, 1+i)
		}
		if d.Caps[Away][i].ID != 1+CapsPerTeam+i {
			t.Errorf("away cap %d id = %d, want %d", i, d.Caps[Away][i].ID, 1+CapsPerTeam+i)
		}
	}
	if d.Keepers[Home].ID != 17 || d.Keepers[Away].ID != 18 {
		t.Errorf("keeper ids = %d, %d, want 17, 18", d.Keepers[Home].ID, d.Keepers[Away].ID)
	}
	for _, w := range d.Walls {
		if w.IsDisc() {
			t.Errorf("wall %d is a disc", w.ID)
		}
	}
}

func TestNewDataStartsFirstHalf(t *testing.T) {
	d := newTestData(t)

	if d.Phase() != FirstHalf {
		t.Errorf("phase = %s, want first_half", d.Phase())
	}
	if d.Team() != Home {
		t.Errorf("team = %s, want home", d.Team())
	}
	if d.MatchClock() != HalfFrames || d.TurnClock() != TurnFrames || d.Shots() != ShotsPerTurn {
		t.Errorf("clocks = %d/%d shots %d", d.MatchClock(), d.TurnClock(), d.Shots())
	}
	if d.Goals() != [2]int{0, 0} {
		t.Errorf("goals = %v, want 0-0", d.Goals())
	}
}

func TestAwaySideIsMirrored(t *testing.T) {
	d := newTestData(t)

	for i := range d.Caps[Home] {
		h, a := d.Caps[Home][i].Position(), d.Caps[Away][i].Position()
		if h[0] != a[0] || h[2] != -a[2] {
			t.Errorf("cap %d: home %v away %v are not mirrored", i, h, a)
		}
	}
	if d.Keepers[Home].Position()[2] != KeeperLine || d.Keepers[Away].Position()[2] != -KeeperLine {
		t.Errorf("keepers at %v and %v", d.Keepers[Home].Position(), d.Keepers[Away].Position())
	}
}

func TestInvalidLayout(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Layout)
	}{
		{"zero cap mass", func(l *Layout) { l.CapMass = 0 }},
		{"negative ball mass", func(l *Layout) { l.BallMass = -1 }},
		{"cap in the other half", func(l *Layout) { l.CapSpots[3] = mgl32.Vec2{0, -1} }},
		{"cap outside the rink", func(l *Layout) { l.CapSpots[0] = mgl32.Vec2{5, 2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.modify(&l)
			if _, err := NewData(l); !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("NewData error = %v, want ErrInvalidLayout", err)
			}
		})
	}
}

func TestClocks(t *testing.T) {
	d := newTestData(t)

	d.SetTurnClock(2)
	if d.TickTurnClock(false) {
		t.Fatal("turn clock expired one frame early")
	}
	if !d.TickTurnClock(false) {
		t.Fatal("turn clock did not expire")
	}
	if !d.TickTurnClock(false) || d.TurnClock() != 0 {
		t.Errorf("turn clock went below zero: %d", d.TurnClock())
	}
	if d.TickTurnClock(true) || d.TurnClock() != ShotBonusFrames {
		t.Errorf("shot bonus gave %d, want %d", d.TurnClock(), ShotBonusFrames)
	}

	d.SetMatchClock(1)
	if !d.TickMatchClock() || d.MatchClock() != 0 {
		t.Errorf("match clock = %d, want expiry at 0", d.MatchClock())
	}
}

func TestDownShotsAndToggle(t *testing.T) {
	d := newTestData(t)

	for i := ShotsPerTurn; i > 1; i-- {
		if d.DownShots() {
			t.Fatalf("shots exhausted with %d left", d.Shots())
		}
	}
	if !d.DownShots() {
		t.Fatal("last shot not reported as exhausted")
	}

	d.SetTurnClock(5)
	d.ToggleTurn()
	if d.Team() != Away || d.Shots() != ShotsPerTurn || d.TurnClock() != TurnFrames {
		t.Errorf("after toggle: team %s shots %d clock %d", d.Team(), d.Shots(), d.TurnClock())
	}
}

func TestPieceLookup(t *testing.T) {
	d := newTestData(t)
	d.SetTurn(Away)

	if p, ok := d.Piece(2); !ok || p != d.Caps[Away][2] {
		t.Errorf("Piece(2) = %v, %v", p, ok)
	}
	if p, ok := d.Piece(-1); !ok || p != d.Keepers[Away] {
		t.Errorf("Piece(-1) is not the away keeper")
	}
	for _, idx := range []int{-2, CapsPerTeam} {
		if _, ok := d.Piece(idx); ok {
			t.Errorf("Piece(%d) should not exist", idx)
		}
	}

	if !d.IsActiveBody(d.Keepers[Away]) || d.IsActiveBody(d.Caps[Home][0]) || d.IsActiveBody(d.Ball) {
		t.Error("IsActiveBody does not follow the turn")
	}
}

func TestGoalScorer(t *testing.T) {
	tests := []struct {
		name   string
		pos    mgl32.Vec3
		team   Team
		scored bool
	}{
		{"centre spot", mgl32.Vec3{0, BallHeight, 0}, 0, false},
		{"in the home goal", mgl32.Vec3{0.5, BallHeight, 5.5}, Away, true},
		{"on the away line", mgl32.Vec3{-0.83, BallHeight, -5.4}, Home, true},
		{"wide of the post", mgl32.Vec3{0.9, BallHeight, 5.6}, 0, false},
		{"short of the line", mgl32.Vec3{0, BallHeight, -5.3}, 0, false},
	}

	d := newTestData(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.Ball.SetPosition(tt.pos)
			team, ok := d.GoalScorer()
			if ok != tt.scored || (ok && team != tt.team) {
				t.Errorf("GoalScorer() = %s, %v, want %s, %v", team, ok, tt.team, tt.scored)
			}
		})
	}
}

func TestAddGoalKeepsMatchClock(t *testing.T) {
	d := newTestData(t)
	d.SetMatchClock(1234)
	d.Ball.SetPosition(mgl32.Vec3{0.2, BallHeight, -5.6})
	d.Caps[Home][3].SetVelocity(mgl32.Vec3{1, 0, 0})

	d.AddGoal(Home)

	if d.Goals() != [2]int{1, 0} {
		t.Errorf("goals = %v, want 1-0", d.Goals())
	}
	if d.MatchClock() != 1234 {
		t.Errorf("match clock = %d, want 1234", d.MatchClock())
	}
	if d.Ball.Position() != (mgl32.Vec3{0, BallHeight, 0}) {
		t.Errorf("ball at %v after goal", d.Ball.Position())
	}
	if d.Caps[Home][3].Velocity() != (mgl32.Vec3{}) {
		t.Errorf("cap still moving after reset: %v", d.Caps[Home][3].Velocity())
	}
}
