package match

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func nearVec(a, b mgl32.Vec3) bool {
	return a.Sub(b).Len() < 1e-3
}

func TestBannerRunsFourStages(t *testing.T) {
	b := NewBanner("Kick-off!")

	frames := 0
	for !b.Advance() {
		frames++
		if frames > 1000 {
			t.Fatal("banner never finished")
		}
		if frames == BannerWaitFrames+BannerFadeFrames/2 {
			if b.Stage() != BannerFadeIn || math.Abs(float64(b.Alpha()-0.5)) > 1e-6 {
				t.Errorf("mid fade-in: stage %d alpha %f", b.Stage(), b.Alpha())
			}
		}
	}
	frames++

	if frames != BannerFrames {
		t.Errorf("banner ran %d frames, want %d", frames, BannerFrames)
	}
	if !b.Done() || b.Alpha() != 0 {
		t.Errorf("finished banner: done %v alpha %f", b.Done(), b.Alpha())
	}
}

func TestPulseNeverFinishes(t *testing.T) {
	b := NewPulse("Waiting...")

	for i := 0; i < 1000; i++ {
		if b.Advance() {
			t.Fatalf("pulse finished after %d frames", i+1)
		}
		if b.Alpha() < 0 || b.Alpha() > 1 {
			t.Fatalf("alpha %f out of range at frame %d", b.Alpha(), i+1)
		}
	}
}

func TestEventQueueDropsOldest(t *testing.T) {
	q := NewEventQueue(2)
	q.Push(Event{Kind: EventSound, Frame: 1})
	q.Push(Event{Kind: EventBanner, Frame: 2})
	q.Push(Event{Kind: EventState, Frame: 3})

	got := q.Drain()
	if len(got) != 2 || got[0].Frame != 2 || got[1].Frame != 3 {
		t.Errorf("drained %+v, want frames 2 and 3", got)
	}
	if q.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", q.Dropped())
	}
	if len(q.Drain()) != 0 {
		t.Error("queue not empty after drain")
	}
}

func TestCentreRayLooksAtTarget(t *testing.T) {
	c := NewCamera()
	vp := DefaultViewport

	ray := c.Ray(vp.Width/2, vp.Height/2, vp)
	want := mgl32.Vec3{-0.2, -2, 0}.Normalize()
	if !nearVec(ray, want) {
		t.Errorf("centre ray = %v, want %v", ray, want)
	}
}

func TestScreenPointMatchesRay(t *testing.T) {
	c := NewCamera()
	vp := Viewport{Width: 800, Height: 600}

	for _, p := range []mgl32.Vec3{{0, 0, 1}, {1, 0, -1}, {-0.5, 0.1, 2}} {
		x, y := c.ScreenPoint(p, vp)
		ray := c.Ray(x, y, vp)
		want := p.Sub(c.Position).Normalize()
		if !nearVec(ray, want) {
			t.Errorf("ray through %v = %v, want %v", p, ray, want)
		}
		if !hitsSphere(p, 0.01, c.Position, ray) {
			t.Errorf("ray through %v misses it", p)
		}
	}
}

func TestCameraPanBounds(t *testing.T) {
	c := NewCamera()

	c.Translate(1, -2)
	if !nearVec(c.Position, mgl32.Vec3{1.2, 2, -2}) || !nearVec(c.Target, mgl32.Vec3{1, 0, -2}) {
		t.Errorf("after pan: position %v target %v", c.Position, c.Target)
	}

	c.Translate(10, -10)
	if !nearVec(c.Position, mgl32.Vec3{1.2, 2, -2}) {
		t.Errorf("pan past the bounds moved the camera to %v", c.Position)
	}

	c.Reset()
	if c.Position != cameraHome || c.Target != cameraTarget {
		t.Errorf("reset left camera at %v looking at %v", c.Position, c.Target)
	}
}
