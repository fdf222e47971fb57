package match

import (
	"github.com/playmatatu/chapas/internal/physics"
)

// Scoreboard is the text overlay: clocks, shots and goals.
type Scoreboard struct {
	State      string `json:"state"`
	Phase      string `json:"phase"`
	Team       Team   `json:"team"`
	Goals      [2]int `json:"goals"`
	Shots      int    `json:"shots"`
	TurnClock  int    `json:"turn_clock"`
	MatchClock int    `json:"match_clock"`
	Frame      uint64 `json:"frame"`
	LinkLost   bool   `json:"link_lost"`
}

// BannerView is the centre text as it should be drawn this frame.
type BannerView struct {
	Text  string  `json:"text"`
	Alpha float32 `json:"alpha"`
}

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	Scoreboard Scoreboard          `json:"scoreboard"`
	Banner     *BannerView         `json:"banner,omitempty"`
	Arrow      Arrow               `json:"arrow"`
	Camera     Camera              `json:"camera"`
	Viewport   Viewport            `json:"viewport"`
	Bodies     []physics.Transform `json:"bodies"`
}

func (m *Machine) Scoreboard() Scoreboard {
	return Scoreboard{
		State:      m.state.String(),
		Phase:      m.data.Phase().String(),
		Team:       m.data.Team(),
		Goals:      m.data.Goals(),
		Shots:      m.data.Shots(),
		TurnClock:  m.data.TurnClock(),
		MatchClock: m.data.MatchClock(),
		Frame:      m.frame,
		LinkLost:   m.linkLost,
	}
}

// Snapshot copies the current frame out of the machine.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		Scoreboard: m.Scoreboard(),
		Arrow:      m.arrow,
		Camera:     *m.camera,
		Viewport:   m.viewport,
		Bodies:     m.data.World.Transforms(),
	}
	if m.banner != nil {
		s.Banner = &BannerView{Text: m.banner.Text, Alpha: m.banner.Alpha()}
	}
	return s
}
