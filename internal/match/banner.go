package match

// BannerStage is the step of the centre banner animation.
type BannerStage int

const (
	BannerWait BannerStage = iota
	BannerFadeIn
	BannerHold
	BannerFadeOut
	BannerDone
)

// Banner animates the centre text. A regular banner waits, fades in, holds,
// fades out and finishes. A pulsing banner fades in and out forever.
type Banner struct {
	Text string

	stage   BannerStage
	counter int
	alpha   float32
	pulse   bool
}

// NewBanner starts a one-shot banner.
func NewBanner(text string) *Banner {
	return &Banner{Text: text, stage: BannerWait}
}

// NewPulse starts a looping banner, used while waiting for the peer.
func NewPulse(text string) *Banner {
	return &Banner{Text: text, stage: BannerFadeIn, pulse: true}
}

func (b *Banner) Stage() BannerStage { return b.stage }
func (b *Banner) Alpha() float32     { return b.alpha }
func (b *Banner) Done() bool         { return b.stage == BannerDone }

// Advance runs one frame of the animation and reports whether it has finished.
func (b *Banner) Advance() bool {
	if b.pulse {
		b.advancePulse()
		return false
	}

	switch b.stage {
	case BannerWait:
		b.step(BannerWaitFrames, BannerFadeIn)
	case BannerFadeIn:
		b.counter++
		b.alpha = float32(b.counter) / BannerFadeFrames
		if b.counter >= BannerFadeFrames {
			b.next(BannerHold)
		}
	case BannerHold:
		b.step(BannerHoldFrames, BannerFadeOut)
	case BannerFadeOut:
		b.counter++
		b.alpha = 1 - float32(b.counter)/BannerFadeFrames
		if b.counter >= BannerFadeFrames {
			b.next(BannerDone)
		}
	}
	return b.stage == BannerDone
}

func (b *Banner) advancePulse() {
	b.counter++
	switch b.stage {
	case BannerFadeIn:
		b.alpha = float32(b.counter) / BannerPulseFrames
		if b.counter >= BannerPulseFrames {
			b.next(BannerFadeOut)
		}
	default:
		b.alpha = 1 - float32(b.counter)/BannerPulseFrames
		if b.counter >= BannerPulseFrames {
			b.next(BannerFadeIn)
		}
	}
}

func (b *Banner) step(frames int, then BannerStage) {
	b.counter++
	if b.counter >= frames {
		b.next(then)
	}
}

func (b *Banner) next(s BannerStage) {
	b.counter = 0
	b.stage = s
}

// BannerFrames is how long a one-shot banner runs.
const BannerFrames = BannerWaitFrames + 2*BannerFadeFrames + BannerHoldFrames
