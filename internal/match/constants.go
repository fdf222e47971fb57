package match

// Timing. One frame is one fixed physics step.
const (
	FramesPerSecond = 60
	Timestep        = float32(1.0 / FramesPerSecond)

	HalfFrames      = 5 * 60 * FramesPerSecond // match clock per half
	TurnFrames      = 20 * FramesPerSecond     // turn clock
	ShotBonusFrames = 2 * FramesPerSecond      // added to the turn clock per shot
	ShotsPerTurn    = 3
)

// Pieces.
const (
	CapsPerTeam = 8

	CapRadius = 1.17
	CapScale  = 0.2
	CapMass   = 3

	BallRadius        = 0.85
	BallScale         = 0.17
	BallMass          = 1
	BallHeight        = 0.145
	BallRotationSpeed = 1.5

	KeeperRadius = 1.0
	KeeperScale  = 0.2
	KeeperMass   = 3
	KeeperHeight = 0.001
	KeeperLine   = 5.0

	WallThickness = 0.25
)

// Rink geometry and rules.
const (
	GoalHalfWidth = 0.83
	GoalLine      = 5.4

	// Squared distance between possessor and ball that still counts as a pass.
	PassRange = 1.0

	MaxArrowMagnitude = 0.4
	ArrowMagnitudeMul = 1.25
	ImpulseMultiplier = 21.0
)

// Camera pan limits and speeds.
const (
	PanSpeedX = 9.0
	PanSpeedY = 6.0
	PanMinX   = -4.5
	PanMaxX   = 4.5
	PanMinZ   = -6.0
	PanMaxZ   = 6.0
)

// Banner animation frame counts.
const (
	BannerWaitFrames  = 120
	BannerFadeFrames  = 30
	BannerHoldFrames  = 60
	BannerPulseFrames = 20
)
