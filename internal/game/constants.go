package game

import "time"

// Arena dimensions and tick pacing
const (
	WorldWidth  = 800.0
	WorldHeight = 800.0

	// MinTickInterval gates Advance: the first caller past the interval
	// integrates, everyone else observes the latest state unchanged.
	MinTickInterval = 15 * time.Millisecond
	// MaxTickDelta caps a single integration step after a stall.
	MaxTickDelta = 250 * time.Millisecond

	IdleTimeout = 12 * time.Second
	MaxEvents   = 50
)

// Vehicle physics
const (
	MaxForwardSpeed = 180.0 // units per second
	MaxReverseSpeed = 70.0
	Acceleration    = 220.0
	BrakePower      = 320.0
	CoastDrag       = 140.0 // deceleration toward zero with no throttle
	TurnRate        = 2.8   // radians per second at full speed
	MinTurnSpeed    = 8.0   // no turning below this speed magnitude

	Gravity           = 420.0 // downward, units per second squared
	LandingImpactMin  = 160.0 // combined impact speed before landing damage
	LandingDamageRate = 0.12  // damage per unit of excess impact speed
)

// Damage model
const (
	DestroyThreshold = 150.0
	// MinPerformance floors the damage-derived scale on acceleration,
	// turning, and top speed.
	MinPerformance = 0.4
)

// Spawn search
const (
	SpawnGridStep      = 60.0
	SpawnClearance     = 55.0
	SpawnRandomRetries = 24
	DefaultSpawnX      = WorldWidth / 2
	DefaultSpawnY      = WorldHeight * 0.85
)

// Destructible collisions
const (
	ObstacleHitBuffer    = 14.0
	ObstacleMinImpact    = 55.0 // combined impact speed before any damage
	ObstacleDamageRate   = 0.5  // obstacle damage per unit of impact speed
	ObstacleDamageCap    = 30.0 // per single hit, so nothing is one-shot
	ObstacleHitCooldown  = 350 * time.Millisecond
	PlayerScrapeRate     = 0.15 // player damage per unit of impact speed
	DebrisTTL            = 4 * time.Second
	ChipDebrisCount      = 3
	ShatterDebrisCount   = 10
	ObstacleBounceDamp   = 0.45
	LandmarkObstacleType = "monument"
)

// Per-zone damage before a missing-part tag is recorded. Doors hold on
// longer than bumpers.
const (
	PartLossFrontSeverity = 10.0
	PartLossRearSeverity  = 12.0
	PartLossLeftSeverity  = 15.0
	PartLossRightSeverity = 15.0
)

// Player-player collisions
const (
	PlayerHitRadius     = 26.0
	PlayerLevelSlack    = 18.0 // max vertical gap for contact
	PlayerMinRelSpeed   = 40.0
	PlayerDamageRate    = 0.2
	PlayerSeparation    = 2.0
	PlayerCollisionDamp = 0.55
)

// Deliveries
const (
	DeliveryPickupRadius  = 30.0
	DeliveryTargetRadius  = 46.0
	DeliveryCooldownTime  = 6 * time.Second
	DeliveryRespawnJitter = 80.0
	PickupBonus           = 50
	StealBonus            = 100
	DeliverBonus          = 250
)

// Power-ups
const (
	MaxPowerUps         = 12
	PowerUpSpacing      = 70.0
	PowerUpPickupRadius = 28.0
	PowerUpRespawnDelay = 18 * time.Second

	SpeedBoostDuration = 6 * time.Second
	SpeedBoostFactor   = 1.5
	ShieldDuration     = 8 * time.Second
	MagnetDuration     = 10 * time.Second
	MagnetRadius       = 160.0
	MagnetPullFraction = 0.06 // of remaining distance, per tick
	RepelDuration      = 8 * time.Second
	RepelRadius        = 120.0
	RepelStrength      = 900.0
	InvisibleDuration  = 7 * time.Second
	DoublePointsTime   = 12 * time.Second
	HealAmount         = 60.0
)

// Match lifecycle
const (
	DefaultMatchDuration   = 3 * time.Minute
	RaceStartDelay         = 3 * time.Second
	LobbyResetDelay        = 8 * time.Second
	FinalizeSlack          = 200 * time.Millisecond
	PeriodicRepairInterval = 5 * time.Second
	PeriodicRepairAmount   = 4.0 // damage shed by live players each interval
)
