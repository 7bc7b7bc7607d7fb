package game

import (
	"math"
	"time"
)

// Part tags recorded when a damage zone absorbs a hard enough hit.
const (
	PartFrontBumper = "front_bumper"
	PartRearBumper  = "rear_bumper"
	PartLeftDoor    = "left_door"
	PartRightDoor   = "right_door"
)

// Player is one connected vehicle. Created on the first input from a new id,
// removed on idle eviction or match reset.
type Player struct {
	ID      string
	Name    string
	X       float64
	Y       float64
	Z       float64
	Heading float64
	Speed   float64
	VSpeed  float64

	Steer    float64 // [-1, 1]
	Throttle float64 // [-1, 1]

	Color        string
	Damage       float64
	Destroyed    bool
	MissingParts []string
	Score        int
	Ready        bool

	CarryingID string // at most one delivery
	Effects    []ActiveEffect

	LastInputAt time.Time // idle eviction
	LastSeq     uint32    // last processed input sequence, echoed for reconciliation
}

// performanceScale is the damage-derived multiplier applied to acceleration,
// turning, and top speed. Floored so a wreck on its last legs still moves.
func (p *Player) performanceScale() float64 {
	scale := 1.0 - p.Damage/DestroyThreshold*(1.0-MinPerformance)
	if scale < MinPerformance {
		return MinPerformance
	}
	return scale
}

// applyDamage adds damage, clamps to [0, DestroyThreshold], and flips the
// destroyed flag exactly at the threshold.
func (p *Player) applyDamage(amount float64) {
	if amount <= 0 {
		return
	}
	p.Damage += amount
	if p.Damage >= DestroyThreshold {
		p.Damage = DestroyThreshold
		p.Destroyed = true
	}
}

// repair reduces damage and clears the destroyed flag once under threshold.
func (p *Player) repair(amount float64) {
	if amount <= 0 {
		return
	}
	p.Damage -= amount
	if p.Damage < 0 {
		p.Damage = 0
	}
	if p.Damage < DestroyThreshold {
		p.Destroyed = false
	}
}

// addScore awards points through the double-points multiplier and logs a
// match event.
func (r *Room) addScore(p *Player, points int, description string, now time.Time) {
	points *= p.scoreMultiplier()
	p.Score += points
	r.pushEvent(p.ID, description, points, now)
}

// recordPartLoss tags a missing part for the local-frame zone that absorbed
// the hit, once severity clears that zone's threshold. Tags are monotonic
// until respawn or reset.
func (p *Player) recordPartLoss(hitX, hitY, severity float64) {
	dx := hitX - p.X
	dy := hitY - p.Y
	fwdX := math.Cos(p.Heading)
	fwdY := math.Sin(p.Heading)
	rightX := -fwdY
	rightY := fwdX

	along := dx*fwdX + dy*fwdY
	across := dx*rightX + dy*rightY

	var part string
	var threshold float64
	if math.Abs(along) >= math.Abs(across) {
		if along >= 0 {
			part, threshold = PartFrontBumper, PartLossFrontSeverity
		} else {
			part, threshold = PartRearBumper, PartLossRearSeverity
		}
	} else {
		if across >= 0 {
			part, threshold = PartRightDoor, PartLossRightSeverity
		} else {
			part, threshold = PartLeftDoor, PartLossLeftSeverity
		}
	}
	if severity < threshold {
		return
	}
	for _, existing := range p.MissingParts {
		if existing == part {
			return
		}
	}
	p.MissingParts = append(p.MissingParts, part)
}

// resetForRace clears all transient race state ahead of a fresh start.
func (p *Player) resetForRace(x, y float64) {
	p.X = x
	p.Y = y
	p.Z = 0
	p.Heading = -math.Pi / 2
	p.Speed = 0
	p.VSpeed = 0
	p.Steer = 0
	p.Throttle = 0
	p.Damage = 0
	p.Destroyed = false
	p.MissingParts = nil
	p.Score = 0
	p.CarryingID = ""
	p.Effects = nil
}
