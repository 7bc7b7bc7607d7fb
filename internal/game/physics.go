package game

import (
	"log/slog"
	"math"
	"time"
)

// VehicleState is the kinematic state shared between the server integrator
// and client-side prediction. Both sides step it with StepVehicle using the
// same constants, which is what keeps replayed inputs from drifting.
type VehicleState struct {
	X       float64
	Y       float64
	Z       float64
	Heading float64
	Speed   float64
	VSpeed  float64
}

// VehicleInput is one control sample.
type VehicleInput struct {
	Steer    float64 // [-1, 1]
	Throttle float64 // [-1, 1]
}

// StepVehicle advances a single vehicle by dt seconds. perf is the
// damage-derived performance scale, speedMult the active speed-boost factor;
// both scale acceleration, braking, turn rate, and the speed caps.
// Pure function: the client prediction engine calls it with the same
// constants the server tick uses.
func StepVehicle(s VehicleState, in VehicleInput, perf, speedMult, dt float64) VehicleState {
	in.Steer = clamp(in.Steer, -1, 1)
	in.Throttle = clamp(in.Throttle, -1, 1)

	maxFwd := MaxForwardSpeed * perf * speedMult
	maxRev := MaxReverseSpeed * perf * speedMult

	switch {
	case in.Throttle > 0:
		s.Speed += in.Throttle * Acceleration * perf * speedMult * dt
		if s.Speed > maxFwd {
			s.Speed = maxFwd
		}
	case in.Throttle < 0:
		s.Speed += in.Throttle * BrakePower * perf * speedMult * dt
		if s.Speed < -maxRev {
			s.Speed = -maxRev
		}
	default:
		// Coast toward zero without crossing it.
		drag := CoastDrag * dt
		if s.Speed > drag {
			s.Speed -= drag
		} else if s.Speed < -drag {
			s.Speed += drag
		} else {
			s.Speed = 0
		}
	}

	// Turning is proportional to speed and follows the direction of travel,
	// so steering left while reversing still feels like left.
	if math.Abs(s.Speed) > MinTurnSpeed {
		turnScale := math.Abs(s.Speed) / MaxForwardSpeed
		if turnScale > 1 {
			turnScale = 1
		}
		direction := 1.0
		if s.Speed < 0 {
			direction = -1.0
		}
		s.Heading += in.Steer * TurnRate * perf * speedMult * turnScale * direction * dt
	}

	s.X += math.Cos(s.Heading) * s.Speed * dt
	s.Y += math.Sin(s.Heading) * s.Speed * dt
	s.X = clamp(s.X, 0, WorldWidth)
	s.Y = clamp(s.Y, 0, WorldHeight)

	// Vertical motion: follow the ramp surface going up, fall under gravity
	// coming off it.
	ground := RampHeightAt(s.X, s.Y)
	if s.Z <= ground {
		s.Z = ground
		s.VSpeed = 0
	} else {
		s.VSpeed -= Gravity * dt
		s.Z += s.VSpeed * dt
		if s.Z < ground {
			s.Z = ground
			s.VSpeed = 0
		}
	}

	return s
}

// RampHeightAt is the scripted elevation feature: a single jump ramp along
// the western lane. Height rises linearly across the ramp footprint.
func RampHeightAt(x, y float64) float64 {
	const (
		rampMinX   = WorldWidth * 0.08
		rampMaxX   = WorldWidth * 0.16
		rampMinY   = WorldHeight * 0.4
		rampMaxY   = WorldHeight * 0.6
		rampHeight = 40.0
	)
	if x < rampMinX || x > rampMaxX || y < rampMinY || y > rampMaxY {
		return 0
	}
	return rampHeight * (x - rampMinX) / (rampMaxX - rampMinX)
}

// Advance runs at most one simulation tick. The first caller past
// MinTickInterval integrates; concurrent callers inside the same interval
// observe the latest state unchanged.
func (r *Room) Advance(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceLocked(now)
}

func (r *Room) advanceLocked(now time.Time) {
	elapsed := now.Sub(r.lastTick)
	if elapsed < MinTickInterval {
		return
	}
	if elapsed > MaxTickDelta {
		elapsed = MaxTickDelta
	}
	r.lastTick = now
	dt := elapsed.Seconds()

	// A panic inside a tick skips that tick; the room stays usable.
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("tick panicked, skipping", "panic", rec)
		}
	}()

	r.evictIdlePlayers(now)

	for _, p := range r.players {
		p.purgeExpiredEffects(now)
	}

	for _, p := range r.players {
		r.stepPlayer(p, dt, now)
	}

	r.resolveObstacleCollisions(now)
	r.resolvePlayerCollisions(now)
	r.tickDeliveries(now)
	r.tickPowerUps(now)

	for _, d := range r.destructibles {
		d.ageDebris(dt, now)
	}

	r.checkLifecycle(now)
}

// stepPlayer integrates one player. Destroyed players are zeroed and
// excluded from translation, but everything else in the tick still runs.
func (r *Room) stepPlayer(p *Player, dt float64, now time.Time) {
	if p.Destroyed {
		p.Speed = 0
		p.VSpeed = 0
		p.Steer = 0
		p.Throttle = 0
		return
	}

	before := VehicleState{X: p.X, Y: p.Y, Z: p.Z, Heading: p.Heading, Speed: p.Speed, VSpeed: p.VSpeed}
	fallingSpeed := -p.VSpeed
	after := StepVehicle(before, VehicleInput{Steer: p.Steer, Throttle: p.Throttle}, p.performanceScale(), p.speedMultiplier(), dt)

	// Landing hard converts excess velocity into damage.
	if before.Z > RampHeightAt(before.X, before.Y) && after.VSpeed == 0 && after.Z == RampHeightAt(after.X, after.Y) {
		impact := math.Abs(after.Speed) + fallingSpeed
		if impact > LandingImpactMin {
			p.applyDamage((impact - LandingImpactMin) * LandingDamageRate)
		}
	}

	p.X = after.X
	p.Y = after.Y
	p.Z = after.Z
	p.Heading = after.Heading
	p.Speed = after.Speed
	p.VSpeed = after.VSpeed
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
