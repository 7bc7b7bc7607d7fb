package game

import (
	"math"
	"testing"
	"time"
)

func stepN(s VehicleState, in VehicleInput, n int, dt float64) VehicleState {
	for i := 0; i < n; i++ {
		s = StepVehicle(s, in, 1, 1, dt)
	}
	return s
}

func TestStepVehicleAcceleratesToTopSpeed(t *testing.T) {
	s := VehicleState{X: 400, Y: 400}
	s = stepN(s, VehicleInput{Throttle: 1}, 200, 0.016)
	if s.Speed > MaxForwardSpeed {
		t.Errorf("Speed = %v, exceeds MaxForwardSpeed %v", s.Speed, MaxForwardSpeed)
	}
	if s.Speed < MaxForwardSpeed*0.99 {
		t.Errorf("Speed = %v, should have reached top speed", s.Speed)
	}
}

func TestStepVehicleReverseCap(t *testing.T) {
	s := VehicleState{X: 400, Y: 400}
	s = stepN(s, VehicleInput{Throttle: -1}, 200, 0.016)
	if s.Speed < -MaxReverseSpeed {
		t.Errorf("Speed = %v, exceeds reverse cap %v", s.Speed, MaxReverseSpeed)
	}
}

func TestStepVehicleCoastsToRest(t *testing.T) {
	s := VehicleState{X: 400, Y: 400, Speed: 100}
	s = stepN(s, VehicleInput{}, 200, 0.016)
	if s.Speed != 0 {
		t.Errorf("Speed = %v, want 0 after coasting", s.Speed)
	}
}

func TestStepVehicleNoTurnBelowMinSpeed(t *testing.T) {
	s := VehicleState{X: 400, Y: 400, Speed: MinTurnSpeed / 2, Heading: 1}
	out := StepVehicle(s, VehicleInput{Steer: 1}, 1, 1, 0.016)
	if out.Heading != 1 {
		t.Errorf("Heading = %v, want unchanged below MinTurnSpeed", out.Heading)
	}
}

func TestStepVehicleTurnFollowsTravelDirection(t *testing.T) {
	fwd := StepVehicle(VehicleState{X: 400, Y: 400, Speed: 100}, VehicleInput{Steer: 1}, 1, 1, 0.016)
	rev := StepVehicle(VehicleState{X: 400, Y: 400, Speed: -50}, VehicleInput{Steer: 1}, 1, 1, 0.016)
	if fwd.Heading <= 0 {
		t.Errorf("forward steer right: Heading = %v, want positive", fwd.Heading)
	}
	if rev.Heading >= 0 {
		t.Errorf("reverse steer right: Heading = %v, want negative", rev.Heading)
	}
}

func TestStepVehicleClampsToWorldBounds(t *testing.T) {
	s := VehicleState{X: WorldWidth - 1, Y: 400, Speed: MaxForwardSpeed}
	s = stepN(s, VehicleInput{Throttle: 1}, 50, 0.016)
	if s.X > WorldWidth {
		t.Errorf("X = %v, escaped world bound %v", s.X, WorldWidth)
	}
}

func TestStepVehicleInputClamped(t *testing.T) {
	wild := StepVehicle(VehicleState{X: 400, Y: 400}, VehicleInput{Steer: 10, Throttle: 10}, 1, 1, 0.016)
	sane := StepVehicle(VehicleState{X: 400, Y: 400}, VehicleInput{Steer: 1, Throttle: 1}, 1, 1, 0.016)
	if wild != sane {
		t.Errorf("out-of-range input not clamped: %+v vs %+v", wild, sane)
	}
}

func TestStepVehicleLandsOnGround(t *testing.T) {
	s := VehicleState{X: 400, Y: 700, Z: 30, VSpeed: -50}
	for i := 0; i < 100; i++ {
		s = StepVehicle(s, VehicleInput{}, 1, 1, 0.016)
	}
	if s.Z != 0 {
		t.Errorf("Z = %v, want 0 after landing", s.Z)
	}
	if s.VSpeed != 0 {
		t.Errorf("VSpeed = %v, want 0 once grounded", s.VSpeed)
	}
}

func TestRampHeight(t *testing.T) {
	if h := RampHeightAt(0, 0); h != 0 {
		t.Errorf("height off the ramp = %v, want 0", h)
	}
	mid := RampHeightAt(WorldWidth*0.12, WorldHeight*0.5)
	if mid <= 0 || mid >= 40 {
		t.Errorf("height mid-ramp = %v, want within (0, 40)", mid)
	}
}

func TestAdvanceTickGate(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)

	r.mu.Lock()
	p := r.upsertPlayerLocked("p1", "ann", 0, 1, 0, nil, clock.Now())
	r.mu.Unlock()

	clock.advance(20 * time.Millisecond)
	r.Advance(clock.Now())
	afterFirst := VehicleState{X: p.X, Y: p.Y, Speed: p.Speed}
	if afterFirst.Speed == 0 {
		t.Fatal("first tick past the interval should have integrated")
	}

	// A second call inside the same interval observes state unchanged.
	clock.advance(5 * time.Millisecond)
	r.Advance(clock.Now())
	if p.Speed != afterFirst.Speed || p.X != afterFirst.X || p.Y != afterFirst.Y {
		t.Error("call inside MinTickInterval mutated state")
	}

	clock.advance(MinTickInterval)
	r.Advance(clock.Now())
	if p.Speed == afterFirst.Speed {
		t.Error("call past the interval should have integrated again")
	}
}

func TestAdvanceClampsStalledDelta(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)

	r.mu.Lock()
	p := r.upsertPlayerLocked("p1", "ann", 0, 1, 0, nil, clock.Now())
	r.mu.Unlock()

	clock.advance(10 * time.Second)
	r.Advance(clock.Now())

	// A 10s stall integrates as at most MaxTickDelta worth of acceleration.
	maxSpeed := Acceleration * MaxTickDelta.Seconds()
	if p.Speed > maxSpeed+1e-9 {
		t.Errorf("Speed = %v after stall, want at most %v", p.Speed, maxSpeed)
	}
}

func TestDestroyedPlayerDoesNotMove(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.Destroyed = true
	p.Speed = 100
	p.Throttle = 1
	x, y := p.X, p.Y

	r.stepPlayer(p, 0.1, clock.Now())

	if p.X != x || p.Y != y {
		t.Error("destroyed player translated")
	}
	if p.Speed != 0 || p.Throttle != 0 {
		t.Errorf("destroyed player kept velocity: Speed=%v Throttle=%v", p.Speed, p.Throttle)
	}
}

func TestHardLandingDamages(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.X, p.Y = 400, 700 // flat ground
	p.Z = 50
	p.VSpeed = -200
	p.Speed = 0

	r.stepPlayer(p, 0.25, clock.Now())

	if p.Z != 0 {
		t.Fatalf("Z = %v, want grounded", p.Z)
	}
	if p.Damage == 0 {
		t.Error("hard landing should have damaged the vehicle")
	}
}

func TestSoftLandingDoesNotDamage(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.X, p.Y = 400, 700
	p.Z = 2
	p.VSpeed = -10
	p.Speed = 0

	r.stepPlayer(p, 0.25, clock.Now())

	if p.Damage != 0 {
		t.Errorf("Damage = %v after gentle landing, want 0", p.Damage)
	}
}

func TestSpeedBoostScalesAccelerationAndTurning(t *testing.T) {
	plain := StepVehicle(VehicleState{X: 400, Y: 400}, VehicleInput{Throttle: 1}, 1, 1, 0.05)
	boosted := StepVehicle(VehicleState{X: 400, Y: 400}, VehicleInput{Throttle: 1}, 1, 2, 0.05)
	if boosted.Speed <= plain.Speed {
		t.Errorf("boosted Speed = %v vs plain %v, boost should raise acceleration", boosted.Speed, plain.Speed)
	}

	plainTurn := StepVehicle(VehicleState{X: 400, Y: 400, Speed: 60}, VehicleInput{Steer: 1}, 1, 1, 0.05)
	boostTurn := StepVehicle(VehicleState{X: 400, Y: 400, Speed: 60}, VehicleInput{Steer: 1}, 1, 2, 0.05)
	if boostTurn.Heading <= plainTurn.Heading {
		t.Errorf("boosted Heading = %v vs plain %v, boost should raise turn rate", boostTurn.Heading, plainTurn.Heading)
	}

	plainBrake := StepVehicle(VehicleState{X: 400, Y: 400, Speed: 100}, VehicleInput{Throttle: -1}, 1, 1, 0.05)
	boostBrake := StepVehicle(VehicleState{X: 400, Y: 400, Speed: 100}, VehicleInput{Throttle: -1}, 1, 2, 0.05)
	if boostBrake.Speed >= plainBrake.Speed {
		t.Errorf("boosted braking left Speed = %v vs plain %v, boost should raise brake power", boostBrake.Speed, plainBrake.Speed)
	}
}

func TestDamagedVehicleIsSlower(t *testing.T) {
	healthy := stepN(VehicleState{X: 400, Y: 400}, VehicleInput{Throttle: 1}, 50, 0.016)
	wrecked := VehicleState{X: 400, Y: 400}
	perf := MinPerformance
	for i := 0; i < 50; i++ {
		wrecked = StepVehicle(wrecked, VehicleInput{Throttle: 1}, perf, 1, 0.016)
	}
	if wrecked.Speed >= healthy.Speed {
		t.Errorf("wrecked speed %v should trail healthy speed %v", wrecked.Speed, healthy.Speed)
	}
	if math.Abs(wrecked.Speed) > MaxForwardSpeed*perf {
		t.Errorf("wrecked speed %v exceeds scaled cap %v", wrecked.Speed, MaxForwardSpeed*perf)
	}
}
