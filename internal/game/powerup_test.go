package game

import (
	"testing"
	"time"
)

func TestPlacementRespectsSpacing(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)

	if len(r.powerUps) == 0 {
		t.Fatal("no power-ups placed")
	}
	if len(r.powerUps) > MaxPowerUps {
		t.Fatalf("placed %d power-ups, cap is %d", len(r.powerUps), MaxPowerUps)
	}
	for i, a := range r.powerUps {
		for _, b := range r.powerUps[i+1:] {
			if distance(a.X, a.Y, b.X, b.Y) < PowerUpSpacing {
				t.Errorf("%s and %s placed %v apart, want at least %v",
					a.ID, b.ID, distance(a.X, a.Y, b.X, b.Y), PowerUpSpacing)
			}
		}
		for _, d := range r.destructibles {
			if distance(a.X, a.Y, d.X, d.Y) < d.Radius+PowerUpSpacing {
				t.Errorf("%s placed inside obstacle clearance of %s", a.ID, d.ID)
			}
		}
	}
}

func TestContestedPickupResolvesByIDOrder(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	// Joined in reverse order on purpose: the winner is the lowest id, not
	// the first insertion.
	p2 := addPlayer(r, "p2")
	p1 := addPlayer(r, "p1")
	pu := r.powerUps[0]
	pu.Type = PowerUpShield
	p1.X, p1.Y = pu.X, pu.Y
	p2.X, p2.Y = pu.X, pu.Y

	r.tickPowerUps(clock.Now())

	if pu.CollectorID != "p1" {
		t.Errorf("CollectorID = %q, want p1 to win the contested pickup", pu.CollectorID)
	}
	if p2.HasEffect(EffectShield) {
		t.Error("losing claimant received the effect")
	}
}

func TestCollectTimedEffect(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	pu := &PowerUp{ID: "pu-t", Type: PowerUpSpeed, X: p.X, Y: p.Y}

	r.collectPowerUp(pu, p, clock.Now())

	if !pu.Collected || pu.CollectorID != p.ID {
		t.Error("power-up not claimed")
	}
	if !p.HasEffect(EffectSpeedBoost) {
		t.Fatal("speed boost not attached")
	}
	if got := p.speedMultiplier(); got != SpeedBoostFactor {
		t.Errorf("speedMultiplier = %v, want %v", got, SpeedBoostFactor)
	}
}

func TestEffectExpiresAndPurges(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.addEffect(SpeedBoost{Multiplier: SpeedBoostFactor}, SpeedBoostDuration, clock.Now())

	clock.advance(SpeedBoostDuration + time.Second)
	p.purgeExpiredEffects(clock.Now())

	if p.HasEffect(EffectSpeedBoost) {
		t.Error("expired effect still active")
	}
	if got := p.speedMultiplier(); got != 1 {
		t.Errorf("speedMultiplier = %v, want 1 after expiry", got)
	}
}

func TestStackedBoostsMultiply(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.addEffect(SpeedBoost{Multiplier: SpeedBoostFactor}, SpeedBoostDuration, clock.Now())
	p.addEffect(SpeedBoost{Multiplier: SpeedBoostFactor}, SpeedBoostDuration, clock.Now())

	want := SpeedBoostFactor * SpeedBoostFactor
	if got := p.speedMultiplier(); got != want {
		t.Errorf("speedMultiplier = %v, want %v", got, want)
	}
}

func TestHealAppliesInstantly(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.Damage = 100
	pu := &PowerUp{ID: "pu-h", Type: PowerUpHeal, X: p.X, Y: p.Y}

	r.collectPowerUp(pu, p, clock.Now())

	if p.Damage != 100-HealAmount {
		t.Errorf("Damage = %v, want %v", p.Damage, 100-HealAmount)
	}
	if p.HasEffect(EffectHeal) {
		t.Error("heal should be instant, not a timed effect")
	}
}

func TestTeleportRelocates(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.Speed = 120
	x, y := p.X, p.Y
	pu := &PowerUp{ID: "pu-tp", Type: PowerUpTeleport, X: x, Y: y}

	r.collectPowerUp(pu, p, clock.Now())

	if p.X == x && p.Y == y {
		t.Error("teleport left the player in place")
	}
	if p.Speed != 0 {
		t.Errorf("Speed = %v, want 0 after teleport", p.Speed)
	}
	for _, d := range r.destructibles {
		if distance(p.X, p.Y, d.X, d.Y) < d.Radius {
			t.Errorf("teleported inside obstacle %s", d.ID)
		}
	}
}

func TestCollectedPowerUpRespawns(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	pu := r.powerUps[0]
	r.collectPowerUp(pu, p, clock.Now())

	r.tickPowerUps(clock.Now().Add(time.Second))
	if !pu.Collected {
		t.Fatal("power-up respawned before its delay")
	}

	clock.advance(PowerUpRespawnDelay + time.Second)
	r.tickPowerUps(clock.Now())
	if pu.Collected {
		t.Error("power-up did not respawn after its delay")
	}
}

func TestMagnetPullsWaitingCargo(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.addEffect(Magnet{Radius: MagnetRadius}, MagnetDuration, clock.Now())
	d := r.deliveries[0]
	p.X, p.Y = d.X+100, d.Y

	before := distance(p.X, p.Y, d.X, d.Y)
	r.applyMagnets()
	after := distance(p.X, p.Y, d.X, d.Y)

	if after >= before {
		t.Errorf("cargo distance %v -> %v, want pulled closer", before, after)
	}
}

func TestMagnetIgnoresCarriedCargoAndCarriers(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.addEffect(Magnet{Radius: MagnetRadius}, MagnetDuration, clock.Now())
	p.CarryingID = "cargo-a"
	d := r.deliveries[1]
	p.X, p.Y = d.X+100, d.Y
	x, y := d.X, d.Y

	r.applyMagnets()

	if d.X != x || d.Y != y {
		t.Error("a carrier's magnet must not pull more cargo")
	}
}

func TestRepelPushesOtherPlayers(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	holder := addPlayer(r, "holder")
	other := addPlayer(r, "other")
	holder.addEffect(Repel{Radius: RepelRadius, Strength: RepelStrength}, RepelDuration, clock.Now())
	holder.X, holder.Y = 400, 600
	other.X, other.Y = 440, 600

	before := distance(holder.X, holder.Y, other.X, other.Y)
	r.applyRepels()
	after := distance(holder.X, holder.Y, other.X, other.Y)

	if after <= before {
		t.Errorf("distance %v -> %v, want pushed away", before, after)
	}
}

func TestRepelOutOfRadiusNoEffect(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	holder := addPlayer(r, "holder")
	other := addPlayer(r, "other")
	holder.addEffect(Repel{Radius: RepelRadius, Strength: RepelStrength}, RepelDuration, clock.Now())
	holder.X, holder.Y = 100, 600
	other.X, other.Y = 100+RepelRadius+50, 600
	x := other.X

	r.applyRepels()

	if other.X != x {
		t.Error("player outside the repel radius was moved")
	}
}

func TestTopUpScalesWithCarriedCargo(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)

	// Drain the field, then mark two cargo in flight.
	far := clock.Now().Add(time.Hour)
	for _, pu := range r.powerUps {
		pu.Collected = true
		pu.RespawnAt = far
	}
	r.deliveries[0].State = DeliveryCarried
	r.deliveries[1].State = DeliveryCarried

	r.topUpPowerUps()

	available := 0
	for _, pu := range r.powerUps {
		if !pu.Collected {
			available++
		}
	}
	want := 2 + 2*2
	if available < want {
		t.Errorf("available = %d, want at least the floor %d", available, want)
	}
}

func TestInvisibleDoesNotBlockPhysicsOnlyVisibility(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	a, b := placeColliding(r)
	a.Speed = 150
	a.addEffect(Invisible{}, InvisibleDuration, clock.Now())

	r.resolvePlayerCollisions(clock.Now())

	if a.Damage == 0 || b.Damage == 0 {
		t.Error("invisibility must not disable collisions")
	}
}
