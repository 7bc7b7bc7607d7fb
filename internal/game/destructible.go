package game

import (
	"math"
	"math/rand"
	"time"
)

// Debris is one particle knocked off a destructible. Shatter debris is
// permanent until the match ends, chip debris ages out.
type Debris struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Permanent bool    `json:"permanent"`
	ExpiresAt time.Time
}

// Destructible is a damageable obstacle in the arena.
type Destructible struct {
	ID        string
	Type      string
	X         float64
	Y         float64
	Radius    float64
	Health    float64
	MaxHealth float64
	Destroyed bool
	Debris    []Debris

	lastHitAt time.Time // debounces sustained contact
	shattered bool      // shatter burst already fired
}

// immune reports whether the destructible only repels and never takes damage.
func (d *Destructible) immune() bool {
	return d.Type == LandmarkObstacleType
}

// applyHit applies impact damage, debounced by the per-target cooldown.
// Damage is capped per single hit so no obstacle is one-shot. Returns the
// damage actually applied.
func (d *Destructible) applyHit(impactSpeed float64, rng *rand.Rand, now time.Time) float64 {
	if d.immune() || d.Destroyed {
		return 0
	}
	if now.Sub(d.lastHitAt) < ObstacleHitCooldown {
		return 0
	}
	d.lastHitAt = now

	damage := impactSpeed * ObstacleDamageRate
	if damage > ObstacleDamageCap {
		damage = ObstacleDamageCap
	}
	d.Health -= damage
	if d.Health <= 0 {
		d.Health = 0
		d.Destroyed = true
		d.shatter(rng, now)
	} else {
		d.chip(rng, now)
	}
	return damage
}

// shatter fires the irreversible destruction burst exactly once.
func (d *Destructible) shatter(rng *rand.Rand, now time.Time) {
	if d.shattered {
		return
	}
	d.shattered = true
	d.burst(ShatterDebrisCount, true, rng, now)
}

// chip fires a small debris burst for a non-lethal hit. The hit cooldown in
// applyHit already rate-limits it.
func (d *Destructible) chip(rng *rand.Rand, now time.Time) {
	d.burst(ChipDebrisCount, false, rng, now)
}

func (d *Destructible) burst(count int, permanent bool, rng *rand.Rand, now time.Time) {
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		speed := 20 + rng.Float64()*60
		d.Debris = append(d.Debris, Debris{
			X:         d.X,
			Y:         d.Y,
			VX:        math.Cos(angle) * speed,
			VY:        math.Sin(angle) * speed,
			Permanent: permanent,
			ExpiresAt: now.Add(DebrisTTL),
		})
	}
}

// ageDebris advects particles and drops expired non-permanent ones.
func (d *Destructible) ageDebris(dt float64, now time.Time) {
	kept := d.Debris[:0]
	for i := range d.Debris {
		deb := d.Debris[i]
		if !deb.Permanent && now.After(deb.ExpiresAt) {
			continue
		}
		deb.X += deb.VX * dt
		deb.Y += deb.VY * dt
		deb.VX *= 0.9
		deb.VY *= 0.9
		kept = append(kept, deb)
	}
	d.Debris = kept
}

// defaultDestructibles lays out the arena obstacles. The monument in the
// middle is the damage-immune landmark.
func defaultDestructibles() []*Destructible {
	specs := []struct {
		id     string
		typ    string
		x, y   float64
		radius float64
		health float64
	}{
		{"monument", LandmarkObstacleType, WorldWidth / 2, WorldHeight / 2, 60, 0},
		{"crate-nw", "crate", WorldWidth * 0.2, WorldHeight * 0.2, 24, 60},
		{"crate-ne", "crate", WorldWidth * 0.8, WorldHeight * 0.2, 24, 60},
		{"crate-sw", "crate", WorldWidth * 0.2, WorldHeight * 0.8, 24, 60},
		{"crate-se", "crate", WorldWidth * 0.8, WorldHeight * 0.8, 24, 60},
		{"barrier-w", "barrier", WorldWidth * 0.35, WorldHeight / 2, 30, 120},
		{"barrier-e", "barrier", WorldWidth * 0.65, WorldHeight / 2, 30, 120},
	}
	out := make([]*Destructible, 0, len(specs))
	for _, s := range specs {
		out = append(out, &Destructible{
			ID:        s.id,
			Type:      s.typ,
			X:         s.x,
			Y:         s.y,
			Radius:    s.radius,
			Health:    s.health,
			MaxHealth: s.health,
		})
	}
	return out
}
