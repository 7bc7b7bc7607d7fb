package game

import (
	"math"
	"sort"
	"time"
)

// resolveObstacleCollisions runs the player-destructible pass.
func (r *Room) resolveObstacleCollisions(now time.Time) {
	for _, p := range r.players {
		if p.Destroyed {
			continue
		}
		for _, d := range r.destructibles {
			if d.Destroyed {
				continue
			}
			dx := p.X - d.X
			dy := p.Y - d.Y
			dist := math.Hypot(dx, dy)
			reach := d.Radius + ObstacleHitBuffer
			if dist >= reach {
				continue
			}

			// Push the player out along the contact normal regardless of
			// impact speed. The landmark only ever does this.
			if dist == 0 {
				dx, dy, dist = 1, 0, 1
			}
			nx := dx / dist
			ny := dy / dist
			p.X = d.X + nx*reach
			p.Y = d.Y + ny*reach

			impact := math.Abs(p.Speed) + math.Abs(p.VSpeed)
			if impact < ObstacleMinImpact {
				continue
			}

			p.Speed *= ObstacleBounceDamp

			if applied := d.applyHit(impact, r.rng, now); applied > 0 && d.Destroyed {
				r.pushEvent(p.ID, "demolished a "+d.Type, 0, now)
			}

			if !p.HasEffect(EffectShield) {
				scrape := impact * PlayerScrapeRate
				p.applyDamage(scrape)
				p.recordPartLoss(d.X, d.Y, scrape)
			}
		}
	}
}

// resolvePlayerCollisions runs the player-player pass, including cargo
// steals, which resolve as part of the same contact.
func (r *Room) resolvePlayerCollisions(now time.Time) {
	players := r.playerList()
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			a := players[i]
			b := players[j]
			if a.Destroyed || b.Destroyed {
				continue
			}
			if math.Abs(a.Z-b.Z) > PlayerLevelSlack {
				continue
			}
			dx := a.X - b.X
			dy := a.Y - b.Y
			dist := math.Hypot(dx, dy)
			if dist >= PlayerHitRadius {
				continue
			}
			r.collidePlayers(a, b, dx, dy, dist, now)
		}
	}
}

func (r *Room) collidePlayers(a, b *Player, dx, dy, dist float64, now time.Time) {
	if dist == 0 {
		angle := r.rng.Float64() * 2 * math.Pi
		dx = math.Cos(angle)
		dy = math.Sin(angle)
		dist = 1
	}
	nx := dx / dist
	ny := dy / dist

	// Symmetric separation plus overlap correction.
	overlap := PlayerHitRadius - dist + PlayerSeparation
	a.X += nx * overlap / 2
	a.Y += ny * overlap / 2
	b.X -= nx * overlap / 2
	b.Y -= ny * overlap / 2

	relSpeed := math.Abs(a.Speed-b.Speed) + math.Abs(a.VSpeed-b.VSpeed)
	if relSpeed > PlayerMinRelSpeed {
		damage := (relSpeed - PlayerMinRelSpeed) * PlayerDamageRate
		if !a.HasEffect(EffectShield) {
			a.applyDamage(damage)
			a.recordPartLoss(b.X, b.Y, damage)
		}
		if !b.HasEffect(EffectShield) {
			b.applyDamage(damage)
			b.recordPartLoss(a.X, a.Y, damage)
		}
		a.Speed *= PlayerCollisionDamp
		b.Speed *= PlayerCollisionDamp
	}

	r.resolveCargoSteal(a, b, now)
}

// playerList is the players map in id order, so every pass that scans for the
// first matching player resolves the same way regardless of map layout.
func (r *Room) playerList() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
