package game

import (
	"fmt"
	"math"
	"time"
)

// PowerUpType names a collectible. The decoded Effect variant is produced at
// collection time by decodePowerUp.
type PowerUpType string

const (
	PowerUpSpeed        PowerUpType = "speed_boost"
	PowerUpShield       PowerUpType = "shield"
	PowerUpMagnet       PowerUpType = "magnet"
	PowerUpRepel        PowerUpType = "repel"
	PowerUpInvisible    PowerUpType = "invisible"
	PowerUpDoublePoints PowerUpType = "double_points"
	PowerUpHeal         PowerUpType = "heal"
	PowerUpTeleport     PowerUpType = "teleport"
)

var powerUpTypes = []PowerUpType{
	PowerUpSpeed, PowerUpShield, PowerUpMagnet, PowerUpRepel,
	PowerUpInvisible, PowerUpDoublePoints, PowerUpHeal, PowerUpTeleport,
}

// PowerUp is one placed collectible.
type PowerUp struct {
	ID          string
	Type        PowerUpType
	X           float64
	Y           float64
	Collected   bool
	CollectorID string
	CollectedAt time.Time
	RespawnAt   time.Time
}

// powerUpCandidates builds the deduplicated pool of spawn coordinates:
// a coarse grid, two concentric rings around the monument, and a few
// hand-picked extras.
func powerUpCandidates() [][2]float64 {
	seen := make(map[[2]float64]bool)
	var pool [][2]float64
	add := func(x, y float64) {
		if x < PowerUpSpacing || x > WorldWidth-PowerUpSpacing ||
			y < PowerUpSpacing || y > WorldHeight-PowerUpSpacing {
			return
		}
		key := [2]float64{math.Round(x), math.Round(y)}
		if seen[key] {
			return
		}
		seen[key] = true
		pool = append(pool, key)
	}

	for x := PowerUpSpacing * 1.5; x < WorldWidth; x += 120 {
		for y := PowerUpSpacing * 1.5; y < WorldHeight; y += 120 {
			add(x, y)
		}
	}
	for _, radius := range []float64{140.0, 220.0} {
		for i := 0; i < 8; i++ {
			angle := float64(i) / 8 * 2 * math.Pi
			add(WorldWidth/2+math.Cos(angle)*radius, WorldHeight/2+math.Sin(angle)*radius)
		}
	}
	add(WorldWidth*0.5, WorldHeight*0.93)
	add(WorldWidth*0.07, WorldHeight*0.5)
	add(WorldWidth*0.93, WorldHeight*0.5)

	return pool
}

// placePowerUps shuffles the candidate pool and places up to MaxPowerUps
// items, each kept clear of players, obstacles, drop zones, and one another.
func (r *Room) placePowerUps() {
	pool := powerUpCandidates()
	r.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	r.powerUps = r.powerUps[:0]
	for _, c := range pool {
		if len(r.powerUps) >= MaxPowerUps {
			break
		}
		if !r.powerUpSpotClear(c[0], c[1]) {
			continue
		}
		r.powerUps = append(r.powerUps, &PowerUp{
			ID:   fmt.Sprintf("pu-%d", r.nextPowerUpID()),
			Type: powerUpTypes[r.rng.Intn(len(powerUpTypes))],
			X:    c[0],
			Y:    c[1],
		})
	}
	r.spawnPool = pool
}

func (r *Room) powerUpSpotClear(x, y float64) bool {
	for _, p := range r.players {
		if distance(x, y, p.X, p.Y) < PowerUpSpacing {
			return false
		}
	}
	for _, d := range r.destructibles {
		if distance(x, y, d.X, d.Y) < d.Radius+PowerUpSpacing {
			return false
		}
	}
	for _, t := range dropTargets {
		if distance(x, y, t[0], t[1]) < DeliveryTargetRadius+PowerUpSpacing {
			return false
		}
	}
	for _, pu := range r.powerUps {
		if !pu.Collected && distance(x, y, pu.X, pu.Y) < PowerUpSpacing {
			return false
		}
	}
	return true
}

// tickPowerUps runs respawns, pickups, aura effects, and the dynamic floor.
func (r *Room) tickPowerUps(now time.Time) {
	for _, pu := range r.powerUps {
		if pu.Collected && now.After(pu.RespawnAt) {
			pu.Collected = false
			pu.CollectorID = ""
		}
	}

	for _, pu := range r.powerUps {
		if pu.Collected {
			continue
		}
		// First player found wins, deterministic by iteration order.
		for _, p := range r.playerList() {
			if p.Destroyed {
				continue
			}
			if distance(p.X, p.Y, pu.X, pu.Y) < PowerUpPickupRadius {
				r.collectPowerUp(pu, p, now)
				break
			}
		}
	}

	r.applyMagnets()
	r.applyRepels()
	r.topUpPowerUps()
}

// collectPowerUp claims the item and decodes it into either a timed effect
// or an instant one.
func (r *Room) collectPowerUp(pu *PowerUp, p *Player, now time.Time) {
	pu.Collected = true
	pu.CollectorID = p.ID
	pu.CollectedAt = now
	pu.RespawnAt = now.Add(PowerUpRespawnDelay)

	switch pu.Type {
	case PowerUpSpeed:
		p.addEffect(SpeedBoost{Multiplier: SpeedBoostFactor}, SpeedBoostDuration, now)
	case PowerUpShield:
		p.addEffect(Shield{}, ShieldDuration, now)
	case PowerUpMagnet:
		p.addEffect(Magnet{Radius: MagnetRadius}, MagnetDuration, now)
	case PowerUpRepel:
		p.addEffect(Repel{Radius: RepelRadius, Strength: RepelStrength}, RepelDuration, now)
	case PowerUpInvisible:
		p.addEffect(Invisible{}, InvisibleDuration, now)
	case PowerUpDoublePoints:
		p.addEffect(DoublePoints{}, DoublePointsTime, now)
	case PowerUpHeal:
		p.repair(HealAmount)
	case PowerUpTeleport:
		r.teleportPlayer(p)
	}
	r.pushEvent(p.ID, "grabbed "+string(pu.Type), 0, now)
}

// teleportPlayer relocates the player to a vetted random candidate spot.
func (r *Room) teleportPlayer(p *Player) {
	order := r.rng.Perm(len(r.spawnPool))
	for _, idx := range order {
		c := r.spawnPool[idx]
		if r.powerUpSpotClear(c[0], c[1]) {
			p.X = c[0]
			p.Y = c[1]
			p.Speed = 0
			return
		}
	}
}

// applyMagnets drags nearby waiting cargo toward magnet holders by a
// fractional step each tick. Never pulls to a player already carrying.
func (r *Room) applyMagnets() {
	for _, p := range r.players {
		m, ok := p.magnet()
		if !ok || p.Destroyed || p.CarryingID != "" {
			continue
		}
		for _, d := range r.deliveries {
			if d.State != DeliveryWaiting {
				continue
			}
			if distance(p.X, p.Y, d.X, d.Y) > m.Radius {
				continue
			}
			d.X += (p.X - d.X) * MagnetPullFraction
			d.Y += (p.Y - d.Y) * MagnetPullFraction
		}
	}
}

// applyRepels pushes other live players out of a repel holder's radius,
// inversely proportional to distance.
func (r *Room) applyRepels() {
	for _, holder := range r.players {
		rep, ok := holder.repel()
		if !ok || holder.Destroyed {
			continue
		}
		for _, other := range r.players {
			if other == holder || other.Destroyed {
				continue
			}
			dx := other.X - holder.X
			dy := other.Y - holder.Y
			dist := math.Hypot(dx, dy)
			if dist == 0 || dist > rep.Radius {
				continue
			}
			push := rep.Strength / dist * MinTickInterval.Seconds()
			other.X = clamp(other.X+dx/dist*push, 0, WorldWidth)
			other.Y = clamp(other.Y+dy/dist*push, 0, WorldHeight)
		}
	}
}

// topUpPowerUps keeps the number of uncollected items above a floor that
// scales with how much cargo is currently carried.
func (r *Room) topUpPowerUps() {
	carried := 0
	for _, d := range r.deliveries {
		if d.State == DeliveryCarried {
			carried++
		}
	}
	floor := 2 + carried*2
	if floor > MaxPowerUps {
		floor = MaxPowerUps
	}

	available := 0
	for _, pu := range r.powerUps {
		if !pu.Collected {
			available++
		}
	}
	if available >= floor || len(r.powerUps) >= MaxPowerUps*2 {
		return
	}

	order := r.rng.Perm(len(r.spawnPool))
	for _, idx := range order {
		if available >= floor {
			return
		}
		c := r.spawnPool[idx]
		if !r.powerUpSpotClear(c[0], c[1]) {
			continue
		}
		r.powerUps = append(r.powerUps, &PowerUp{
			ID:   fmt.Sprintf("pu-%d", r.nextPowerUpID()),
			Type: powerUpTypes[r.rng.Intn(len(powerUpTypes))],
			X:    c[0],
			Y:    c[1],
		})
		available++
	}
}
