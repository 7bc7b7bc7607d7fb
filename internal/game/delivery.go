package game

import (
	"math"
	"time"
)

// DeliveryState is the objective state machine: waiting -> carried ->
// cooldown -> waiting.
type DeliveryState string

const (
	DeliveryWaiting  DeliveryState = "waiting"
	DeliveryCarried  DeliveryState = "carried"
	DeliveryCooldown DeliveryState = "cooldown"
)

// Delivery is one cargo objective.
type Delivery struct {
	ID           string
	SpawnX       float64
	SpawnY       float64
	X            float64
	Y            float64
	TargetX      float64
	TargetY      float64
	TargetRadius float64
	State        DeliveryState
	CarrierID    string // at most one carrier
	PrevCarrier  string // steal attribution
	RespawnAt    time.Time
}

// dropTargets are the fixed candidate drop zones; a pickup binds to one of
// them, avoiding targets already assigned to in-flight cargo when possible.
var dropTargets = [][2]float64{
	{WorldWidth * 0.12, WorldHeight * 0.12},
	{WorldWidth * 0.88, WorldHeight * 0.12},
	{WorldWidth * 0.12, WorldHeight * 0.88},
	{WorldWidth * 0.88, WorldHeight * 0.88},
	{WorldWidth * 0.5, WorldHeight * 0.08},
}

func defaultDeliveries() []*Delivery {
	spawns := [][2]float64{
		{WorldWidth * 0.3, WorldHeight * 0.5},
		{WorldWidth * 0.7, WorldHeight * 0.5},
		{WorldWidth * 0.5, WorldHeight * 0.75},
	}
	out := make([]*Delivery, 0, len(spawns))
	for i, s := range spawns {
		out = append(out, &Delivery{
			ID:     "cargo-" + string(rune('a'+i)),
			SpawnX: s[0],
			SpawnY: s[1],
			X:      s[0],
			Y:      s[1],
			State:  DeliveryWaiting,
		})
	}
	return out
}

// tickDeliveries advances every cargo item one tick: cooldown expiry,
// carrier tracking, free pickup, and completed drops.
func (r *Room) tickDeliveries(now time.Time) {
	for _, d := range r.deliveries {
		switch d.State {
		case DeliveryCooldown:
			if now.After(d.RespawnAt) {
				d.State = DeliveryWaiting
				d.PrevCarrier = ""
			}

		case DeliveryCarried:
			carrier, ok := r.players[d.CarrierID]
			if !ok || carrier.Destroyed {
				r.releaseDelivery(d)
				continue
			}
			d.X = carrier.X
			d.Y = carrier.Y
			if distance(d.X, d.Y, d.TargetX, d.TargetY) < d.TargetRadius {
				r.completeDelivery(d, carrier, now)
			}

		case DeliveryWaiting:
			// First player found wins, deterministic by iteration order.
			for _, p := range r.playerList() {
				if p.Destroyed || p.CarryingID != "" {
					continue
				}
				if distance(p.X, p.Y, d.X, d.Y) < DeliveryPickupRadius {
					r.pickupDelivery(d, p, now)
					break
				}
			}
		}
	}
}

// pickupDelivery binds waiting cargo to a carrier. Taking cargo the previous
// carrier just lost counts as a steal and pays the bigger bonus.
func (r *Room) pickupDelivery(d *Delivery, p *Player, now time.Time) {
	d.State = DeliveryCarried
	d.CarrierID = p.ID
	p.CarryingID = d.ID
	r.assignDropTarget(d)

	if d.PrevCarrier != "" && d.PrevCarrier != p.ID {
		r.addScore(p, StealBonus, "stole cargo", now)
	} else {
		r.addScore(p, PickupBonus, "picked up cargo", now)
	}
}

// assignDropTarget picks a drop zone, preferring one no other in-flight
// cargo is already bound to.
func (r *Room) assignDropTarget(d *Delivery) {
	inUse := make(map[[2]float64]bool)
	for _, other := range r.deliveries {
		if other != d && other.State == DeliveryCarried {
			inUse[[2]float64{other.TargetX, other.TargetY}] = true
		}
	}
	order := r.rng.Perm(len(dropTargets))
	chosen := dropTargets[order[0]]
	for _, idx := range order {
		if !inUse[dropTargets[idx]] {
			chosen = dropTargets[idx]
			break
		}
	}
	d.TargetX = chosen[0]
	d.TargetY = chosen[1]
	d.TargetRadius = DeliveryTargetRadius
}

// completeDelivery awards the drop bonus and schedules the cooldown respawn
// at a fresh offset near spawn.
func (r *Room) completeDelivery(d *Delivery, carrier *Player, now time.Time) {
	r.addScore(carrier, DeliverBonus, "delivered cargo", now)
	carrier.CarryingID = ""
	d.CarrierID = ""
	d.PrevCarrier = ""
	d.State = DeliveryCooldown
	d.RespawnAt = now.Add(DeliveryCooldownTime)
	d.X, d.Y = r.jitterNearSpawn(d)
}

// releaseDelivery drops cargo at the carrier's last position when the
// carrier disconnects or is destroyed, then re-randomizes it near spawn.
func (r *Room) releaseDelivery(d *Delivery) {
	if carrier, ok := r.players[d.CarrierID]; ok {
		carrier.CarryingID = ""
	}
	d.PrevCarrier = d.CarrierID
	d.CarrierID = ""
	d.State = DeliveryWaiting
	d.X, d.Y = r.jitterNearSpawn(d)
}

// resolveCargoSteal transfers cargo between two colliding players. A shield
// on either side blocks the exchange.
func (r *Room) resolveCargoSteal(a, b *Player, now time.Time) {
	if a.HasEffect(EffectShield) || b.HasEffect(EffectShield) {
		return
	}
	var carrier, thief *Player
	switch {
	case a.CarryingID != "" && b.CarryingID == "":
		carrier, thief = a, b
	case b.CarryingID != "" && a.CarryingID == "":
		carrier, thief = b, a
	default:
		return
	}

	for _, d := range r.deliveries {
		if d.ID != carrier.CarryingID {
			continue
		}
		carrier.CarryingID = ""
		d.PrevCarrier = carrier.ID
		d.CarrierID = thief.ID
		thief.CarryingID = d.ID
		r.addScore(thief, StealBonus, "rammed and stole cargo", now)
		return
	}
}

func (r *Room) jitterNearSpawn(d *Delivery) (float64, float64) {
	x := d.SpawnX + (r.rng.Float64()*2-1)*DeliveryRespawnJitter
	y := d.SpawnY + (r.rng.Float64()*2-1)*DeliveryRespawnJitter
	return clamp(x, 0, WorldWidth), clamp(y, 0, WorldHeight)
}

func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
