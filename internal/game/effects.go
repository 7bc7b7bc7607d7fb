package game

import "time"

// EffectKind identifies a power-up effect.
type EffectKind string

const (
	EffectSpeedBoost   EffectKind = "speed_boost"
	EffectShield       EffectKind = "shield"
	EffectMagnet       EffectKind = "magnet"
	EffectRepel        EffectKind = "repel"
	EffectInvisible    EffectKind = "invisible"
	EffectDoublePoints EffectKind = "double_points"
	EffectHeal         EffectKind = "heal"
	EffectTeleport     EffectKind = "teleport"
)

// Effect is the decoded form of a collected power-up. Each variant carries
// only the fields its semantics need; decoding happens once at collection
// time, never while the effect is read back during a tick.
type Effect interface {
	Kind() EffectKind
}

// SpeedBoost multiplies acceleration and top speed while active.
type SpeedBoost struct {
	Multiplier float64
}

// Shield blocks collision damage and cargo steals while active.
type Shield struct{}

// Magnet drags nearby waiting cargo toward its holder.
type Magnet struct {
	Radius float64
}

// Repel pushes other vehicles away from its holder.
type Repel struct {
	Radius   float64
	Strength float64
}

// Invisible hides the holder from other players' state responses.
type Invisible struct{}

// DoublePoints doubles every score award while active.
type DoublePoints struct{}

func (SpeedBoost) Kind() EffectKind   { return EffectSpeedBoost }
func (Shield) Kind() EffectKind       { return EffectShield }
func (Magnet) Kind() EffectKind       { return EffectMagnet }
func (Repel) Kind() EffectKind        { return EffectRepel }
func (Invisible) Kind() EffectKind    { return EffectInvisible }
func (DoublePoints) Kind() EffectKind { return EffectDoublePoints }

// ActiveEffect is a timed effect currently attached to a player.
type ActiveEffect struct {
	Effect    Effect
	ExpiresAt time.Time
}

// purgeExpiredEffects drops every effect whose expiry has passed. Runs once
// per tick before any system reads the list.
func (p *Player) purgeExpiredEffects(now time.Time) {
	kept := p.Effects[:0]
	for _, e := range p.Effects {
		if e.ExpiresAt.After(now) {
			kept = append(kept, e)
		}
	}
	p.Effects = kept
}

func (p *Player) addEffect(eff Effect, duration time.Duration, now time.Time) {
	p.Effects = append(p.Effects, ActiveEffect{Effect: eff, ExpiresAt: now.Add(duration)})
}

// HasEffect reports whether any active effect has the given kind.
func (p *Player) HasEffect(kind EffectKind) bool {
	for _, e := range p.Effects {
		if e.Effect.Kind() == kind {
			return true
		}
	}
	return false
}

// speedMultiplier folds every active speed effect into one factor.
func (p *Player) speedMultiplier() float64 {
	mult := 1.0
	for _, e := range p.Effects {
		if boost, ok := e.Effect.(SpeedBoost); ok {
			mult *= boost.Multiplier
		}
	}
	return mult
}

// scoreMultiplier is 2 while double points is active, 1 otherwise.
func (p *Player) scoreMultiplier() int {
	if p.HasEffect(EffectDoublePoints) {
		return 2
	}
	return 1
}

func (p *Player) magnet() (Magnet, bool) {
	for _, e := range p.Effects {
		if m, ok := e.Effect.(Magnet); ok {
			return m, true
		}
	}
	return Magnet{}, false
}

func (p *Player) repel() (Repel, bool) {
	for _, e := range p.Effects {
		if r, ok := e.Effect.(Repel); ok {
			return r, true
		}
	}
	return Repel{}, false
}
