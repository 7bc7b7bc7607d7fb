package netcode

import (
	"math"
	"time"
)

// Snapshot is one remote entity sample, timestamped by the server.
type Snapshot struct {
	At      time.Time
	X       float64
	Y       float64
	Heading float64
	VX      float64
	VY      float64
}

// EntityBuffer renders one remote entity a fixed delay behind real time,
// trading a little latency for immunity to jitter and out-of-order arrival.
type EntityBuffer struct {
	cfg   Config
	snaps []Snapshot

	renderedX  float64
	renderedY  float64
	renderedHd float64
	primed     bool
}

func NewEntityBuffer(cfg Config) *EntityBuffer {
	return &EntityBuffer{cfg: cfg}
}

// Push inserts a snapshot in time order and prunes everything too old to
// ever be sampled again.
func (b *EntityBuffer) Push(s Snapshot) {
	idx := len(b.snaps)
	for idx > 0 && b.snaps[idx-1].At.After(s.At) {
		idx--
	}
	b.snaps = append(b.snaps, Snapshot{})
	copy(b.snaps[idx+1:], b.snaps[idx:])
	b.snaps[idx] = s

	horizon := b.cfg.InterpolationDelay + time.Second
	for len(b.snaps) > 2 && s.At.Sub(b.snaps[1].At) > horizon {
		b.snaps = b.snaps[1:]
	}
}

// Target samples the buffer at now minus the interpolation delay. Between
// snapshots it uses Hermite interpolation with each snapshot's velocity as
// the tangent; past the newest it extrapolates along last-known velocity,
// capped at MaxExtrapolation.
func (b *EntityBuffer) Target(now time.Time) (Snapshot, bool) {
	if len(b.snaps) == 0 {
		return Snapshot{}, false
	}
	at := now.Add(-b.cfg.InterpolationDelay)

	first := b.snaps[0]
	if !at.After(first.At) {
		return first, true
	}
	last := b.snaps[len(b.snaps)-1]
	if !at.Before(last.At) {
		ahead := at.Sub(last.At)
		if ahead > b.cfg.MaxExtrapolation {
			ahead = b.cfg.MaxExtrapolation
		}
		dt := ahead.Seconds()
		out := last
		out.At = last.At.Add(ahead)
		out.X += last.VX * dt
		out.Y += last.VY * dt
		return out, true
	}

	// Find the bracketing pair.
	hi := 1
	for hi < len(b.snaps) && b.snaps[hi].At.Before(at) {
		hi++
	}
	s0 := b.snaps[hi-1]
	s1 := b.snaps[hi]
	span := s1.At.Sub(s0.At).Seconds()
	if span <= 0 {
		return s1, true
	}
	t := at.Sub(s0.At).Seconds() / span

	out := Snapshot{At: at}
	out.X = hermite(s0.X, s0.VX*span, s1.X, s1.VX*span, t)
	out.Y = hermite(s0.Y, s0.VY*span, s1.Y, s1.VY*span, t)
	out.Heading = lerpAngle(s0.Heading, s1.Heading, t)
	out.VX = s0.VX + (s1.VX-s0.VX)*t
	out.VY = s0.VY + (s1.VY-s0.VY)*t
	return out, true
}

// Render moves the drawn position toward the buffered target and returns
// it. Three tiers: teleport-sized discrepancies snap, medium ones blend with
// a per-frame speed cap, small ones decay exponentially.
func (b *EntityBuffer) Render(now time.Time, dt float64) (x, y, heading float64) {
	target, ok := b.Target(now)
	if !ok {
		return b.renderedX, b.renderedY, b.renderedHd
	}
	if !b.primed {
		b.primed = true
		b.renderedX = target.X
		b.renderedY = target.Y
		b.renderedHd = target.Heading
		return b.renderedX, b.renderedY, b.renderedHd
	}

	dx := target.X - b.renderedX
	dy := target.Y - b.renderedY
	errDist := math.Hypot(dx, dy)

	switch {
	case errDist > b.cfg.TeleportThreshold:
		// Legitimate instantaneous repositioning.
		b.renderedX = target.X
		b.renderedY = target.Y
		b.renderedHd = target.Heading

	case errDist > b.cfg.CorrectionThreshold:
		step := b.cfg.CorrectionMaxSpeed * dt
		if step >= errDist {
			b.renderedX = target.X
			b.renderedY = target.Y
		} else {
			b.renderedX += dx / errDist * step
			b.renderedY += dy / errDist * step
		}
		b.renderedHd = lerpAngle(b.renderedHd, target.Heading, clamp01(dt*b.cfg.SmoothingRate))

	default:
		blend := 1 - math.Exp(-b.cfg.SmoothingRate*dt)
		b.renderedX += dx * blend
		b.renderedY += dy * blend
		b.renderedHd = lerpAngle(b.renderedHd, target.Heading, blend)
	}
	return b.renderedX, b.renderedY, b.renderedHd
}

// hermite is the cubic Hermite basis over t in [0,1] with endpoint tangents
// already scaled by the interval.
func hermite(p0, m0, p1, m1, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return (2*t3-3*t2+1)*p0 + (t3-2*t2+t)*m0 + (-2*t3+3*t2)*p1 + (t3-t2)*m1
}

// lerpAngle blends angles along the shortest path.
func lerpAngle(a, b, t float64) float64 {
	diff := math.Mod(b-a+math.Pi, 2*math.Pi)
	if diff < 0 {
		diff += 2 * math.Pi
	}
	diff -= math.Pi
	return a + diff*t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
