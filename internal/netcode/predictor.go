package netcode

import (
	"math"
	"time"

	"wreckers/internal/game"
)

// PendingInput is one sequence-tagged control sample queued until the server
// acknowledges it.
type PendingInput struct {
	Seq   uint32
	Input game.VehicleInput
	At    time.Time
}

// Predictor speculatively advances the local player's state so input feels
// instantaneous, then reconciles against server truth as acks arrive.
type Predictor struct {
	cfg Config

	state     game.VehicleState
	perf      float64
	speedMult float64

	pending []PendingInput
	nextSeq uint32

	correction correction
}

// correction is an in-flight visual blend from a superseded prediction to a
// reconciled state. Replaced wholesale when a new divergence is detected.
type correction struct {
	offsetX   float64
	offsetY   float64
	startedAt time.Time
	duration  time.Duration
	active    bool
}

func NewPredictor(cfg Config, start game.VehicleState) *Predictor {
	return &Predictor{cfg: cfg, state: start, perf: 1, speedMult: 1}
}

// SampleInput tags the sample with the next sequence number and queues it.
// The returned value is what goes on the wire.
func (p *Predictor) SampleInput(in game.VehicleInput, now time.Time) PendingInput {
	p.nextSeq++
	sample := PendingInput{Seq: p.nextSeq, Input: in, At: now}
	p.pending = append(p.pending, sample)
	return sample
}

// Step advances the predicted state by dt using the same integrator and
// constants as the server tick.
func (p *Predictor) Step(in game.VehicleInput, dt float64) {
	p.state = game.StepVehicle(p.state, in, p.perf, p.speedMult, dt)
}

// State is the raw predicted state, before any correction blending.
func (p *Predictor) State() game.VehicleState {
	return p.state
}

// Rendered is the state to draw: prediction plus whatever remains of an
// active correction, eased out over its duration.
func (p *Predictor) Rendered(now time.Time) game.VehicleState {
	s := p.state
	if !p.correction.active {
		return s
	}
	u := now.Sub(p.correction.startedAt).Seconds() / p.correction.duration.Seconds()
	if u >= 1 {
		p.correction.active = false
		return s
	}
	if u < 0 {
		u = 0
	}
	remain := 1 - easeOutCubic(u)
	s.X += p.correction.offsetX * remain
	s.Y += p.correction.offsetY * remain
	return s
}

// Pending returns the unacknowledged queue, oldest first.
func (p *Predictor) Pending() []PendingInput {
	return p.pending
}

func easeOutCubic(u float64) float64 {
	inv := 1 - u
	return 1 - inv*inv*inv
}

func dist2D(a, b game.VehicleState) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
