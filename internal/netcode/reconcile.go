package netcode

import (
	"time"

	"wreckers/internal/game"
)

// ServerAck is the authoritative view of the local player from one sync
// response: the state the server computed and the last input sequence it
// actually processed.
type ServerAck struct {
	State     game.VehicleState
	LastSeq   uint32
	Perf      float64
	SpeedMult float64
	At        time.Time
}

// Reconcile discards acknowledged inputs, replays the remainder on top of
// the authoritative state in fixed substeps, and either applies the result
// directly (divergence under epsilon) or blends the correction in over a
// short duration so there is no visible pop.
func (p *Predictor) Reconcile(ack ServerAck, now time.Time) {
	if ack.Perf > 0 {
		p.perf = ack.Perf
	}
	if ack.SpeedMult > 0 {
		p.speedMult = ack.SpeedMult
	}

	// Drop everything the server has already seen.
	kept := p.pending[:0]
	for _, in := range p.pending {
		if in.Seq > ack.LastSeq {
			kept = append(kept, in)
		}
	}
	p.pending = kept

	replayed := p.replayPending(ack.State, now)

	divergence := dist2D(p.state, replayed)
	previous := p.Rendered(now)
	p.state = replayed

	if divergence <= p.cfg.SnapEpsilon {
		p.correction.active = false
		return
	}

	// Preserve the currently rendered position and ease it toward the
	// replayed truth. A newer divergence replaces the old blend wholesale.
	p.correction = correction{
		offsetX:   previous.X - replayed.X,
		offsetY:   previous.Y - replayed.Y,
		startedAt: now,
		duration:  p.cfg.CorrectionDuration,
		active:    true,
	}
}

// replayPending re-integrates the unacknowledged inputs in order using the
// same fixed substeps as the server tick, which keeps integration drift
// between prediction and replay negligible.
func (p *Predictor) replayPending(from game.VehicleState, now time.Time) game.VehicleState {
	state := from
	sub := p.cfg.SubstepInterval.Seconds()
	if sub <= 0 {
		sub = game.MinTickInterval.Seconds()
	}

	for i, in := range p.pending {
		end := now
		if i+1 < len(p.pending) {
			end = p.pending[i+1].At
		}
		span := end.Sub(in.At).Seconds()
		for span > 0 {
			dt := sub
			if span < dt {
				dt = span
			}
			state = game.StepVehicle(state, in.Input, p.perf, p.speedMult, dt)
			span -= dt
		}
	}
	return state
}
