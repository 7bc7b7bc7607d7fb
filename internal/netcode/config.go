// Package netcode is the client half of the protocol: local prediction of
// the player's own vehicle, reconciliation against authoritative snapshots,
// and the delayed interpolation buffer for everyone else. It runs inside a
// per-frame render loop and never blocks.
package netcode

import "time"

// Config holds the tunables. They are calibration knobs, not correctness
// requirements: every algorithm works with any positive values.
type Config struct {
	// SubstepInterval is the fixed replay substep. Kept equal to the
	// server's tick gate so replayed inputs integrate the way the server
	// integrated them.
	SubstepInterval time.Duration

	// SnapEpsilon is the divergence below which a reconciled state is
	// applied without any visible correction.
	SnapEpsilon float64
	// CorrectionDuration is how long a super-epsilon reconciliation
	// correction is blended in.
	CorrectionDuration time.Duration

	// InterpolationDelay is the deliberate render lag for remote entities.
	InterpolationDelay time.Duration
	// MaxExtrapolation caps forward extrapolation past the newest snapshot.
	MaxExtrapolation time.Duration
	// TeleportThreshold snaps the rendered position instantly; it means the
	// entity legitimately jumped (e.g. a teleport pickup).
	TeleportThreshold float64
	// CorrectionThreshold starts a speed-capped blend instead of smoothing.
	CorrectionThreshold float64
	// CorrectionMaxSpeed caps per-second rendered movement during a blend.
	CorrectionMaxSpeed float64
	// SmoothingRate is the exponential smoothing constant for small errors.
	SmoothingRate float64
}

// DefaultConfig matches the server's pacing constants.
func DefaultConfig() Config {
	return Config{
		SubstepInterval:     15 * time.Millisecond,
		SnapEpsilon:         0.5,
		CorrectionDuration:  250 * time.Millisecond,
		InterpolationDelay:  120 * time.Millisecond,
		MaxExtrapolation:    200 * time.Millisecond,
		TeleportThreshold:   150.0,
		CorrectionThreshold: 25.0,
		CorrectionMaxSpeed:  400.0,
		SmoothingRate:       12.0,
	}
}
