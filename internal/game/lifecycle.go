package game

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Phase is the match lifecycle state.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseRacing   Phase = "racing"
	PhaseFinished Phase = "finished"
)

// claimKey is the shared coordination key all instances race on.
const claimKey = "wreckers:match-start"

// maybeScheduleStartLocked arms the race start once every present player is
// ready, and disarms it if someone backs out during the countdown.
func (r *Room) maybeScheduleStartLocked() {
	if r.phase != PhaseLobby || len(r.players) == 0 {
		return
	}
	for _, p := range r.players {
		if !p.Ready {
			r.sched.cancel(taskStartRace)
			return
		}
	}
	r.sched.arm(taskStartRace, RaceStartDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.phase != PhaseLobby || len(r.players) == 0 {
			return
		}
		for _, p := range r.players {
			if !p.Ready {
				return
			}
		}
		r.startRaceLocked(r.now())
	})
}

// startRaceLocked begins a race this instance owns. With a coordinator
// configured it first takes the distributed claim; losing the claim (or a
// store error, which fails closed) leaves the room in the lobby waiting to
// adopt the owner's token from a client request.
func (r *Room) startRaceLocked(now time.Time) {
	if r.claimer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		claimed, err := r.claimer.Claim(ctx, claimKey, r.instanceID, r.matchDuration+LobbyResetDelay)
		cancel()
		if err != nil {
			slog.Warn("match claim failed closed, not starting", "err", err)
			return
		}
		if !claimed {
			slog.Info("match claimed elsewhere, waiting to adopt")
			return
		}
	}

	minted := ""
	if r.signer != nil {
		var err error
		minted, err = r.signer.Mint(now, r.matchDuration)
		if err != nil {
			slog.Error("minting match token", "err", err)
		}
	}
	r.beginRaceLocked(now, now.Add(r.matchDuration), minted)
}

// beginRaceLocked applies race timing and resets all transient state. Used
// both for locally-started and adopted races.
func (r *Room) beginRaceLocked(startedAt, endsAt time.Time, tok string) {
	r.phase = PhaseRacing
	r.raceStartedAt = startedAt
	r.raceEndsAt = endsAt
	r.matchToken = tok
	r.finalBoard = nil

	r.resetWorldLocked()
	for _, p := range r.players {
		x, y := r.findSpawnPosition()
		p.resetForRace(x, y)
	}
	r.pushEvent("", "race started", 0, startedAt)

	// The server-side finalize runs even if no client polls again.
	r.sched.cancel(taskReset)
	r.sched.arm(taskFinalize, endsAt.Sub(r.now())+FinalizeSlack, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.phase == PhaseRacing && !r.now().Before(r.raceEndsAt) {
			r.finishRaceLocked(r.now())
		}
	})
	r.armPeriodicRepairLocked()
	slog.Info("race started", "endsAt", endsAt, "instance", r.instanceID)
}

// armPeriodicRepairLocked schedules the passive repair tick. The task re-arms
// itself while the race is live; a stale firing against a room that has since
// left the racing phase does nothing and lets the chain lapse.
func (r *Room) armPeriodicRepairLocked() {
	r.sched.arm(taskPeriodicRepair, PeriodicRepairInterval, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.phase != PhaseRacing {
			return
		}
		r.applyPeriodicRepairLocked()
		r.armPeriodicRepairLocked()
	})
}

// applyPeriodicRepairLocked sheds a little damage from every live player.
// Wrecks stay wrecked until an explicit repair.
func (r *Room) applyPeriodicRepairLocked() {
	for _, p := range r.players {
		if p.Destroyed || p.Damage == 0 {
			continue
		}
		p.repair(PeriodicRepairAmount)
	}
}

// AdoptToken accepts a match token carried on a client request. Malformed or
// forged tokens are ignored. Timing is only overwritten when the adopted end
// time is later than the local one, so a late adopter can never shorten an
// in-progress match.
func (r *Room) AdoptToken(tok string) {
	if tok == "" || r.signer == nil {
		return
	}
	mt, err := r.signer.Verify(tok)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	endsAt := mt.EndsAt()
	now := r.now()
	if !endsAt.After(r.raceEndsAt) || !endsAt.After(now) {
		return
	}
	if r.phase == PhaseRacing {
		r.raceStartedAt = mt.StartedAt()
		r.raceEndsAt = endsAt
		r.matchToken = tok
		r.sched.arm(taskFinalize, endsAt.Sub(now)+FinalizeSlack, func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.phase == PhaseRacing && !r.now().Before(r.raceEndsAt) {
				r.finishRaceLocked(r.now())
			}
		})
		return
	}
	r.beginRaceLocked(mt.StartedAt(), endsAt, tok)
}

// checkLifecycle evaluates end and reset conditions once per tick. The
// scheduler covers the no-polling case; this covers everything else.
func (r *Room) checkLifecycle(now time.Time) {
	switch r.phase {
	case PhaseRacing:
		if !now.Before(r.raceEndsAt) {
			r.finishRaceLocked(now)
			return
		}
		if len(r.players) == 0 {
			return
		}
		for _, p := range r.players {
			if !p.Destroyed {
				return
			}
		}
		// Everyone wrecked at once ends the race early.
		r.finishRaceLocked(now)

	case PhaseFinished:
		if !now.Before(r.resetAt) {
			r.resetToLobbyLocked()
		}
	}
}

// finishRaceLocked snapshots the sorted leaderboard, pushes it to the score
// store, clears transient debris, and schedules the lobby reset.
func (r *Room) finishRaceLocked(now time.Time) {
	r.phase = PhaseFinished
	r.sched.cancel(taskFinalize)
	r.sched.cancel(taskPeriodicRepair)

	board := make([]ScoreEntry, 0, len(r.players))
	for _, p := range r.players {
		board = append(board, ScoreEntry{ID: p.ID, Name: p.Name, Score: p.Score})
	}
	sort.Slice(board, func(i, j int) bool { return board[i].Score > board[j].Score })
	r.finalBoard = board

	if r.scores != nil && len(board) > 0 {
		if err := r.scores.Merge(board); err != nil {
			slog.Warn("merging final scores", "err", err)
		}
	}

	for _, d := range r.destructibles {
		d.Debris = nil
	}

	r.resetAt = now.Add(LobbyResetDelay)
	r.sched.arm(taskReset, LobbyResetDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.phase == PhaseFinished && !r.now().Before(r.resetAt) {
			r.resetToLobbyLocked()
		}
	})
	r.pushEvent("", "race finished", 0, now)
	slog.Info("race finished", "players", len(board))
}

// resetToLobbyLocked reinitializes the world and clears per-race player
// state. The lobby must explicitly re-ready to start again.
func (r *Room) resetToLobbyLocked() {
	r.phase = PhaseLobby
	r.matchToken = ""
	r.raceStartedAt = time.Time{}
	r.raceEndsAt = time.Time{}
	r.resetAt = time.Time{}
	r.sched.cancel(taskFinalize)
	r.sched.cancel(taskReset)
	r.sched.cancel(taskPeriodicRepair)

	r.resetWorldLocked()
	for _, p := range r.players {
		x, y := r.findSpawnPosition()
		p.resetForRace(x, y)
		p.Ready = false
	}
	slog.Info("room reset to lobby")
}
