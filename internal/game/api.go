package game

import (
	"sort"
	"time"
)

// SyncRequest is one state-sync call: the client's latest input sample plus
// optional coordination data. Validation happens at the transport boundary;
// by the time a request reaches the room it is well-formed.
type SyncRequest struct {
	PlayerID  string      `json:"playerId"`
	Name      string      `json:"name"`
	Steer     float64     `json:"steer"`
	Throttle  float64     `json:"throttle"`
	Seq       uint32      `json:"seq"`
	Token     string      `json:"token,omitempty"`
	LastKnown *[2]float64 `json:"lastKnown,omitempty"`
}

// PlayerSnapshot is one player's networked state. Hidden entries have their
// kinematic fields zeroed.
type PlayerSnapshot struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	X            float64          `json:"x"`
	Y            float64          `json:"y"`
	Z            float64          `json:"z"`
	Heading      float64          `json:"heading"`
	Speed        float64          `json:"speed"`
	VSpeed       float64          `json:"vSpeed"`
	Color        string           `json:"color"`
	Damage       float64          `json:"damage"`
	Destroyed    bool             `json:"destroyed"`
	MissingParts []string         `json:"missingParts,omitempty"`
	Score        int              `json:"score"`
	Ready        bool             `json:"ready"`
	CarryingID   string           `json:"carryingId,omitempty"`
	Effects      []EffectSnapshot `json:"effects,omitempty"`
	Hidden       bool             `json:"hidden,omitempty"`
	LastSeq      uint32           `json:"lastSeq"`
}

// EffectSnapshot is a timed effect as seen on the wire.
type EffectSnapshot struct {
	Kind      EffectKind `json:"kind"`
	ExpiresAt int64      `json:"expiresAt"`
}

// DestructibleSnapshot mirrors a destructible for clients.
type DestructibleSnapshot struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Radius    float64  `json:"radius"`
	Health    float64  `json:"health"`
	MaxHealth float64  `json:"maxHealth"`
	Destroyed bool     `json:"destroyed"`
	Debris    []Debris `json:"debris,omitempty"`
}

// DeliverySnapshot mirrors a cargo objective for clients.
type DeliverySnapshot struct {
	ID           string        `json:"id"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	TargetX      float64       `json:"targetX"`
	TargetY      float64       `json:"targetY"`
	TargetRadius float64       `json:"targetRadius"`
	State        DeliveryState `json:"state"`
	CarrierID    string        `json:"carrierId,omitempty"`
}

// PowerUpSnapshot mirrors a collectible for clients.
type PowerUpSnapshot struct {
	ID        string      `json:"id"`
	Type      PowerUpType `json:"type"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Collected bool        `json:"collected"`
}

// MatchTimer is the race clock block in every sync response.
type MatchTimer struct {
	StartedAt       int64 `json:"startedAt"`
	EndsAt          int64 `json:"endsAt"`
	DurationMs      int64 `json:"durationMs"`
	TimeRemainingMs int64 `json:"timeRemainingMs"`
}

// SyncResponse is the full room snapshot returned from a state-sync call.
type SyncResponse struct {
	Players       []PlayerSnapshot       `json:"players"`
	Destructibles []DestructibleSnapshot `json:"destructibles"`
	Deliveries    []DeliverySnapshot     `json:"deliveries"`
	PowerUps      []PowerUpSnapshot      `json:"powerUps"`
	Events        []MatchEvent           `json:"events"`
	Timer         MatchTimer             `json:"timer"`
	Leaderboard   []ScoreEntry           `json:"leaderboard"`
	Phase         Phase                  `json:"phase"`
	InstanceID    string                 `json:"instanceId"`
	Token         string                 `json:"token,omitempty"`
	Ack           uint32                 `json:"ack"`
}

// Sync applies one input sample, advances the simulation if the tick gate
// allows, and returns the full room snapshot.
func (r *Room) Sync(req SyncRequest) SyncResponse {
	r.AdoptToken(req.Token)

	r.mu.Lock()
	now := r.now()
	p := r.upsertPlayerLocked(req.PlayerID, req.Name, req.Steer, req.Throttle, req.Seq, req.LastKnown, now)
	r.maybeScheduleStartLocked()
	r.advanceLocked(now)
	resp := r.snapshotLocked(p.ID, p.LastSeq, now)
	r.mu.Unlock()
	return resp
}

// LobbyRequest updates readiness and appearance.
type LobbyRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Ready    bool   `json:"ready"`
	Color    string `json:"color,omitempty"`
}

// LobbyResponse is the roster plus the current phase.
type LobbyResponse struct {
	Players []PlayerSnapshot `json:"players"`
	Phase   Phase            `json:"phase"`
}

// Lobby registers the player if needed, applies ready/color, and returns the
// roster. Readiness is re-evaluated on every call.
func (r *Room) Lobby(req LobbyRequest) LobbyResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	p := r.upsertPlayerLocked(req.PlayerID, req.Name, 0, 0, 0, nil, now)
	p.Ready = req.Ready
	if req.Color != "" {
		p.Color = req.Color
	}
	r.maybeScheduleStartLocked()

	resp := LobbyResponse{Phase: r.phase}
	for _, pl := range r.playerList() {
		resp.Players = append(resp.Players, r.playerSnapshot(pl, pl.ID))
	}
	sortPlayers(resp.Players)
	return resp
}

// Snapshot returns the room state as seen by an outside observer (no
// redaction exemption, no ack). Used by the spectator feed.
func (r *Room) Snapshot() SyncResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked("", 0, r.now())
}

func (r *Room) snapshotLocked(viewerID string, ack uint32, now time.Time) SyncResponse {
	resp := SyncResponse{
		Phase:      r.phase,
		InstanceID: r.instanceID,
		Token:      r.matchToken,
		Ack:        ack,
		Events:     append([]MatchEvent(nil), r.events...),
	}

	if r.phase == PhaseRacing || r.phase == PhaseFinished {
		remaining := r.raceEndsAt.Sub(now).Milliseconds()
		if remaining < 0 {
			remaining = 0
		}
		resp.Timer = MatchTimer{
			StartedAt:       r.raceStartedAt.UnixMilli(),
			EndsAt:          r.raceEndsAt.UnixMilli(),
			DurationMs:      r.matchDuration.Milliseconds(),
			TimeRemainingMs: remaining,
		}
	}

	for _, p := range r.playerList() {
		resp.Players = append(resp.Players, r.playerSnapshot(p, viewerID))
	}
	sortPlayers(resp.Players)

	for _, d := range r.destructibles {
		resp.Destructibles = append(resp.Destructibles, DestructibleSnapshot{
			ID: d.ID, Type: d.Type, X: d.X, Y: d.Y, Radius: d.Radius,
			Health: d.Health, MaxHealth: d.MaxHealth, Destroyed: d.Destroyed,
			Debris: append([]Debris(nil), d.Debris...),
		})
	}
	for _, d := range r.deliveries {
		resp.Deliveries = append(resp.Deliveries, DeliverySnapshot{
			ID: d.ID, X: d.X, Y: d.Y,
			TargetX: d.TargetX, TargetY: d.TargetY, TargetRadius: d.TargetRadius,
			State: d.State, CarrierID: d.CarrierID,
		})
	}
	for _, pu := range r.powerUps {
		resp.PowerUps = append(resp.PowerUps, PowerUpSnapshot{
			ID: pu.ID, Type: pu.Type, X: pu.X, Y: pu.Y, Collected: pu.Collected,
		})
	}

	if r.phase == PhaseFinished {
		resp.Leaderboard = append([]ScoreEntry(nil), r.finalBoard...)
	} else {
		board := make([]ScoreEntry, 0, len(resp.Players))
		for _, p := range r.playerList() {
			board = append(board, ScoreEntry{ID: p.ID, Name: p.Name, Score: p.Score})
		}
		sort.Slice(board, func(i, j int) bool { return board[i].Score > board[j].Score })
		resp.Leaderboard = board
	}
	return resp
}

// playerSnapshot redacts players with an active invisibility effect from
// everyone except themselves.
func (r *Room) playerSnapshot(p *Player, viewerID string) PlayerSnapshot {
	snap := PlayerSnapshot{
		ID:           p.ID,
		Name:         p.Name,
		Color:        p.Color,
		Damage:       p.Damage,
		Destroyed:    p.Destroyed,
		MissingParts: append([]string(nil), p.MissingParts...),
		Score:        p.Score,
		Ready:        p.Ready,
		CarryingID:   p.CarryingID,
		LastSeq:      p.LastSeq,
	}
	for _, e := range p.Effects {
		snap.Effects = append(snap.Effects, EffectSnapshot{Kind: e.Effect.Kind(), ExpiresAt: e.ExpiresAt.UnixMilli()})
	}
	if p.ID != viewerID && p.HasEffect(EffectInvisible) {
		snap.Hidden = true
		return snap
	}
	snap.X = p.X
	snap.Y = p.Y
	snap.Z = p.Z
	snap.Heading = p.Heading
	snap.Speed = p.Speed
	snap.VSpeed = p.VSpeed
	return snap
}

func sortPlayers(list []PlayerSnapshot) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
