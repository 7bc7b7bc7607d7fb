package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"wreckers/internal/token"
)

var ErrPlayerNotFound = errors.New("player not found")

// Claimer establishes a single authoritative match owner across process
// instances: an atomic set-if-absent with expiry. Implementations must fail
// closed (false, err) when their backing store is unreachable.
type Claimer interface {
	Claim(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
}

// ScoreEntry is one merged leaderboard row.
type ScoreEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ScoreStore receives final race scores; it keeps the highest score per id.
type ScoreStore interface {
	Merge(entries []ScoreEntry) error
}

// Options configure a Room. Zero values get sensible defaults; Signer is
// required for token minting, Claimer and Scores may be nil.
type Options struct {
	Signer        *token.Signer
	Claimer       Claimer
	Scores        ScoreStore
	InstanceID    string
	MatchDuration time.Duration
	Seed          int64
	Now           func() time.Time
}

// Room is the single authoritative match instance for one process. Requests
// run to completion synchronously under the room lock; Advance's tick gate
// means concurrent requests inside one interval share the same state.
type Room struct {
	mu sync.Mutex

	players       map[string]*Player
	destructibles []*Destructible
	deliveries    []*Delivery
	powerUps      []*PowerUp
	events        []MatchEvent
	spawnPool     [][2]float64

	phase         Phase
	raceStartedAt time.Time
	raceEndsAt    time.Time
	matchDuration time.Duration
	matchToken    string
	finalBoard    []ScoreEntry
	resetAt       time.Time

	signer     *token.Signer
	claimer    Claimer
	scores     ScoreStore
	instanceID string

	sched      *scheduler
	rng        *rand.Rand
	now        func() time.Time
	lastTick   time.Time
	powerUpSeq int
}

// NewRoom builds a room in the lobby phase with the default world laid out.
func NewRoom(opts Options) *Room {
	if opts.MatchDuration <= 0 {
		opts.MatchDuration = DefaultMatchDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == 0 {
		opts.Seed = opts.Now().UnixNano()
	}
	r := &Room{
		players:       make(map[string]*Player),
		matchDuration: opts.MatchDuration,
		signer:        opts.Signer,
		claimer:       opts.Claimer,
		scores:        opts.Scores,
		instanceID:    opts.InstanceID,
		sched:         newScheduler(),
		rng:           rand.New(rand.NewSource(opts.Seed)),
		now:           opts.Now,
		phase:         PhaseLobby,
	}
	r.lastTick = r.now()
	r.resetWorldLocked()
	return r
}

// Shutdown cancels every scheduled task. The room itself lives for the
// process lifetime and is only ever reset in place.
func (r *Room) Shutdown() {
	r.sched.stop()
}

// resetWorldLocked reinitializes every world object. Caller holds the lock
// (or is the constructor).
func (r *Room) resetWorldLocked() {
	r.destructibles = defaultDestructibles()
	r.deliveries = defaultDeliveries()
	r.events = nil
	r.placePowerUps()
}

func (r *Room) nextPowerUpID() int {
	r.powerUpSeq++
	return r.powerUpSeq
}

// upsertPlayerLocked creates a player on first contact or updates control
// inputs on an existing one. A brand-new id with a last-known position keeps
// that position: another instance may have been simulating it before this
// process cold-started.
func (r *Room) upsertPlayerLocked(id, name string, steer, throttle float64, seq uint32, lastKnown *[2]float64, now time.Time) *Player {
	p, ok := r.players[id]
	if !ok {
		p = &Player{ID: id, Color: defaultColors[len(r.players)%len(defaultColors)]}
		x, y := DefaultSpawnX, DefaultSpawnY
		if lastKnown != nil {
			x, y = lastKnown[0], lastKnown[1]
		} else {
			x, y = r.findSpawnPosition()
		}
		p.resetForRace(x, y)
		r.players[id] = p
		slog.Info("player joined", "id", id, "name", name)
	}
	if name != "" {
		p.Name = name
	}
	p.Steer = clamp(steer, -1, 1)
	p.Throttle = clamp(throttle, -1, 1)
	if seq > p.LastSeq {
		p.LastSeq = seq
	}
	p.LastInputAt = now
	return p
}

var defaultColors = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f1c40f",
	"#9b59b6", "#e67e22", "#1abc9c", "#ecf0f1",
}

// SetReady toggles lobby readiness and re-evaluates the start condition.
func (r *Room) SetReady(id string, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Ready = ready
	p.LastInputAt = r.now()
	r.maybeScheduleStartLocked()
	return nil
}

// SetColor updates the player's display color.
func (r *Room) SetColor(id, color string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	if color != "" {
		p.Color = color
	}
	return nil
}

// Repair reduces damage and clears the destroyed flag once under threshold.
func (r *Room) Repair(id string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.repair(amount)
	return nil
}

// evictIdlePlayers removes players with no input past the timeout, releasing
// any carried cargo first.
func (r *Room) evictIdlePlayers(now time.Time) {
	for id, p := range r.players {
		if now.Sub(p.LastInputAt) < IdleTimeout {
			continue
		}
		if p.CarryingID != "" {
			for _, d := range r.deliveries {
				if d.ID == p.CarryingID {
					r.releaseDelivery(d)
					break
				}
			}
		}
		delete(r.players, id)
		slog.Info("player evicted", "id", id)
	}
}

// findSpawnPosition scans a shuffled grid of candidates for the first spot
// with clearance from every obstacle, player, power-up, and drop zone, then
// falls back to bounded random sampling and finally a fixed default. Always
// terminates.
func (r *Room) findSpawnPosition() (float64, float64) {
	var grid [][2]float64
	for x := SpawnGridStep; x < WorldWidth; x += SpawnGridStep {
		for y := SpawnGridStep; y < WorldHeight; y += SpawnGridStep {
			grid = append(grid, [2]float64{x, y})
		}
	}
	r.rng.Shuffle(len(grid), func(i, j int) { grid[i], grid[j] = grid[j], grid[i] })

	for _, c := range grid {
		if r.spawnSpotClear(c[0], c[1]) {
			return c[0], c[1]
		}
	}
	for i := 0; i < SpawnRandomRetries; i++ {
		x := r.rng.Float64() * WorldWidth
		y := r.rng.Float64() * WorldHeight
		if r.spawnSpotClear(x, y) {
			return x, y
		}
	}
	return DefaultSpawnX, DefaultSpawnY
}

func (r *Room) spawnSpotClear(x, y float64) bool {
	for _, d := range r.destructibles {
		if distance(x, y, d.X, d.Y) < d.Radius+SpawnClearance {
			return false
		}
	}
	for _, p := range r.players {
		if distance(x, y, p.X, p.Y) < SpawnClearance {
			return false
		}
	}
	for _, pu := range r.powerUps {
		if !pu.Collected && distance(x, y, pu.X, pu.Y) < SpawnClearance {
			return false
		}
	}
	for _, t := range dropTargets {
		if distance(x, y, t[0], t[1]) < DeliveryTargetRadius+SpawnClearance {
			return false
		}
	}
	return true
}
