package game

import (
	"time"

	"github.com/google/uuid"
)

// MatchEvent is one append-only log entry. The log is ring-capped at
// MaxEvents; oldest entries drop first.
type MatchEvent struct {
	ID          string `json:"id"`
	ActorID     string `json:"actorId"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Timestamp   int64  `json:"timestamp"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

func (r *Room) pushEvent(actorID, description string, points int, now time.Time) {
	elapsed := int64(0)
	if r.phase == PhaseRacing {
		elapsed = now.Sub(r.raceStartedAt).Milliseconds()
	}
	r.events = append(r.events, MatchEvent{
		ID:          uuid.NewString(),
		ActorID:     actorID,
		Description: description,
		Points:      points,
		Timestamp:   now.UnixMilli(),
		ElapsedMs:   elapsed,
	})
	if len(r.events) > MaxEvents {
		r.events = r.events[len(r.events)-MaxEvents:]
	}
}
