// Command bot is a headless client that exercises the full netcode path
// against a running server: it polls state-sync, predicts its own vehicle
// locally, reconciles on every ack, and interpolates everyone else.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"wreckers/internal/game"
	"wreckers/internal/netcode"
	"wreckers/internal/responses"
)

const (
	frameInterval = 33 * time.Millisecond
	syncInterval  = 100 * time.Millisecond
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "server base URL")
	name := flag.String("name", "bot", "display name")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	playerID := uuid.NewString()
	cfg := netcode.DefaultConfig()
	predictor := netcode.NewPredictor(cfg, game.VehicleState{X: game.DefaultSpawnX, Y: game.DefaultSpawnY})
	buffers := make(map[string]*netcode.EntityBuffer)

	// Lobby in and declare ready.
	if err := post(*serverURL+"/api/lobby", game.LobbyRequest{PlayerID: playerID, Name: *name, Ready: true}, nil); err != nil {
		slog.Error("joining lobby", "err", err)
		os.Exit(1)
	}

	input := game.VehicleInput{Throttle: 1}
	lastFrame := time.Now()
	lastSync := time.Time{}
	acks := make(chan game.SyncResponse, 4)
	var seq uint32

	for {
		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now

		// Wander: re-roll steering now and then.
		if rand.Float64() < 0.02 {
			input.Steer = rand.Float64()*2 - 1
		}
		predictor.Step(input, dt)

		// The sync call is fire-and-forget; a missed response just means
		// we reconcile on the next one.
		if now.Sub(lastSync) >= syncInterval {
			lastSync = now
			sample := predictor.SampleInput(input, now)
			seq = sample.Seq
			go func(s netcode.PendingInput) {
				var resp game.SyncResponse
				req := game.SyncRequest{
					PlayerID: playerID,
					Name:     *name,
					Steer:    s.Input.Steer,
					Throttle: s.Input.Throttle,
					Seq:      s.Seq,
				}
				if err := post(*serverURL+"/api/sync", req, &resp); err != nil {
					slog.Debug("sync failed, retrying next interval", "err", err)
					return
				}
				acks <- resp
			}(sample)
		}

		select {
		case resp := <-acks:
			applySync(predictor, buffers, playerID, resp, cfg, now)
		default:
		}

		for id, buf := range buffers {
			x, y, _ := buf.Render(now, dt)
			_ = x
			_ = y
			_ = id
		}

		rendered := predictor.Rendered(now)
		slog.Debug("frame", "x", rendered.X, "y", rendered.Y, "seq", seq)
		time.Sleep(frameInterval)
	}
}

func applySync(p *netcode.Predictor, buffers map[string]*netcode.EntityBuffer, selfID string, resp game.SyncResponse, cfg netcode.Config, now time.Time) {
	for _, snap := range resp.Players {
		if snap.Hidden {
			continue
		}
		if snap.ID == selfID {
			perf := math.Max(game.MinPerformance, 1.0-snap.Damage/game.DestroyThreshold*(1.0-game.MinPerformance))
			p.Reconcile(netcode.ServerAck{
				State: game.VehicleState{
					X: snap.X, Y: snap.Y, Z: snap.Z,
					Heading: snap.Heading, Speed: snap.Speed, VSpeed: snap.VSpeed,
				},
				LastSeq: snap.LastSeq,
				Perf:    perf,
				At:      now,
			}, now)
			continue
		}
		buf, ok := buffers[snap.ID]
		if !ok {
			buf = netcode.NewEntityBuffer(cfg)
			buffers[snap.ID] = buf
		}
		buf.Push(netcode.Snapshot{
			At:      now,
			X:       snap.X,
			Y:       snap.Y,
			Heading: snap.Heading,
			VX:      snap.Speed * math.Cos(snap.Heading),
			VY:      snap.Speed * math.Sin(snap.Heading),
		})
	}
}

func post(url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env responses.Envelope
	raw := json.RawMessage{}
	env.Data = &raw
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("server rejected request: %s", env.Error)
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}
