package game

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestApplyDamageClampsAtThreshold(t *testing.T) {
	p := &Player{Damage: 140}
	p.applyDamage(20)
	if p.Damage != DestroyThreshold {
		t.Errorf("Damage = %v, want %v", p.Damage, DestroyThreshold)
	}
	if !p.Destroyed {
		t.Error("player at threshold should be destroyed")
	}
}

func TestApplyDamageIgnoresNonPositive(t *testing.T) {
	p := &Player{Damage: 50}
	p.applyDamage(0)
	p.applyDamage(-10)
	if p.Damage != 50 {
		t.Errorf("Damage = %v, want 50", p.Damage)
	}
}

func TestRepairClearsDestroyed(t *testing.T) {
	p := &Player{Damage: DestroyThreshold, Destroyed: true}
	p.repair(10)
	if p.Damage != DestroyThreshold-10 {
		t.Errorf("Damage = %v, want %v", p.Damage, DestroyThreshold-10)
	}
	if p.Destroyed {
		t.Error("repaired player should no longer be destroyed")
	}
}

func TestRepairFloorsAtZero(t *testing.T) {
	p := &Player{Damage: 5}
	p.repair(100)
	if p.Damage != 0 {
		t.Errorf("Damage = %v, want 0", p.Damage)
	}
}

func TestPerformanceScale(t *testing.T) {
	cases := []struct {
		damage float64
		want   float64
	}{
		{0, 1.0},
		{DestroyThreshold, MinPerformance},
		{DestroyThreshold / 2, 1.0 - (1.0-MinPerformance)/2},
	}
	for _, tc := range cases {
		p := &Player{Damage: tc.damage}
		if got := p.performanceScale(); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("performanceScale(damage=%v) = %v, want %v", tc.damage, got, tc.want)
		}
	}
}

func TestDamageInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := &Player{}
		n := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < n; i++ {
			amount := rapid.Float64Range(-20, 80).Draw(t, "amount")
			if rapid.Bool().Draw(t, "repair") {
				p.repair(amount)
			} else {
				p.applyDamage(amount)
			}
			if p.Damage < 0 || p.Damage > DestroyThreshold {
				t.Fatalf("Damage = %v, out of [0, %v]", p.Damage, DestroyThreshold)
			}
			if p.Destroyed && p.Damage != DestroyThreshold {
				t.Fatalf("destroyed with Damage = %v, want %v", p.Damage, DestroyThreshold)
			}
		}
	})
}

func TestRecordPartLossZones(t *testing.T) {
	// Facing +x so local frame aligns with world axes.
	cases := []struct {
		name       string
		hitX, hitY float64
		severity   float64
		want       string
	}{
		{"front", 110, 100, PartLossFrontSeverity + 1, PartFrontBumper},
		{"rear", 90, 100, PartLossRearSeverity + 1, PartRearBumper},
		{"right", 100, 110, PartLossRightSeverity + 1, PartRightDoor},
		{"left", 100, 90, PartLossLeftSeverity + 1, PartLeftDoor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Player{X: 100, Y: 100, Heading: 0}
			p.recordPartLoss(tc.hitX, tc.hitY, tc.severity)
			if len(p.MissingParts) != 1 || p.MissingParts[0] != tc.want {
				t.Errorf("MissingParts = %v, want [%s]", p.MissingParts, tc.want)
			}
		})
	}
}

func TestRecordPartLossThresholdIsZoneSpecific(t *testing.T) {
	// A bumper-grade hit sheds the front bumper but leaves a door attached.
	p := &Player{X: 100, Y: 100, Heading: 0}
	p.recordPartLoss(100, 110, PartLossFrontSeverity+1)
	if len(p.MissingParts) != 0 {
		t.Errorf("MissingParts = %v, door zone must use its own threshold", p.MissingParts)
	}
	p.recordPartLoss(110, 100, PartLossFrontSeverity+1)
	if len(p.MissingParts) != 1 || p.MissingParts[0] != PartFrontBumper {
		t.Errorf("MissingParts = %v, want [%s]", p.MissingParts, PartFrontBumper)
	}
}

func TestRecordPartLossBelowSeverityIgnored(t *testing.T) {
	p := &Player{X: 100, Y: 100}
	p.recordPartLoss(110, 100, PartLossFrontSeverity-1)
	if len(p.MissingParts) != 0 {
		t.Errorf("MissingParts = %v, want none below severity", p.MissingParts)
	}
}

func TestRecordPartLossDeduplicates(t *testing.T) {
	p := &Player{X: 100, Y: 100, Heading: 0}
	p.recordPartLoss(110, 100, PartLossFrontSeverity+1)
	p.recordPartLoss(115, 100, PartLossFrontSeverity+1)
	if len(p.MissingParts) != 1 {
		t.Errorf("MissingParts = %v, want exactly one tag per zone", p.MissingParts)
	}
}

func TestResetForRaceClearsTransientState(t *testing.T) {
	p := &Player{
		Damage: 90, Destroyed: true, Score: 400, CarryingID: "cargo-a",
		MissingParts: []string{PartLeftDoor},
		Effects:      []ActiveEffect{{Effect: Shield{}}},
		Speed:        120,
	}
	p.resetForRace(50, 60)
	if p.X != 50 || p.Y != 60 {
		t.Errorf("position = (%v, %v), want (50, 60)", p.X, p.Y)
	}
	if p.Damage != 0 || p.Destroyed || p.Score != 0 || p.CarryingID != "" ||
		len(p.MissingParts) != 0 || len(p.Effects) != 0 || p.Speed != 0 {
		t.Errorf("transient state survived reset: %+v", p)
	}
}

func TestAddScoreDoublesWithDoublePoints(t *testing.T) {
	clock := newFakeClock()
	r := newTestRoom(clock)
	p := addPlayer(r, "p1")
	p.addEffect(DoublePoints{}, DoublePointsTime, clock.Now())

	r.addScore(p, 50, "test award", clock.Now())
	if p.Score != 100 {
		t.Errorf("Score = %d, want 100 with double points", p.Score)
	}
}
