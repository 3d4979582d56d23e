package services

import (
	"testing"

	"nabz/internal/models"
)

func TestScoreAllSubscoresPerfect(t *testing.T) {
	s := NewPerformanceScorer()
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 40, CoreCount: 4}, // 10%
		Memory:  models.MemoryMetrics{UsedPercent: 30, Pressure: models.PressureNormal},
		Battery: models.BatteryMetrics{State: models.BatteryDischarging, PowerDrawWatts: 5},
	}

	got := s.Score(snap, models.WorkloadDevelopment)
	if got.Overall != 100 {
		t.Errorf("overall = %v, want 100", got.Overall)
	}
	if got.CPU != 100 || got.Memory != 100 || got.Battery != 100 || got.Responsiveness != 100 {
		t.Errorf("subscores = %+v, want all 100", got)
	}
}

func TestScoreCPUFloorWeighting(t *testing.T) {
	s := NewPerformanceScorer()
	// 100% normalized CPU against office's 40% threshold: 100-2*60 < 0,
	// clamped to 0. Everything else perfect.
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 400, CoreCount: 4},
		Memory:  models.MemoryMetrics{UsedPercent: 30, Pressure: models.PressureNormal},
		Battery: models.BatteryMetrics{State: models.BatteryCharging},
	}

	got := s.Score(snap, models.WorkloadOffice)
	if got.CPU != 0 {
		t.Fatalf("cpu subscore = %v, want 0", got.CPU)
	}
	// CPU at 100% also caps responsiveness at 80 under normal pressure:
	// 100 - 0.3*100 - 0.2*20 = 66.
	if got.Responsiveness != 80 {
		t.Fatalf("responsiveness = %v, want 80 (cpu-capped)", got.Responsiveness)
	}
	if got.Overall != 66 {
		t.Errorf("overall = %v, want 66", got.Overall)
	}
}

func TestScoreCPUWeightAlone(t *testing.T) {
	s := NewPerformanceScorer()
	// Isolate the 30% CPU weight: zero CPU subscore, responsiveness kept
	// at 100 by low-but-over-threshold... not possible with cpu at 0, so
	// feed pressure normal and cpu exactly at the responsiveness edge via
	// a custom check of the formula instead.
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 75, CoreCount: 1}, // 75%, under 80 cap
		Memory:  models.MemoryMetrics{UsedPercent: 30, Pressure: models.PressureNormal},
		Battery: models.BatteryMetrics{State: models.BatteryCharging},
	}

	// office threshold 40: subscore = 100 - 2*35 = 30.
	got := s.Score(snap, models.WorkloadOffice)
	if got.CPU != 30 {
		t.Fatalf("cpu subscore = %v, want 30", got.CPU)
	}
	want := 100 - 0.3*(100-30.0)
	if got.Overall != want {
		t.Errorf("overall = %v, want %v", got.Overall, want)
	}
}

func TestScoreMemoryDegradation(t *testing.T) {
	s := NewPerformanceScorer()
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 10, CoreCount: 1},
		Memory:  models.MemoryMetrics{UsedPercent: 90, Pressure: models.PressureNormal},
		Battery: models.BatteryMetrics{State: models.BatteryCharging},
	}

	// development threshold 80: subscore = 100 - 3*10 = 70.
	got := s.Score(snap, models.WorkloadDevelopment)
	if got.Memory != 70 {
		t.Errorf("memory subscore = %v, want 70", got.Memory)
	}
}

func TestScoreBatteryChargingForced100(t *testing.T) {
	s := NewPerformanceScorer()
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 10, CoreCount: 1},
		Memory:  models.MemoryMetrics{UsedPercent: 30, Pressure: models.PressureNormal},
		Battery: models.BatteryMetrics{State: models.BatteryCharging, PowerDrawWatts: 90},
	}

	if got := s.Score(snap, models.WorkloadOffice); got.Battery != 100 {
		t.Errorf("battery subscore while charging = %v, want 100", got.Battery)
	}
}

func TestScoreBatteryExcessWatts(t *testing.T) {
	s := NewPerformanceScorer()
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 10, CoreCount: 1},
		Memory:  models.MemoryMetrics{UsedPercent: 30, Pressure: models.PressureNormal},
		Battery: models.BatteryMetrics{State: models.BatteryDischarging, PowerDrawWatts: 21},
	}

	// office threshold 15W: subscore = 100 - 5*6 = 70.
	if got := s.Score(snap, models.WorkloadOffice); got.Battery != 70 {
		t.Errorf("battery subscore = %v, want 70", got.Battery)
	}
}

func TestScoreResponsivenessTiers(t *testing.T) {
	cases := []struct {
		pressure models.MemoryPressure
		cpuNorm  float64
		want     float64
	}{
		{models.PressureNormal, 10, 100},
		{models.PressureNormal, 85, 80},
		{models.PressureWarning, 10, 60},
		{models.PressureCritical, 10, 20},
	}
	for _, c := range cases {
		if got := responsivenessSubscore(c.pressure, c.cpuNorm); got != c.want {
			t.Errorf("responsiveness(%q, %v) = %v, want %v", c.pressure, c.cpuNorm, got, c.want)
		}
	}
}

func TestScoreClampedToRange(t *testing.T) {
	s := NewPerformanceScorer()
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 100, CoreCount: 1},
		Memory:  models.MemoryMetrics{UsedPercent: 100, Pressure: models.PressureCritical},
		Battery: models.BatteryMetrics{State: models.BatteryDischarging, PowerDrawWatts: 100},
	}

	got := s.Score(snap, models.WorkloadOffice)
	if got.Overall < 0 || got.Overall > 100 {
		t.Errorf("overall = %v, want within [0,100]", got.Overall)
	}
}
