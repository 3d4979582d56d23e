package services

import (
	"testing"
	"time"

	"nabz/internal/models"
)

func calmSnapshot(ts time.Time) models.Snapshot {
	return models.Snapshot{
		Timestamp: ts,
		CPU:       models.CPUMetrics{UsagePercent: 80, CoreCount: 4}, // 20% normalized
		Memory:    models.MemoryMetrics{UsedPercent: 50, Pressure: models.PressureNormal},
		Battery:   models.BatteryMetrics{State: models.BatteryDischarging, PowerDrawWatts: 8},
	}
}

func TestAnomalyCPUOverBaseline(t *testing.T) {
	d := NewAnomalyDetector(5 * time.Minute)
	snap := calmSnapshot(time.Now())
	snap.CPU.UsagePercent = 60 * 4 // 60% normalized, over office's 40%

	got := d.Evaluate(snap, models.WorkloadOffice)
	if len(got) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(got))
	}
	if got[0].Type != models.AnomalyHighCPU || got[0].Severity != models.SeverityWarning {
		t.Errorf("anomaly = %+v, want high_cpu warning", got[0])
	}

	// Same usage is normal for development.
	d2 := NewAnomalyDetector(5 * time.Minute)
	if got := d2.Evaluate(snap, models.WorkloadDevelopment); len(got) != 0 {
		t.Errorf("development baseline tolerates 60%%, got %+v", got)
	}
}

func TestAnomalyCriticalEscalation(t *testing.T) {
	d := NewAnomalyDetector(5 * time.Minute)
	snap := calmSnapshot(time.Now())
	snap.CPU.UsagePercent = 92 * 4 // past the absolute 90% ceiling

	got := d.Evaluate(snap, models.WorkloadDevelopment)
	if len(got) != 1 || got[0].Severity != models.SeverityCritical {
		t.Errorf("anomalies = %+v, want one critical high_cpu", got)
	}
}

func TestAnomalyRetentionWindow(t *testing.T) {
	d := NewAnomalyDetector(5 * time.Minute)
	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	hot := calmSnapshot(base)
	hot.CPU.UsagePercent = 95 * 4
	if got := d.Evaluate(hot, models.WorkloadOffice); len(got) != 1 {
		t.Fatalf("setup: got %d anomalies, want 1", len(got))
	}

	// Condition cleared; at T+4m the anomaly is still active.
	if got := d.Evaluate(calmSnapshot(base.Add(4*time.Minute)), models.WorkloadOffice); len(got) != 1 {
		t.Errorf("at T+4m got %d anomalies, want 1 (inside 5m retention)", len(got))
	}

	// At T+6m it has aged out.
	if got := d.Evaluate(calmSnapshot(base.Add(6*time.Minute)), models.WorkloadOffice); len(got) != 0 {
		t.Errorf("at T+6m got %d anomalies, want 0 (past retention)", len(got))
	}
}

func TestAnomalyNotDuplicatedWhileActive(t *testing.T) {
	d := NewAnomalyDetector(5 * time.Minute)
	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	hot := calmSnapshot(base)
	hot.CPU.UsagePercent = 95 * 4
	d.Evaluate(hot, models.WorkloadOffice)

	hot.Timestamp = base.Add(time.Minute)
	got := d.Evaluate(hot, models.WorkloadOffice)
	if len(got) != 1 {
		t.Errorf("persisting condition produced %d entries, want 1 active", len(got))
	}
}

func TestAnomalyRunawayProcess(t *testing.T) {
	d := NewAnomalyDetector(5 * time.Minute)
	snap := calmSnapshot(time.Now())
	snap.CPU.TopProcesses = []models.ProcessUsage{
		{PID: 10, Name: "kernel_task", CPUPercent: 95}, // allow-listed
		{PID: 11, Name: "node", CPUPercent: 88},
		{PID: 12, Name: "Safari", CPUPercent: 12},
	}

	got := d.Evaluate(snap, models.WorkloadDevelopment)
	if len(got) != 1 {
		t.Fatalf("got %d anomalies, want 1 (only the non-allow-listed hog)", len(got))
	}
	if got[0].Type != models.AnomalyRunawayProcess || got[0].Component != "node" {
		t.Errorf("anomaly = %+v, want runaway_process for node", got[0])
	}
}

func TestAnomalyPowerOnlyWhileDischarging(t *testing.T) {
	d := NewAnomalyDetector(5 * time.Minute)
	snap := calmSnapshot(time.Now())
	snap.Battery.PowerDrawWatts = 40
	snap.Battery.State = models.BatteryCharging

	if got := d.Evaluate(snap, models.WorkloadOffice); len(got) != 0 {
		t.Errorf("charging draw flagged: %+v", got)
	}

	snap.Battery.State = models.BatteryDischarging
	d2 := NewAnomalyDetector(5 * time.Minute)
	got := d2.Evaluate(snap, models.WorkloadOffice)
	if len(got) != 1 || got[0].Type != models.AnomalyHighPowerDraw {
		t.Errorf("anomalies = %+v, want one high_power_draw", got)
	}
}

func TestAnomalyThermalThrottle(t *testing.T) {
	d := NewAnomalyDetector(5 * time.Minute)
	snap := calmSnapshot(time.Now())
	snap.CPU.Throttled = true

	got := d.Evaluate(snap, models.WorkloadDevelopment)
	if len(got) != 1 || got[0].Type != models.AnomalyThermal {
		t.Errorf("anomalies = %+v, want one thermal warning", got)
	}
}
