package services

import (
	"testing"
	"time"

	"nabz/internal/models"
)

func TestInsightsCappedAtThree(t *testing.T) {
	g := NewInsightGenerator()
	snap := models.Snapshot{
		Timestamp: time.Now(),
		CPU: models.CPUMetrics{
			UsagePercent: 380, CoreCount: 4,
			TopProcesses: []models.ProcessUsage{{PID: 1, Name: "node", CPUPercent: 92}},
		},
		Memory:  models.MemoryMetrics{UsedPercent: 97, Pressure: models.PressureCritical},
		Battery: models.BatteryMetrics{State: models.BatteryDischarging, PowerDrawWatts: 30, LevelPercent: 10},
	}
	detection := models.WorkloadDetection{Workload: models.WorkloadDevelopment, Confidence: 0.9}
	anomalies := []models.SystemAnomaly{
		{Type: models.AnomalyHighCPU, Severity: models.SeverityCritical, Title: "Elevated CPU load", Description: "x"},
	}

	insights := g.Insights(snap, detection, anomalies)
	if len(insights) != 3 {
		t.Fatalf("got %d insights, want cap of 3", len(insights))
	}
	// Critical anomalies lead.
	if insights[0].Category != "anomaly" {
		t.Errorf("first insight category = %q, want anomaly", insights[0].Category)
	}
}

func TestInsightsQuietSystem(t *testing.T) {
	g := NewInsightGenerator()
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 20, CoreCount: 4},
		Memory:  models.MemoryMetrics{UsedPercent: 40, Pressure: models.PressureNormal},
		Battery: models.BatteryMetrics{State: models.BatteryCharging, LevelPercent: 90},
	}
	detection := models.WorkloadDetection{Workload: models.WorkloadUnknown}

	if insights := g.Insights(snap, detection, nil); len(insights) != 0 {
		t.Errorf("quiet system produced insights: %+v", insights)
	}
}

func TestSuggestionsRankedByImpact(t *testing.T) {
	g := NewInsightGenerator()
	snap := models.Snapshot{
		CPU:     models.CPUMetrics{UsagePercent: 100, CoreCount: 4, Throttled: true},
		Memory:  models.MemoryMetrics{UsedPercent: 92, Pressure: models.PressureWarning},
		Battery: models.BatteryMetrics{State: models.BatteryDischarging, PowerDrawWatts: 30},
	}
	detection := models.WorkloadDetection{Workload: models.WorkloadOffice}
	anomalies := []models.SystemAnomaly{
		{Type: models.AnomalyRunawayProcess, Component: "node", Description: "node (pid 5) is at 90% CPU"},
	}

	suggestions := g.Suggestions(snap, detection, anomalies)
	if len(suggestions) == 0 {
		t.Fatal("expected suggestions")
	}
	if len(suggestions) > maxSuggestions {
		t.Fatalf("got %d suggestions, want at most %d", len(suggestions), maxSuggestions)
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Impact > suggestions[i-1].Impact {
			t.Fatalf("suggestions not ranked: %v before %v", suggestions[i-1].Impact, suggestions[i].Impact)
		}
	}
	if suggestions[0].Title != "Restart node" {
		t.Errorf("top suggestion = %q, want the runaway-process restart", suggestions[0].Title)
	}
}

func TestSuggestionsRegeneratedNotAccumulated(t *testing.T) {
	g := NewInsightGenerator()
	snap := models.Snapshot{
		Memory: models.MemoryMetrics{Pressure: models.PressureCritical, UsedPercent: 97},
	}
	detection := models.WorkloadDetection{Workload: models.WorkloadUnknown}

	first := g.Suggestions(snap, detection, nil)
	second := g.Suggestions(snap, detection, nil)
	if len(first) != len(second) {
		t.Errorf("suggestion count drifted between cycles: %d then %d", len(first), len(second))
	}
}
