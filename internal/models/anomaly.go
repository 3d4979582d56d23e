package models

import "time"

// AnomalySeverity is the escalation level of a detected anomaly.
type AnomalySeverity string

const (
	SeverityWarning  AnomalySeverity = "warning"
	SeverityCritical AnomalySeverity = "critical"
)

// Anomaly type identifiers.
const (
	AnomalyHighCPU        = "high_cpu"
	AnomalyHighMemory     = "high_memory"
	AnomalyHighPowerDraw  = "high_power_draw"
	AnomalyRunawayProcess = "runaway_process"
	AnomalyThermal        = "thermal"
)

// SystemAnomaly is a detected, time-bounded deviation from the expected
// range for the current workload. Anomalies are never deleted explicitly;
// they age out of the active set by timestamp.
type SystemAnomaly struct {
	Type            string          `json:"type"`
	Severity        AnomalySeverity `json:"severity"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Component       string          `json:"component"`
	SuggestedAction string          `json:"suggested_action"`
	Timestamp       time.Time       `json:"timestamp"`
}
