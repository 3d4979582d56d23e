package models

import "time"

// Snapshot bundles all telemetry from a single collection cycle.
// It is immutable once constructed: the monitor hands out copies and no
// consumer ever writes back into it.
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	CPU       CPUMetrics     `json:"cpu"`
	Memory    MemoryMetrics  `json:"memory"`
	Battery   BatteryMetrics `json:"battery"`
	Apps      []RunningApp   `json:"apps,omitempty"`
}
