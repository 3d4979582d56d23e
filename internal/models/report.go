package models

import "time"

// PerformanceScore is the composite 0-100 health metric with its subscores.
type PerformanceScore struct {
	Overall        float64 `json:"overall"`
	CPU            float64 `json:"cpu"`
	Memory         float64 `json:"memory"`
	Battery        float64 `json:"battery"`
	Responsiveness float64 `json:"responsiveness"`
}

// PerformanceReport is the combined outbound view consumed by the UI and
// chat collaborators: everything they need in one read-only payload.
type PerformanceReport struct {
	Timestamp   time.Time                `json:"timestamp"`
	Score       PerformanceScore         `json:"score"`
	Workload    WorkloadDetection        `json:"workload"`
	Anomalies   []SystemAnomaly          `json:"anomalies,omitempty"`
	Insights    []Insight                `json:"insights,omitempty"`
	Suggestions []OptimizationSuggestion `json:"suggestions,omitempty"`
}
