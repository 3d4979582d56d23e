package models

// CPUMetrics represents CPU usage information for one collection cycle.
// UsagePercent is scaled by core count, i.e. it ranges over [0, 100*CoreCount].
type CPUMetrics struct {
	UsagePercent float64        `json:"usage_percent"`
	PerCore      []float64      `json:"per_core,omitempty"`
	CoreCount    int            `json:"core_count"`
	TemperatureC float64        `json:"temperature_c"`
	Throttled    bool           `json:"throttled"`
	TopProcesses []ProcessUsage `json:"top_processes,omitempty"`
}

// NormalizedUsage returns usage on a 0-100 scale regardless of core count.
func (c CPUMetrics) NormalizedUsage() float64 {
	if c.CoreCount <= 0 {
		return c.UsagePercent
	}
	return c.UsagePercent / float64(c.CoreCount)
}
