package services

import (
	"fmt"
	"time"

	"nabz/internal/models"
)

// Workload-independent absolute ceilings past which a warning escalates to
// critical, whatever the active workload tolerates.
const (
	cpuCriticalPercent    = 90
	memoryCriticalPercent = 95
	powerCriticalWatts    = 60
	processCPUCeiling     = 80
)

// knownHeavyProcesses legitimately burn a core or more; a single process
// above the ceiling is only anomalous when it is not on this list.
var knownHeavyProcesses = map[string]bool{
	"kernel_task":   true,
	"WindowServer":  true,
	"Xcode":         true,
	"Final Cut Pro": true,
	"Compressor":    true,
	"HandBrake":     true,
	"ffmpeg":        true,
	"clang":         true,
	"swift":         true,
}

// AnomalyDetector compares snapshots against per-workload baselines and
// maintains the time-windowed active set. Anomalies leave the set by age
// alone; the underlying condition is not re-checked. (A still-abnormal
// metric therefore re-enters as a fresh anomaly on the next cycle after
// expiry — that matches the shipped behavior and is kept on purpose.)
type AnomalyDetector struct {
	retention time.Duration
	active    []models.SystemAnomaly
}

// NewAnomalyDetector creates a detector with the given retention window.
func NewAnomalyDetector(retention time.Duration) *AnomalyDetector {
	if retention <= 0 {
		retention = 5 * time.Minute
	}
	return &AnomalyDetector{retention: retention}
}

// Evaluate prunes expired anomalies, detects new ones against the baseline
// for the current workload, and returns a copy of the active set.
func (d *AnomalyDetector) Evaluate(snap models.Snapshot, workload models.Workload) []models.SystemAnomaly {
	d.pruneExpired(snap.Timestamp)

	for _, a := range d.detect(snap, workload) {
		if !d.hasActive(a.Type, a.Component) {
			d.active = append(d.active, a)
		}
	}

	return d.Active()
}

// Active returns a copy of the current anomaly set, newest last.
func (d *AnomalyDetector) Active() []models.SystemAnomaly {
	out := make([]models.SystemAnomaly, len(d.active))
	copy(out, d.active)
	return out
}

func (d *AnomalyDetector) pruneExpired(now time.Time) {
	cutoff := now.Add(-d.retention)
	kept := d.active[:0]
	for _, a := range d.active {
		if a.Timestamp.After(cutoff) {
			kept = append(kept, a)
		}
	}
	d.active = kept
}

func (d *AnomalyDetector) hasActive(anomalyType, component string) bool {
	for _, a := range d.active {
		if a.Type == anomalyType && a.Component == component {
			return true
		}
	}
	return false
}

func (d *AnomalyDetector) detect(snap models.Snapshot, workload models.Workload) []models.SystemAnomaly {
	base := baselineFor(workload)
	var found []models.SystemAnomaly

	cpuNorm := snap.CPU.NormalizedUsage()
	if cpuNorm > base.CPUPercent {
		severity := models.SeverityWarning
		if cpuNorm > cpuCriticalPercent {
			severity = models.SeverityCritical
		}
		found = append(found, models.SystemAnomaly{
			Type:            models.AnomalyHighCPU,
			Severity:        severity,
			Title:           "Elevated CPU load",
			Description:     fmt.Sprintf("CPU at %.0f%% exceeds the %.0f%% expected for %s", cpuNorm, base.CPUPercent, workload),
			Component:       "cpu",
			SuggestedAction: "Check the top process list and close what you are not using",
			Timestamp:       snap.Timestamp,
		})
	}

	if snap.Memory.UsedPercent > base.MemoryPercent {
		severity := models.SeverityWarning
		if snap.Memory.UsedPercent > memoryCriticalPercent {
			severity = models.SeverityCritical
		}
		found = append(found, models.SystemAnomaly{
			Type:            models.AnomalyHighMemory,
			Severity:        severity,
			Title:           "Elevated memory use",
			Description:     fmt.Sprintf("Memory at %.0f%% exceeds the %.0f%% expected for %s", snap.Memory.UsedPercent, base.MemoryPercent, workload),
			Component:       "memory",
			SuggestedAction: "Quit memory-heavy applications or close unused windows",
			Timestamp:       snap.Timestamp,
		})
	}

	if !snap.Battery.Charging() && snap.Battery.PowerDrawWatts > base.PowerWatts {
		severity := models.SeverityWarning
		if snap.Battery.PowerDrawWatts > powerCriticalWatts {
			severity = models.SeverityCritical
		}
		found = append(found, models.SystemAnomaly{
			Type:            models.AnomalyHighPowerDraw,
			Severity:        severity,
			Title:           "High power draw on battery",
			Description:     fmt.Sprintf("Drawing %.1fW, above the %.0fW expected for %s", snap.Battery.PowerDrawWatts, base.PowerWatts, workload),
			Component:       "battery",
			SuggestedAction: "Plug in, or reduce background activity to extend runtime",
			Timestamp:       snap.Timestamp,
		})
	}

	if snap.CPU.Throttled {
		found = append(found, models.SystemAnomaly{
			Type:            models.AnomalyThermal,
			Severity:        models.SeverityWarning,
			Title:           "CPU thermal throttling",
			Description:     "The CPU is running below its rated speed to shed heat",
			Component:       "cpu",
			SuggestedAction: "Improve airflow and pause sustained heavy tasks",
			Timestamp:       snap.Timestamp,
		})
	}

	for _, p := range snap.CPU.TopProcesses {
		if p.CPUPercent <= processCPUCeiling || knownHeavyProcesses[p.Name] {
			continue
		}
		found = append(found, models.SystemAnomaly{
			Type:            models.AnomalyRunawayProcess,
			Severity:        models.SeverityWarning,
			Title:           fmt.Sprintf("%s is consuming excessive CPU", p.Name),
			Description:     fmt.Sprintf("%s (pid %d) is at %.0f%% CPU", p.Name, p.PID, p.CPUPercent),
			Component:       p.Name,
			SuggestedAction: fmt.Sprintf("Consider quitting or restarting %s", p.Name),
			Timestamp:       snap.Timestamp,
		})
	}

	return found
}
