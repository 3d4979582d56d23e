package services

import "nabz/internal/models"

// Subscore weights. They sum to 1; battery and responsiveness matter less
// than the two primary resources.
const (
	weightCPU            = 0.30
	weightMemory         = 0.30
	weightBattery        = 0.20
	weightResponsiveness = 0.20
)

// PerformanceScorer computes the composite 0-100 health score. Stateless:
// every cycle is scored from its snapshot and workload alone.
type PerformanceScorer struct{}

// NewPerformanceScorer returns a scorer.
func NewPerformanceScorer() *PerformanceScorer { return &PerformanceScorer{} }

// Score computes score = 100 - sum(w_i * (100 - subscore_i)), with each
// subscore at 100 inside its workload-conditioned threshold and degrading
// linearly above it.
func (s *PerformanceScorer) Score(snap models.Snapshot, workload models.Workload) models.PerformanceScore {
	base := baselineFor(workload)

	score := models.PerformanceScore{
		CPU:            cpuSubscore(snap.CPU.NormalizedUsage(), base.CPUPercent),
		Memory:         memorySubscore(snap.Memory.UsedPercent, base.MemoryPercent),
		Battery:        batterySubscore(snap.Battery, base.PowerWatts),
		Responsiveness: responsivenessSubscore(snap.Memory.Pressure, snap.CPU.NormalizedUsage()),
	}

	overall := 100.0
	overall -= weightCPU * (100 - score.CPU)
	overall -= weightMemory * (100 - score.Memory)
	overall -= weightBattery * (100 - score.Battery)
	overall -= weightResponsiveness * (100 - score.Responsiveness)
	score.Overall = clampScore(overall)
	return score
}

// cpuSubscore loses 2 points per percentage point above the threshold.
func cpuSubscore(cpuNorm, threshold float64) float64 {
	if cpuNorm <= threshold {
		return 100
	}
	return clampScore(100 - 2*(cpuNorm-threshold))
}

// memorySubscore loses 3 points per percentage point above the threshold.
func memorySubscore(usedPercent, threshold float64) float64 {
	if usedPercent <= threshold {
		return 100
	}
	return clampScore(100 - 3*(usedPercent-threshold))
}

// batterySubscore loses 5 points per excess watt; charging is always 100
// since draw from the wall costs no runtime.
func batterySubscore(batt models.BatteryMetrics, thresholdWatts float64) float64 {
	if batt.Charging() {
		return 100
	}
	if batt.PowerDrawWatts <= thresholdWatts {
		return 100
	}
	return clampScore(100 - 5*(batt.PowerDrawWatts-thresholdWatts))
}

// responsivenessSubscore derives from the memory pressure tier; a saturated
// CPU caps the "normal" tier at 80.
func responsivenessSubscore(pressure models.MemoryPressure, cpuNorm float64) float64 {
	switch pressure {
	case models.PressureCritical:
		return 20
	case models.PressureWarning:
		return 60
	default:
		if cpuNorm >= 80 {
			return 80
		}
		return 100
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
