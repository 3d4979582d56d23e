package services

import "nabz/internal/models"

// workloadBaseline defines what "normal" resource use looks like while a
// given workload is active. The classifier's category decides which row
// applies; the anomaly detector and the scorer both condition on it.
type workloadBaseline struct {
	CPUPercent    float64 // normalized 0-100
	MemoryPercent float64
	PowerWatts    float64
}

// workloadBaselines tolerates more from heavier workloads: a compile storm
// is normal for development, alarming for office work.
var workloadBaselines = map[models.Workload]workloadBaseline{
	models.WorkloadDevelopment:  {CPUPercent: 85, MemoryPercent: 80, PowerWatts: 35},
	models.WorkloadDesign:       {CPUPercent: 75, MemoryPercent: 85, PowerWatts: 30},
	models.WorkloadVideoEditing: {CPUPercent: 90, MemoryPercent: 85, PowerWatts: 45},
	models.WorkloadGaming:       {CPUPercent: 95, MemoryPercent: 80, PowerWatts: 50},
	models.WorkloadBrowsing:     {CPUPercent: 50, MemoryPercent: 70, PowerWatts: 20},
	models.WorkloadOffice:       {CPUPercent: 40, MemoryPercent: 60, PowerWatts: 15},
	models.WorkloadUnknown:      {CPUPercent: 70, MemoryPercent: 75, PowerWatts: 25},
}

// baselineFor resolves the baseline row, defaulting to unknown.
func baselineFor(w models.Workload) workloadBaseline {
	if b, ok := workloadBaselines[w]; ok {
		return b
	}
	return workloadBaselines[models.WorkloadUnknown]
}
