package models

// MemoryPressure is the OS memory pressure tier.
type MemoryPressure string

const (
	PressureNormal   MemoryPressure = "normal"
	PressureWarning  MemoryPressure = "warning"
	PressureCritical MemoryPressure = "critical"
)

// MemoryMetrics represents memory usage for one collection cycle.
// All byte counts are approximations assembled from VM page counters;
// CachedFilesBytes in particular is a documented heuristic, not an exact
// accounting identity.
type MemoryMetrics struct {
	TotalBytes       uint64         `json:"total_bytes"`
	UsedBytes        uint64         `json:"used_bytes"`
	FreeBytes        uint64         `json:"free_bytes"`
	WiredBytes       uint64         `json:"wired_bytes"`
	CompressedBytes  uint64         `json:"compressed_bytes"`
	AppMemoryBytes   uint64         `json:"app_memory_bytes"`
	CachedFilesBytes uint64         `json:"cached_files_bytes"`
	SwapUsedBytes    uint64         `json:"swap_used_bytes"`
	UsedPercent      float64        `json:"used_percent"`
	Pressure         MemoryPressure `json:"pressure"`
	TopProcesses     []ProcessUsage `json:"top_processes,omitempty"`
}
