package models

import "time"

// Workload is the inferred activity category for the machine.
type Workload string

const (
	WorkloadDevelopment  Workload = "development"
	WorkloadDesign       Workload = "design"
	WorkloadVideoEditing Workload = "video-editing"
	WorkloadGaming       Workload = "gaming"
	WorkloadBrowsing     Workload = "browsing"
	WorkloadOffice       Workload = "office"
	WorkloadUnknown      Workload = "unknown"
)

// WorkloadDetection is one classification result.
// Confidence is always within [0,1].
type WorkloadDetection struct {
	Timestamp  time.Time `json:"timestamp"`
	Workload   Workload  `json:"workload"`
	Confidence float64   `json:"confidence"`
}
