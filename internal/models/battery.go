package models

// BatteryState describes the charge direction of the internal battery.
type BatteryState string

const (
	BatteryCharging    BatteryState = "charging"
	BatteryDischarging BatteryState = "discharging"
	BatteryFull        BatteryState = "full"
	BatteryAbsent      BatteryState = "absent"
)

// TimeRemainingUnknown is published when the OS has not finished estimating
// time-to-empty/time-to-full. The core never extrapolates its own estimate.
const TimeRemainingUnknown = "calculating"

// BatteryMetrics represents power state for one collection cycle.
type BatteryMetrics struct {
	LevelPercent   float64      `json:"level_percent"`
	State          BatteryState `json:"state"`
	PowerDrawWatts float64      `json:"power_draw_watts"`
	CycleCount     int          `json:"cycle_count"`
	HealthPercent  float64      `json:"health_percent"`
	HealthLabel    string       `json:"health_label"`
	TemperatureC   float64      `json:"temperature_c"`
	TimeRemaining  string       `json:"time_remaining"`
}

// Charging reports whether external power is topping up the battery.
func (b BatteryMetrics) Charging() bool {
	return b.State == BatteryCharging || b.State == BatteryFull
}
