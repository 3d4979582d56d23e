package collectors

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"nabz/internal/models"
)

const (
	ioregTimeout = 3 * time.Second
	pmsetTimeout = 2 * time.Second

	// The power-source descriptor reports this for a time estimate the OS
	// has not settled yet.
	timeEstimateInvalid = 65535
)

// BatteryCollector produces BatteryMetrics once per collection cycle from
// the internal battery's power-source descriptor. Machines without a
// battery degrade to an "absent" bundle, never an error.
type BatteryCollector struct {
	run Runner
}

// NewBatteryCollector builds a collector with the default OS bindings.
func NewBatteryCollector() *BatteryCollector {
	return &BatteryCollector{run: Run}
}

// Collect reads the power-source descriptor, falling back to the coarser
// power-management summary, and finally to an absent-battery bundle.
func (b *BatteryCollector) Collect() models.BatteryMetrics {
	if out, err := b.run(ioregTimeout, "ioreg", "-rn", "AppleSmartBattery"); err == nil {
		if metrics, ok := parsePowerDescriptor(out); ok {
			return metrics
		}
	} else {
		log.Printf("[BATT] power descriptor unavailable, downgrading: %v", err)
	}

	if out, err := b.run(pmsetTimeout, "pmset", "-g", "batt"); err == nil {
		if metrics, ok := parsePMSetBatt(out); ok {
			return metrics
		}
	} else {
		log.Printf("[BATT] pmset unavailable: %v", err)
	}

	return models.BatteryMetrics{State: models.BatteryAbsent, TimeRemaining: models.TimeRemainingUnknown}
}

// parsePowerDescriptor decodes the untyped `ioreg -rn AppleSmartBattery`
// key/value dump into typed battery metrics. This is the only place the
// raw descriptor shape is known.
func parsePowerDescriptor(out string) (models.BatteryMetrics, bool) {
	kv := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		idx := strings.Index(line, " = ")
		if idx < 0 {
			continue
		}
		key := strings.Trim(strings.TrimSpace(line[:idx]), `"`)
		kv[key] = strings.TrimSpace(line[idx+3:])
	}

	intOf := func(key string) (int64, bool) {
		v, ok := kv[key]
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	boolOf := func(key string) bool { return kv[key] == "Yes" }

	current, okCur := intOf("CurrentCapacity")
	max, okMax := intOf("MaxCapacity")
	if !okCur || !okMax || max <= 0 {
		return models.BatteryMetrics{}, false
	}

	metrics := models.BatteryMetrics{
		LevelPercent:  clamp(float64(current)/float64(max)*100, 0, 100),
		TimeRemaining: models.TimeRemainingUnknown,
	}

	if cycles, ok := intOf("CycleCount"); ok {
		metrics.CycleCount = int(cycles)
	}

	// Amperage is signed (negative while discharging) but ioreg prints it
	// as an unsigned 64-bit value on some firmware; re-interpret overflow.
	voltage, _ := intOf("Voltage") // mV
	amperage, okAmp := intOf("Amperage")
	if !okAmp {
		if raw, ok := kv["Amperage"]; ok {
			if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
				amperage = int64(u)
			}
		}
	}
	metrics.PowerDrawWatts = math.Abs(float64(voltage) / 1000 * float64(amperage) / 1000)

	if design, ok := intOf("DesignCapacity"); ok && design > 0 {
		metrics.HealthPercent = float64(max) / float64(design) * 100
		metrics.HealthLabel = healthLabel(metrics.HealthPercent)
	}

	// Descriptor temperature is in hundredths of a degree.
	if temp, ok := intOf("Temperature"); ok {
		metrics.TemperatureC = float64(temp) / 100
	}

	charging := boolOf("IsCharging")
	external := boolOf("ExternalConnected")
	switch {
	case boolOf("FullyCharged") && external:
		metrics.State = models.BatteryFull
	case charging:
		metrics.State = models.BatteryCharging
	default:
		metrics.State = models.BatteryDischarging
	}

	// Time remaining comes only from the OS-supplied estimates; the core
	// never extrapolates its own.
	estimateKey := "AvgTimeToEmpty"
	if metrics.Charging() {
		estimateKey = "AvgTimeToFull"
	}
	if minutes, ok := intOf(estimateKey); ok && minutes > 0 && minutes < timeEstimateInvalid {
		metrics.TimeRemaining = formatMinutes(minutes)
	}

	return metrics, true
}

// parsePMSetBatt extracts level and state from a `pmset -g batt` summary
// line such as: ` -InternalBattery-0 (id=123)  85%; discharging; 4:10 remaining`.
func parsePMSetBatt(out string) (models.BatteryMetrics, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "%;") {
			continue
		}
		parts := strings.Split(line, ";")
		if len(parts) < 2 {
			continue
		}

		head := parts[0]
		pctIdx := strings.LastIndexByte(head, '%')
		if pctIdx < 0 {
			continue
		}
		start := pctIdx
		for start > 0 && head[start-1] >= '0' && head[start-1] <= '9' {
			start--
		}
		level, err := strconv.ParseFloat(head[start:pctIdx], 64)
		if err != nil {
			continue
		}

		metrics := models.BatteryMetrics{
			LevelPercent:  level,
			TimeRemaining: models.TimeRemainingUnknown,
		}
		switch strings.TrimSpace(parts[1]) {
		case "charging":
			metrics.State = models.BatteryCharging
		case "charged", "finishing charge":
			metrics.State = models.BatteryFull
		default:
			metrics.State = models.BatteryDischarging
		}

		if len(parts) >= 3 {
			est := strings.TrimSpace(parts[2])
			if hm := strings.Fields(est); len(hm) > 0 && strings.Contains(hm[0], ":") {
				if t := parseClockEstimate(hm[0]); t != "" {
					metrics.TimeRemaining = t
				}
			}
		}
		return metrics, true
	}
	return models.BatteryMetrics{}, false
}

func parseClockEstimate(hm string) string {
	parts := strings.SplitN(hm, ":", 2)
	if len(parts) != 2 {
		return ""
	}
	h, err1 := strconv.ParseInt(parts[0], 10, 64)
	m, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return ""
	}
	return formatMinutes(h*60 + m)
}

func formatMinutes(minutes int64) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// healthLabel maps the capacity ratio to the qualitative bands surfaced
// in the UI.
func healthLabel(percent float64) string {
	switch {
	case percent >= 80:
		return "good"
	case percent >= 60:
		return "fair"
	default:
		return "poor"
	}
}
