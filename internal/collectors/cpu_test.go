package collectors

import (
	"fmt"
	"testing"
	"time"

	"nabz/internal/models"
)

// fakeRunner serves canned output per command name and fails everything else.
func fakeRunner(outputs map[string]string) Runner {
	return func(_ time.Duration, name string, _ ...string) (string, error) {
		if out, ok := outputs[name]; ok {
			return out, nil
		}
		return "", fmt.Errorf("%s: command failed", name)
	}
}

func newTestCPUCollector(cores int, ticks []cpuTicks) *CPUCollector {
	i := 0
	c := NewCPUCollector(cores, 20)
	c.ticks = func() (cpuTicks, error) {
		if i >= len(ticks) {
			return cpuTicks{}, fmt.Errorf("no more samples")
		}
		t := ticks[i]
		i++
		return t, nil
	}
	c.perCore = func() ([]float64, error) { return nil, fmt.Errorf("unavailable") }
	c.uptime = func() (uint64, error) { return 0, fmt.Errorf("unavailable") }
	c.run = fakeRunner(nil)
	c.lookPath = func(string) (string, error) { return "", fmt.Errorf("not found") }
	return c
}

func TestCPUUsageFirstSampleIsZero(t *testing.T) {
	c := newTestCPUCollector(4, []cpuTicks{{User: 100, System: 50, Idle: 850}})
	if got := c.usage(); got != 0 {
		t.Errorf("first sample usage = %v, want 0", got)
	}
	if !c.hasPrev {
		t.Error("first sample must store the delta baseline")
	}
}

func TestCPUUsageDelta(t *testing.T) {
	c := newTestCPUCollector(4, []cpuTicks{
		{User: 100, System: 50, Idle: 850},
		{User: 150, System: 60, Idle: 890},
	})
	c.usage() // baseline

	// delta used = 60, delta total = 100 -> 60% * 4 cores = 240
	if got := c.usage(); got != 240 {
		t.Errorf("usage = %v, want 240", got)
	}
}

func TestCPUUsageClamped(t *testing.T) {
	// All delta time spent busy: 100% * 4 = 400, the upper bound.
	c := newTestCPUCollector(4, []cpuTicks{
		{User: 100, Idle: 100},
		{User: 300, Idle: 100},
	})
	c.usage()
	if got := c.usage(); got != 400 {
		t.Errorf("usage = %v, want clamp at 400", got)
	}

	// Counter regression must clamp at the floor, not go negative.
	c = newTestCPUCollector(2, []cpuTicks{
		{User: 500, Idle: 500},
		{User: 400, Idle: 700},
	})
	c.usage()
	if got := c.usage(); got != 0 {
		t.Errorf("usage after counter regression = %v, want 0", got)
	}
}

func TestPerCoreFallbackZeroFilled(t *testing.T) {
	c := newTestCPUCollector(8, nil)
	loads := c.perCoreUsage()
	if len(loads) != 8 {
		t.Fatalf("per-core length = %d, want 8", len(loads))
	}
	for i, l := range loads {
		if l != 0 {
			t.Errorf("core %d load = %v, want 0", i, l)
		}
	}
}

func TestTopProcessesFromTopSnapshot(t *testing.T) {
	topOut := `Processes: 400 total
PID    %CPU COMMAND
1      0.5  launchd
Processes: 400 total
PID    %CPU COMMAND
300    85.2 /Applications/Xcode.app
200    12.1 WindowServer
100    3.4  /usr/bin/top -l 2
`
	c := newTestCPUCollector(4, nil)
	c.run = fakeRunner(map[string]string{"top": topOut})

	procs := c.topProcesses(nil)
	if len(procs) != 3 {
		t.Fatalf("got %d processes, want 3", len(procs))
	}
	if procs[0].Name != "Xcode" || procs[0].CPUPercent != 85.2 {
		t.Errorf("top entry = %+v, want Xcode at 85.2", procs[0])
	}
	if procs[2].Name != "top" {
		t.Errorf("last entry name = %q, want top", procs[2].Name)
	}
}

func TestTopProcessesDowngradesToPS(t *testing.T) {
	psOut := `  PID %CPU COMM
  501 42.0 node
  502  7.5 Safari
`
	c := newTestCPUCollector(4, nil)
	c.run = fakeRunner(map[string]string{"ps": psOut})

	procs := c.topProcesses(nil)
	if len(procs) != 2 {
		t.Fatalf("got %d processes, want 2", len(procs))
	}
	if procs[0].Name != "node" || procs[0].CPUPercent != 42.0 {
		t.Errorf("top entry = %+v, want node at 42.0", procs[0])
	}
}

func TestTopProcessesDowngradesToApps(t *testing.T) {
	apps := []models.RunningApp{
		{Name: "Safari", PID: 900},
		{Name: "Finder", PID: 901, Hidden: true},
	}
	c := newTestCPUCollector(4, nil)

	procs := c.topProcesses(apps)
	if len(procs) != 1 {
		t.Fatalf("got %d processes, want 1 (hidden apps excluded)", len(procs))
	}
	if procs[0].Name != "Safari" || procs[0].CPUPercent != 0 {
		t.Errorf("entry = %+v, want Safari with zero usage", procs[0])
	}
}

func TestTopProcessesTruncatesToTopK(t *testing.T) {
	var lines string
	for i := 0; i < 40; i++ {
		lines += fmt.Sprintf("  %d %d.0 proc%d\n", 1000+i, 40-i, i)
	}
	c := newTestCPUCollector(4, nil)
	c.topK = 15
	c.run = fakeRunner(map[string]string{"ps": lines})

	procs := c.topProcesses(nil)
	if len(procs) != 15 {
		t.Fatalf("got %d processes, want 15", len(procs))
	}
	if procs[0].CPUPercent < procs[14].CPUPercent {
		t.Error("ranking must be descending by CPU")
	}
}

func TestTemperatureProbeParsing(t *testing.T) {
	cases := []struct {
		out  string
		want float64
		ok   bool
	}{
		{"61.2°C\n", 61.2, true},
		{"CPU temp: 58.75°C\n", 58.75, true},
		{"no sensors found", 0, false},
	}
	for _, c := range cases {
		got, ok := parseTemperature(c.out)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseTemperature(%q) = %v,%v want %v,%v", c.out, got, ok, c.want, c.ok)
		}
	}
}

func TestTemperatureHeuristicBounds(t *testing.T) {
	c := newTestCPUCollector(4, nil)
	c.uptime = func() (uint64, error) { return 12345, nil }

	for _, usage := range []float64{0, 200, 400} {
		temp := c.temperature(usage)
		if temp < 30 || temp > 95 {
			t.Errorf("heuristic temperature %v for usage %v outside plausible band", temp, usage)
		}
	}
}

func TestThrottledFromSpeedLimit(t *testing.T) {
	c := newTestCPUCollector(4, nil)
	c.run = fakeRunner(map[string]string{"pmset": "CPU_Power_notify\nCPU_Speed_Limit \t= 60\n"})
	if !c.throttled() {
		t.Error("speed limit 60 must report throttled")
	}

	c.run = fakeRunner(map[string]string{"pmset": "CPU_Speed_Limit = 100\n"})
	if c.throttled() {
		t.Error("speed limit 100 must not report throttled")
	}
}

func TestThrottledFrequencyFallback(t *testing.T) {
	c := newTestCPUCollector(4, nil)
	c.run = fakeRunner(map[string]string{"sysctl": "2100000000\n3200000000\n"})
	if !c.throttled() {
		t.Error("current freq below 80%% of max must report throttled")
	}

	c.run = fakeRunner(map[string]string{"sysctl": "3000000000\n3200000000\n"})
	if c.throttled() {
		t.Error("current freq within 80%% of max must not report throttled")
	}

	c.run = fakeRunner(nil)
	if c.throttled() {
		t.Error("no data sources must degrade to not throttled")
	}
}
