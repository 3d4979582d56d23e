package collectors

import (
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"nabz/internal/models"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	vmStatTimeout = 2 * time.Second
	psMemTimeout  = 2 * time.Second

	// Processes below this resident size are immaterial for ranking.
	memoryRankingFloorMB = 10.0
)

// vmPages holds the raw page counters decoded from the VM statistics tool.
// Decoding happens here at the collector boundary only; everything past
// this struct is strongly typed bytes.
type vmPages struct {
	PageSize    uint64
	Free        uint64
	Active      uint64
	Inactive    uint64
	Speculative uint64
	Wired       uint64
	Purgeable   uint64
	Compressed  uint64
	FileBacked  uint64
}

// MemoryCollector produces MemoryMetrics once per collection cycle.
type MemoryCollector struct {
	topK int

	run      Runner
	total    func() (uint64, error)
	swap     func() (uint64, error)
	fallback func() (*mem.VirtualMemoryStat, error)
	procs    func() ([]models.ProcessUsage, error)
}

// NewMemoryCollector builds a collector with the default OS bindings.
func NewMemoryCollector(topK int) *MemoryCollector {
	if topK <= 0 {
		topK = 20
	}
	return &MemoryCollector{
		topK:     topK,
		run:      Run,
		total:    readTotalMemory,
		swap:     readSwapUsed,
		fallback: mem.VirtualMemory,
		procs:    readProcessMemory,
	}
}

func readTotalMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

func readSwapUsed() (uint64, error) {
	swap, err := mem.SwapMemory()
	if err != nil {
		return 0, err
	}
	return swap.Used, nil
}

// Collect assembles the memory metric bundle from VM page counters, with a
// gopsutil fallback when the page-counter tool is unavailable.
func (m *MemoryCollector) Collect() models.MemoryMetrics {
	total, err := m.total()
	if err != nil {
		log.Printf("[MEM] total memory query failed: %v", err)
	}

	metrics := models.MemoryMetrics{TotalBytes: total}

	if pages, ok := m.vmStat(); ok {
		ps := pages.PageSize
		metrics.FreeBytes = pages.Free * ps
		metrics.WiredBytes = pages.Wired * ps
		metrics.CompressedBytes = pages.Compressed * ps
		// App memory approximates everything a user-space process touched.
		metrics.AppMemoryBytes = (pages.Active + pages.Inactive + pages.Speculative + pages.FileBacked) * ps
		// Heuristic: half the inactive pool behaves like file cache.
		metrics.CachedFilesBytes = (pages.Purgeable + pages.Inactive/2) * ps
	} else if vm, err := m.fallback(); err == nil {
		metrics.FreeBytes = vm.Free
		metrics.WiredBytes = vm.Wired
		metrics.AppMemoryBytes = vm.Active + vm.Inactive
		metrics.CachedFilesBytes = vm.Cached
		if total == 0 {
			metrics.TotalBytes = vm.Total
		}
	} else {
		log.Printf("[MEM] virtual memory fallback failed: %v", err)
	}

	if metrics.TotalBytes > metrics.FreeBytes {
		metrics.UsedBytes = metrics.TotalBytes - metrics.FreeBytes
	}
	if metrics.TotalBytes > 0 {
		metrics.UsedPercent = float64(metrics.UsedBytes) / float64(metrics.TotalBytes) * 100
	}

	if swap, err := m.swap(); err == nil {
		metrics.SwapUsedBytes = swap
	}

	metrics.Pressure = m.pressure(metrics.UsedPercent)
	metrics.TopProcesses = m.topProcesses()
	return metrics
}

// vmStat runs the page-counter tool and decodes its untyped output.
func (m *MemoryCollector) vmStat() (vmPages, bool) {
	out, err := m.run(vmStatTimeout, "vm_stat")
	if err != nil {
		log.Printf("[MEM] vm_stat unavailable, downgrading: %v", err)
		return vmPages{}, false
	}
	pages, ok := parseVMStat(out)
	return pages, ok
}

// parseVMStat decodes `vm_stat` output, including the page size announced
// in its header line.
func parseVMStat(out string) (vmPages, bool) {
	pages := vmPages{PageSize: 4096}
	seen := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "page size of") {
			fields := strings.Fields(line)
			for i, f := range fields {
				if f == "of" && i+1 < len(fields) {
					if ps, err := strconv.ParseUint(fields[i+1], 10, 64); err == nil && ps > 0 {
						pages.PageSize = ps
					}
				}
			}
			continue
		}

		idx := strings.LastIndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSuffix(strings.TrimSpace(line[idx+1:]), ".")
		count, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			continue
		}

		switch key {
		case "Pages free":
			pages.Free = count
		case "Pages active":
			pages.Active = count
		case "Pages inactive":
			pages.Inactive = count
		case "Pages speculative":
			pages.Speculative = count
		case "Pages wired down":
			pages.Wired = count
		case "Pages purgeable":
			pages.Purgeable = count
		case "Pages occupied by compressor":
			pages.Compressed = count
		case "File-backed pages":
			pages.FileBacked = count
		default:
			continue
		}
		seen++
	}
	return pages, seen > 0
}

// pressure resolves the memory pressure tier. The OS pressure level is
// authoritative when readable; otherwise percentage thresholds over the
// same snapshot stand in.
func (m *MemoryCollector) pressure(usedPercent float64) models.MemoryPressure {
	if out, err := m.run(vmStatTimeout, "sysctl", "-n", "kern.memorystatus_vm_pressure_level"); err == nil {
		switch strings.TrimSpace(out) {
		case "1":
			return models.PressureNormal
		case "2":
			return models.PressureWarning
		case "4":
			return models.PressureCritical
		}
	}

	switch {
	case usedPercent > 95:
		return models.PressureCritical
	case usedPercent > 85:
		return models.PressureWarning
	default:
		return models.PressureNormal
	}
}

// topProcesses ranks processes by resident memory: a single `ps` pass
// first, gopsutil enumeration as the fallback tier. Entries below the
// materiality floor are dropped.
func (m *MemoryCollector) topProcesses() []models.ProcessUsage {
	if out, err := m.run(psMemTimeout, "ps", "-Aceo", "pid,rss,comm", "-m"); err == nil {
		if procs := parsePSMemOutput(out); len(procs) > 0 {
			return rankByMemory(procs, m.topK)
		}
	} else {
		log.Printf("[MEM] ps snapshot unavailable, downgrading: %v", err)
	}

	procs, err := m.procs()
	if err != nil {
		log.Printf("[MEM] process enumeration failed: %v", err)
		return nil
	}
	return rankByMemory(procs, m.topK)
}

// parsePSMemOutput parses `ps -Aceo pid,rss,comm` lines; rss is in KB.
func parsePSMemOutput(out string) []models.ProcessUsage {
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
		rssKB, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		procs = append(procs, models.ProcessUsage{
			PID:      int32(pid),
			Name:     CleanProcessName(strings.Join(fields[2:], " ")),
			MemoryMB: float64(rssKB) / 1024,
		})
	}
	return procs
}

func readProcessMemory() ([]models.ProcessUsage, error) {
	all, err := process.Processes()
	if err != nil {
		return nil, err
	}
	var procs []models.ProcessUsage
	for _, p := range all {
		info, err := p.MemoryInfo()
		if err != nil || info == nil {
			continue
		}
		name, err := p.Name()
		if err != nil {
			continue
		}
		procs = append(procs, models.ProcessUsage{
			PID:      p.Pid,
			Name:     CleanProcessName(name),
			MemoryMB: float64(info.RSS) / (1024 * 1024),
		})
	}
	return procs, nil
}

func rankByMemory(procs []models.ProcessUsage, topK int) []models.ProcessUsage {
	filtered := procs[:0:0]
	for _, p := range procs {
		if p.MemoryMB > memoryRankingFloorMB {
			filtered = append(filtered, p)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].MemoryMB > filtered[j].MemoryMB
	})
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered
}
