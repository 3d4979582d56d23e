package services

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"nabz/internal/collectors"
	"nabz/internal/config"
	"nabz/internal/models"
)

// Collector boundaries, narrow so tests can substitute fakes.
type cpuCollector interface {
	Collect(apps []models.RunningApp) models.CPUMetrics
}

type memoryCollector interface {
	Collect() models.MemoryMetrics
}

type batteryCollector interface {
	Collect() models.BatteryMetrics
}

type appsCollector interface {
	Collect() []models.RunningApp
}

// publishedState is everything external collaborators may read. It is
// replaced wholesale at the end of each cycle; getters hand out copies.
type publishedState struct {
	snapshot    models.Snapshot
	hasSnapshot bool
	detection   models.WorkloadDetection
	history     []models.WorkloadDetection
	anomalies   []models.SystemAnomaly
	score       models.PerformanceScore
	insights    []models.Insight
	suggestions []models.OptimizationSuggestion
	lastCycle   time.Time
}

// Monitor is the snapshot aggregator: one timer per configured cadence,
// collectors fanned out to workers, results composed into an immutable
// snapshot and run through the analysis pipeline. All mutable state is
// owned by the coordinator goroutine; consumers only see copies.
type Monitor struct {
	interval time.Duration

	cpu     cpuCollector
	memory  memoryCollector
	battery batteryCollector
	apps    appsCollector

	classifier *WorkloadClassifier
	detector   *AnomalyDetector
	scorer     *PerformanceScorer
	generator  *InsightGenerator
	session    *SessionMemory

	// collecting guards against overlapping cycles: a tick that arrives
	// while a cycle is still running is skipped, never queued.
	collecting atomic.Bool

	mu    sync.RWMutex
	state publishedState

	running atomic.Bool
	done    chan struct{}

	now func() time.Time
}

var monitor *Monitor

// InitMonitor builds the package monitor from configuration.
func InitMonitor(cfg config.Config) *Monitor {
	interval := cfg.Intensity.Interval()
	capacity := int(cfg.SessionRetentionDuration() / interval)
	if capacity < 1 {
		capacity = 1
	}

	monitor = &Monitor{
		interval:   interval,
		cpu:        collectors.NewCPUCollector(0, cfg.TopProcesses),
		memory:     collectors.NewMemoryCollector(cfg.TopProcesses),
		battery:    collectors.NewBatteryCollector(),
		apps:       collectors.NewAppsCollector(),
		classifier: NewWorkloadClassifier(),
		detector:   NewAnomalyDetector(cfg.AnomalyRetentionDuration()),
		scorer:     NewPerformanceScorer(),
		generator:  NewInsightGenerator(),
		session:    NewSessionMemory(capacity),
		done:       make(chan struct{}),
		now:        time.Now,
	}
	return monitor
}

// GetMonitor returns the initialized monitor.
func GetMonitor() *Monitor { return monitor }

// Interval returns the collection cadence.
func (m *Monitor) Interval() time.Duration { return m.interval }

// Start launches the collection loop. A second call is a no-op.
func (m *Monitor) Start() {
	if !m.running.CompareAndSwap(false, true) {
		return
	}

	go func() {
		// Prime published state immediately rather than waiting a full tick.
		m.runCycle()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.runCycle()
			case <-m.done:
				return
			}
		}
	}()

	log.Printf("Monitor started (interval: %v, session capacity: %d)", m.interval, m.session.Capacity())
}

// Stop halts the collection loop.
func (m *Monitor) Stop() {
	if m.running.CompareAndSwap(true, false) {
		close(m.done)
		log.Println("Monitor stopped")
	}
}

// runCycle performs one collection and analysis pass.
func (m *Monitor) runCycle() {
	if !m.collecting.CompareAndSwap(false, true) {
		log.Println("[MONITOR] previous cycle still running, skipping tick")
		return
	}
	defer m.collecting.Store(false)

	// Applications first: the CPU collector's last ranking tier needs them.
	apps := m.apps.Collect()

	// Expensive acquisition runs off the coordinator; compose when all done.
	var (
		wg   sync.WaitGroup
		cpu  models.CPUMetrics
		mem  models.MemoryMetrics
		batt models.BatteryMetrics
	)
	wg.Add(3)
	go func() { defer wg.Done(); cpu = m.cpu.Collect(apps) }()
	go func() { defer wg.Done(); mem = m.memory.Collect() }()
	go func() { defer wg.Done(); batt = m.battery.Collect() }()
	wg.Wait()

	snap := models.Snapshot{
		Timestamp: m.nextTimestamp(),
		CPU:       cpu,
		Memory:    mem,
		Battery:   batt,
		Apps:      apps,
	}

	detection := m.classifier.Classify(snap)
	history := m.classifier.History()
	anomalies := m.detector.Evaluate(snap, detection.Workload)
	score := m.scorer.Score(snap, detection.Workload)
	insights := m.generator.Insights(snap, detection, anomalies)
	suggestions := m.generator.Suggestions(snap, detection, anomalies)

	m.session.Add(snap)

	m.mu.Lock()
	m.state = publishedState{
		snapshot:    snap,
		hasSnapshot: true,
		detection:   detection,
		history:     history,
		anomalies:   anomalies,
		score:       score,
		insights:    insights,
		suggestions: suggestions,
		lastCycle:   snap.Timestamp,
	}
	m.mu.Unlock()
}

// nextTimestamp keeps snapshot timestamps strictly increasing even if the
// wall clock stalls or steps backwards between cycles.
func (m *Monitor) nextTimestamp() time.Time {
	ts := m.now()
	m.mu.RLock()
	last := m.state.lastCycle
	m.mu.RUnlock()
	if !ts.After(last) {
		ts = last.Add(time.Nanosecond)
	}
	return ts
}

// Snapshot returns the latest published snapshot.
func (m *Monitor) Snapshot() (models.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.snapshot, m.state.hasSnapshot
}

// Workload returns the current confidence-gated classification.
func (m *Monitor) Workload() models.WorkloadDetection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.detection
}

// WorkloadHistory returns the detection history as published by the last
// cycle. The classifier itself is only touched by the coordinator; readers
// get the copy captured into the state.
func (m *Monitor) WorkloadHistory() []models.WorkloadDetection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.WorkloadDetection, len(m.state.history))
	copy(out, m.state.history)
	return out
}

// Anomalies returns up to limit active anomalies, most severe first.
// A non-positive limit means the default outbound cap.
func (m *Monitor) Anomalies(limit int) []models.SystemAnomaly {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = maxAnomaliesOut
	}

	out := make([]models.SystemAnomaly, 0, len(m.state.anomalies))
	for _, a := range m.state.anomalies {
		if a.Severity == models.SeverityCritical {
			out = append(out, a)
		}
	}
	for _, a := range m.state.anomalies {
		if a.Severity != models.SeverityCritical {
			out = append(out, a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Score returns the latest composite performance score.
func (m *Monitor) Score() models.PerformanceScore {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.score
}

// Insights returns the latest capped insight list.
func (m *Monitor) Insights() []models.Insight {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Insight, len(m.state.insights))
	copy(out, m.state.insights)
	return out
}

// Suggestions returns the latest ranked suggestions.
func (m *Monitor) Suggestions() []models.OptimizationSuggestion {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.OptimizationSuggestion, len(m.state.suggestions))
	copy(out, m.state.suggestions)
	return out
}

// Report assembles the combined outbound payload.
func (m *Monitor) Report() models.PerformanceReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.PerformanceReport{
		Timestamp:   m.state.lastCycle,
		Score:       m.state.score,
		Workload:    m.state.detection,
		Anomalies:   firstN(m.state.anomalies, maxAnomaliesOut),
		Insights:    m.state.insights,
		Suggestions: m.state.suggestions,
	}
}

// Session exposes the rolling snapshot history for trailing-window queries.
func (m *Monitor) Session() *SessionMemory { return m.session }

// LastCycle returns when the monitor last completed a cycle.
func (m *Monitor) LastCycle() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.lastCycle
}

func firstN(anomalies []models.SystemAnomaly, n int) []models.SystemAnomaly {
	if len(anomalies) > n {
		anomalies = anomalies[:n]
	}
	out := make([]models.SystemAnomaly, len(anomalies))
	copy(out, anomalies)
	return out
}
