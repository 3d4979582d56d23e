package services

import (
	"strings"
	"time"

	"nabz/internal/models"
)

// publishThreshold gates updates to the externally visible workload: the
// classification only flips when a category clears this confidence, which
// keeps per-tick noise from flapping the published value.
const publishThreshold = 0.7

// detectionRetention bounds the classification history.
const detectionRetention = time.Hour

// categorySignals defines how one workload category accumulates confidence:
// a base value for a known-application match plus bonuses from corroborating
// resource signals, each with its own threshold.
type categorySignals struct {
	workload models.Workload
	apps     []string

	base float64

	cpuOver  float64 // normalized 0-100
	cpuBonus float64

	memOver  float64
	memBonus float64

	powerOver  float64
	powerBonus float64
}

var categoryTable = []categorySignals{
	{
		workload: models.WorkloadDevelopment,
		apps: []string{"Xcode", "Visual Studio Code", "IntelliJ IDEA", "GoLand",
			"PyCharm", "Terminal", "iTerm2", "Docker Desktop", "Android Studio"},
		base:    0.5,
		cpuOver: 50, cpuBonus: 0.2,
		memOver: 60, memBonus: 0.15,
		powerOver: 20, powerBonus: 0.1,
	},
	{
		workload: models.WorkloadDesign,
		apps: []string{"Figma", "Sketch", "Adobe Photoshop", "Adobe Illustrator",
			"Affinity Designer", "Affinity Photo", "Blender"},
		base:    0.5,
		cpuOver: 40, cpuBonus: 0.15,
		memOver: 65, memBonus: 0.2,
		powerOver: 20, powerBonus: 0.1,
	},
	{
		workload: models.WorkloadVideoEditing,
		apps: []string{"Final Cut Pro", "Adobe Premiere Pro", "DaVinci Resolve",
			"iMovie", "Adobe After Effects", "Compressor", "HandBrake"},
		base:    0.55,
		cpuOver: 60, cpuBonus: 0.25,
		memOver: 70, memBonus: 0.1,
		powerOver: 30, powerBonus: 0.1,
	},
	{
		workload: models.WorkloadGaming,
		apps:     []string{"Steam", "Epic Games Launcher", "League of Legends", "Minecraft", "Battle.net"},
		base:     0.55,
		cpuOver:  50, cpuBonus: 0.2,
		memOver: 60, memBonus: 0.1,
		powerOver: 35, powerBonus: 0.15,
	},
	{
		workload: models.WorkloadBrowsing,
		apps:     browserApps,
		base:     0.35,
		cpuOver:  30, cpuBonus: 0.05,
	},
	{
		workload: models.WorkloadOffice,
		apps: []string{"Microsoft Word", "Microsoft Excel", "Microsoft PowerPoint",
			"Pages", "Numbers", "Keynote", "Notion", "Obsidian"},
		base:    0.55,
		cpuOver: 25, cpuBonus: 0.1,
		memOver: 50, memBonus: 0.1,
	},
}

var browserApps = []string{"Safari", "Google Chrome", "Firefox", "Arc", "Microsoft Edge", "Brave Browser"}

// WorkloadClassifier infers the activity category from snapshots and keeps
// a confidence-gated current classification plus a bounded history.
// It is mutated only by the monitor's coordinator goroutine; the published
// copy lives in the monitor's state.
type WorkloadClassifier struct {
	current models.WorkloadDetection
	history []models.WorkloadDetection
}

// NewWorkloadClassifier starts out unknown with zero confidence.
func NewWorkloadClassifier() *WorkloadClassifier {
	return &WorkloadClassifier{
		current: models.WorkloadDetection{Workload: models.WorkloadUnknown},
	}
}

// Classify scores every category against the snapshot, records the best
// candidate in history, and updates the current classification only when
// the candidate clears the publish threshold.
func (c *WorkloadClassifier) Classify(snap models.Snapshot) models.WorkloadDetection {
	best := models.WorkloadDetection{
		Timestamp: snap.Timestamp,
		Workload:  models.WorkloadUnknown,
	}

	names := visibleAppNames(snap.Apps)
	cpuNorm := snap.CPU.NormalizedUsage()

	for _, cat := range categoryTable {
		conf := cat.confidence(names, cpuNorm, snap.Memory.UsedPercent, snap.Battery.PowerDrawWatts)
		if conf > best.Confidence {
			best.Confidence = conf
			best.Workload = cat.workload
		}
	}

	// Resource-shape heuristic: quiet machine showing nothing but browsers
	// is browsing even without a strong app signal.
	if best.Confidence < publishThreshold && cpuNorm < 30 && onlyBrowsers(names) {
		best.Workload = models.WorkloadBrowsing
		best.Confidence = 0.75
	}

	c.history = append(c.history, best)
	c.prune(snap.Timestamp)

	if best.Confidence > publishThreshold {
		c.current = best
	}
	return c.current
}

// History returns the retained detections, oldest first.
func (c *WorkloadClassifier) History() []models.WorkloadDetection {
	out := make([]models.WorkloadDetection, len(c.history))
	copy(out, c.history)
	return out
}

func (c *WorkloadClassifier) prune(now time.Time) {
	cutoff := now.Add(-detectionRetention)
	kept := c.history[:0]
	for _, d := range c.history {
		if d.Timestamp.After(cutoff) {
			kept = append(kept, d)
		}
	}
	c.history = kept
}

// confidence accumulates the base value for an app match plus resource
// bonuses, capped at 1.0. No app match means no confidence at all: resource
// shape alone cannot claim a category here.
func (s categorySignals) confidence(names map[string]bool, cpuNorm, memPercent, watts float64) float64 {
	matched := false
	for _, app := range s.apps {
		if names[strings.ToLower(app)] {
			matched = true
			break
		}
	}
	if !matched {
		return 0
	}

	conf := s.base
	if s.cpuBonus > 0 && cpuNorm > s.cpuOver {
		conf += s.cpuBonus
	}
	if s.memBonus > 0 && memPercent > s.memOver {
		conf += s.memBonus
	}
	if s.powerBonus > 0 && watts > s.powerOver {
		conf += s.powerBonus
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

func visibleAppNames(apps []models.RunningApp) map[string]bool {
	names := make(map[string]bool, len(apps))
	for _, app := range apps {
		if app.Hidden {
			continue
		}
		names[strings.ToLower(app.Name)] = true
	}
	return names
}

func onlyBrowsers(names map[string]bool) bool {
	if len(names) == 0 {
		return false
	}
	browsers := make(map[string]bool, len(browserApps))
	for _, b := range browserApps {
		browsers[strings.ToLower(b)] = true
	}
	for name := range names {
		if !browsers[name] {
			return false
		}
	}
	return true
}
