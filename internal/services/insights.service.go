package services

import (
	"fmt"
	"sort"

	"nabz/internal/models"
)

// Outbound views are capped so collaborators get the few items that matter,
// not a feed.
const (
	maxInsights     = 3
	maxSuggestions  = 5
	maxAnomaliesOut = 3
)

// InsightGenerator turns each cycle's snapshot plus derived state into
// human-readable insights and ranked optimization suggestions. Both are
// regenerated every cycle and never persisted.
type InsightGenerator struct{}

// NewInsightGenerator returns a generator.
func NewInsightGenerator() *InsightGenerator { return &InsightGenerator{} }

// Insights derives up to maxInsights observations from the cycle.
func (g *InsightGenerator) Insights(snap models.Snapshot, detection models.WorkloadDetection, anomalies []models.SystemAnomaly) []models.Insight {
	var insights []models.Insight

	for _, a := range anomalies {
		if a.Severity == models.SeverityCritical {
			insights = append(insights, models.Insight{
				Title:       a.Title,
				Description: a.Description,
				Category:    "anomaly",
			})
		}
	}

	if len(snap.CPU.TopProcesses) > 0 {
		top := snap.CPU.TopProcesses[0]
		if top.CPUPercent >= 50 {
			insights = append(insights, models.Insight{
				Title:       fmt.Sprintf("%s dominates CPU", top.Name),
				Description: fmt.Sprintf("%s is using %.0f%% CPU right now", top.Name, top.CPUPercent),
				Category:    "cpu",
			})
		}
	}

	if snap.Memory.Pressure != models.PressureNormal {
		insights = append(insights, models.Insight{
			Title:       "Memory pressure is elevated",
			Description: fmt.Sprintf("The system reports %s memory pressure at %.0f%% used", snap.Memory.Pressure, snap.Memory.UsedPercent),
			Category:    "memory",
		})
	}

	if !snap.Battery.Charging() && snap.Battery.PowerDrawWatts > 0 && snap.Battery.LevelPercent < 20 {
		insights = append(insights, models.Insight{
			Title:       "Battery running low",
			Description: fmt.Sprintf("%.0f%% remaining while drawing %.1fW", snap.Battery.LevelPercent, snap.Battery.PowerDrawWatts),
			Category:    "battery",
		})
	}

	if detection.Workload != models.WorkloadUnknown {
		insights = append(insights, models.Insight{
			Title:       fmt.Sprintf("Looks like %s", detection.Workload),
			Description: fmt.Sprintf("Classified as %s with %.0f%% confidence", detection.Workload, detection.Confidence*100),
			Category:    "workload",
		})
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// Suggestions derives optimization suggestions ranked by estimated impact.
func (g *InsightGenerator) Suggestions(snap models.Snapshot, detection models.WorkloadDetection, anomalies []models.SystemAnomaly) []models.OptimizationSuggestion {
	var out []models.OptimizationSuggestion

	for _, a := range anomalies {
		if a.Type != models.AnomalyRunawayProcess {
			continue
		}
		out = append(out, models.OptimizationSuggestion{
			Title:       fmt.Sprintf("Restart %s", a.Component),
			Description: a.Description,
			Impact:      0.9,
		})
	}

	if snap.Memory.Pressure == models.PressureCritical {
		out = append(out, models.OptimizationSuggestion{
			Title:       "Free up memory",
			Description: "Memory pressure is critical; quit the largest applications in the memory list",
			Impact:      0.85,
		})
	} else if snap.Memory.Pressure == models.PressureWarning {
		out = append(out, models.OptimizationSuggestion{
			Title:       "Close unused applications",
			Description: "Memory pressure is building; closing idle apps keeps swapping away",
			Impact:      0.6,
		})
	}

	if detection.Workload == models.WorkloadBrowsing && snap.Memory.UsedPercent > 70 {
		out = append(out, models.OptimizationSuggestion{
			Title:       "Trim browser tabs",
			Description: "Browsing is the active workload and memory is filling; old tabs are the usual cause",
			Impact:      0.5,
		})
	}

	if !snap.Battery.Charging() && snap.Battery.PowerDrawWatts > baselineFor(detection.Workload).PowerWatts {
		out = append(out, models.OptimizationSuggestion{
			Title:       "Reduce power draw",
			Description: fmt.Sprintf("Drawing %.1fW on battery; lower screen brightness or pause background work", snap.Battery.PowerDrawWatts),
			Impact:      0.4,
		})
	}

	if snap.CPU.Throttled {
		out = append(out, models.OptimizationSuggestion{
			Title:       "Let the machine cool down",
			Description: "The CPU is thermally throttled; performance returns once temperature drops",
			Impact:      0.7,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Impact > out[j].Impact })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
