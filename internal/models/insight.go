package models

// Insight is a human-readable observation derived from the latest cycle.
// Insights are regenerated every cycle and never persisted.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// OptimizationSuggestion is a ranked, actionable recommendation.
type OptimizationSuggestion struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Impact      float64 `json:"impact"` // higher means more expected benefit
}
