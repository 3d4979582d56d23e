package controllers

import (
	"net/http"
	"strconv"
	"time"

	"nabz/internal/services"

	"github.com/gin-gonic/gin"
)

// HandleGetSnapshot returns the latest resource snapshot
func HandleGetSnapshot(c *gin.Context) {
	m := services.GetMonitor()
	snap, ok := m.Snapshot()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot collected yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// HandleGetWorkload returns the current workload classification
func HandleGetWorkload(c *gin.Context) {
	m := services.GetMonitor()
	c.JSON(http.StatusOK, m.Workload())
}

// HandleGetWorkloadHistory returns retained workload detections, oldest first
func HandleGetWorkloadHistory(c *gin.Context) {
	m := services.GetMonitor()
	history := m.WorkloadHistory()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(history),
		"history": history,
	})
}

// HandleGetAnomalies returns active anomalies, most severe first. Without
// an explicit limit the response is capped like every other outbound view.
func HandleGetAnomalies(c *gin.Context) {
	m := services.GetMonitor()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	anomalies := m.Anomalies(limit)
	c.JSON(http.StatusOK, gin.H{
		"count":     len(anomalies),
		"anomalies": anomalies,
	})
}

// HandleGetScore returns the composite performance score
func HandleGetScore(c *gin.Context) {
	m := services.GetMonitor()
	c.JSON(http.StatusOK, m.Score())
}

// HandleGetInsights returns the current insight list
func HandleGetInsights(c *gin.Context) {
	m := services.GetMonitor()
	c.JSON(http.StatusOK, gin.H{"insights": m.Insights()})
}

// HandleGetSuggestions returns optimization suggestions ranked by impact
func HandleGetSuggestions(c *gin.Context) {
	m := services.GetMonitor()
	c.JSON(http.StatusOK, gin.H{"suggestions": m.Suggestions()})
}

// HandleGetReport returns the combined intelligence report
func HandleGetReport(c *gin.Context) {
	m := services.GetMonitor()
	c.JSON(http.StatusOK, m.Report())
}

// HandleGetSessionHistory returns buffered snapshots, optionally bounded
// to the trailing N minutes
func HandleGetSessionHistory(c *gin.Context) {
	m := services.GetMonitor()

	cutoff := time.Time{}
	if raw := c.Query("minutes"); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be a positive integer"})
			return
		}
		cutoff = time.Now().Add(-time.Duration(mins) * time.Minute)
	}

	snapshots := m.Session().Since(cutoff)
	c.JSON(http.StatusOK, gin.H{
		"count":     len(snapshots),
		"capacity":  m.Session().Capacity(),
		"snapshots": snapshots,
	})
}

// HandleGetSessionAverages returns trailing-window means (default 10 minutes)
func HandleGetSessionAverages(c *gin.Context) {
	m := services.GetMonitor()

	window := 10 * time.Minute
	if raw := c.Query("minutes"); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minutes must be a positive integer"})
			return
		}
		window = time.Duration(mins) * time.Minute
	}

	c.JSON(http.StatusOK, m.Session().Averages(window))
}

// HandleHealth reports liveness and the age of the last collection cycle
func HandleHealth(c *gin.Context) {
	m := services.GetMonitor()
	last := m.LastCycle()

	status := "ok"
	// Two missed intervals means the collector loop is stuck or dead
	if last.IsZero() || time.Since(last) > 2*m.Interval() {
		status = "stale"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"last_cycle": last,
		"interval":   m.Interval().String(),
		"session":    m.Session().Len(),
	})
}
