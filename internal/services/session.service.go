package services

import (
	"sync"
	"time"

	"nabz/internal/models"
)

// SessionMemory is a fixed-capacity ring buffer of snapshots for the
// current process lifetime. Insertion order is strict temporal order;
// once full, every insert evicts exactly the oldest entry. Nothing is
// ever persisted to disk.
type SessionMemory struct {
	mu       sync.RWMutex
	entries  []models.Snapshot
	head     int // index of the oldest entry
	size     int
	capacity int
}

// SessionAverages holds trailing-window means over the buffered snapshots.
type SessionAverages struct {
	Window        time.Duration `json:"window"`
	Samples       int           `json:"samples"`
	CPUPercent    float64       `json:"cpu_percent"`
	MemoryPercent float64       `json:"memory_percent"`
	PowerWatts    float64       `json:"power_watts"`
}

// NewSessionMemory creates a buffer holding up to capacity snapshots.
func NewSessionMemory(capacity int) *SessionMemory {
	if capacity <= 0 {
		capacity = 720 // 1h at 5s ticks
	}
	return &SessionMemory{
		entries:  make([]models.Snapshot, capacity),
		capacity: capacity,
	}
}

// Add inserts a snapshot, evicting the oldest entry when full.
func (s *SessionMemory) Add(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := (s.head + s.size) % s.capacity
	s.entries[tail] = snap
	if s.size < s.capacity {
		s.size++
	} else {
		s.head = (s.head + 1) % s.capacity
	}
}

// Len returns the number of buffered snapshots.
func (s *SessionMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Capacity returns the configured maximum.
func (s *SessionMemory) Capacity() int { return s.capacity }

// Latest returns the most recent snapshot, if any.
func (s *SessionMemory) Latest() (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.size == 0 {
		return models.Snapshot{}, false
	}
	return s.entries[(s.head+s.size-1)%s.capacity], true
}

// Since returns all snapshots newer than the cutoff, oldest first.
func (s *SessionMemory) Since(cutoff time.Time) []models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Snapshot
	for i := 0; i < s.size; i++ {
		snap := s.entries[(s.head+i)%s.capacity]
		if snap.Timestamp.After(cutoff) {
			out = append(out, snap)
		}
	}
	return out
}

// Averages computes mean CPU%, memory% and power draw over the trailing
// window, measured back from the newest buffered snapshot.
func (s *SessionMemory) Averages(window time.Duration) SessionAverages {
	s.mu.RLock()
	defer s.mu.RUnlock()

	avg := SessionAverages{Window: window}
	if s.size == 0 {
		return avg
	}

	newest := s.entries[(s.head+s.size-1)%s.capacity].Timestamp
	cutoff := newest.Add(-window)

	for i := 0; i < s.size; i++ {
		snap := s.entries[(s.head+i)%s.capacity]
		if !snap.Timestamp.After(cutoff) {
			continue
		}
		avg.Samples++
		avg.CPUPercent += snap.CPU.NormalizedUsage()
		avg.MemoryPercent += snap.Memory.UsedPercent
		avg.PowerWatts += snap.Battery.PowerDrawWatts
	}
	if avg.Samples > 0 {
		n := float64(avg.Samples)
		avg.CPUPercent /= n
		avg.MemoryPercent /= n
		avg.PowerWatts /= n
	}
	return avg
}
