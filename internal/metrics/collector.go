package metrics

import (
	"time"

	"pipeline-player/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current gauge values sourced from the running session.
// Playlist size is not here: the playlist package sets its own gauge on
// every mutation.
type Stats struct {
	State          int
	FramesBuffered int
	ZoomFactor     float64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	SessionState.Set(float64(stats.State))
	SessionFramesBuffered.Set(float64(stats.FramesBuffered))
	SessionZoomFactor.Set(stats.ZoomFactor)

	logging.Debug("Metrics collected: state=%d, frames=%d, zoom=%.2f",
		stats.State, stats.FramesBuffered, stats.ZoomFactor)
}
