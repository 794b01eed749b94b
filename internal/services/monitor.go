package services

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
)

// MonitorService periodically re-runs every saved search so that its delay
// flag stays current without the user opening it.
type MonitorService struct {
	transit  *TransitService
	interval time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	running  bool
}

// NewMonitorService creates a new monitor
func NewMonitorService(transit *TransitService, interval time.Duration) *MonitorService {
	return &MonitorService{
		transit:  transit,
		interval: interval,
	}
}

// Start begins the background loop. Calling it twice is a no-op.
func (m *MonitorService) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	m.running = true
	m.stopChan = make(chan struct{})

	log.Printf("Starting saved search monitor every %v", m.interval)
	go m.monitorLoop(ctx, m.stopChan)
	return nil
}

// Stop gracefully stops the monitor
func (m *MonitorService) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	close(m.stopChan)
	log.Printf("Stopped saved search monitor")
}

// IsRunning returns whether the monitor is active
func (m *MonitorService) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *MonitorService) monitorLoop(ctx context.Context, stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			err, _ := errors.ParseStack(debug.Stack())
			logging.Errorw(ctx, "Monitor: recovered from panic",
				"error", r, "error.stack_trace", err.MinimalStack(3, 5))
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()
		}
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckAll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Monitor stopping due to context cancellation")
			return
		case <-stop:
			log.Printf("Monitor stopping due to stop signal")
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll re-runs every saved search once and returns how many reported a
// delay. Individual failures are logged and skipped.
func (m *MonitorService) CheckAll(ctx context.Context) int {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	saved, err := m.transit.ListSaved(checkCtx)
	if err != nil {
		log.Printf("Monitor: failed to list saved searches: %v", err)
		return 0
	}

	delayed := 0
	for _, s := range saved {
		if checkCtx.Err() != nil {
			break
		}
		alert, err := m.transit.CheckSaved(checkCtx, s)
		if err != nil {
			log.Printf("Monitor: check of %q failed: %v", s.Query, err)
			continue
		}
		if alert {
			delayed++
		}
	}

	log.Printf("Monitor: checked %d saved searches, %d with delays", len(saved), delayed)
	return delayed
}
