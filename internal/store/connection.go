package store

import (
	"sync"
	"time"
)

// Environment names the venue the terminal is attached to.
type Environment string

const (
	EnvironmentSim   Environment = "SIM"
	EnvironmentPaper Environment = "PAPER"
	EnvironmentLive  Environment = "LIVE"
)

// ConnectionStatus is the connectivity state exposed to observers.
type ConnectionStatus struct {
	Environment Environment
	Connected   bool
	LatencyMs   int
	UpdatedAt   time.Time
}

// ConnectionStore holds the current ConnectionStatus.
type ConnectionStore struct {
	mu     sync.RWMutex
	status ConnectionStatus
}

// NewConnectionStore creates a disconnected status for env.
func NewConnectionStore(env Environment) *ConnectionStore {
	if env == "" {
		env = EnvironmentSim
	}
	return &ConnectionStore{status: ConnectionStatus{Environment: env}}
}

// Get returns the current status.
func (s *ConnectionStore) Get() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetConnected flips the connected flag.
func (s *ConnectionStore) SetConnected(connected bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Connected = connected
	s.status.UpdatedAt = now
}

// SetLatency records the latest measured latency.
func (s *ConnectionStore) SetLatency(ms int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LatencyMs = ms
	s.status.UpdatedAt = now
}
