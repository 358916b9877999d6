package wsclient

import (
	"sync"

	"citation-engine-be/internal/pkg/logger"
)

// Exactly one logical connection exists per user identity per process. The
// registry makes that singleton discipline explicit: a manager is created
// on first use and torn down on explicit release (logout/disconnect), never
// implicitly recreated mid-reconfiguration.
var (
	registryMu sync.Mutex
	registry   = make(map[string]*Manager)
)

// ForIdentity returns the process-wide manager for the given identity,
// creating it on first use.
func ForIdentity(identity string, cfg Config, log logger.ILogger) *Manager {
	registryMu.Lock()
	defer registryMu.Unlock()

	if m, ok := registry[identity]; ok {
		return m
	}
	m := NewManager(cfg, log)
	registry[identity] = m
	return m
}

// ReleaseIdentity disconnects and forgets the manager for an identity.
func ReleaseIdentity(identity string) {
	registryMu.Lock()
	m, ok := registry[identity]
	delete(registry, identity)
	registryMu.Unlock()

	if ok {
		m.Disconnect()
	}
}
