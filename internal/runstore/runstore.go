// Package runstore persists scheduler runs and their per-event outcomes.
package runstore

import (
	"sync"

	"github.com/huangsam/cadence/internal/contract"
)

// RunStoreManager holds the process-wide run store.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &RunStoreManager{} // Compile-time check

// GetRunStore returns the run store, or nil when tracking is disabled.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
