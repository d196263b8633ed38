// Package schedule persists the daily automation gate and computes cron run times.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/schema"
)

const (
	// GateInterval is how long after a push the automation stays closed.
	GateInterval = 23 * time.Hour

	// PushInterval is the nominal spacing of scheduled pushes.
	PushInterval = 24 * time.Hour
)

// ErrCorruptState is returned by Load when the file exists but cannot be decoded.
var ErrCorruptState = errors.New("corrupt schedule state")

// Store keeps the schedule state in a JSON file.
type Store struct {
	path string
}

var _ contract.ScheduleStore = &Store{} // Compile-time check

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the state. A missing file gives a zero state and false.
func (s *Store) Load() (schema.ScheduleState, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return schema.ScheduleState{}, false, nil
	}
	if err != nil {
		return schema.ScheduleState{}, false, err
	}
	var state schema.ScheduleState
	if err := json.Unmarshal(data, &state); err != nil {
		return schema.ScheduleState{}, false, fmt.Errorf("%w: %s: %w", ErrCorruptState, s.path, err)
	}
	return state, true, nil
}

// ShouldRun is true when there is no usable state or the last push is at
// least GateInterval old.
func (s *Store) ShouldRun(now time.Time) bool {
	state, ok, err := s.Load()
	if err != nil || !ok || state.LastPush.IsZero() {
		return true
	}
	return now.Sub(state.LastPush) >= GateInterval
}

// RecordPush stores now as the last push and increments the run counter.
// A corrupt file is replaced.
func (s *Store) RecordPush(now time.Time) error {
	state, _, _ := s.Load()
	state.LastPush = now
	state.LastRunTime = now
	state.TotalRuns++
	return s.save(state)
}

// NextPush returns LastPush + PushInterval, or false without a recorded push.
func (s *Store) NextPush() (time.Time, bool) {
	state, ok, err := s.Load()
	if err != nil || !ok || state.LastPush.IsZero() {
		return time.Time{}, false
	}
	return state.LastPush.Add(PushInterval), true
}

// save writes through a temp file in the same directory and renames it into place.
func (s *Store) save(state schema.ScheduleState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
