package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// CommitKind classifies the result of a single stage-and-commit attempt.
	CommitKind string

	// PushState is the terminal state of the push protocol.
	PushState string

	// Preset names a bundle of pattern defaults.
	Preset string

	// EventOutcome is the recorded fate of one scheduled event.
	EventOutcome string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
	YAMLOut OutputMode = "yaml"
	HTMLOut OutputMode = "html"
)

// All run history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Commit result kinds reported by the sink.
const (
	CommitOK              CommitKind = "ok"
	CommitNothingToCommit CommitKind = "nothing_to_commit"
	CommitMissingIdentity CommitKind = "missing_identity"
	CommitLockContention  CommitKind = "lock_contention"
	CommitOther           CommitKind = "other"
)

// Push protocol terminal states.
const (
	PushPushed  PushState = "pushed"
	PushSkipped PushState = "skipped"
	PushFailed  PushState = "failed"
)

// Pattern presets.
const (
	BatchPreset      Preset = "batch" // default
	HighVolumePreset Preset = "high-volume"
)

// Per-event outcomes stored in run history.
const (
	EventCommitted EventOutcome = "committed"
	EventSkipped   EventOutcome = "skipped"
	EventFailed    EventOutcome = "failed"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
	YAMLOut: {},
	HTMLOut: {},
}

// ValidDatabaseBackends lists all valid run history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidPresets lists all valid pattern presets.
var ValidPresets = map[Preset]struct{}{
	BatchPreset:      {},
	HighVolumePreset: {},
}
