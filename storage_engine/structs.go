package storageengine

import (
	"io"
	"log/slog"
	"time"

	"SharpHSQL/storage_engine/cache"
	checkpoint "SharpHSQL/storage_engine/checkpoint_manager"
	"SharpHSQL/storage_engine/wal_manager"
)

// Config holds the tunables of a database. Values stored in an existing
// database's properties take precedence over everything but ReadOnly.
type Config struct {
	CacheScale         int
	WriteDelay         bool
	WriteDelayInterval time.Duration
	LogSizeMB          int    // automatic checkpoint threshold, 0 disables
	BackupCompression  string // "none" or "xz"
	BlockCacheBytes    int64  // record byte cache, 0 disables
	ReadOnly           bool
}

func DefaultConfig() Config {
	return Config{
		CacheScale:         cache.DefaultScale,
		WriteDelay:         true,
		WriteDelayInterval: wal_manager.DefaultWriteDelay,
		LogSizeMB:          200,
		BackupCompression:  CompressionNone,
		BlockCacheBytes:    8 << 20,
	}
}

const (
	CompressionNone = "none"
	CompressionXZ   = "xz"
)

// Target is the database a Log rebuilds from its script and dumps at
// checkpoints.
type Target interface {
	// ResetForReplay drops every table and session.
	ResetForReplay()
	// Replay executes one script statement for its session, without logging.
	Replay(line wal_manager.Line) error
	// FinishReplay rolls back the sessions left open by the script.
	FinishReplay() error
	// WriteScript writes the statements that recreate the database.
	WriteScript(w io.Writer, compact bool) error
}

// Log owns the files of one database: properties, script, data file and
// backup.
type Log struct {
	dbPath string // directory and base name, no extension
	dir    string
	cfg    Config

	propsMgr *checkpoint.CheckpointManager
	props    *checkpoint.Properties

	Cache      *cache.Cache
	script     *wal_manager.ScriptWriter
	scriptBase int64 // script size when opened
	target     Target

	readOnly  bool
	replaying bool
	open      bool

	// beforeRename runs between writing a checkpoint's new files and
	// renaming them into place.
	beforeRename func() error

	log *slog.Logger
}
