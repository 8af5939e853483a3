package storageengine

import (
	"os"
	"path/filepath"

	"SharpHSQL/dberror"
	"SharpHSQL/logging"
	"SharpHSQL/storage_engine/cache"
	checkpoint "SharpHSQL/storage_engine/checkpoint_manager"
	"SharpHSQL/storage_engine/wal_manager"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

/*
Log keeps the files of a database consistent with each other.

	<name>.properties   settings and the Modified flag
	<name>.script       statements since the last checkpoint, preceded by
	                    the snapshot that checkpoint wrote
	<name>.data         rows of cached tables
	<name>.backup       the data file as of the last checkpoint

Between checkpoints the data file may hold changes the script also has, so
recovery always starts from the backup and replays the whole script.
*/

// NewLog prepares the log of the database at dbPath (directory plus base
// name). Nothing is opened before Open.
func NewLog(dbPath string, cfg Config) *Log {
	return &Log{
		dbPath:   dbPath,
		dir:      filepath.Dir(dbPath),
		cfg:      cfg,
		propsMgr: checkpoint.NewCheckpointManager(dbPath),
		log:      logging.WithComponent("log").With("db", filepath.Base(dbPath)),
	}
}

// Open loads or creates the properties, recovers from an unclean shutdown
// and rebuilds target from the script.
func (l *Log) Open(target Target) error {
	if l.open {
		return dberror.Invalid("database %s is already open", l.dbPath)
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return dberror.IO(err, "create", l.dir)
	}
	l.target = target

	if err := l.loadProperties(); err != nil {
		return err
	}
	if err := l.recover(); err != nil {
		return err
	}

	if !l.readOnly {
		if err := l.propsMgr.SetModified(l.props, checkpoint.ModifiedYes); err != nil {
			return err
		}
	}
	if err := l.openCache(); err != nil {
		return err
	}
	if err := l.replay(); err != nil {
		_ = l.Cache.Shutdown()
		return err
	}
	if err := l.openScript(); err != nil {
		_ = l.Cache.Shutdown()
		return err
	}
	l.open = true
	l.log.Info("database opened", "read_only", l.readOnly, "id", l.props.DatabaseID)
	return nil
}

func (l *Log) loadProperties() error {
	if !l.propsMgr.Exists() {
		l.props = checkpoint.Defaults(filepath.Base(l.dbPath), uuid.New().String())
		l.props.CacheScale = l.cfg.CacheScale
		l.props.WriteDelay = l.cfg.WriteDelay
		l.props.LogSizeMB = l.cfg.LogSizeMB
		l.props.BackupCompression = l.cfg.BackupCompression
		l.props.ReadOnly = l.cfg.ReadOnly
		l.readOnly = l.cfg.ReadOnly
		if l.readOnly {
			return nil
		}
		l.log.Info("creating database")
		return l.propsMgr.Save(l.props)
	}

	props, err := l.propsMgr.Load()
	if err != nil {
		return err
	}
	l.props = props
	l.readOnly = props.ReadOnly || l.cfg.ReadOnly
	if props.CacheScale > 0 {
		l.cfg.CacheScale = props.CacheScale
	}
	l.cfg.WriteDelay = props.WriteDelay
	l.cfg.LogSizeMB = props.LogSizeMB
	if props.BackupCompression != "" {
		l.cfg.BackupCompression = props.BackupCompression
	}
	return nil
}

func (l *Log) openCache() error {
	if l.Cache == nil {
		l.Cache = cache.New(l.dataPath(), cache.Config{
			Scale:           l.cfg.CacheScale,
			BlockCacheBytes: l.cfg.BlockCacheBytes,
		})
	}
	return l.Cache.Open(l.readOnly)
}

func (l *Log) openScript() error {
	if l.readOnly {
		return nil
	}
	w, err := wal_manager.OpenScript(l.scriptPath(), wal_manager.Options{
		WriteDelay: l.cfg.WriteDelay,
		Interval:   l.cfg.WriteDelayInterval,
	})
	if err != nil {
		return err
	}
	l.script = w
	l.scriptBase = w.Size()
	return nil
}

// Write appends a statement of a session to the script. Nothing is written
// while replaying or for read-only databases.
func (l *Log) Write(sessionID int, sql string) error {
	if l.script == nil || l.replaying {
		return nil
	}
	return l.script.Write(sessionID, sql)
}

// NeedsCheckpoint reports whether the script grew by more than LogSizeMB
// since it was opened. The snapshot a checkpoint starts it with does not
// count.
func (l *Log) NeedsCheckpoint() bool {
	if l.script == nil || l.cfg.LogSizeMB <= 0 {
		return false
	}
	return l.script.Size()-l.scriptBase > int64(l.cfg.LogSizeMB)<<20
}

// Checkpoint writes a fresh script and backup and keeps the database open.
// Resident rows stay valid: the cache is flushed, not reopened.
func (l *Log) Checkpoint() error {
	if !l.open || l.readOnly {
		return nil
	}
	if err := l.writeCheckpoint(false); err != nil {
		return err
	}
	if err := l.propsMgr.SetModified(l.props, checkpoint.ModifiedYes); err != nil {
		return err
	}
	if err := l.openScript(); err != nil {
		return err
	}
	l.log.Info("checkpoint complete")
	return nil
}

// Close checkpoints and closes the database. With compact the data file is
// rebuilt from a script holding every row, dropping the space of deleted
// rows.
func (l *Log) Close(compact bool) error {
	if !l.open {
		return nil
	}
	if l.readOnly {
		return l.Shutdown()
	}
	if err := l.writeCheckpoint(compact); err != nil {
		return err
	}
	if err := l.Cache.Close(); err != nil {
		return err
	}
	l.open = false

	if compact {
		if err := removeIfExists(l.dataPath()); err != nil {
			return err
		}
		if err := removeIfExists(l.backupPath()); err != nil {
			return err
		}
		// the checksum belonged to the deleted backup
		l.props.BackupChecksum = ""
		if err := l.propsMgr.Save(l.props); err != nil {
			return err
		}
		if err := l.Open(l.target); err != nil {
			return errors.Wrap(err, "failed to reopen for compaction")
		}
		return l.Close(false)
	}
	l.log.Info("database closed")
	return nil
}

// Shutdown closes every file without a checkpoint. The Modified flag stays
// set, so the next Open recovers from the backup and the script.
func (l *Log) Shutdown() error {
	if !l.open {
		return nil
	}
	l.open = false
	var err error
	if l.script != nil {
		err = l.script.Close()
		l.script = nil
	}
	if cerr := l.Cache.Shutdown(); err == nil {
		err = cerr
	}
	l.log.Info("database shut down without checkpoint")
	return err
}

// crash drops every file handle without writing anything.
func (l *Log) crash() {
	l.open = false
	if l.script != nil {
		_ = l.script.Abandon()
		l.script = nil
	}
	if l.Cache != nil {
		_ = l.Cache.Shutdown()
	}
}

// writeCheckpoint closes the script, writes the new script and backup and
// renames them into place, leaving Modified at no. The data file stays
// open.
func (l *Log) writeCheckpoint(compact bool) error {
	if l.script != nil {
		if err := l.script.Close(); err != nil {
			return err
		}
		l.script = nil
	}

	newScript := l.scriptPath() + newSuffix
	err := writeFileSync(newScript, func(f *os.File) error {
		return l.target.WriteScript(f, compact)
	})
	if err != nil {
		return errors.Wrap(err, "failed to write new script")
	}
	l.log.Debug("checkpoint script written", "compact", compact)

	if err := l.Cache.Flush(); err != nil {
		return err
	}
	sum, err := l.writeBackup()
	if err != nil {
		return errors.Wrap(err, "failed to write backup")
	}

	l.props.BackupChecksum = sum
	if err := l.propsMgr.SetModified(l.props, checkpoint.ModifiedYesNewFiles); err != nil {
		return err
	}
	if l.beforeRename != nil {
		if err := l.beforeRename(); err != nil {
			return err
		}
	}
	if err := l.promoteNewFiles(); err != nil {
		return err
	}
	return l.propsMgr.SetModified(l.props, checkpoint.ModifiedNo)
}

func (l *Log) promoteNewFiles() error {
	if err := promote(l.scriptPath()); err != nil {
		return err
	}
	if err := promote(l.backupPath()); err != nil {
		return err
	}
	checkpoint.SyncDir(l.dir)
	return nil
}

func (l *Log) IsOpen() bool      { return l.open }
func (l *Log) IsReadOnly() bool  { return l.readOnly }
func (l *Log) IsReplaying() bool { return l.replaying }
func (l *Log) Config() Config    { return l.cfg }

// Properties returns a copy of the current properties.
func (l *Log) Properties() checkpoint.Properties { return *l.props }

// SetWriteDelay changes the script flushing mode and records it.
func (l *Log) SetWriteDelay(on bool) error {
	l.cfg.WriteDelay = on
	if l.readOnly {
		return nil
	}
	l.props.WriteDelay = on
	if err := l.propsMgr.Save(l.props); err != nil {
		return err
	}
	if l.script != nil {
		return l.script.SetWriteDelay(on, l.cfg.WriteDelayInterval)
	}
	return nil
}
