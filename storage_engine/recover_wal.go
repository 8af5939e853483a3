package storageengine

import (
	"SharpHSQL/dberror"
	checkpoint "SharpHSQL/storage_engine/checkpoint_manager"
	"SharpHSQL/storage_engine/wal_manager"

	"github.com/cockroachdb/errors"
)

// recover brings the files back to a state the script can be replayed on,
// according to how the last session ended.
func (l *Log) recover() error {
	switch l.props.Modified {
	case checkpoint.ModifiedYesNewFiles:
		// a checkpoint finished writing but not renaming
		l.log.Info("completing interrupted checkpoint")
		if l.readOnly {
			return dberror.Invalid("read-only database %s needs recovery", l.dbPath)
		}
		return l.promoteNewFiles()

	case checkpoint.ModifiedYes:
		inUse, err := wal_manager.InUse(l.scriptPath())
		if err != nil {
			return err
		}
		if inUse {
			return dberror.AlreadyInUse(l.scriptPath(), nil)
		}
		if l.readOnly {
			return dberror.Invalid("read-only database %s needs recovery", l.dbPath)
		}
		l.log.Info("recovering from unclean shutdown")
		if err := l.restoreBackup(); err != nil {
			return err
		}
		if err := removeIfExists(l.scriptPath() + newSuffix); err != nil {
			return err
		}
		return removeIfExists(l.backupPath() + newSuffix)
	}
	return nil
}

// replay rebuilds the target from the script. Sessions still open at the
// end of the script are rolled back.
func (l *Log) replay() error {
	l.replaying = true
	defer func() { l.replaying = false }()

	l.target.ResetForReplay()
	count := 0
	err := wal_manager.ReadScript(l.scriptPath(), func(line wal_manager.Line) error {
		count++
		return l.target.Replay(line)
	})
	if err != nil {
		return errors.Wrap(err, "failed to replay script")
	}
	if err := l.target.FinishReplay(); err != nil {
		return err
	}
	l.log.Info("script replayed", "statements", count)
	return nil
}
