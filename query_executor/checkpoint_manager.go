package executor

import (
	"strings"

	"SharpHSQL/dberror"
)

// checkpoint runs a CHECKPOINT statement. The new script is a snapshot of
// the tables, so no session may have changes pending.
func (db *Database) checkpoint() error {
	if ids := db.txns.Sessions(); len(ids) > 0 {
		return dberror.Invalid("checkpoint blocked by open transactions of sessions %v", ids)
	}
	return db.log.Checkpoint()
}

// checkpointIfNeeded checkpoints once the script outgrew its limit, at the
// first statement boundary where no transaction is open.
func (db *Database) checkpointIfNeeded() error {
	if db.closed || !db.log.NeedsCheckpoint() || len(db.txns.Sessions()) > 0 {
		return nil
	}
	db.logger.Info("script size limit reached, checkpointing")
	return db.log.Checkpoint()
}

// shutdown closes the database. Open transactions are rolled back first,
// except with IMMEDIATELY, which leaves the files to the next recovery.
func (db *Database) shutdown(mode string) error {
	if strings.EqualFold(mode, "IMMEDIATELY") {
		db.closed = true
		return db.log.Shutdown()
	}
	for _, id := range db.txns.Sessions() {
		if err := db.txns.Rollback(id); err != nil {
			return err
		}
	}
	db.closed = true
	return db.log.Close(strings.EqualFold(mode, "COMPACT"))
}

// Close rolls back open transactions, checkpoints and closes the files.
func (db *Database) Close() error {
	return db.closeWith("")
}

// Compact closes like Close and rebuilds the data file without the space
// of deleted rows.
func (db *Database) Compact() error {
	return db.closeWith("COMPACT")
}

// Shutdown closes every file without a checkpoint, as if the process had
// stopped. The next Open recovers from the script.
func (db *Database) Shutdown() error {
	return db.closeWith("IMMEDIATELY")
}

func (db *Database) closeWith(mode string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	return db.shutdown(mode)
}
