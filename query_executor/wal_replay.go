package executor

import (
	"io"
	"slices"

	"SharpHSQL/query_parser/parser"
	"SharpHSQL/storage_engine/wal_manager"

	"github.com/cockroachdb/errors"
)

/*
The storage engine rebuilds a Database by replaying the script through
these methods. Each channel of the script gets its own session, so
interleaved transactions are taken apart again; whatever is still open at
the end of the script was never committed and is rolled back.
*/

// ResetForReplay drops every table and open transaction.
func (db *Database) ResetForReplay() {
	db.catalog.Reset()
	db.txns.Reset()
	db.replay = make(map[int]*Session)
}

// Replay executes one script line in the session it was written by.
func (db *Database) Replay(line wal_manager.Line) error {
	s, ok := db.replay[line.SessionID]
	if !ok {
		s = db.newSession(line.SessionID, true)
		db.replay[line.SessionID] = s
	}
	stmt, err := parser.Parse(line.SQL)
	if err != nil {
		return err
	}
	if _, err := s.execute(stmt); err != nil {
		return errors.Wrapf(err, "failed to replay %s", stmt.Kind())
	}
	return nil
}

// FinishReplay rolls back the transactions the script left open. New
// sessions get ids above every replayed one, so their lines never continue
// a rolled back channel. The rollbacks are logged once the script is open
// again, see closeAbandoned.
func (db *Database) FinishReplay() error {
	ids := make([]int, 0, len(db.replay))
	for id := range db.replay {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	db.abandoned = db.abandoned[:0]
	for _, id := range ids {
		if db.txns.Pending(id) {
			db.logger.Info("rolling back unfinished transaction", "session", id)
			db.abandoned = append(db.abandoned, id)
		}
		if err := db.txns.Rollback(id); err != nil {
			return err
		}
		db.nextSession = max(db.nextSession, id+1)
	}
	db.replay = nil
	return nil
}

// WriteScript writes the statements recreating the database.
func (db *Database) WriteScript(w io.Writer, compact bool) error {
	return db.catalog.WriteScript(w, compact)
}

// closeAbandoned logs a ROLLBACK for every transaction FinishReplay rolled
// back. Without it the next replay would still see them open and refuse
// any schema change logged after this point.
func (db *Database) closeAbandoned() error {
	defer func() { db.abandoned = nil }()
	if db.log.IsReadOnly() {
		return nil
	}
	for _, id := range db.abandoned {
		if err := db.log.Write(id, "ROLLBACK"); err != nil {
			return err
		}
	}
	return nil
}
