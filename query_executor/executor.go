package executor

import (
	"path/filepath"

	"SharpHSQL/dberror"
	"SharpHSQL/logging"
	"SharpHSQL/query_parser/parser"
	storageengine "SharpHSQL/storage_engine"
	"SharpHSQL/storage_engine/access/table"
	"SharpHSQL/storage_engine/catalog"
	txn "SharpHSQL/storage_engine/transaction_manager"
)

/*
Executor

	Session.Execute ─→ parser.Parse ─→ execute
	                                     ├─→ DDL:  catalog, logged
	                                     ├─→ DML:  table.Insert/Delete, logged row by row
	                                     ├─→ COMMIT / ROLLBACK / SET: txn manager, logged
	                                     └─→ CHECKPOINT / SHUTDOWN: storage engine Log

Every change reaches the script as a statement that, replayed in the same
session, has the same effect. Replay runs the same execute path with
logging off.
*/

// Open opens or creates the database at path (directory plus base name)
// and recovers it if the last session did not end cleanly.
func Open(path string, cfg storageengine.Config) (*Database, error) {
	db := &Database{
		path:        path,
		catalog:     catalog.NewCatalogManager(),
		txns:        txn.NewTxnManager(),
		sessions:    make(map[int]*Session),
		nextSession: 1,
		logger:      logging.WithComponent("database").With("db", filepath.Base(path)),
	}
	db.log = storageengine.NewLog(path, cfg)
	if err := db.log.Open(db); err != nil {
		return nil, err
	}
	if err := db.closeAbandoned(); err != nil {
		_ = db.log.Shutdown()
		return nil, err
	}
	return db, nil
}

// Connect starts a new session in autocommit mode.
func (db *Database) Connect() (*Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, dberror.Invalid("database %s is closed", db.path)
	}
	s := db.newSession(db.nextSession, false)
	db.nextSession++
	db.sessions[s.id] = s
	return s, nil
}

func (db *Database) newSession(id int, replaying bool) *Session {
	return &Session{
		id:         id,
		db:         db,
		autoCommit: true,
		replaying:  replaying,
		log:        logging.WithSession(id),
	}
}

func (s *Session) ID() int            { return s.id }
func (s *Session) IsAutoCommit() bool { return s.autoCommit }

// Execute runs one statement.
func (s *Session) Execute(sql string) (*Result, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}

	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, dberror.Invalid("database %s is closed", db.path)
	}
	if s.closed {
		return nil, dberror.Invalid("session %d is closed", s.id)
	}

	res, err := s.execute(stmt)
	if err != nil {
		s.log.Debug("statement failed", "kind", stmt.Kind(), "err", err)
		return nil, err
	}
	if err := db.checkpointIfNeeded(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close rolls back the pending changes of the session and ends it.
func (s *Session) Close() error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	delete(db.sessions, s.id)
	if db.closed {
		return nil
	}
	return s.rollback()
}

func (s *Session) execute(stmt *parser.Statement) (*Result, error) {
	if s.db.log.IsReadOnly() && !s.replaying && mutates(stmt) {
		return nil, dberror.Invalid("database %s is read-only", s.db.path)
	}

	switch {
	case stmt.Create != nil && stmt.Create.Table != nil:
		return s.createTable(stmt.Create.Table)
	case stmt.Create != nil:
		return s.createIndex(stmt.Create.Index)
	case stmt.Drop != nil:
		return s.dropTable(stmt.Drop)
	case stmt.Insert != nil:
		return s.autoCommitted(func() (*Result, error) { return s.insert(stmt.Insert) })
	case stmt.Delete != nil:
		return s.autoCommitted(func() (*Result, error) { return s.delete(stmt.Delete) })
	case stmt.Select != nil:
		if s.replaying {
			return &Result{}, nil
		}
		return s.selectRows(stmt.Select)
	case stmt.Set != nil:
		return s.set(stmt.Set)
	case stmt.Commit:
		return &Result{}, s.commit()
	case stmt.Rollback:
		return &Result{}, s.rollback()
	case stmt.Checkpoint:
		if s.replaying {
			return &Result{}, nil
		}
		return &Result{}, s.db.checkpoint()
	case stmt.Shutdown != nil:
		if s.replaying {
			return &Result{}, nil
		}
		return &Result{}, s.db.shutdown(stmt.Shutdown.Mode)
	}
	return nil, dberror.Invalid("unsupported statement")
}

func mutates(stmt *parser.Statement) bool {
	return stmt.IsDDL() || stmt.Insert != nil || stmt.Delete != nil ||
		(stmt.Set != nil && stmt.Set.TableIndex != nil) || stmt.Checkpoint
}

// AddInsert, AddDelete and Log let tables report the changes they make on
// behalf of the session.
func (s *Session) AddInsert(t *table.Table, data []any) {
	s.db.txns.Get(s.id).RecordInsert(t, data)
}

func (s *Session) AddDelete(t *table.Table, data []any) {
	s.db.txns.Get(s.id).RecordDelete(t, data)
}

func (s *Session) Log(stmt string) error {
	if s.replaying {
		return nil
	}
	return s.db.log.Write(s.id, stmt)
}
