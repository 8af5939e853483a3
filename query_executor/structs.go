package executor

import (
	"log/slog"
	"sync"

	storageengine "SharpHSQL/storage_engine"
	"SharpHSQL/storage_engine/catalog"
	txn "SharpHSQL/storage_engine/transaction_manager"
)

// Database is one open database: its files, its tables and the sessions
// working on them. Statements run one at a time under mu.
type Database struct {
	path    string
	log     *storageengine.Log
	catalog *catalog.CatalogManager
	txns    *txn.TxnManager

	mu          sync.Mutex
	sessions    map[int]*Session
	nextSession int
	replay      map[int]*Session // script sessions, only while replaying
	abandoned   []int            // replayed sessions rolled back at the end of the script
	closed      bool

	logger *slog.Logger
}

// Session is a connection to a Database. Its changes stay pending until
// COMMIT unless it is in autocommit mode, the default.
type Session struct {
	id         int
	db         *Database
	autoCommit bool
	replaying  bool // rebuilt from the script: nothing is logged
	closed     bool

	log *slog.Logger
}

// Result is what a statement returns: rows for SELECT, a change count for
// everything else.
type Result struct {
	Columns []string
	Rows    [][]any
	Updated int
}

// IndexReport describes one index as checked by Database.CheckIndexes.
type IndexReport struct {
	Table  string
	Index  string
	Rows   int
	Height int
	Cached bool
}
