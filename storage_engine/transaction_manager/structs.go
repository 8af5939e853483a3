package txn

import (
	"sync"

	"SharpHSQL/storage_engine/access/table"
)

type TxnState uint8

const (
	TxnActive TxnState = iota
	TxnCommitted
	TxnAborted
)

// Transaction is the open unit of work of one session. A session has at
// most one; it starts with the first change after a commit or rollback.
type Transaction struct {
	SessionID int
	State     TxnState

	// logical undo, applied in reverse
	Undo []UndoEntry
}

// UndoEntry records one row change. Rows are kept by data, not position:
// a row put back by rollback gets a new place in the data file.
type UndoEntry struct {
	Table  *table.Table
	Data   []any
	Delete bool // the change was a delete, undo re-inserts
}

type TxnManager struct {
	activeTxns map[int]*Transaction // by session id
	mu         sync.RWMutex
}
