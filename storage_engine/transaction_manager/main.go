package txn

import (
	"slices"

	"SharpHSQL/logging"

	"github.com/cockroachdb/errors"
)

/*
Transaction manager keeps the undo list of every session.

Changes are applied to the tables as they happen; the list is what rollback
needs to take them back out. Commit only forgets the list.
*/

func NewTxnManager() *TxnManager {
	return &TxnManager{activeTxns: make(map[int]*Transaction)}
}

// Get returns the open transaction of a session, starting one if needed.
func (tm *TxnManager) Get(sessionID int) *Transaction {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	txn, ok := tm.activeTxns[sessionID]
	if !ok {
		txn = &Transaction{SessionID: sessionID, State: TxnActive}
		tm.activeTxns[sessionID] = txn
	}
	return txn
}

// Commit drops the undo list of a session. It reports whether there was
// anything to commit.
func (tm *TxnManager) Commit(sessionID int) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	txn, ok := tm.activeTxns[sessionID]
	if !ok {
		return false
	}
	txn.State = TxnCommitted
	delete(tm.activeTxns, sessionID)
	return len(txn.Undo) > 0
}

// Rollback undoes every change of a session, newest first.
func (tm *TxnManager) Rollback(sessionID int) error {
	tm.mu.Lock()
	txn, ok := tm.activeTxns[sessionID]
	delete(tm.activeTxns, sessionID)
	tm.mu.Unlock()

	if !ok {
		return nil
	}
	txn.State = TxnAborted
	if err := txn.undo(); err != nil {
		return errors.Wrapf(err, "failed to roll back session %d", sessionID)
	}
	logging.WithSession(sessionID).Debug("transaction rolled back", "changes", len(txn.Undo))
	return nil
}

// Sessions returns the ids of sessions with an open transaction, in order.
func (tm *TxnManager) Sessions() []int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	ids := make([]int, 0, len(tm.activeTxns))
	for id, txn := range tm.activeTxns {
		if len(txn.Undo) > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Pending reports whether a session has uncommitted changes.
func (tm *TxnManager) Pending(sessionID int) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	txn, ok := tm.activeTxns[sessionID]
	return ok && len(txn.Undo) > 0
}

// Reset forgets every open transaction without undoing anything.
func (tm *TxnManager) Reset() {
	tm.mu.Lock()
	tm.activeTxns = make(map[int]*Transaction)
	tm.mu.Unlock()
}
