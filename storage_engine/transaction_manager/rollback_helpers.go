package txn

import "SharpHSQL/storage_engine/access/table"

/*
Until a transaction commits every change it made is recorded here, so a
rollback can restore the tables row by row.
*/

// RecordInsert adds an inserted row to the undo list.
func (txn *Transaction) RecordInsert(t *table.Table, data []any) {
	txn.Undo = append(txn.Undo, UndoEntry{Table: t, Data: data})
}

// RecordDelete adds a deleted row to the undo list.
func (txn *Transaction) RecordDelete(t *table.Table, data []any) {
	txn.Undo = append(txn.Undo, UndoEntry{Table: t, Data: data, Delete: true})
}

func (txn *Transaction) undo() error {
	for i := len(txn.Undo) - 1; i >= 0; i-- {
		e := txn.Undo[i]
		var err error
		if e.Delete {
			_, err = e.Table.InsertNoCheck(e.Data)
		} else {
			err = e.Table.DeleteNoCheck(e.Data)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
