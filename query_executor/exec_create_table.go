package executor

import (
	"SharpHSQL/dberror"
	"SharpHSQL/query_parser/parser"
	"SharpHSQL/storage_engine/access/table"
	"SharpHSQL/storage_engine/cache"

	"github.com/cockroachdb/errors"
)

/*
Schema changes commit the session's open transaction first and are refused
while another session has changes pending: undo entries point at table
objects, and a new index replaces the table object.
*/

func (s *Session) beginSchemaChange() error {
	for _, id := range s.db.txns.Sessions() {
		if id != s.id {
			return dberror.Invalid("schema change blocked by open transaction of session %d", id)
		}
	}
	s.db.txns.Commit(s.id)
	return nil
}

func (s *Session) createTable(stmt *parser.CreateTableStmt) (*Result, error) {
	schema, err := stmt.Schema()
	if err != nil {
		return nil, err
	}
	if s.db.catalog.TableExists(schema.TableName) {
		return nil, dberror.Invalid("table %s already exists", schema.TableName)
	}
	if err := s.beginSchemaChange(); err != nil {
		return nil, err
	}

	var c *cache.Cache
	if schema.Cached {
		c = s.db.log.Cache
	}
	t, err := table.New(schema, c)
	if err != nil {
		return nil, err
	}
	if err := s.db.catalog.RegisterNewTable(t); err != nil {
		return nil, err
	}
	if err := s.Log(t.CreateStatement()); err != nil {
		return nil, err
	}
	s.log.Debug("table created", "table", t.Name(), "cached", schema.Cached)
	return &Result{}, nil
}

func (s *Session) createIndex(stmt *parser.CreateIndexStmt) (*Result, error) {
	t, err := s.db.catalog.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	if other := s.db.catalog.TableForIndex(stmt.Name); other != nil {
		return nil, dberror.Invalid("index %s already exists on table %s", stmt.Name, other.Name())
	}
	schema := t.Schema()
	def, err := stmt.IndexDef(&schema)
	if err != nil {
		return nil, err
	}
	if err := s.beginSchemaChange(); err != nil {
		return nil, err
	}

	nt, err := t.AddIndex(def)
	if err != nil {
		return nil, err
	}
	s.db.catalog.ReplaceTable(t, nt)
	defs := nt.IndexStatements()
	if err := s.Log(defs[len(defs)-1]); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

// dropTable releases the rows of a cached table in the data file.
func (s *Session) dropTable(stmt *parser.DropStmt) (*Result, error) {
	t, err := s.db.catalog.GetTable(stmt.Table)
	if err != nil {
		if stmt.IfExists && errors.Is(err, dberror.ErrNotFound) {
			return &Result{}, nil
		}
		return nil, err
	}
	if err := s.beginSchemaChange(); err != nil {
		return nil, err
	}

	if t.IsCached() {
		rows, err := t.AllRows()
		if err != nil {
			return nil, err
		}
		for _, data := range rows {
			if err := t.DeleteNoCheck(data); err != nil {
				return nil, errors.Wrapf(err, "failed to drop table %s", t.Name())
			}
			if err := s.db.log.Cache.CleanUpIfNeeded(); err != nil {
				return nil, err
			}
		}
	}
	if err := s.db.catalog.UnregisterTable(t.Name()); err != nil {
		return nil, err
	}
	if err := s.Log("DROP TABLE " + t.Name()); err != nil {
		return nil, err
	}
	return &Result{}, nil
}
