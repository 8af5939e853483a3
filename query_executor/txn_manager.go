package executor

import (
	"strings"

	"SharpHSQL/dberror"
	"SharpHSQL/query_parser/parser"
	"SharpHSQL/types"

	"github.com/cockroachdb/errors"
)

/*
Transactions as they appear in the script:

	SET AUTOCOMMIT FALSE    logged when a session leaves autocommit
	COMMIT / ROLLBACK       logged when the session had pending changes
	SET AUTOCOMMIT TRUE     logged when it returns; commits first

A session in autocommit mode commits after every statement without a
COMMIT line: a replayed session starts in autocommit mode too, so it does
the same.
*/

// autoCommitted runs a change and, in autocommit mode, commits it or takes
// it back out.
func (s *Session) autoCommitted(fn func() (*Result, error)) (*Result, error) {
	res, err := fn()
	if !s.autoCommit {
		return res, err
	}
	if err != nil {
		if rerr := s.rollback(); rerr != nil {
			return nil, errors.WithSecondaryError(rerr, err)
		}
		return nil, err
	}
	s.db.txns.Commit(s.id)
	return res, nil
}

func (s *Session) commit() error {
	if s.db.txns.Commit(s.id) {
		return s.Log("COMMIT")
	}
	return nil
}

func (s *Session) rollback() error {
	pending := s.db.txns.Pending(s.id)
	if err := s.db.txns.Rollback(s.id); err != nil {
		return err
	}
	if pending {
		return s.Log("ROLLBACK")
	}
	return nil
}

func (s *Session) set(stmt *parser.SetStmt) (*Result, error) {
	switch {
	case stmt.AutoCommit != nil:
		on := strings.EqualFold(*stmt.AutoCommit, "TRUE")
		if on == s.autoCommit {
			return &Result{}, nil
		}
		if on {
			if err := s.commit(); err != nil {
				return nil, err
			}
		}
		s.autoCommit = on
		if on {
			return &Result{}, s.Log("SET AUTOCOMMIT TRUE")
		}
		return &Result{}, s.Log("SET AUTOCOMMIT FALSE")

	case stmt.WriteDelay != nil:
		if s.replaying {
			return &Result{}, nil
		}
		return &Result{}, s.db.log.SetWriteDelay(strings.EqualFold(*stmt.WriteDelay, "TRUE"))

	case stmt.TableIndex != nil:
		if !s.replaying {
			return nil, dberror.Invalid("SET TABLE INDEX is only valid in a script")
		}
		t, err := s.db.catalog.GetTable(stmt.TableIndex.Table)
		if err != nil {
			return nil, err
		}
		roots, err := types.Unquote(stmt.TableIndex.Roots)
		if err != nil {
			return nil, err
		}
		return &Result{}, t.SetIndexRoots(roots)
	}
	return nil, dberror.Invalid("unsupported SET statement")
}
