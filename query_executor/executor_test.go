package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"SharpHSQL/dberror"
	storageengine "SharpHSQL/storage_engine"

	"github.com/cockroachdb/errors"
)

func testConfig() storageengine.Config {
	cfg := storageengine.DefaultConfig()
	cfg.WriteDelay = false
	return cfg
}

func openDB(t *testing.T, path string, cfg storageengine.Config) *Database {
	t.Helper()
	db, err := Open(path, cfg)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	return db
}

func connect(t *testing.T, db *Database) *Session {
	t.Helper()
	s, err := db.Connect()
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	return s
}

func mustExec(t *testing.T, s *Session, sql string) *Result {
	t.Helper()
	res, err := s.Execute(sql)
	if err != nil {
		t.Fatalf("Failed to execute %q: %v", sql, err)
	}
	return res
}

func ids(t *testing.T, s *Session, tableName string) []int64 {
	t.Helper()
	res := mustExec(t, s, "SELECT ID FROM "+tableName)
	out := make([]int64, len(res.Rows))
	for i, r := range res.Rows {
		switch v := r[0].(type) {
		case int32:
			out[i] = int64(v)
		case int64:
			out[i] = v
		default:
			t.Fatalf("Unexpected id type %T", v)
		}
	}
	return out
}

func sameIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestCreateInsertSelect checks the basic statement round trip on a memory
// table, including an index lookup.
func TestCreateInsertSelect(t *testing.T) {
	db := openDB(t, filepath.Join(t.TempDir(), "test"), testConfig())
	defer db.Close()
	s := connect(t, db)

	mustExec(t, s, "CREATE TABLE PERSON(ID INTEGER NOT NULL PRIMARY KEY, NAME VARCHAR, AGE INTEGER)")
	mustExec(t, s, "CREATE INDEX IDX_NAME ON PERSON(NAME)")
	for i, name := range []string{"carol", "alice", "bob", "alice"} {
		mustExec(t, s, fmt.Sprintf("INSERT INTO PERSON VALUES(%d,'%s',%d)", i+1, name, 20+i))
	}

	if got := ids(t, s, "PERSON"); !sameIDs(got, 1, 2, 3, 4) {
		t.Errorf("Scan mismatch: got %v", got)
	}
	res := mustExec(t, s, "SELECT ID, AGE FROM PERSON WHERE NAME = 'alice'")
	if len(res.Rows) != 2 || res.Rows[0][0] != int32(2) || res.Rows[1][0] != int32(4) {
		t.Errorf("Index lookup mismatch: got %v", res.Rows)
	}
	res = mustExec(t, s, "SELECT * FROM PERSON WHERE NAME > 'alice' AND AGE < 23")
	if len(res.Rows) != 2 {
		t.Errorf("Range lookup mismatch: expected 2 rows, got %v", res.Rows)
	}

	_, err := s.Execute("INSERT INTO PERSON VALUES(1,'dup',1)")
	if !errors.Is(err, dberror.ErrUniqueViolation) {
		t.Fatalf("Expected unique violation, got %v", err)
	}
	res = mustExec(t, s, "DELETE FROM PERSON WHERE NAME='alice'")
	if res.Updated != 2 {
		t.Errorf("Delete count mismatch: expected 2, got %d", res.Updated)
	}
	if got := ids(t, s, "PERSON"); !sameIDs(got, 1, 3) {
		t.Errorf("After delete mismatch: got %v", got)
	}
}

// TestRollback checks that a session outside autocommit mode can take its
// changes back.
func TestRollback(t *testing.T) {
	db := openDB(t, filepath.Join(t.TempDir(), "test"), testConfig())
	defer db.Close()
	s := connect(t, db)

	mustExec(t, s, "CREATE CACHED TABLE T(ID INTEGER PRIMARY KEY, V VARCHAR)")
	mustExec(t, s, "INSERT INTO T VALUES(1,'keep')")
	mustExec(t, s, "SET AUTOCOMMIT FALSE")
	mustExec(t, s, "INSERT INTO T VALUES(2,'gone')")
	mustExec(t, s, "DELETE FROM T WHERE ID=1")
	if got := ids(t, s, "T"); !sameIDs(got, 2) {
		t.Errorf("Before rollback mismatch: got %v", got)
	}
	mustExec(t, s, "ROLLBACK")
	if got := ids(t, s, "T"); !sameIDs(got, 1) {
		t.Errorf("After rollback mismatch: got %v", got)
	}

	mustExec(t, s, "INSERT INTO T VALUES(3,'x')")
	mustExec(t, s, "COMMIT")
	mustExec(t, s, "ROLLBACK")
	if got := ids(t, s, "T"); !sameIDs(got, 1, 3) {
		t.Errorf("After commit mismatch: got %v", got)
	}
}

// TestRecoveryAfterCrash checks that interleaved sessions replay into the
// committed state: committed work survives, open transactions do not.
func TestRecoveryAfterCrash(t *testing.T) {
	for _, kind := range []string{"MEMORY", "CACHED"} {
		t.Run(kind, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test")
			db := openDB(t, path, testConfig())
			s1 := connect(t, db)
			s2 := connect(t, db)
			s3 := connect(t, db)

			mustExec(t, s1, "CREATE "+kind+" TABLE T(ID INTEGER PRIMARY KEY, V VARCHAR)")
			mustExec(t, s1, "SET AUTOCOMMIT FALSE")
			mustExec(t, s3, "SET AUTOCOMMIT FALSE")

			mustExec(t, s1, "INSERT INTO T VALUES(1,'a')")
			mustExec(t, s2, "INSERT INTO T VALUES(2,'b')")
			mustExec(t, s3, "INSERT INTO T VALUES(4,'never committed')")
			mustExec(t, s1, "INSERT INTO T VALUES(3,'c')")
			mustExec(t, s2, "DELETE FROM T WHERE ID=2")
			mustExec(t, s1, "COMMIT")
			mustExec(t, s2, "INSERT INTO T VALUES(5,'e')")

			if err := db.Shutdown(); err != nil {
				t.Fatalf("Failed to shut down: %v", err)
			}

			db = openDB(t, path, testConfig())
			defer db.Close()
			s := connect(t, db)
			if got := ids(t, s, "T"); !sameIDs(got, 1, 3, 5) {
				t.Errorf("Recovered rows mismatch: got %v", got)
			}
			if s.ID() <= s3.ID() {
				t.Errorf("Session id reused: %d after %d", s.ID(), s3.ID())
			}
		})
	}
}

// TestRepeatedCrash checks that a transaction abandoned by one crash stays
// rolled back through a second crash, and does not block a table created
// in between.
func TestRepeatedCrash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	db := openDB(t, path, testConfig())
	s := connect(t, db)
	mustExec(t, s, "CREATE TABLE T(ID INTEGER PRIMARY KEY)")
	mustExec(t, s, "SET AUTOCOMMIT FALSE")
	mustExec(t, s, "INSERT INTO T VALUES(1)")
	if err := db.Shutdown(); err != nil {
		t.Fatalf("Failed to shut down: %v", err)
	}

	db = openDB(t, path, testConfig())
	s = connect(t, db)
	mustExec(t, s, "CREATE TABLE U(ID INTEGER PRIMARY KEY)")
	mustExec(t, s, "INSERT INTO U VALUES(7)")
	if err := db.Shutdown(); err != nil {
		t.Fatalf("Failed to shut down: %v", err)
	}

	db = openDB(t, path, testConfig())
	defer db.Close()
	s = connect(t, db)
	if got := ids(t, s, "T"); len(got) != 0 {
		t.Errorf("Abandoned rows mismatch: expected none, got %v", got)
	}
	if got := ids(t, s, "U"); !sameIDs(got, 7) {
		t.Errorf("Rows mismatch: expected [7], got %v", got)
	}
}

// TestCheckpointThenCrash checks recovery from a checkpoint's backup and
// index roots plus the statements logged after it.
func TestCheckpointThenCrash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	cfg := testConfig()
	cfg.CacheScale = 8
	db := openDB(t, path, cfg)
	s := connect(t, db)

	mustExec(t, s, "CREATE CACHED TABLE T(ID INTEGER PRIMARY KEY, V VARCHAR)")
	mustExec(t, s, "CREATE INDEX IDX_V ON T(V)")
	for i := 0; i < 500; i++ {
		mustExec(t, s, fmt.Sprintf("INSERT INTO T VALUES(%d,'v%03d')", i, i%50))
	}
	mustExec(t, s, "CHECKPOINT")
	mustExec(t, s, "DELETE FROM T WHERE V='v007'")
	mustExec(t, s, "INSERT INTO T VALUES(1000,'late')")
	if err := db.Shutdown(); err != nil {
		t.Fatalf("Failed to shut down: %v", err)
	}

	db = openDB(t, path, cfg)
	defer db.Close()
	s = connect(t, db)
	got := ids(t, s, "T")
	if len(got) != 500-10+1 || got[len(got)-1] != 1000 {
		t.Errorf("Recovered row count mismatch: expected %d, got %d", 491, len(got))
	}
	res := mustExec(t, s, "SELECT ID FROM T WHERE V='v007'")
	if len(res.Rows) != 0 {
		t.Errorf("Deleted rows came back: %v", res.Rows)
	}
	reports, err := db.CheckIndexes()
	if err != nil {
		t.Fatalf("Index check failed: %v", err)
	}
	for _, r := range reports {
		if r.Rows != 491 {
			t.Errorf("Index %s row count mismatch: expected 491, got %d", r.Index, r.Rows)
		}
	}
}

// TestHiddenKeyDuplicates checks tables without a primary key: identical
// rows are kept apart and a delete by value survives replay.
func TestHiddenKeyDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	db := openDB(t, path, testConfig())
	s := connect(t, db)

	mustExec(t, s, "CREATE CACHED TABLE LOG(ID INTEGER, MSG VARCHAR)")
	for i := 0; i < 3; i++ {
		mustExec(t, s, "INSERT INTO LOG VALUES(1,'same')")
	}
	mustExec(t, s, "INSERT INTO LOG VALUES(2,NULL)")
	mustExec(t, s, "INSERT INTO LOG VALUES(3,'other')")
	res := mustExec(t, s, "DELETE FROM LOG WHERE ID=1")
	if res.Updated != 3 {
		t.Errorf("Delete count mismatch: expected 3, got %d", res.Updated)
	}
	mustExec(t, s, "DELETE FROM LOG WHERE MSG IS NULL")
	if err := db.Shutdown(); err != nil {
		t.Fatalf("Failed to shut down: %v", err)
	}

	db = openDB(t, path, testConfig())
	defer db.Close()
	s = connect(t, db)
	if got := ids(t, s, "LOG"); !sameIDs(got, 3) {
		t.Errorf("Recovered rows mismatch: got %v", got)
	}
	res = mustExec(t, s, "SELECT * FROM LOG")
	if len(res.Columns) != 2 {
		t.Errorf("Hidden column is visible: %v", res.Columns)
	}
}

// TestCompact checks that compaction shrinks the data file and keeps every
// row.
func TestCompact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	db := openDB(t, path, testConfig())
	s := connect(t, db)

	mustExec(t, s, "CREATE CACHED TABLE T(ID INTEGER PRIMARY KEY, V VARCHAR)")
	for i := 0; i < 2000; i++ {
		mustExec(t, s, fmt.Sprintf("INSERT INTO T VALUES(%d,'row %d')", i, i))
	}
	mustExec(t, s, "CHECKPOINT")
	mustExec(t, s, "DELETE FROM T WHERE ID >= 100")
	before, err := db.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if err := db.Compact(); err != nil {
		t.Fatalf("Failed to compact: %v", err)
	}

	db = openDB(t, path, testConfig())
	defer db.Close()
	after, err := db.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if after.DataBytes >= before.DataBytes {
		t.Errorf("Data file did not shrink: before %d, after %d", before.DataBytes, after.DataBytes)
	}
	s = connect(t, db)
	if got := ids(t, s, "T"); len(got) != 100 || got[99] != 99 {
		t.Errorf("Rows after compaction mismatch: got %d rows", len(got))
	}
}

// TestSchemaChangeBlocked checks DDL waits for other sessions' pending
// changes and commits the session's own.
func TestSchemaChangeBlocked(t *testing.T) {
	db := openDB(t, filepath.Join(t.TempDir(), "test"), testConfig())
	defer db.Close()
	s1 := connect(t, db)
	s2 := connect(t, db)

	mustExec(t, s1, "CREATE TABLE T(ID INTEGER PRIMARY KEY)")
	mustExec(t, s2, "SET AUTOCOMMIT FALSE")
	mustExec(t, s2, "INSERT INTO T VALUES(1)")

	if _, err := s1.Execute("CREATE TABLE U(ID INTEGER)"); !errors.Is(err, dberror.ErrInvalid) {
		t.Fatalf("Expected schema change to be refused, got %v", err)
	}
	if _, err := s1.Execute("CHECKPOINT"); !errors.Is(err, dberror.ErrInvalid) {
		t.Fatalf("Expected checkpoint to be refused, got %v", err)
	}

	mustExec(t, s2, "CREATE TABLE U(ID INTEGER)")
	mustExec(t, s2, "ROLLBACK")
	if got := ids(t, s1, "T"); !sameIDs(got, 1) {
		t.Errorf("DDL did not commit pending insert: got %v", got)
	}
}

// TestReadOnly checks a read-only database serves queries and refuses
// changes.
func TestReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	db := openDB(t, path, testConfig())
	s := connect(t, db)
	mustExec(t, s, "CREATE TABLE T(ID INTEGER PRIMARY KEY)")
	mustExec(t, s, "INSERT INTO T VALUES(7)")
	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	cfg := testConfig()
	cfg.ReadOnly = true
	db = openDB(t, path, cfg)
	defer db.Close()
	s = connect(t, db)
	if got := ids(t, s, "T"); !sameIDs(got, 7) {
		t.Errorf("Read-only rows mismatch: got %v", got)
	}
	if _, err := s.Execute("INSERT INTO T VALUES(8)"); !errors.Is(err, dberror.ErrInvalid) {
		t.Errorf("Expected insert to be refused, got %v", err)
	}
}

// TestAutomaticCheckpoint checks that a script past its size limit is
// replaced by a checkpoint.
func TestAutomaticCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test")
	cfg := testConfig()
	cfg.LogSizeMB = 1
	db := openDB(t, path, cfg)
	defer db.Close()
	s := connect(t, db)

	mustExec(t, s, "CREATE CACHED TABLE T(ID INTEGER PRIMARY KEY, V VARCHAR)")
	if _, err := os.Stat(path + ".backup"); !os.IsNotExist(err) {
		t.Fatalf("Expected no backup before the first checkpoint, got %v", err)
	}
	for i := 0; i < 20000; i++ {
		mustExec(t, s, fmt.Sprintf("INSERT INTO T VALUES(%d,'padding padding padding %d')", i, i))
	}
	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Fatalf("Expected a backup after the automatic checkpoint: %v", err)
	}
	st, err := os.Stat(path + ".script")
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() > 1<<20 {
		t.Errorf("Script was not replaced: %d bytes", st.Size())
	}
}
