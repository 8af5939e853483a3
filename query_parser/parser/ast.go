package parser

// Statement is one line of a script or one REPL command. Exactly one field
// is set.
type Statement struct {
	Create     *CreateStmt   `parser:"(  @@"`
	Drop       *DropStmt     `parser:" | @@"`
	Insert     *InsertStmt   `parser:" | @@"`
	Delete     *DeleteStmt   `parser:" | @@"`
	Select     *SelectStmt   `parser:" | @@"`
	Set        *SetStmt      `parser:" | @@"`
	Commit     bool          `parser:" | @\"COMMIT\" \"WORK\"?"`
	Rollback   bool          `parser:" | @\"ROLLBACK\" \"WORK\"?"`
	Checkpoint bool          `parser:" | @\"CHECKPOINT\""`
	Shutdown   *ShutdownStmt `parser:" | @@ ) \";\"?"`
}

// CREATE TABLE or CREATE INDEX
type CreateStmt struct {
	Table *CreateTableStmt `parser:"\"CREATE\" ( @@"`
	Index *CreateIndexStmt `parser:"         | @@ )"`
}

type CreateTableStmt struct {
	Cached   bool            `parser:"( @\"CACHED\" | \"MEMORY\" )? \"TABLE\""`
	Name     string          `parser:"@Ident"`
	Elements []*TableElement `parser:"\"(\" @@ ( \",\" @@ )* \")\""`
}

// TableElement is a column definition or a table level primary key.
type TableElement struct {
	PrimaryKey []string   `parser:"  ( \"CONSTRAINT\" Ident )? \"PRIMARY\" \"KEY\" \"(\" @Ident ( \",\" @Ident )* \")\""`
	Column     *ColumnDef `parser:"| @@"`
}

type ColumnDef struct {
	Name       string `parser:"@Ident"`
	Type       string `parser:"@Ident ( \"(\" Number ( \",\" Number )? \")\" )?"`
	NotNull    bool   `parser:"( @( \"NOT\" \"NULL\" ) | \"NULL\" )?"`
	PrimaryKey bool   `parser:"@( \"PRIMARY\" \"KEY\" )?"`
}

type CreateIndexStmt struct {
	Unique  bool     `parser:"@\"UNIQUE\"? \"INDEX\""`
	Name    string   `parser:"@Ident \"ON\""`
	Table   string   `parser:"@Ident"`
	Columns []string `parser:"\"(\" @Ident ( \",\" @Ident )* \")\""`
}

type DropStmt struct {
	Table    string `parser:"\"DROP\" \"TABLE\" @Ident"`
	IfExists bool   `parser:"@( \"IF\" \"EXISTS\" )?"`
}

type InsertStmt struct {
	Table   string   `parser:"\"INSERT\" \"INTO\" @Ident"`
	Columns []string `parser:"( \"(\" @Ident ( \",\" @Ident )* \")\" )?"`
	Values  []*Value `parser:"\"VALUES\" \"(\" @@ ( \",\" @@ )* \")\""`
}

type DeleteStmt struct {
	Table string       `parser:"\"DELETE\" \"FROM\" @Ident"`
	Where []*Condition `parser:"( \"WHERE\" @@ ( \"AND\" @@ )* )?"`
}

type SelectStmt struct {
	All     bool         `parser:"\"SELECT\" ( @\"*\""`
	Columns []string     `parser:"         | @Ident ( \",\" @Ident )* )"`
	Table   string       `parser:"\"FROM\" @Ident"`
	Where   []*Condition `parser:"( \"WHERE\" @@ ( \"AND\" @@ )* )?"`
}

// Condition compares a column with a literal, or tests it for NULL.
type Condition struct {
	Column string  `parser:"@Ident"`
	Is     *IsNull `parser:"( \"IS\" @@"`
	Op     string  `parser:"| @( \"=\" | \"<>\" | \"!=\" | \"<=\" | \">=\" | \"<\" | \">\" )"`
	Value  *Value  `parser:"  @@ )"`
}

type IsNull struct {
	Not bool `parser:"@\"NOT\"? \"NULL\""`
}

// Value is a literal as written.
type Value struct {
	Number *string `parser:"  @Number"`
	String *string `parser:"| @String"`
	Bool   *string `parser:"| @( \"TRUE\" | \"FALSE\" )"`
	Null   bool    `parser:"| @\"NULL\""`
}

type SetStmt struct {
	AutoCommit *string            `parser:"\"SET\" ( \"AUTOCOMMIT\" @( \"TRUE\" | \"FALSE\" )"`
	WriteDelay *string            `parser:"      | \"WRITE_DELAY\" @( \"TRUE\" | \"FALSE\" )"`
	TableIndex *SetTableIndexStmt `parser:"      | @@ )"`
}

// SET TABLE t INDEX '<roots>' reattaches a cached table to the data file.
type SetTableIndexStmt struct {
	Table string `parser:"\"TABLE\" @Ident \"INDEX\""`
	Roots string `parser:"@String"`
}

// SHUTDOWN [COMPACT | IMMEDIATELY]
type ShutdownStmt struct {
	Mode string `parser:"\"SHUTDOWN\" @( \"COMPACT\" | \"IMMEDIATELY\" )?"`
}
