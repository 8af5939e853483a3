package parser

import (
	"strings"

	"SharpHSQL/dberror"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/cockroachdb/errors"
)

// sqlLexer tokenizes the statement forms written to the script. Keywords
// must come before Ident.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(CREATE|CACHED|MEMORY|TABLE|INDEX|UNIQUE|ON|CONSTRAINT|PRIMARY|KEY|NOT|NULL|DROP|IF|EXISTS|INSERT|INTO|VALUES|DELETE|FROM|WHERE|AND|IS|SELECT|COMMIT|ROLLBACK|WORK|CHECKPOINT|SHUTDOWN|COMPACT|IMMEDIATELY|SET|AUTOCOMMIT|WRITE_DELAY|TRUE|FALSE)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_$]*`},
	{Name: "Number", Pattern: `[-+]?\d*\.?\d+([eE][-+]?\d+)?`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Operator", Pattern: `<>|!=|<=|>=|[=<>(),*;]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var sqlParser = participle.MustBuild[Statement](
	participle.Lexer(sqlLexer),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse parses a single statement.
func Parse(sql string) (*Statement, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, dberror.Invalid("empty statement")
	}
	stmt, err := sqlParser.ParseString("", sql)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse %q", sql), dberror.ErrInvalid)
	}
	return stmt, nil
}

// Kind names the statement for logs and errors.
func (s *Statement) Kind() string {
	switch {
	case s.Create != nil && s.Create.Table != nil:
		return "CREATE TABLE"
	case s.Create != nil:
		return "CREATE INDEX"
	case s.Drop != nil:
		return "DROP TABLE"
	case s.Insert != nil:
		return "INSERT"
	case s.Delete != nil:
		return "DELETE"
	case s.Select != nil:
		return "SELECT"
	case s.Set != nil:
		return "SET"
	case s.Commit:
		return "COMMIT"
	case s.Rollback:
		return "ROLLBACK"
	case s.Checkpoint:
		return "CHECKPOINT"
	case s.Shutdown != nil:
		return "SHUTDOWN"
	}
	return "UNKNOWN"
}

// IsDDL reports whether the statement changes the schema.
func (s *Statement) IsDDL() bool {
	return s.Create != nil || s.Drop != nil
}
