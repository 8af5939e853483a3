package parser

import (
	"strings"

	"SharpHSQL/dberror"
	"SharpHSQL/types"
)

// Schema converts a CREATE TABLE into the table definition. A table level
// PRIMARY KEY overrides column level ones.
func (c *CreateTableStmt) Schema() (types.TableSchema, error) {
	schema := types.TableSchema{TableName: c.Name, Cached: c.Cached}
	var pk []string
	for _, e := range c.Elements {
		if e.Column == nil {
			if pk != nil {
				return schema, dberror.Invalid("table %s: more than one primary key", c.Name)
			}
			pk = e.PrimaryKey
			continue
		}
		if schema.ColumnIndex(e.Column.Name) >= 0 {
			return schema, dberror.Invalid("table %s: duplicate column %s", c.Name, e.Column.Name)
		}
		if strings.EqualFold(e.Column.Name, "SYSTEM_ID") {
			return schema, dberror.Invalid("table %s: column name %s is reserved", c.Name, e.Column.Name)
		}
		t, err := types.ParseColumnType(e.Column.Type)
		if err != nil {
			return schema, err
		}
		schema.Columns = append(schema.Columns, types.ColumnDef{
			Name:       e.Column.Name,
			Type:       t,
			Nullable:   !e.Column.NotNull && !e.Column.PrimaryKey,
			PrimaryKey: e.Column.PrimaryKey,
		})
	}
	if len(schema.Columns) == 0 {
		return schema, dberror.Invalid("table %s has no columns", c.Name)
	}

	if pk != nil {
		for i := range schema.Columns {
			schema.Columns[i].PrimaryKey = false
		}
		cols, err := schema.MustColumns(pk)
		if err != nil {
			return schema, err
		}
		for _, i := range cols {
			schema.Columns[i].PrimaryKey = true
			schema.Columns[i].Nullable = false
		}
	}
	return schema, nil
}

// IndexDef resolves the indexed columns against schema.
func (c *CreateIndexStmt) IndexDef(schema *types.TableSchema) (types.IndexDef, error) {
	cols, err := schema.MustColumns(c.Columns)
	if err != nil {
		return types.IndexDef{}, err
	}
	return types.IndexDef{Name: c.Name, Columns: cols, Unique: c.Unique}, nil
}
