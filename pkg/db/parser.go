package db

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SqlInvalidError is returned by TableSchemaFromSQL and
// CreateTupleFromSQL when the input does not match the mini-parser's
// two supported statement shapes.
type SqlInvalidError struct {
	SQL string
}

func (e *SqlInvalidError) Error() string {
	return fmt.Sprintf("db: invalid SQL statement: %q", e.SQL)
}

var (
	reCreateTable = regexp.MustCompile(`^CREATE TABLE ([a-zA-Z_]+) \((.+)\);$`)
	reColumn      = regexp.MustCompile(`^([a-zA-Z_]+) (INT|VARCHAR|CHAR)(?:\((\d+)\))?((?: (?:NOT NULL|UNIQUE))*)$`)
	reInsert      = regexp.MustCompile(`^INSERT INTO ([a-zA-Z_]+) VALUES \((.+)\);$`)
)

// TableSchemaFromSQL parses a statement of the shape
// "CREATE TABLE name (col TYPE [NOT NULL] [UNIQUE], ...);" where TYPE
// is INT, CHAR(n), or VARCHAR(n), with NOT NULL and UNIQUE allowed in
// either order. Any mismatch fails with SqlInvalidError.
func TableSchemaFromSQL(sql string) (TableSchema, error) {
	m := reCreateTable.FindStringSubmatch(sql)
	if m == nil {
		return TableSchema{}, &SqlInvalidError{SQL: sql}
	}
	tableName := m[1]
	decls := strings.Split(m[2], ", ")
	attrs := make([]Attribute, 0, len(decls))
	for _, decl := range decls {
		attr, err := parseColumn(decl)
		if err != nil {
			return TableSchema{}, &SqlInvalidError{SQL: sql}
		}
		attrs = append(attrs, attr)
	}
	return TableSchema{TableName: tableName, Attrs: attrs}, nil
}

func parseColumn(decl string) (Attribute, error) {
	m := reColumn.FindStringSubmatch(decl)
	if m == nil {
		return Attribute{}, fmt.Errorf("db: bad column declaration %q", decl)
	}
	var typ DataType
	maxSize := 0
	switch m[2] {
	case "INT":
		typ = INT
	case "CHAR":
		typ = CHAR
	case "VARCHAR":
		typ = VARCHAR
	}
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return Attribute{}, err
		}
		maxSize = n
	}
	modifiers := m[4]
	return Attribute{
		Name:    m[1],
		Type:    typ,
		MaxSize: maxSize,
		NotNull: strings.Contains(modifiers, "NOT NULL"),
		Unique:  strings.Contains(modifiers, "UNIQUE"),
	}, nil
}

// CreateTupleFromSQL parses an
// "INSERT INTO name VALUES (v1, v2, ...);" statement into the
// tab-separated tuple string the heap-file layer stores. Values are
// not type-checked against the table's schema; quoted string values
// have their surrounding quotes stripped. The table must already be
// registered in catalog.
func CreateTupleFromSQL(sql string, catalog *Catalog) (string, error) {
	m := reInsert.FindStringSubmatch(sql)
	if m == nil {
		return "", &SqlInvalidError{SQL: sql}
	}
	tableName := m[1]
	if _, ok := catalog.TableID(tableName); !ok {
		return "", &SqlInvalidError{SQL: sql}
	}
	values := strings.Split(m[2], ", ")

	var sb strings.Builder
	sb.WriteString(tableName)
	for _, v := range values {
		sb.WriteByte('\t')
		sb.WriteString(strings.Trim(strings.TrimSpace(v), "'\""))
	}
	return sb.String(), nil
}
