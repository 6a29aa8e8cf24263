package db

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/jardiscore/dbschema/internal/schema"
)

// Field kinds returned by Reader.FieldType
const (
	KindInt      = "int"
	KindFloat    = "float"
	KindBool     = "bool"
	KindString   = "string"
	KindDate     = "date"
	KindTime     = "time"
	KindDatetime = "datetime"
	KindArray    = "array"
)

// toBool normalizes the truthy encodings drivers hand back for catalog
// flags: native bool, integers, "0"/"1", "YES"/"NO", "t"/"f".
func toBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case int:
		return b != 0
	case int8:
		return b != 0
	case int16:
		return b != 0
	case int32:
		return b != 0
	case int64:
		return b != 0
	case uint8:
		return b != 0
	case uint64:
		return b != 0
	case []byte:
		return toBool(string(b))
	case sql.NullString:
		return b.Valid && toBool(b.String)
	case sql.NullBool:
		return b.Valid && b.Bool
	case sql.NullInt64:
		return b.Valid && b.Int64 != 0
	case string:
		switch strings.ToUpper(strings.TrimSpace(b)) {
		case "1", "YES", "Y", "TRUE", "T", "ON":
			return true
		}
		return false
	default:
		return false
	}
}

// nullableInt converts a numeric catalog value scanned as text. NULL, the
// empty string and "0" all come back as nil: MySQL reports 0 for absent
// precision in several versions, so an explicit zero is treated as absent.
func nullableInt(v sql.NullString) *int {
	if !v.Valid {
		return nil
	}
	s := strings.TrimSpace(v.String)
	if s == "" || s == "0" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// nullableString returns nil for SQL NULL
func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// splitTypeName separates a declared type such as "DECIMAL(10, 2)" into its
// lowercase base name and numeric arguments. Non-numeric arguments are
// dropped.
func splitTypeName(raw string) (string, []int) {
	raw = strings.TrimSpace(raw)
	open := strings.Index(raw, "(")
	if open == -1 {
		return strings.ToLower(raw), nil
	}

	base := strings.ToLower(strings.TrimSpace(raw[:open]))
	closing := strings.LastIndex(raw, ")")
	if closing <= open {
		return base, nil
	}

	var args []int
	for _, part := range strings.Split(raw[open+1:closing], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return base, nil
		}
		args = append(args, n)
	}
	return base, args
}

// lookupFieldType strips any parenthesized suffix and trailing
// unsigned/zerofill modifiers, then resolves the base name in kinds.
// Unknown names resolve to "".
func lookupFieldType(raw string, kinds map[string]string) string {
	base, _ := splitTypeName(raw)
	if base == "" {
		return ""
	}
	if strings.HasSuffix(base, "[]") {
		return KindArray
	}
	if kind, ok := kinds[base]; ok {
		return kind
	}
	return kinds[stripNumericModifiers(base)]
}

// stripNumericModifiers removes MySQL's trailing "unsigned" and "zerofill"
// words, as in "bigint unsigned zerofill"
func stripNumericModifiers(name string) string {
	fields := strings.Fields(name)
	for len(fields) > 1 {
		last := fields[len(fields)-1]
		if last != "unsigned" && last != "zerofill" {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// selectColumns returns exactly the requested fields in the requested
// order. Names the table does not have are skipped.
func selectColumns(columns []schema.Column, fields []string) []schema.Column {
	if len(fields) == 0 {
		return columns
	}

	byName := make(map[string]schema.Column, len(columns))
	for _, col := range columns {
		byName[col.Name] = col
	}

	selected := make([]schema.Column, 0, len(fields))
	for _, field := range fields {
		if col, ok := byName[field]; ok {
			selected = append(selected, col)
		}
	}
	return selected
}

// isFixedPoint reports whether a canonical type carries precision/scale
func isFixedPoint(columnType string) bool {
	return columnType == "decimal" || columnType == "numeric"
}

// parseEnumValues parses the value list of a declaration such as
// enum('a','b''c'). Quotes are doubled inside values.
func parseEnumValues(columnType string) []string {
	lower := strings.ToLower(strings.TrimSpace(columnType))
	if !strings.HasPrefix(lower, "enum(") && !strings.HasPrefix(lower, "set(") {
		return nil
	}

	start := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if start == -1 || end <= start {
		return nil
	}
	list := columnType[start+1 : end]
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var values []string
	var current strings.Builder
	inQuote := false
	for i := 0; i < len(list); i++ {
		ch := list[i]
		switch {
		case ch == '\'' && inQuote && i+1 < len(list) && list[i+1] == '\'':
			current.WriteByte('\'')
			i++
		case ch == '\'':
			inQuote = !inQuote
		case ch == '\\' && inQuote && i+1 < len(list):
			current.WriteByte(list[i+1])
			i++
		case ch == ',' && !inQuote:
			values = append(values, current.String())
			current.Reset()
		case inQuote:
			current.WriteByte(ch)
		}
	}
	values = append(values, current.String())
	return values
}
