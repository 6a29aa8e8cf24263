package dialect

import (
	"regexp"
	"strconv"
	"strings"
)

// quoter owns identifier and literal escaping for one dialect
type quoter struct {
	ident           string // identifier quote character
	escapeBackslash bool   // backslash is an escape inside string literals
}

// Ident wraps an identifier in the dialect's quote character, doubling any
// embedded quote characters.
func (q quoter) Ident(name string) string {
	return q.ident + strings.ReplaceAll(name, q.ident, q.ident+q.ident) + q.ident
}

// IdentList quotes and comma-joins names
func (q quoter) IdentList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = q.Ident(name)
	}
	return strings.Join(quoted, ", ")
}

// Literal wraps a value in single quotes, doubling embedded single quotes
func (q quoter) Literal(value string) string {
	if q.escapeBackslash {
		value = strings.ReplaceAll(value, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// LiteralList quotes values and joins them with sep
func (q quoter) LiteralList(values []string, sep string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = q.Literal(v)
	}
	return strings.Join(quoted, sep)
}

var defaultKeywords = map[string]bool{
	"NULL":              true,
	"TRUE":              true,
	"FALSE":             true,
	"CURRENT_TIMESTAMP": true,
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"LOCALTIME":         true,
	"LOCALTIMESTAMP":    true,
	"CURRENT_USER":      true,
	"SESSION_USER":      true,
}

// castSuffix matches a trailing Postgres cast such as ::character varying
var castSuffix = regexp.MustCompile(`::[A-Za-z_][\w ."]*(\[\])?$`)

// functionCall matches a whole-value call such as uuid() or concat('a', b).
// On textual columns only this shape, or a parenthesized expression, is
// rendered as SQL; MySQL reports plain string defaults unquoted.
var functionCall = regexp.MustCompile(`^[A-Za-z_][\w.]*\(.*\)$`)

// Default renders a column default for a DEFAULT clause. It returns "" when
// the default is SQL NULL. Numeric values stay bare unless the column is
// textual; quoted literals, keywords, bit/hex literals and function
// expressions pass through; anything else becomes a string literal.
func (q quoter) Default(raw, columnType string) string {
	v := strings.TrimSpace(raw)
	literal := raw
	for castSuffix.MatchString(v) {
		v = strings.TrimSpace(castSuffix.ReplaceAllString(v, ""))
		literal = v
	}

	upper := strings.ToUpper(v)
	switch {
	case upper == "NULL":
		return ""
	case defaultKeywords[upper]:
		return upper
	case len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'':
		return v
	case isBitOrHexLiteral(v):
		return v
	case strings.Contains(v, "(") && (!isTextual(columnType) || isExpression(v)):
		return v
	}

	if _, err := strconv.ParseFloat(v, 64); err == nil && v != "" && !isTextual(columnType) {
		return v
	}
	return q.Literal(literal)
}

func isExpression(v string) bool {
	return functionCall.MatchString(v) || (strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")"))
}

func isBitOrHexLiteral(v string) bool {
	if len(v) < 3 || v[len(v)-1] != '\'' {
		return false
	}
	switch strings.ToLower(v[:2]) {
	case "b'", "x'":
		return true
	}
	return false
}

func isTextual(columnType string) bool {
	t := strings.ToLower(columnType)
	if strings.Contains(t, "char") || strings.Contains(t, "text") || strings.Contains(t, "clob") {
		return true
	}
	switch t {
	case "enum", "set", "uuid", "json", "jsonb", "string":
		return true
	}
	return false
}
