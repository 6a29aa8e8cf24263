package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoterIdent(t *testing.T) {
	pg := quoter{ident: `"`}
	my := quoter{ident: "`"}

	assert.Equal(t, `"users"`, pg.Ident("users"))
	assert.Equal(t, `"we""ird"`, pg.Ident(`we"ird`))
	assert.Equal(t, "`order`", my.Ident("order"))
	assert.Equal(t, "`a``b`", my.Ident("a`b"))
	assert.Equal(t, `"a", "b"`, pg.IdentList([]string{"a", "b"}))
}

func TestQuoterLiteral(t *testing.T) {
	pg := quoter{ident: `"`}
	my := quoter{ident: "`", escapeBackslash: true}

	assert.Equal(t, "'it''s'", pg.Literal("it's"))
	assert.Equal(t, `'C:\path'`, pg.Literal(`C:\path`))
	assert.Equal(t, `'C:\\path'`, my.Literal(`C:\path`))
	assert.Equal(t, "'a','b'", pg.LiteralList([]string{"a", "b"}, ","))
}

func TestQuoterDefault(t *testing.T) {
	q := quoter{ident: `"`}

	tests := []struct {
		name       string
		raw        string
		columnType string
		want       string
	}{
		{"integer", "0", "int", "0"},
		{"decimal", "9.99", "decimal", "9.99"},
		{"negative", "-1", "bigint", "-1"},
		{"numeric text column", "0", "varchar", "'0'"},
		{"plain string", "active", "varchar", "'active'"},
		{"string with quote", "it's", "text", "'it''s'"},
		{"already quoted", "'active'", "varchar", "'active'"},
		{"postgres cast", "'active'::user_status", "enum", "'active'"},
		{"postgres varchar cast", "'n/a'::character varying", "varchar", "'n/a'"},
		{"null cast", "NULL::character varying", "varchar", ""},
		{"null", "NULL", "int", ""},
		{"keyword", "current_timestamp", "timestamp", "CURRENT_TIMESTAMP"},
		{"boolean keyword", "false", "boolean", "FALSE"},
		{"function", "now()", "timestamp", "now()"},
		{"mysql precision timestamp", "CURRENT_TIMESTAMP(6)", "datetime", "CURRENT_TIMESTAMP(6)"},
		{"bit literal", "b'1'", "bit", "b'1'"},
		{"empty string", "", "varchar", "''"},
		{"text with parentheses", "see notes (draft)", "varchar", "'see notes (draft)'"},
		{"function on text column", "uuid()", "char", "uuid()"},
		{"expression on text column", "(concat('a', 'b'))", "text", "(concat('a', 'b'))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Default(tt.raw, tt.columnType))
		})
	}
}
