package dialect

import (
	"errors"
	"testing"

	"github.com/jardiscore/dbschema/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// usersColumns is the canonical users table shared by the dialect tests
func usersColumns() []schema.Column {
	return []schema.Column{
		{Name: "id", Type: "int", Primary: true, AutoIncrement: true},
		{Name: "email", Type: "varchar", Size: schema.Sized{Length: 255}},
		{Name: "status", Type: "enum", EnumValues: []string{"active", "banned"}, Default: strPtr("active")},
		{Name: "balance", Type: "decimal", Size: schema.FixedPoint{Precision: 10, Scale: intPtr(2)}, Nullable: true, Default: strPtr("0.00")},
		{Name: "bio", Type: "text", Nullable: true},
	}
}

func ordersFK() []schema.ForeignKey {
	return []schema.ForeignKey{{
		Container:      "orders",
		ConstraintName: "fk_orders_user",
		ConstraintCol:  "user_id",
		RefContainer:   "users",
		RefColumn:      "id",
		OnUpdate:       "CASCADE",
		OnDelete:       "CASCADE",
	}}
}

func TestFor(t *testing.T) {
	for _, family := range []schema.Family{schema.FamilyMySQL, schema.FamilyPostgres, schema.FamilySQLite} {
		d, err := For(family)
		require.NoError(t, err)
		assert.Equal(t, family, d.Family())
	}

	_, err := For(schema.Family(0))
	assert.True(t, errors.Is(err, schema.ErrUnsupportedDriver))

	d, err := ForDriver("MariaDB")
	require.NoError(t, err)
	assert.Equal(t, schema.FamilyMySQL, d.Family())

	_, err = ForDriver("oracle")
	assert.True(t, errors.Is(err, schema.ErrUnsupportedDriver))
}

func TestFixedPointMapping(t *testing.T) {
	tests := []struct {
		dialect Dialect
		scaled  string
		bare    string
	}{
		{NewMySQL(), "DECIMAL(10,2)", "DECIMAL(10)"},
		{NewPostgres(), "NUMERIC(10,2)", "NUMERIC(10)"},
		{NewSQLite(), "NUMERIC(10,2)", "NUMERIC(10)"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Family().String(), func(t *testing.T) {
			assert.Equal(t, tt.scaled, tt.dialect.TypeMapping("decimal", schema.FixedPoint{Precision: 10, Scale: intPtr(2)}))
			assert.Equal(t, tt.bare, tt.dialect.TypeMapping("decimal", schema.FixedPoint{Precision: 10}))
		})
	}
}

func TestUnknownTypePassesThrough(t *testing.T) {
	for _, d := range []Dialect{NewMySQL(), NewPostgres(), NewSQLite()} {
		assert.Equal(t, "GEOMETRY", d.TypeMapping("geometry", nil), d.Family().String())
	}
}

func TestPrimaryIndexRendersNothing(t *testing.T) {
	rows := []schema.Index{{Name: "PRIMARY", ColumnName: "id", IsUnique: true, IndexType: schema.IndexPrimary, Sequence: 1}}
	for _, d := range []Dialect{NewMySQL(), NewPostgres(), NewSQLite()} {
		assert.Equal(t, "", d.CreateIndexStatement("users", rows), d.Family().String())
		assert.Equal(t, "", d.CreateIndexStatement("users", nil), d.Family().String())
	}
}

func TestFixedLiterals(t *testing.T) {
	tests := []struct {
		dialect Dialect
		begin   string
		commit  string
		drop    string
	}{
		{NewMySQL(), "START TRANSACTION;", "COMMIT;", "DROP TABLE IF EXISTS `users`;"},
		{NewPostgres(), "BEGIN;", "COMMIT;", `DROP TABLE IF EXISTS "users" CASCADE;`},
		{NewSQLite(), "BEGIN TRANSACTION;", "COMMIT;", `DROP TABLE IF EXISTS "users";`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Family().String(), func(t *testing.T) {
			assert.Equal(t, tt.begin, tt.dialect.BeginTransaction())
			assert.Equal(t, tt.commit, tt.dialect.CommitTransaction())
			assert.Equal(t, tt.drop, tt.dialect.DropTableStatement("users"))
		})
	}
}
