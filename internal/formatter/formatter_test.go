package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jardiscore/dbschema/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func sampleTables() []schema.TableMetadata {
	return []schema.TableMetadata{
		{
			Name: "users",
			Columns: []schema.Column{
				{Name: "id", Type: "int", Primary: true, AutoIncrement: true},
				{Name: "email", Type: "varchar", Size: schema.Sized{Length: 255}},
				{Name: "status", Type: "enum", EnumValues: []string{"active", "banned"}, Default: strPtr("active")},
			},
			Indexes: []schema.Index{
				{Name: "PRIMARY", ColumnName: "id", IsUnique: true, IndexType: schema.IndexPrimary, Sequence: 1},
				{Name: "email", ColumnName: "email", IsUnique: true, IndexType: schema.IndexUnique, Sequence: 1},
			},
		},
		{
			Name: "orders",
			Columns: []schema.Column{
				{Name: "id", Type: "int", Primary: true},
				{Name: "user_id", Type: "int"},
				{Name: "total", Type: "decimal", Size: schema.FixedPoint{Precision: 10, Scale: intPtr(2)}, Nullable: true},
			},
			ForeignKeys: []schema.ForeignKey{{
				Container: "orders", ConstraintName: "fk_orders_user", ConstraintCol: "user_id",
				RefContainer: "users", RefColumn: "id", OnDelete: "CASCADE", OnUpdate: "CASCADE", Sequence: 1,
			}},
		},
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	f, err := New("text", &buf)
	require.NoError(t, err)
	assert.IsType(t, &TextFormatter{}, f)

	f, err = New("markdown", &buf)
	require.NoError(t, err)
	assert.IsType(t, &MarkdownFormatter{}, f)

	_, err = New("yaml", &buf)
	assert.Error(t, err)
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter(&buf).Format(sampleTables()))

	want := `TABLE users (PK: id)
  id: int NOT NULL AUTO_INCREMENT
  email: varchar(255) NOT NULL
  status: enum (active|banned) NOT NULL DEFAULT active

  INDEXES:
    email (email) UNIQUE

TABLE orders (PK: id)
  id: int NOT NULL
  user_id: int NOT NULL
  total: decimal(10,2)

  FOREIGN KEYS:
    user_id → users.id (ON DELETE CASCADE, ON UPDATE CASCADE)
`
	assert.Equal(t, want, buf.String())
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownFormatter(&buf).Format(sampleTables()))

	out := buf.String()
	assert.Contains(t, out, "# Database Schema")
	assert.Contains(t, out, "## users")
	assert.Contains(t, out, "- **id:** int, PK, AUTO_INCREMENT, NOT NULL")
	assert.Contains(t, out, "- **total:** decimal(10,2)\n")
	assert.Contains(t, out, "- email on (email), unique")
	assert.Contains(t, out, "- user_id → users.id (ON DELETE CASCADE, ON UPDATE CASCADE)")
	assert.NotContains(t, out, "PRIMARY")
}

func TestMultiFileFormatter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewMultiFileFormatter(dir, FormatMarkdown).Format(sampleTables()))

	overview, err := os.ReadFile(filepath.Join(dir, "_overview.md"))
	require.NoError(t, err)
	assert.Contains(t, string(overview), "- **orders** (references: users)")
	assert.Contains(t, string(overview), "- **users**\n")

	users, err := os.ReadFile(filepath.Join(dir, "users.md"))
	require.NoError(t, err)
	assert.Contains(t, string(users), "### Referenced by")
	assert.Contains(t, string(users), "- orders.user_id → id")

	textDir := t.TempDir()
	require.NoError(t, NewMultiFileFormatter(textDir, FormatText).Format(sampleTables()))
	orders, err := os.ReadFile(filepath.Join(textDir, "orders.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(orders), "TABLE orders (PK: id)")
}
