package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupIndexes(t *testing.T) {
	rows := []Index{
		{Name: "PRIMARY", ColumnName: "id", IndexType: IndexPrimary, Sequence: 1},
		{Name: "idx_name", ColumnName: "last", IndexType: IndexPlain, Sequence: 2},
		{Name: "email", ColumnName: "email", IndexType: IndexUnique, Sequence: 1},
		{Name: "idx_name", ColumnName: "first", IndexType: IndexPlain, Sequence: 1},
	}

	groups := GroupIndexes(rows)
	require.Len(t, groups, 3)
	assert.Equal(t, "PRIMARY", groups[0][0].Name)
	require.Len(t, groups[1], 2)
	assert.Equal(t, "first", groups[1][0].ColumnName)
	assert.Equal(t, "last", groups[1][1].ColumnName)
	assert.Equal(t, "email", groups[2][0].Name)

	assert.Empty(t, GroupIndexes(nil))
}

func TestGroupForeignKeys(t *testing.T) {
	rows := []ForeignKey{
		{ConstraintName: "fk_line", ConstraintCol: "line_no", Sequence: 2},
		{ConstraintName: "fk_user", ConstraintCol: "user_id", Sequence: 1},
		{ConstraintName: "fk_line", ConstraintCol: "order_id", Sequence: 1},
	}

	groups := GroupForeignKeys(rows)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"order_id", "line_no"}, []string{groups[0][0].ConstraintCol, groups[0][1].ConstraintCol})
	assert.Equal(t, "fk_user", groups[1][0].ConstraintName)
}
