package depgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		deps map[string][]string
		want []string
	}{
		{
			name: "empty",
			deps: nil,
			want: nil,
		},
		{
			name: "referenced table first",
			deps: map[string][]string{"orders": {"users"}, "users": nil},
			want: []string{"users", "orders"},
		},
		{
			name: "alphabetical tie-break",
			deps: map[string][]string{"c": nil, "a": nil, "b": nil},
			want: []string{"a", "b", "c"},
		},
		{
			name: "chain",
			deps: map[string][]string{
				"order_items": {"orders", "products"},
				"orders":      {"users"},
				"products":    nil,
				"users":       nil,
			},
			want: []string{"products", "users", "orders", "order_items"},
		},
		{
			name: "self reference ignored",
			deps: map[string][]string{"categories": {"categories"}},
			want: []string{"categories"},
		},
		{
			name: "reference outside the set ignored",
			deps: map[string][]string{"orders": {"users"}},
			want: []string{"orders"},
		},
		{
			name: "duplicate references count once",
			deps: map[string][]string{"a": {"b", "b"}, "b": nil},
			want: []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.deps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIsTopological(t *testing.T) {
	deps := map[string][]string{
		"a": {"d"},
		"b": {"a", "d"},
		"c": {"b"},
		"d": nil,
		"e": {"c", "a"},
	}

	order, err := Resolve(deps)
	require.NoError(t, err)
	require.Len(t, order, len(deps))

	pos := make(map[string]int, len(order))
	for i, table := range order {
		pos[table] = i
	}
	for table, refs := range deps {
		for _, ref := range refs {
			assert.Less(t, pos[ref], pos[table], "%s must precede %s", ref, table)
		}
	}

	for i := 0; i < 10; i++ {
		again, err := Resolve(deps)
		require.NoError(t, err)
		assert.Equal(t, order, again)
	}
}

func TestResolveCycle(t *testing.T) {
	deps := map[string][]string{
		"a":     {"b"},
		"b":     {"a"},
		"users": nil,
	}

	order, err := Resolve(deps)
	require.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, ErrCircularDependency))

	var cycle *CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b"}, cycle.Tables)
	assert.Contains(t, err.Error(), "a, b")
}
