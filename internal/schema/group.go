package schema

import "slices"

// GroupIndexes groups index rows by index name, in first-seen order, each
// group ordered by Sequence
func GroupIndexes(rows []Index) [][]Index {
	var names []string
	groups := make(map[string][]Index)
	for _, row := range rows {
		if _, ok := groups[row.Name]; !ok {
			names = append(names, row.Name)
		}
		groups[row.Name] = append(groups[row.Name], row)
	}

	result := make([][]Index, 0, len(names))
	for _, name := range names {
		group := groups[name]
		slices.SortStableFunc(group, func(a, b Index) int { return a.Sequence - b.Sequence })
		result = append(result, group)
	}
	return result
}

// GroupForeignKeys groups foreign key rows by constraint name, in
// first-seen order, each group ordered by Sequence
func GroupForeignKeys(rows []ForeignKey) [][]ForeignKey {
	var names []string
	groups := make(map[string][]ForeignKey)
	for _, row := range rows {
		if _, ok := groups[row.ConstraintName]; !ok {
			names = append(names, row.ConstraintName)
		}
		groups[row.ConstraintName] = append(groups[row.ConstraintName], row)
	}

	result := make([][]ForeignKey, 0, len(names))
	for _, name := range names {
		group := groups[name]
		slices.SortStableFunc(group, func(a, b ForeignKey) int { return a.Sequence - b.Sequence })
		result = append(result, group)
	}
	return result
}
