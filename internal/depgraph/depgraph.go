// Package depgraph orders tables so that referenced tables come first.
package depgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCircularDependency is matched by every CircularDependencyError
var ErrCircularDependency = errors.New("circular dependency")

// CircularDependencyError names the tables that could not be ordered
type CircularDependencyError struct {
	Tables []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency between tables: %s", strings.Join(e.Tables, ", "))
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// Resolve computes a topological order of the keys of deps using Kahn's
// algorithm. deps maps each table to the tables it references. References
// to tables that are not keys, and self-references, are ignored. Among
// tables that are ready at the same time the alphabetically smallest goes
// first, so the result is deterministic.
//
// When a cycle remains no partial order is returned.
func Resolve(deps map[string][]string) ([]string, error) {
	if len(deps) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string) // referenced table → tables referencing it

	for table := range deps {
		inDegree[table] = 0
	}

	for table, refs := range deps {
		seen := make(map[string]bool, len(refs))
		for _, ref := range refs {
			if ref == table || seen[ref] {
				continue
			}
			if _, ok := deps[ref]; !ok {
				continue
			}
			seen[ref] = true
			dependents[ref] = append(dependents[ref], table)
			inDegree[table]++
		}
	}

	var ready []string
	for table, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, table)
		}
	}
	slices.Sort(ready)

	order := make([]string, 0, len(deps))
	for len(ready) > 0 {
		table := ready[0]
		ready = ready[1:]
		order = append(order, table)

		for _, dep := range dependents[table] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		slices.Sort(ready)
	}

	if len(order) != len(deps) {
		var remaining []string
		for table, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, table)
			}
		}
		slices.Sort(remaining)
		return nil, &CircularDependencyError{Tables: remaining}
	}
	return order, nil
}
