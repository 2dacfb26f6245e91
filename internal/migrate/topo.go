package migrate

import (
	"sort"

	"github.com/veldtdb/veldt/internal/merr"
)

// topoSort orders migration ids so that every id appears after all of
// its dependencies, using Kahn's algorithm. Ids with no relative
// constraint come out in lexical order, which makes the result
// deterministic across runs. On a cycle it returns a DependencyCycle
// error naming the participants.
//
// edges maps each id to the ids it depends on. Every edge target must
// exist in edges; the resolver checks that before sorting.
func topoSort(edges map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(edges))
	dependents := make(map[string][]string, len(edges))
	for id, deps := range edges {
		if _, ok := inDegree[id]; !ok {
			inDegree[id] = 0
		}
		for _, dep := range deps {
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	result := make([]string, 0, len(edges))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		released := false
		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				released = true
			}
		}
		if released {
			sort.Strings(queue)
		}
	}

	if len(result) != len(edges) {
		emitted := make(map[string]bool, len(result))
		for _, id := range result {
			emitted[id] = true
		}
		var cycle []string
		for id := range edges {
			if !emitted[id] {
				cycle = append(cycle, id)
			}
		}
		sort.Strings(cycle)
		return nil, merr.New(merr.ErrDependencyCycle, "circular migration dependency").
			With("participants", cycle)
	}

	return result, nil
}
