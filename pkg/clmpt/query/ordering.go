package query

// RankedVar pairs a variable name with its BFS depth from the ordering
// source.
type RankedVar struct {
	Name  string
	Order int
}

// DefaultOrderingSource is the conventional name of the free variable.
const DefaultOrderingSource = "f"

// BFSVariableOrdering levels the variable names by graph distance from
// the source, traversing the term/atomic bipartite graph breadth first.
// Symbol terms are never traversed. An isolated or unknown source yields
// a single level holding only itself; variables unreachable from the
// source do not appear at all.
func (q *Query) BFSVariableOrdering(source string) [][]RankedVar {
	visited := map[string]bool{source: true}
	levels := [][]RankedVar{{{Name: source, Order: 0}}}

	for {
		var next []RankedVar
		for _, rv := range levels[len(levels)-1] {
			for _, key := range q.termAtomics[rv.Name] {
				for _, term := range q.atomics[key].Terms() {
					if term.IsSymbol() {
						continue
					}
					if visited[term.Name] {
						continue
					}
					visited[term.Name] = true
					next = append(next, RankedVar{Name: term.Name, Order: rv.Order + 1})
				}
			}
		}
		if len(next) == 0 {
			return levels
		}
		levels = append(levels, next)
	}
}
