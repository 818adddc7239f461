package domain

import "sort"

// EliminationSet tracks the roster indices one participant has marked out.
// Sets are independent per participant; nothing stops a participant from
// eliminating the opponent's true secret.
type EliminationSet map[int]struct{}

// Add marks an index. Adding an existing index is a no-op.
func (e EliminationSet) Add(index int) {
	e[index] = struct{}{}
}

// Remove clears an index. Removing an absent index is a no-op.
func (e EliminationSet) Remove(index int) {
	delete(e, index)
}

// Has reports whether the index is marked.
func (e EliminationSet) Has(index int) bool {
	_, ok := e[index]
	return ok
}

// Indices returns the marked indices in ascending order.
func (e EliminationSet) Indices() []int {
	out := make([]int, 0, len(e))
	for i := range e {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
