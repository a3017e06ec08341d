package match

import (
	"cmp"
	"slices"
)

// Candidate is a known name scored against a wanted one.
type Candidate struct {
	Name string
	// Score is the NameSimilarity of Name to the wanted name.
	Score float64
}

// CandidateList is ordered best first.
type CandidateList []Candidate

// DefaultMinScore is the minimum similarity for a name to be suggested.
const DefaultMinScore = 0.6

// RankNames scores every known name against want, best first; ties are
// broken alphabetically.
func RankNames(want string, known []string) CandidateList {
	out := make(CandidateList, 0, len(known))
	for _, k := range known {
		out = append(out, Candidate{Name: k, Score: NameSimilarity(want, k)})
	}

	slices.SortFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	return out
}

// Top returns at most the n best candidates.
func (c CandidateList) Top(n int) CandidateList {
	return c[:min(n, len(c))]
}

// AboveThreshold keeps the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	i := slices.IndexFunc(c, func(cand Candidate) bool { return cand.Score < threshold })
	if i < 0 {
		return c
	}

	return c[:i]
}

func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Name
	}

	return names
}
