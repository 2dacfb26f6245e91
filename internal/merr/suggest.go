package merr

import "fmt"

// levenshtein computes the edit distance between two strings using two
// rolling rows instead of the full matrix.
func levenshtein(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			ins := curr[j-1] + 1
			del := prev[j] + 1
			sub := prev[j-1] + cost

			curr[j] = ins
			if del < curr[j] {
				curr[j] = del
			}
			if sub < curr[j] {
				curr[j] = sub
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// ClosestMatch returns the option nearest to input within an edit
// distance of 3. The cap catches common typos (missing or extra char,
// substitution, adjacent transposition) without matching unrelated words.
func ClosestMatch(input string, options []string) (string, bool) {
	const maxDistance = 3

	bestMatch := ""
	bestDist := maxDistance + 1

	for _, opt := range options {
		d := levenshtein(input, opt)
		if d < bestDist {
			bestDist = d
			bestMatch = opt
		}
	}

	if bestDist <= maxDistance {
		return bestMatch, true
	}
	return "", false
}

// SuggestSimilar returns a "did you mean 'X'?" help line if a close
// match exists, or an empty string otherwise.
func SuggestSimilar(input string, options []string) string {
	if match, ok := ClosestMatch(input, options); ok {
		return fmt.Sprintf("did you mean '%s'?", match)
	}
	return ""
}

// WithSuggestion appends a "did you mean" help line when input is close
// to one of the options. No-op otherwise, so call sites stay linear.
func (e *Error) WithSuggestion(input string, options []string) *Error {
	if hint := SuggestSimilar(input, options); hint != "" {
		return e.WithHelp(hint)
	}
	return e
}
