package credential

import "strings"

// MatchPolicy selects how a query is compared against entry titles.
//
// The two flags are independent and give four comparison rules:
//
//	CaseSensitive Exact  rule
//	true          true   value == pattern
//	true          false  value contains pattern
//	false         true   lower(value) == lower(pattern)
//	false         false  lower(value) contains lower(pattern)
type MatchPolicy struct {
	CaseSensitive bool
	Exact         bool
}

// Matches reports whether value satisfies pattern under policy.
func Matches(value, pattern string, policy MatchPolicy) bool {
	if !policy.CaseSensitive {
		value = strings.ToLower(value)
		pattern = strings.ToLower(pattern)
	}
	if policy.Exact {
		return value == pattern
	}
	return strings.Contains(value, pattern)
}

// String renders the policy for debug output.
func (p MatchPolicy) String() string {
	mode := "substring"
	if p.Exact {
		mode = "exact"
	}
	if p.CaseSensitive {
		return mode + ",case-sensitive"
	}
	return mode + ",case-insensitive"
}
