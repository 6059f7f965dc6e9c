package matrix

import "github.com/vk/matrixci/internal/config"

// Matches reports whether the combination satisfies one exclusion rule:
// every axis/value pair the rule specifies must equal the combination's
// value for that axis. Axes the rule does not mention are wildcards. An
// empty rule never matches; Validate rejects empty rules at load anyway.
func Matches(c Combination, rule *config.ExcludeRule) bool {
	if len(rule.Match) == 0 {
		return false
	}
	for name, want := range rule.Match {
		got, ok := c.Value(name)
		if !ok || !got.RawEquals(want) {
			return false
		}
	}
	return true
}

// IsExcluded reports whether any rule matches the combination (logical OR
// across rules).
func IsExcluded(c Combination, rules []*config.ExcludeRule) bool {
	for _, rule := range rules {
		if Matches(c, rule) {
			return true
		}
	}
	return false
}

// Filter returns the combinations that survive the exclusion rules, in
// their original enumeration order. Excluded combinations are dropped
// before scheduling and never appear in reports.
func Filter(combos []Combination, rules []*config.ExcludeRule) []Combination {
	if len(rules) == 0 {
		return combos
	}
	kept := make([]Combination, 0, len(combos))
	for _, c := range combos {
		if !IsExcluded(c, rules) {
			kept = append(kept, c)
		}
	}
	return kept
}
