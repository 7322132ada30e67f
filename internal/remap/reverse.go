package remap

// ToLogical translates a physical position, such as a routing key, to its
// logical index. It returns false when the position is ignored; callers
// must treat that as "discard the input", not as an error.
func ToLogical(physical int, set IgnoredSet) (int, bool) {
	if physical < 0 || set.Contains(physical) {
		return 0, false
	}
	return physical - set.CountBelow(physical), true
}

// TranslateRouting is ToLogical for an optional input: when present is
// false no translation is attempted and the absence is propagated.
func TranslateRouting(physical int, present bool, set IgnoredSet) (int, bool) {
	if !present {
		return 0, false
	}
	return ToLogical(physical, set)
}
