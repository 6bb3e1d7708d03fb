package runtime

import "strings"

// SubjectMatches reports whether subj is matched by pattern under NATS
// wildcard rules: * stands in for exactly one token, > for one or more
// trailing tokens. The renderer registry routes event stream messages to
// the first renderer whose pattern matches.
func SubjectMatches(pattern, subj string) bool {
	if pattern == subj {
		return true
	}
	want := strings.Split(pattern, ".")
	have := strings.Split(subj, ".")
	for len(want) > 0 {
		tok := want[0]
		if tok == ">" && len(want) == 1 {
			// The greedy tail must consume at least one token.
			return len(have) > 0
		}
		if len(have) == 0 {
			return false
		}
		if tok != "*" && tok != have[0] {
			return false
		}
		want, have = want[1:], have[1:]
	}
	return len(have) == 0
}
