package runtime

import "testing"

func TestSubjectMatches(t *testing.T) {
	cases := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"event.run.s1.r1.exit", "event.run.s1.r1.exit", true},
		{"event.run.*.*.started", "event.run.s1.r1.started", true},
		{"event.run.*.*.started", "event.run.s1.r1.exit", false},
		{"event.run.*.*.started", "event.run.s1.started", false},
		{"event.run.*.rejected", "event.run.s1.rejected", true},
		{"event.run.*.rejected", "event.run.s1.r1.rejected", false},
		{"command.surface.>", "command.surface.view.set", true},
		{"command.surface.>", "command.surface.patch", true},
		{"command.surface.>", "command.tool.kernel.run", false},
		{"event.>", "event.console.s1.freeze", true},
		{">", "anything.at.all", true},
		// a literal * token in the subject is matched by a * in the pattern
		{"event.run.*.*.exit", "event.run.s1.*.exit", true},
		// pattern longer than subject
		{"event.run.s1.r1.exit.extra", "event.run.s1.r1.exit", false},
		// subject longer than pattern without >
		{"event.run.s1.r1", "event.run.s1.r1.exit", false},
	}
	for _, tc := range cases {
		if got := SubjectMatches(tc.pattern, tc.subject); got != tc.want {
			t.Errorf("SubjectMatches(%q, %q) = %v, want %v", tc.pattern, tc.subject, got, tc.want)
		}
	}
}
